package layer

import "fmt"

// Validate checks a layer snapshot for configuration errors.
func Validate(l Layer) error {
	base := l.Common()
	if base.ID == "" {
		return fmt.Errorf("%w: layer id is empty", ErrConfiguration)
	}
	if base.Opacity < 0 || base.Opacity > 1 {
		return fmt.Errorf("%w: layer %q opacity %v is outside [0, 1]", ErrConfiguration, base.ID, base.Opacity)
	}

	switch v := l.(type) {
	case WmtsLayer:
		return validateImagery(base.ID, v.ImagerySettings)
	case BackgroundLayer:
		return validateImagery(base.ID, v.ImagerySettings)
	case Tiles3dLayer:
		return wrapSource(base.ID, v.Source)
	case TiffLayer:
		if err := wrapSource(base.ID, v.Source); err != nil {
			return err
		}
		if _, ok := v.Band(); !ok {
			return fmt.Errorf("%w: layer %q has no band named %q", ErrConfiguration, base.ID, v.ActiveBand)
		}
	case VoxelLayer:
		return validateVoxel(v)
	case GeoJSONLayer:
		if err := wrapSource(base.ID, v.Source); err != nil {
			return err
		}
		for _, c := range []string{v.FillColor, v.MarkerColor} {
			if c == "" {
				continue
			}
			if _, err := ParseColor(c); err != nil {
				return fmt.Errorf("layer %q: %w", base.ID, err)
			}
		}
	case KmlLayer:
		return wrapSource(base.ID, v.Source)
	case EarthquakesLayer:
		return wrapSource(base.ID, v.Source)
	default:
		return fmt.Errorf("%w: unsupported layer type %q", ErrConfiguration, l.Type())
	}
	return nil
}

func validateImagery(id string, s ImagerySettings) error {
	if s.URL == "" {
		return fmt.Errorf("%w: imagery layer %q has no url", ErrConfiguration, id)
	}
	if s.MaxLevel < 0 {
		return fmt.Errorf("%w: imagery layer %q has a negative max level", ErrConfiguration, id)
	}
	return nil
}

func wrapSource(id string, s Source) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("layer %q: %w", id, err)
	}
	return nil
}

func validateVoxel(l VoxelLayer) error {
	if err := wrapSource(l.ID, l.Source); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(l.Mappings))
	for _, m := range l.Mappings {
		if _, dup := seen[m.Key]; dup {
			return fmt.Errorf("%w: layer %q has duplicate mapping key %q", ErrConfiguration, l.ID, m.Key)
		}
		seen[m.Key] = struct{}{}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("layer %q: %w", l.ID, err)
		}
	}
	if l.DisplayKey != "" {
		if _, ok := seen[l.DisplayKey]; !ok {
			return fmt.Errorf("%w: layer %q displays unknown mapping %q", ErrConfiguration, l.ID, l.DisplayKey)
		}
	}
	switch l.FilterOperator {
	case "", FilterAnd, FilterOr, FilterXor:
	default:
		return fmt.Errorf("%w: layer %q has unknown filter operator %q", ErrConfiguration, l.ID, l.FilterOperator)
	}
	return nil
}
