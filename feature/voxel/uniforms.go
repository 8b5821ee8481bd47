package voxel

import (
	"fmt"
	"slices"

	"layer-manager/core/layer"
	"layer-manager/core/scene"
)

func vec4(hex string) ([4]float64, error) {
	c, err := layer.ParseColor(hex)
	if err != nil {
		return [4]float64{}, err
	}
	return [4]float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255}, nil
}

// displayIndex returns the shader index of the displayed mapping, or -1.
func displayIndex(keys []string, key string) int {
	return slices.Index(keys, key)
}

// buildUniforms returns every uniform of l with mappings in shader order.
func buildUniforms(l layer.VoxelLayer, ordered []layer.VoxelMapping, keys []string) (scene.Uniforms, error) {
	u := scene.Uniforms{
		"u_filterOperator": {Type: scene.UniformInt, Value: l.FilterOperator.Code()},
		"u_displayMapping": {Type: scene.UniformInt, Value: displayIndex(keys, l.DisplayKey)},
		"u_opacity":        {Type: scene.UniformFloat, Value: l.Opacity},
		"u_noData":         {Type: scene.UniformFloat, Value: l.NoData},
	}
	for i, m := range ordered {
		if m.Item != nil {
			flags, err := PackFlags(m.Item.EnabledFlags())
			if err != nil {
				return nil, fmt.Errorf("mapping %q: %w", m.Key, err)
			}
			values := make([]float64, len(m.Item.Items))
			colors := make([][4]float64, len(m.Item.Items))
			for k, item := range m.Item.Items {
				values[k] = item.Value
				if colors[k], err = vec4(item.Color); err != nil {
					return nil, fmt.Errorf("mapping %q: %w", m.Key, err)
				}
			}
			u[mappingUniform(i, "flags")] = scene.Uniform{Type: scene.UniformIVec4, Value: flags}
			u[mappingUniform(i, "values")] = scene.Uniform{Type: scene.UniformFloatArray, Value: values}
			u[mappingUniform(i, "colors")] = scene.Uniform{Type: scene.UniformVec4Array, Value: colors}
			continue
		}

		r := m.Range
		ramp := make([][4]float64, len(r.Colors))
		for k, c := range r.Colors {
			var err error
			if ramp[k], err = vec4(c); err != nil {
				return nil, fmt.Errorf("mapping %q: %w", m.Key, err)
			}
		}
		u[mappingUniform(i, "bounds")] = scene.Uniform{Type: scene.UniformVec2, Value: [2]float64{r.Min, r.Max}}
		u[mappingUniform(i, "range")] = scene.Uniform{Type: scene.UniformVec2, Value: r.EnabledRange}
		u[mappingUniform(i, "includeUndefined")] = scene.Uniform{Type: scene.UniformBool, Value: r.IsUndefinedAlwaysEnabled}
		u[mappingUniform(i, "ramp")] = scene.Uniform{Type: scene.UniformVec4Array, Value: ramp}
	}
	return u, nil
}

// ordered returns the mappings of l in the order of keys.
func ordered(l layer.VoxelLayer, keys []string) ([]layer.VoxelMapping, error) {
	out := make([]layer.VoxelMapping, len(keys))
	for i, key := range keys {
		m, ok := l.Mapping(key)
		if !ok {
			return nil, fmt.Errorf("%w: layer %q lost mapping %q", layer.ErrConfiguration, l.ID, key)
		}
		out[i] = m
	}
	return out, nil
}

// mappingState is the per-mapping filter state that is patched through uniforms.
type mappingState struct {
	flags     [][]bool
	ranges    [][2]float64
	undefined []bool
}

func stateOf(sorted []layer.VoxelMapping) mappingState {
	var s mappingState
	for _, m := range sorted {
		if m.Item != nil {
			s.flags = append(s.flags, m.Item.EnabledFlags())
			continue
		}
		if m.Range != nil {
			s.ranges = append(s.ranges, m.Range.EnabledRange)
			s.undefined = append(s.undefined, m.Range.IsUndefinedAlwaysEnabled)
		}
	}
	return s
}

// palette collects everything baked into uniforms at build time that has no patch.
type palette struct {
	NoData float64
	Items  [][]layer.VoxelItem
	Bounds [][2]float64
	Ramps  [][]string
}

func paletteOf(l layer.VoxelLayer, sorted []layer.VoxelMapping) palette {
	p := palette{NoData: l.NoData}
	for _, m := range sorted {
		if m.Item != nil {
			items := make([]layer.VoxelItem, len(m.Item.Items))
			for k, item := range m.Item.Items {
				item.IsEnabled = false
				items[k] = item
			}
			p.Items = append(p.Items, items)
			continue
		}
		if m.Range != nil {
			p.Bounds = append(p.Bounds, [2]float64{m.Range.Min, m.Range.Max})
			p.Ramps = append(p.Ramps, m.Range.Colors)
		}
	}
	return p
}
