package vector

import (
	"context"
	"fmt"
	"image/color"
	"strconv"

	"layer-manager/core/layer"
	"layer-manager/core/reconcile"
	"layer-manager/core/scene"
	"layer-manager/core/utils"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	defaultMarkerColor = "#3388ff"
	defaultFillColor   = "#3388ff66"
)

// GeoJSONStrategy reconciles a GeoJSON layer.
type GeoJSONStrategy struct {
	env  reconcile.Env
	slot Slot
}

// NewGeoJSONStrategy returns a strategy that fetches and styles GeoJSON itself.
func NewGeoJSONStrategy(env reconcile.Env) *GeoJSONStrategy {
	return &GeoJSONStrategy{env: env, slot: NewSlot(env)}
}

func (s *GeoJSONStrategy) ReactToChanges(l layer.GeoJSONLayer, w *reconcile.Watcher) {
	w.Watch("source", l.Source.CacheKey())
	w.Watch("fillColor", l.FillColor)
	w.Watch("markerColor", l.MarkerColor)
	w.Watch("opacity", l.Opacity, reconcile.Opacity(l.Opacity))
	w.Watch("visible", l.IsVisible, reconcile.Visibility(l.IsVisible))
}

func (s *GeoJSONStrategy) AddToViewer(ctx context.Context, l layer.GeoJSONLayer) error {
	data, err := fetch(ctx, s.env, l.Source)
	if err != nil {
		return err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return fmt.Errorf("%w: layer %q: invalid geojson: %v", layer.ErrConfiguration, l.ID, err)
	}
	entities, err := Entities(fc, l)
	if err != nil {
		return err
	}
	return s.slot.Replace(&scene.DataSource{Name: l.ID, Entities: entities}, l.Base)
}

// Entities converts the features of fc. Features may override the layer colors with
// the simplestyle "fill" and "marker-color" properties.
func Entities(fc *geojson.FeatureCollection, l layer.GeoJSONLayer) ([]*scene.Entity, error) {
	marker, err := colorOr(l.MarkerColor, defaultMarkerColor)
	if err != nil {
		return nil, err
	}
	fill, err := colorOr(l.FillColor, defaultFillColor)
	if err != nil {
		return nil, err
	}

	entities := make([]*scene.Entity, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		base, key := fill, "fill"
		if isPoint(f.Geometry) {
			base, key = marker, "marker-color"
		}
		if v := utils.ToString(f.Properties[key]); v != "" {
			if c, err := layer.ParseColor(v); err == nil {
				base = c
			}
		}
		id := utils.ToString(f.ID)
		if id == "" {
			id = l.ID + "-" + strconv.Itoa(i)
		}
		entities = append(entities, &scene.Entity{
			ID:         id,
			Geometry:   f.Geometry,
			BaseColor:  base,
			Properties: map[string]any(f.Properties),
		})
	}
	return entities, nil
}

func isPoint(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Point, orb.MultiPoint:
		return true
	}
	return false
}

func colorOr(value, fallback string) (color.NRGBA, error) {
	if value == "" {
		value = fallback
	}
	return layer.ParseColor(value)
}

func (s *GeoJSONStrategy) RemoveFromViewer(context.Context) error {
	return s.slot.Remove()
}

func (s *GeoJSONStrategy) ApplyPatch(_ context.Context, l layer.GeoJSONLayer, p reconcile.Patch) error {
	return s.slot.Patch(l.Base, p)
}

func (s *GeoJSONStrategy) ZoomIntoView(layer.GeoJSONLayer) error { return s.slot.Zoom() }
func (s *GeoJSONStrategy) MoveToTop() error                      { return s.slot.Raise() }

// Current returns the data source in the scene, or nil.
func (s *GeoJSONStrategy) Current() *scene.DataSource { return s.slot.Current() }
