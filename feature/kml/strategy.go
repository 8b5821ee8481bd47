package kml

import (
	"context"

	"layer-manager/core/layer"
	"layer-manager/core/reconcile"
	"layer-manager/core/scene"
	"layer-manager/feature/vector"
)

// Strategy reconciles a KML layer.
type Strategy struct {
	env  reconcile.Env
	slot vector.Slot
}

// NewStrategy returns a KML strategy drawing into the scene data sources of env.
func NewStrategy(env reconcile.Env) *Strategy {
	return &Strategy{env: env, slot: vector.NewSlot(env)}
}

// ReactToChanges rebuilds on a new source or clamping mode and patches opacity
// and visibility.
func (s *Strategy) ReactToChanges(l layer.KmlLayer, w *reconcile.Watcher) {
	w.Watch("source", l.Source.CacheKey())
	w.Watch("clampToGround", l.ClampToGround)
	w.Watch("opacity", l.Opacity, reconcile.Opacity(l.Opacity))
	w.Watch("visible", l.IsVisible, reconcile.Visibility(l.IsVisible))
}

func (s *Strategy) AddToViewer(ctx context.Context, l layer.KmlLayer) error {
	res, err := s.env.Resolver.Resolve(ctx, l.Source)
	if err != nil {
		return err
	}
	ds, err := s.env.Loader.LoadDataSource(ctx, scene.DataSourceKML, res, l.ClampToGround)
	if err != nil {
		return err
	}
	ds.Name = l.ID
	return s.slot.Replace(ds, l.Base)
}

func (s *Strategy) RemoveFromViewer(context.Context) error {
	return s.slot.Remove()
}

func (s *Strategy) ApplyPatch(_ context.Context, l layer.KmlLayer, p reconcile.Patch) error {
	return s.slot.Patch(l.Base, p)
}

func (s *Strategy) ZoomIntoView(layer.KmlLayer) error { return s.slot.Zoom() }
func (s *Strategy) MoveToTop() error                  { return s.slot.Raise() }

// Current returns the data source in the scene, or nil.
func (s *Strategy) Current() *scene.DataSource { return s.slot.Current() }
