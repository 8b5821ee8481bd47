package imagery

import (
	"context"
	"fmt"

	"layer-manager/core/layer"
	"layer-manager/core/reconcile"
	"layer-manager/core/scene"
)

// TiffStrategy renders one band of a GeoTIFF as imagery. Switching bands rebuilds
// the provider.
type TiffStrategy struct {
	slot slot
}

// NewTiffStrategy returns the strategy for a GeoTIFF drawn as imagery with one active band.
func NewTiffStrategy(env reconcile.Env) *TiffStrategy {
	return &TiffStrategy{slot: slot{env: env}}
}

// ReactToChanges rebuilds on a new source or band.
func (s *TiffStrategy) ReactToChanges(l layer.TiffLayer, w *reconcile.Watcher) {
	w.Watch("source", l.Source.CacheKey())
	w.Watch("activeBand", l.ActiveBand)
	w.Watch("opacity", l.Opacity, reconcile.Opacity(l.Opacity))
	w.Watch("visible", l.IsVisible, reconcile.Visibility(l.IsVisible))
}

func (s *TiffStrategy) AddToViewer(ctx context.Context, l layer.TiffLayer) error {
	band, ok := l.Band()
	if !ok {
		return fmt.Errorf("%w: tiff layer %s has no band %q", layer.ErrConfiguration, l.ID, l.ActiveBand)
	}
	res, err := s.slot.env.Resolver.Resolve(ctx, l.Source)
	if err != nil {
		return err
	}
	provider := &scene.ImageryProvider{
		URL:       res.URL,
		Format:    "tiff",
		Band:      band.Index,
		Colormap:  band.Colormap,
		Headers:   res.Headers,
		Rectangle: World,
	}
	return s.slot.replace(provider, l.Base)
}

func (s *TiffStrategy) RemoveFromViewer(context.Context) error {
	return s.slot.remove()
}

func (s *TiffStrategy) ApplyPatch(_ context.Context, l layer.TiffLayer, p reconcile.Patch) error {
	return s.slot.patch(l.Base, p)
}

func (s *TiffStrategy) ZoomIntoView(layer.TiffLayer) error { return s.slot.zoom() }
func (s *TiffStrategy) MoveToTop() error                   { return s.slot.raise() }

// Current returns the imagery layer in the scene, or nil.
func (s *TiffStrategy) Current() *scene.ImageryLayer { return s.slot.current }
