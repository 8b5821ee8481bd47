package imagery

import (
	"context"

	"layer-manager/core/layer"
	"layer-manager/core/reconcile"
	"layer-manager/core/scene"
)

// Layer is a layer drawn from tiled imagery.
type Layer interface {
	layer.Layer
	Imagery() layer.ImagerySettings
}

// Strategy reconciles WMTS and background layers.
type Strategy[L Layer] struct {
	slot slot
}

// NewStrategy returns the strategy for a layer stacked above existing imagery.
func NewStrategy[L Layer](env reconcile.Env) *Strategy[L] {
	return &Strategy[L]{slot: slot{env: env}}
}

// NewBackgroundStrategy returns the strategy for the base map, which stays at the
// bottom of the stack.
func NewBackgroundStrategy(env reconcile.Env) *Strategy[layer.BackgroundLayer] {
	return &Strategy[layer.BackgroundLayer]{slot: slot{env: env, bottom: true}}
}

func (s *Strategy[L]) ReactToChanges(l L, w *reconcile.Watcher) {
	base, settings := l.Common(), l.Imagery()
	w.Watch("id", base.ID)
	w.Watch("url", settings.URL)
	w.Watch("maxLevel", settings.MaxLevel)
	w.Watch("credit", settings.Credit)
	w.Watch("format", settings.Format)
	w.Watch("currentTime", settings.CurrentTime)
	w.Watch("opacity", base.Opacity, reconcile.Opacity(base.Opacity))
	w.Watch("visible", base.IsVisible, reconcile.Visibility(base.IsVisible))
}

func (s *Strategy[L]) AddToViewer(_ context.Context, l L) error {
	settings := l.Imagery()
	provider := &scene.ImageryProvider{
		URL:          settings.URL,
		Format:       settings.Format,
		MaximumLevel: settings.MaxLevel,
		Credit:       settings.Credit,
		Time:         settings.CurrentTime,
		Rectangle:    World,
	}
	return s.slot.replace(provider, l.Common())
}

func (s *Strategy[L]) RemoveFromViewer(context.Context) error {
	return s.slot.remove()
}

func (s *Strategy[L]) ApplyPatch(_ context.Context, l L, p reconcile.Patch) error {
	return s.slot.patch(l.Common(), p)
}

func (s *Strategy[L]) ZoomIntoView(L) error { return s.slot.zoom() }
func (s *Strategy[L]) MoveToTop() error     { return s.slot.raise() }

// Current returns the imagery layer in the scene, or nil.
func (s *Strategy[L]) Current() *scene.ImageryLayer { return s.slot.current }
