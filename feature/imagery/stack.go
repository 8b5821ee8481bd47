package imagery

import (
	"errors"
	"fmt"

	"layer-manager/core/layer"
	"layer-manager/core/reconcile"
	"layer-manager/core/scene"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// World is the extent used for providers without a rectangle.
var World = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// slot tracks the imagery layer a strategy owns in the scene's imagery stack.
type slot struct {
	env     reconcile.Env
	current *scene.ImageryLayer
	// bottom inserts the first build under every other layer and pins it there.
	bottom bool
}

// replace puts a layer built from provider where the current one is, or on top
// (bottom for background layers) when there is none.
func (s *slot) replace(provider *scene.ImageryProvider, base layer.Base) error {
	stack := s.env.Scene.ImageryLayers()

	index := -1
	if s.bottom {
		index = 0
	}
	if s.current != nil {
		index = stack.IndexOf(s.current)
		if err := s.remove(); err != nil {
			return err
		}
	}

	next := &scene.ImageryLayer{Provider: provider, Show: true}
	applyBase(next, base)
	if err := stack.Add(next, index); err != nil {
		return fmt.Errorf("failed to add imagery layer: %w", err)
	}
	s.current = next
	return nil
}

// remove takes the current layer out of the stack. The renderer may report that
// tiles of the layer are still being destroyed; the layer is gone by then and the
// error is dropped.
func (s *slot) remove() error {
	if s.current == nil {
		return nil
	}
	old := s.current
	s.current = nil
	err := s.env.Scene.ImageryLayers().Remove(old)
	if errors.Is(err, scene.ErrTileDestroyed) {
		s.env.Log().Debug("Ignoring imagery removal error", zap.Error(err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to remove imagery layer: %w", err)
	}
	return nil
}

func (s *slot) patch(base layer.Base, p reconcile.Patch) error {
	if s.current == nil {
		return nil
	}
	switch p.Type {
	case reconcile.PatchOpacity, reconcile.PatchVisibility:
		applyBase(s.current, base)
		return nil
	}
	return fmt.Errorf("unsupported imagery patch %s", p)
}

func (s *slot) raise() error {
	if s.current == nil || s.bottom {
		return nil
	}
	s.env.Scene.ImageryLayers().RaiseToTop(s.current)
	return nil
}

func (s *slot) zoom() error {
	if s.current == nil {
		return nil
	}
	bound := s.current.Provider.Rectangle
	if bound.IsZero() {
		bound = World
	}
	s.env.Scene.Camera().FlyTo(bound)
	return nil
}

// applyBase sets alpha and picking from opacity and visibility.
func applyBase(l *scene.ImageryLayer, base layer.Base) {
	if !base.IsVisible {
		l.Alpha = 0
		l.Pickable = false
		return
	}
	l.Alpha = base.Opacity
	l.Pickable = true
}
