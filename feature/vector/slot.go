package vector

import (
	"fmt"

	"layer-manager/core/layer"
	"layer-manager/core/reconcile"
	"layer-manager/core/scene"
)

// Slot tracks the data source a strategy owns.
type Slot struct {
	env     reconcile.Env
	current *scene.DataSource
}

// NewSlot returns an empty slot for the data sources of env.
func NewSlot(env reconcile.Env) Slot {
	return Slot{env: env}
}

// Replace removes the current data source and adds ds styled for base.
func (s *Slot) Replace(ds *scene.DataSource, base layer.Base) error {
	if err := s.Remove(); err != nil {
		return err
	}
	ds.Show = base.IsVisible
	ds.ApplyAlpha(base.Opacity)
	if err := s.env.Scene.DataSources().Add(ds); err != nil {
		return fmt.Errorf("failed to add data source: %w", err)
	}
	s.current = ds
	return nil
}

// Remove takes the current data source out of the scene. An empty slot is a no-op.
func (s *Slot) Remove() error {
	if s.current == nil {
		return nil
	}
	ds := s.current
	s.current = nil
	if err := s.env.Scene.DataSources().Remove(ds); err != nil {
		return fmt.Errorf("failed to remove data source: %w", err)
	}
	return nil
}

// Patch applies an opacity or visibility patch.
func (s *Slot) Patch(base layer.Base, p reconcile.Patch) error {
	if s.current == nil {
		return nil
	}
	switch p.Type {
	case reconcile.PatchOpacity:
		s.current.ApplyAlpha(base.Opacity)
	case reconcile.PatchVisibility:
		s.current.Show = base.IsVisible
	default:
		return fmt.Errorf("unsupported data source patch %s", p)
	}
	return nil
}

// Zoom flies the camera to the bounds of the current entities, if any.
func (s *Slot) Zoom() error {
	if s.current == nil || len(s.current.Entities) == 0 {
		return nil
	}
	s.env.Scene.Camera().FlyTo(s.current.Bound())
	return nil
}

// Raise moves the current data source above every other one.
func (s *Slot) Raise() error {
	if s.current != nil {
		s.env.Scene.DataSources().RaiseToTop(s.current)
	}
	return nil
}

// Current returns the data source in the scene, or nil.
func (s *Slot) Current() *scene.DataSource { return s.current }
