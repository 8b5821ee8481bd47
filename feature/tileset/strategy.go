package tileset

import (
	"context"
	"fmt"
	"sync"

	"layer-manager/core/layer"
	"layer-manager/core/reconcile"
	"layer-manager/core/scene"

	"go.uber.org/zap"
)

// Strategy reconciles a Tiles3d layer.
type Strategy struct {
	env reconcile.Env

	mu           sync.Mutex
	tileset      *scene.Tileset
	release      func()
	exaggeration float64
}

// NewStrategy returns a 3D tileset strategy at exaggeration 1.
func NewStrategy(env reconcile.Env) *Strategy {
	return &Strategy{env: env, exaggeration: 1}
}

// ReactToChanges rebuilds only on a new source. Crossing full opacity swaps
// the custom shader; other opacity changes set its uniform.
func (s *Strategy) ReactToChanges(l layer.Tiles3dLayer, w *reconcile.Watcher) {
	w.Watch("source", l.Source.CacheKey())
	w.Watch("translucent", l.Opacity < 1, reconcile.Patch{Type: reconcile.PatchShader, Value: l.Opacity})
	w.Watch("opacity", l.Opacity, reconcile.Opacity(l.Opacity))
	w.Watch("visible", l.IsVisible, reconcile.Visibility(l.IsVisible))
}

func (s *Strategy) AddToViewer(ctx context.Context, l layer.Tiles3dLayer) error {
	res, err := s.env.Resolver.Resolve(ctx, l.Source)
	if err != nil {
		return err
	}
	ts, err := s.env.Loader.LoadTileset(ctx, res)
	if err != nil {
		return err
	}
	ts.Show = l.IsVisible
	ts.Shader = newShader(l.Opacity)

	primitives := s.env.Scene.Primitives()

	s.mu.Lock()
	defer s.mu.Unlock()

	ts.Exaggeration = s.exaggeration
	index := -1
	if s.tileset != nil {
		index = primitives.IndexOf(s.tileset)
		if err := s.removeLocked(); err != nil {
			return err
		}
	}
	if err := primitives.Add(ts, index); err != nil {
		return fmt.Errorf("failed to add tileset: %w", err)
	}
	s.tileset = ts
	ts.OnLoadProgress(func(pending int) { s.onLoadProgress(ts, pending) })
	return nil
}

// onLoadProgress holds the picking lock while ts has pending tile requests.
// Progress of a replaced tileset is ignored.
func (s *Strategy) onLoadProgress(ts *scene.Tileset, pending int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts != s.tileset {
		return
	}
	if pending > 0 {
		if s.release == nil {
			s.release = s.env.Scene.Picking().Acquire()
			s.env.Log().Debug("Tileset loading, picking locked", zap.Int("pending", pending))
		}
		return
	}
	s.releaseLocked()
}

func (s *Strategy) releaseLocked() {
	if s.release != nil {
		s.release()
		s.release = nil
	}
}

func (s *Strategy) removeLocked() error {
	s.releaseLocked()
	if s.tileset == nil {
		return nil
	}
	ts := s.tileset
	s.tileset = nil
	if err := s.env.Scene.Primitives().Remove(ts); err != nil {
		return fmt.Errorf("failed to remove tileset: %w", err)
	}
	return nil
}

func (s *Strategy) RemoveFromViewer(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked()
}

func (s *Strategy) ApplyPatch(_ context.Context, l layer.Tiles3dLayer, p reconcile.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tileset == nil {
		return nil
	}
	switch p.Type {
	case reconcile.PatchShader:
		s.tileset.Shader = newShader(l.Opacity)
	case reconcile.PatchOpacity:
		return s.tileset.Shader.Uniforms.Set("u_opacity", l.Opacity)
	case reconcile.PatchVisibility:
		s.tileset.Show = l.IsVisible
	default:
		return fmt.Errorf("unsupported tileset patch %s", p)
	}
	return nil
}

func (s *Strategy) ZoomIntoView(layer.Tiles3dLayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tileset == nil {
		return nil
	}
	s.env.Scene.Camera().FlyTo(s.tileset.Region)
	return nil
}

func (s *Strategy) MoveToTop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tileset != nil {
		s.env.Scene.Primitives().RaiseToTop(s.tileset)
	}
	return nil
}

func (s *Strategy) UpdateExaggeration(factor float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exaggeration = factor
	if s.tileset != nil {
		s.tileset.Exaggeration = factor
	}
	return nil
}

// Current returns the tileset in the scene, or nil.
func (s *Strategy) Current() *scene.Tileset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tileset
}
