package voxel

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"layer-manager/core/layer"
	"layer-manager/core/reconcile"
	"layer-manager/core/scene"

	"go.uber.org/zap"
)

// Strategy reconciles a voxel layer.
type Strategy struct {
	env      reconcile.Env
	programs *ProgramCache

	mu           sync.Mutex
	primitive    *scene.VoxelPrimitive
	keys         []string
	exaggeration float64
}

// NewStrategy returns a voxel strategy sharing programs through cache. A nil cache
// uses Programs.
func NewStrategy(env reconcile.Env, cache *ProgramCache) *Strategy {
	if cache == nil {
		cache = Programs
	}
	return &Strategy{env: env, programs: cache, exaggeration: 1}
}

// ReactToChanges rebuilds when the source, the uniform shape or the palette
// changes. Filter state and display selection only update uniforms.
func (s *Strategy) ReactToChanges(l layer.VoxelLayer, w *reconcile.Watcher) {
	sorted := layer.SortedMappings(l.Mappings)
	state := stateOf(sorted)

	w.Watch("source", l.Source.CacheKey())
	w.Watch("shape", Shape(l.Mappings))
	w.Watch("palette", paletteOf(l, sorted))
	w.Watch("filterOperator", l.FilterOperator.Code(), reconcile.Patch{Type: reconcile.PatchFilterOperator, Value: l.FilterOperator})
	w.Watch("display", l.DisplayKey, reconcile.Patch{Type: reconcile.PatchDisplay, Value: l.DisplayKey})
	w.Watch("opacity", l.Opacity, reconcile.Opacity(l.Opacity))
	w.Watch("visible", l.IsVisible, reconcile.Visibility(l.IsVisible))
	w.Watch("mappingFlags", state.flags, reconcile.Patch{Type: reconcile.PatchMappingFlags})
	w.Watch("mappingRanges", state.ranges, reconcile.Patch{Type: reconcile.PatchMappingRange})
	w.Watch("mappingUndefined", state.undefined, reconcile.Patch{Type: reconcile.PatchMappingUndefined})
}

func (s *Strategy) AddToViewer(ctx context.Context, l layer.VoxelLayer) error {
	shader, err := Generate(l)
	if err != nil {
		return err
	}

	release := s.env.Scene.Picking().Acquire()
	defer release()

	res, err := s.env.Resolver.Resolve(ctx, l.Source)
	if err != nil {
		return err
	}
	provider, err := s.env.Loader.LoadVoxelProvider(ctx, res)
	if err != nil {
		return err
	}
	if len(provider.Properties) > 0 {
		for _, key := range shader.Keys {
			if !slices.Contains(provider.Properties, key) {
				return fmt.Errorf("%w: voxel layer %q maps %q, which the dataset does not provide", layer.ErrConfiguration, l.ID, key)
			}
		}
	}

	primitives := s.env.Scene.Primitives()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := &scene.VoxelPrimitive{
		Provider: provider,
		Shader: &scene.CustomShader{
			Program:      s.programs.Get(shader.Source),
			Translucency: scene.Translucent,
			Uniforms:     shader.Uniforms,
		},
		Show:         l.IsVisible,
		Exaggeration: s.exaggeration,
	}

	index := -1
	if s.primitive != nil {
		index = primitives.IndexOf(s.primitive)
		if err := s.hideLocked(); err != nil {
			return err
		}
	}
	if err := primitives.Add(next, index); err != nil {
		return fmt.Errorf("failed to add voxel primitive: %w", err)
	}
	s.primitive = next
	s.keys = shader.Keys
	s.env.Log().Debug("Voxel primitive built",
		zap.String("layer_id", l.ID),
		zap.String("program", next.Shader.Program.ID),
		zap.Strings("mappings", shader.Keys))
	return nil
}

// hideLocked takes the primitive out of the scene without destroying it.
func (s *Strategy) hideLocked() error {
	if s.primitive == nil {
		return nil
	}
	p := s.primitive
	s.primitive = nil
	s.keys = nil
	p.Show = false
	if err := s.env.Scene.Primitives().Detach(p); err != nil {
		return fmt.Errorf("failed to detach voxel primitive: %w", err)
	}
	return nil
}

func (s *Strategy) RemoveFromViewer(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hideLocked()
}

func (s *Strategy) ApplyPatch(_ context.Context, l layer.VoxelLayer, p reconcile.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.primitive == nil {
		return nil
	}
	uniforms := s.primitive.Shader.Uniforms

	switch p.Type {
	case reconcile.PatchOpacity:
		return uniforms.Set("u_opacity", l.Opacity)
	case reconcile.PatchVisibility:
		s.primitive.Show = l.IsVisible
		return nil
	case reconcile.PatchFilterOperator:
		return uniforms.Set("u_filterOperator", l.FilterOperator.Code())
	case reconcile.PatchDisplay:
		return uniforms.Set("u_displayMapping", displayIndex(s.keys, l.DisplayKey))
	}

	mappings, err := ordered(l, s.keys)
	if err != nil {
		return err
	}
	for i, m := range mappings {
		switch {
		case p.Type == reconcile.PatchMappingFlags && m.Item != nil:
			flags, err := PackFlags(m.Item.EnabledFlags())
			if err != nil {
				return fmt.Errorf("mapping %q: %w", m.Key, err)
			}
			err = uniforms.Set(mappingUniform(i, "flags"), flags)
			if err != nil {
				return err
			}
		case p.Type == reconcile.PatchMappingRange && m.Range != nil:
			if err := uniforms.Set(mappingUniform(i, "range"), m.Range.EnabledRange); err != nil {
				return err
			}
		case p.Type == reconcile.PatchMappingUndefined && m.Range != nil:
			if err := uniforms.Set(mappingUniform(i, "includeUndefined"), m.Range.IsUndefinedAlwaysEnabled); err != nil {
				return err
			}
		}
	}
	switch p.Type {
	case reconcile.PatchMappingFlags, reconcile.PatchMappingRange, reconcile.PatchMappingUndefined:
		return nil
	}
	return fmt.Errorf("unsupported voxel patch %s", p)
}

func (s *Strategy) ZoomIntoView(layer.VoxelLayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.primitive == nil {
		return nil
	}
	s.env.Scene.Camera().FlyTo(s.primitive.Provider.Region)
	return nil
}

func (s *Strategy) MoveToTop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.primitive != nil {
		s.env.Scene.Primitives().RaiseToTop(s.primitive)
	}
	return nil
}

func (s *Strategy) UpdateExaggeration(factor float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exaggeration = factor
	if s.primitive != nil {
		s.primitive.Exaggeration = factor
	}
	return nil
}

// Current returns the primitive in the scene, or nil.
func (s *Strategy) Current() *scene.VoxelPrimitive {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.primitive
}
