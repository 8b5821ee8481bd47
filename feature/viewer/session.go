package viewer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"layer-manager/core/layer"
	"layer-manager/core/logger"
	"layer-manager/core/reconcile"
	"layer-manager/feature/voxel"

	"go.uber.org/zap"
)

// ErrUnknownLayer is returned for operations on a layer the session does not hold.
var ErrUnknownLayer = errors.New("layer is not active")

// SyncReport lists what a Sync did, by layer id.
type SyncReport struct {
	Added   []string          `json:"added"`
	Updated []string          `json:"updated"`
	Removed []string          `json:"removed"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// Session keeps one controller per active layer and reconciles the active set
// against incoming layer lists.
type Session struct {
	mu           sync.Mutex
	env          reconcile.Env
	programs     *voxel.ProgramCache
	logger       *zap.Logger
	controllers  map[string]reconcile.LayerController
	order        []string // top first
	exaggeration float64
}

// NewSession returns an empty session building into env.
func NewSession(env reconcile.Env, programs *voxel.ProgramCache) *Session {
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}
	if programs == nil {
		programs = voxel.Programs
	}
	return &Session{
		env:          env,
		programs:     programs,
		logger:       env.Logger,
		controllers:  make(map[string]reconcile.LayerController),
		exaggeration: 1,
	}
}

// Sync makes the active set equal to layers, listed top first. A layer that fails
// is reported and left out of the active set; the other layers are still applied.
func (s *Session) Sync(ctx context.Context, layers []layer.Layer) (SyncReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := SyncReport{Failed: map[string]string{}}
	var errs []error
	fail := func(id string, err error) {
		report.Failed[id] = err.Error()
		errs = append(errs, fmt.Errorf("layer %s: %w", id, err))
	}

	wanted := make(map[string]struct{}, len(layers))
	for _, l := range layers {
		wanted[l.Common().ID] = struct{}{}
	}
	for _, id := range slices.Clone(s.order) {
		if _, ok := wanted[id]; ok {
			continue
		}
		if err := s.removeLocked(ctx, id); err != nil {
			fail(id, err)
			continue
		}
		report.Removed = append(report.Removed, id)
	}

	previous := slices.Clone(s.order)
	var order []string
	for _, l := range layers {
		id := l.Common().ID
		if slices.Contains(order, id) {
			fail(id, fmt.Errorf("%w: duplicate layer id", layer.ErrConfiguration))
			continue
		}
		added, err := s.upsertLocked(ctx, l)
		if err != nil {
			fail(id, err)
			if _, active := s.controllers[id]; !active {
				continue
			}
		} else if added {
			report.Added = append(report.Added, id)
		} else {
			report.Updated = append(report.Updated, id)
		}
		order = append(order, id)
	}

	s.order = order
	if !slices.Equal(previous, order) {
		if err := s.restackLocked(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(report.Failed) == 0 {
		report.Failed = nil
	}
	return report, errors.Join(errs...)
}

// Upsert adds or updates a single layer. New layers go on top.
func (s *Session) Upsert(ctx context.Context, l layer.Layer) (added bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added, err = s.upsertLocked(ctx, l)
	if err != nil {
		return false, err
	}
	if added {
		s.order = append([]string{l.Common().ID}, s.order...)
	}
	return added, nil
}

// upsertLocked updates the controller of l, replacing it when the type changed, or
// creates and adds a new one. A new controller that fails to build is dropped.
func (s *Session) upsertLocked(ctx context.Context, l layer.Layer) (bool, error) {
	if err := layer.Validate(l); err != nil {
		return false, err
	}
	id := l.Common().ID
	log := logger.WithLayer(s.logger, id, string(l.Type()))

	if ctrl, ok := s.controllers[id]; ok {
		if ctrl.Type() == l.Type() {
			if err := ctrl.Update(ctx, l); err != nil {
				log.Warn("Layer update failed", zap.Error(err))
				return false, err
			}
			return false, nil
		}
		log.Info("Layer type changed, replacing controller", zap.String("previous", string(ctrl.Type())))
		if err := s.removeLocked(ctx, id); err != nil {
			return false, err
		}
		s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	}

	env := s.env
	env.Logger = log
	ctrl, err := NewController(l, env, s.programs)
	if err != nil {
		return false, err
	}
	if err := ctrl.UpdateExaggeration(s.exaggeration); err != nil {
		return false, err
	}
	if err := ctrl.Add(ctx); err != nil {
		log.Warn("Layer activation failed, rolling back", zap.Error(err))
		if rmErr := ctrl.Remove(ctx); rmErr != nil {
			log.Warn("Rollback failed", zap.Error(rmErr))
		}
		return false, err
	}
	s.controllers[id] = ctrl
	log.Info("Layer activated")
	return true, nil
}

// Remove deactivates a layer.
func (s *Session) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.removeLocked(ctx, id); err != nil {
		return err
	}
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	return nil
}

func (s *Session) removeLocked(ctx context.Context, id string) error {
	ctrl, ok := s.controllers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	delete(s.controllers, id)
	if err := ctrl.Remove(ctx); err != nil {
		return err
	}
	s.logger.Info("Layer deactivated", zap.String("layer_id", id))
	return nil
}

// restackLocked raises every layer from the bottom of the order to the top.
func (s *Session) restackLocked() error {
	var errs []error
	for i := len(s.order) - 1; i >= 0; i-- {
		if err := s.controllers[s.order[i]].MoveToTop(); err != nil {
			errs = append(errs, fmt.Errorf("layer %s: %w", s.order[i], err))
		}
	}
	return errors.Join(errs...)
}

// MoveToTop raises a layer above every other one.
func (s *Session) MoveToTop(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.controllers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	if err := ctrl.MoveToTop(); err != nil {
		return err
	}
	s.order = append([]string{id}, slices.DeleteFunc(s.order, func(o string) bool { return o == id })...)
	return nil
}

// ZoomIntoView flies the camera to a layer.
func (s *Session) ZoomIntoView(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.controllers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, id)
	}
	return ctrl.ZoomIntoView()
}

// SetExaggeration propagates the vertical exaggeration to every layer.
func (s *Session) SetExaggeration(factor float64) error {
	if factor <= 0 {
		return fmt.Errorf("%w: exaggeration must be positive, got %v", layer.ErrConfiguration, factor)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exaggeration = factor
	var errs []error
	for _, id := range s.order {
		if err := s.controllers[id].UpdateExaggeration(factor); err != nil {
			errs = append(errs, fmt.Errorf("layer %s: %w", id, err))
		}
	}
	if s.env.Scene != nil {
		s.env.Scene.RequestRender()
	}
	return errors.Join(errs...)
}

// Exaggeration returns the current vertical exaggeration.
func (s *Session) Exaggeration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exaggeration
}

// Layers returns the active layer snapshots, top first.
func (s *Session) Layers() []layer.Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]layer.Layer, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.controllers[id].Layer())
	}
	return out
}

// Layer returns the active snapshot of a layer.
func (s *Session) Layer(id string) (layer.Layer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.controllers[id]
	if !ok {
		return nil, false
	}
	return ctrl.Layer(), true
}

// Order returns the active layer ids, top first.
func (s *Session) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// Close deactivates every layer.
func (s *Session) Close(ctx context.Context) error {
	_, err := s.Sync(ctx, nil)
	return err
}
