package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"layer-manager/core/layer"
	"layer-manager/core/resolver"
	"layer-manager/core/scene"

	"go.uber.org/zap"
)

var (
	// ErrNoScene is returned by Add when the controller has no scene to build into.
	ErrNoScene = errors.New("no scene attached to controller")
	// ErrRemoved is returned by every operation after Remove.
	ErrRemoved = errors.New("controller has been removed")
	// ErrLayerIDChanged is returned when an update carries a different layer id.
	ErrLayerIDChanged = errors.New("layer id changed between updates")
	// ErrLayerType is returned when an update carries a different layer type.
	ErrLayerType = errors.New("layer type changed between updates")
)

// State is the lifecycle phase of a controller.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateRemoved:
		return "removed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Env holds the collaborators a strategy builds resources with.
type Env struct {
	Scene    scene.Scene
	Loader   scene.Loader
	Resolver resolver.Resolver
	Logger   *zap.Logger
}

// Strategy implements one layer type. ReactToChanges only registers watches; it must
// not touch the scene.
type Strategy[L layer.Layer] interface {
	// ReactToChanges registers the fields of l the resource depends on.
	ReactToChanges(l L, w *Watcher)
	// AddToViewer builds the resource for l, replacing the current one in place when
	// one exists.
	AddToViewer(ctx context.Context, l L) error
	// RemoveFromViewer tears the resource down.
	RemoveFromViewer(ctx context.Context) error
	// ApplyPatch mutates the live resource.
	ApplyPatch(ctx context.Context, l L, p Patch) error
	ZoomIntoView(l L) error
	MoveToTop() error
}

// ExaggerationStrategy is implemented by strategies whose resources follow the
// vertical exaggeration of the terrain.
type ExaggerationStrategy interface {
	UpdateExaggeration(factor float64) error
}

// LayerController is the type-erased view of a Controller used by collections of
// mixed layer types.
type LayerController interface {
	ID() string
	Type() layer.Type
	Layer() layer.Layer
	State() State
	Add(ctx context.Context) error
	Update(ctx context.Context, l layer.Layer) error
	Remove(ctx context.Context) error
	ZoomIntoView() error
	MoveToTop() error
	UpdateExaggeration(factor float64) error
}

// Report describes what the last update did.
type Report struct {
	Changed []string
	Reinit  bool
	Patches []Patch
}

// Controller owns exactly one scene resource for one layer.
//
// Calls on a controller must be serialized by the caller; the internal mutex only
// guards against accidental concurrent use.
type Controller[L layer.Layer] struct {
	mu       sync.Mutex
	env      Env
	strategy Strategy[L]
	logger   *zap.Logger

	layer    L
	baseline *Watcher
	state    State
	last     Report
}

// NewController records the watched baseline of the initial snapshot. No scene
// resource is built until Add.
func NewController[L layer.Layer](l L, env Env, strategy Strategy[L]) (*Controller[L], error) {
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}
	w := newWatcher()
	strategy.ReactToChanges(l, w)
	if w.err != nil {
		return nil, w.err
	}
	return &Controller[L]{
		env:      env,
		strategy: strategy,
		logger:   env.Logger.With(zap.String("layer_id", l.Common().ID), zap.String("layer_type", string(l.Type()))),
		layer:    l,
		baseline: w,
	}, nil
}

// ID returns the id of the controlled layer.
func (c *Controller[L]) ID() string { return c.Layer().Common().ID }

// Type returns the layer type the controller was built for.
func (c *Controller[L]) Type() layer.Type { return c.Layer().Type() }

// Layer returns the current snapshot.
func (c *Controller[L]) Layer() layer.Layer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layer
}

// Snapshot returns the current snapshot with its concrete type.
func (c *Controller[L]) Snapshot() L {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layer
}

// State returns the lifecycle phase.
func (c *Controller[L]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastReport returns the outcome of the most recent Update.
func (c *Controller[L]) LastReport() Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Add builds the scene resource. It does nothing when the resource already exists.
func (c *Controller[L]) Add(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateRemoved:
		return ErrRemoved
	case StateInitialized:
		return nil
	}
	if c.env.Scene == nil {
		return ErrNoScene
	}
	if err := c.strategy.AddToViewer(ctx, c.layer); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", c.layer.Common().ID, err)
	}
	c.state = StateInitialized
	c.env.Scene.RequestRender()
	c.logger.Debug("Layer added")
	return nil
}

// Update replaces the snapshot. When the resource exists, the changed fields are
// applied: a rebuild first when any changed field cannot be patched, then every
// queued patch in order. The snapshot is only replaced once the scene reflects it;
// after a failure the previous snapshot is kept and retrying the same layer
// repeats the rebuild or patches.
func (c *Controller[L]) Update(ctx context.Context, l layer.Layer) error {
	next, ok := l.(L)
	if !ok {
		return fmt.Errorf("%w: expected %T, got %T", ErrLayerType, c.layer, l)
	}
	return c.UpdateLayer(ctx, next)
}

// UpdateLayer is Update with a concrete snapshot.
func (c *Controller[L]) UpdateLayer(ctx context.Context, next L) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRemoved {
		return ErrRemoved
	}
	if next.Type() != c.layer.Type() {
		return fmt.Errorf("%w: %s became %s", ErrLayerType, c.layer.Type(), next.Type())
	}
	if id := next.Common().ID; id != c.layer.Common().ID {
		return fmt.Errorf("%w: %s became %s", ErrLayerIDChanged, c.layer.Common().ID, id)
	}

	w := newWatcher()
	c.strategy.ReactToChanges(next, w)
	d, err := diff(c.baseline, w)
	if err != nil {
		return err
	}
	c.last = Report{Changed: d.Changed, Reinit: d.Reinit, Patches: d.Patches}

	if c.state == StateInitialized && !d.Empty() {
		if err := c.apply(ctx, next, d); err != nil {
			// baseline and snapshot stay at the last applied layer so a retry diffs again
			return err
		}
		c.env.Scene.RequestRender()
	}
	c.baseline = w
	c.layer = next
	return nil
}

// apply rebuilds the resource when d requires it, then runs every queued patch in order.
func (c *Controller[L]) apply(ctx context.Context, next L, d Diff) error {
	if d.Reinit {
		c.logger.Debug("Rebuilding layer", zap.Strings("changed", d.Changed))
		if err := c.strategy.AddToViewer(ctx, next); err != nil {
			return fmt.Errorf("failed to rebuild layer %s: %w", next.Common().ID, err)
		}
	}
	for _, p := range d.Patches {
		if err := c.strategy.ApplyPatch(ctx, next, p); err != nil {
			return fmt.Errorf("failed to apply %s to layer %s: %w", p, next.Common().ID, err)
		}
	}
	if len(d.Patches) > 0 {
		c.logger.Debug("Patched layer", zap.Stringers("patches", d.Patches))
	}
	return nil
}

// Remove tears down the resource. The controller cannot be used afterwards.
func (c *Controller[L]) Remove(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRemoved {
		return ErrRemoved
	}
	wasBuilt := c.state == StateInitialized
	c.state = StateRemoved
	if err := c.strategy.RemoveFromViewer(ctx); err != nil {
		return fmt.Errorf("failed to remove layer %s: %w", c.layer.Common().ID, err)
	}
	if wasBuilt && c.env.Scene != nil {
		c.env.Scene.RequestRender()
	}
	c.logger.Debug("Layer removed")
	return nil
}

// ZoomIntoView flies the camera to the layer. It works before Add.
func (c *Controller[L]) ZoomIntoView() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRemoved {
		return ErrRemoved
	}
	return c.strategy.ZoomIntoView(c.layer)
}

// MoveToTop raises the resource above every other of its kind. It is a no-op
// until the resource is built.
func (c *Controller[L]) MoveToTop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRemoved {
		return ErrRemoved
	}
	if c.state != StateInitialized {
		return nil
	}
	if err := c.strategy.MoveToTop(); err != nil {
		return err
	}
	c.env.Scene.RequestRender()
	return nil
}

// UpdateExaggeration forwards the factor to strategies that support it and is a no-op
// for the others.
func (c *Controller[L]) UpdateExaggeration(factor float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRemoved {
		return ErrRemoved
	}
	s, ok := c.strategy.(ExaggerationStrategy)
	if !ok {
		return nil
	}
	return s.UpdateExaggeration(factor)
}

// Log returns the environment logger, or a no-op logger when none is set.
func (e Env) Log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
