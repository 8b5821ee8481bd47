package reconcile

import (
	"context"
	"errors"
	"testing"

	"layer-manager/core/layer"
	"layer-manager/core/scene/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStrategy watches the WMTS fields and records every call it receives.
type recordingStrategy struct {
	builds   int
	removals int
	patches  []Patch
	zooms    int
	raises   int
	factor   float64
	buildErr error
	patchErr error
	extra    bool
	// events records builds and patches in call order.
	events []string
}

func (s *recordingStrategy) ReactToChanges(l layer.WmtsLayer, w *Watcher) {
	w.Watch("url", l.URL)
	w.Watch("opacity", l.Opacity, Opacity(l.Opacity))
	w.Watch("visible", l.IsVisible, Visibility(l.IsVisible))
	if s.extra {
		w.Watch("credit", l.Credit)
	}
}

func (s *recordingStrategy) AddToViewer(context.Context, layer.WmtsLayer) error {
	if s.buildErr != nil {
		return s.buildErr
	}
	s.builds++
	s.events = append(s.events, "build")
	return nil
}

func (s *recordingStrategy) RemoveFromViewer(context.Context) error {
	s.removals++
	return nil
}

func (s *recordingStrategy) ApplyPatch(_ context.Context, _ layer.WmtsLayer, p Patch) error {
	if s.patchErr != nil {
		return s.patchErr
	}
	s.patches = append(s.patches, p)
	s.events = append(s.events, p.String())
	return nil
}

func (s *recordingStrategy) ZoomIntoView(layer.WmtsLayer) error {
	s.zooms++
	return nil
}

func (s *recordingStrategy) MoveToTop() error {
	s.raises++
	return nil
}

func (s *recordingStrategy) UpdateExaggeration(factor float64) error {
	s.factor = factor
	return nil
}

func wmts(opacity float64) layer.WmtsLayer {
	return layer.WmtsLayer{
		Base:            layer.Base{ID: "roads", Opacity: opacity, IsVisible: true},
		ImagerySettings: layer.ImagerySettings{URL: "https://tiles/roads"},
	}
}

func newTestController(t *testing.T, l layer.WmtsLayer) (*Controller[layer.WmtsLayer], *recordingStrategy, *memory.Scene) {
	t.Helper()
	sc := memory.NewScene()
	s := &recordingStrategy{}
	c, err := NewController(l, Env{Scene: sc}, s)
	require.NoError(t, err)
	return c, s, sc
}

func TestController_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newTestController(t, wmts(1))

	require.NoError(t, c.Add(ctx))
	require.NoError(t, c.Add(ctx))

	assert.Equal(t, 1, s.builds)
	assert.Equal(t, StateInitialized, c.State())
}

func TestController_AddWithoutScene(t *testing.T) {
	c, err := NewController(wmts(1), Env{}, &recordingStrategy{})
	require.NoError(t, err)

	err = c.Add(context.Background())
	assert.True(t, errors.Is(err, ErrNoScene))
	assert.Equal(t, StateUninitialized, c.State())
}

func TestController_AddFailureStaysUninitialized(t *testing.T) {
	c, s, _ := newTestController(t, wmts(1))
	s.buildErr = errors.New("network down")

	err := c.Add(context.Background())
	assert.ErrorContains(t, err, "network down")
	assert.Equal(t, StateUninitialized, c.State())
}

func TestController_IdenticalUpdateIsStable(t *testing.T) {
	ctx := context.Background()
	c, s, sc := newTestController(t, wmts(1))
	require.NoError(t, c.Add(ctx))
	renders := sc.Renders()

	require.NoError(t, c.Update(ctx, wmts(1)))
	require.NoError(t, c.Update(ctx, wmts(1)))

	assert.Equal(t, 1, s.builds)
	assert.Empty(t, s.patches)
	assert.Equal(t, renders, sc.Renders())
	assert.False(t, c.LastReport().Reinit)
}

func TestController_PatchVersusRebuild(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newTestController(t, wmts(1))
	require.NoError(t, c.Add(ctx))

	require.NoError(t, c.Update(ctx, wmts(0.4)))
	assert.Equal(t, 1, s.builds)
	assert.Equal(t, []Patch{Opacity(0.4)}, s.patches)

	next := wmts(0.4)
	next.URL = "https://tiles/other"
	require.NoError(t, c.Update(ctx, next))
	assert.Equal(t, 2, s.builds)
	assert.Len(t, s.patches, 1)
	assert.Equal(t, []string{"url"}, c.LastReport().Changed)
}

func TestController_RebuildAppliesQueuedPatchesAfterBuild(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newTestController(t, wmts(1))
	require.NoError(t, c.Add(ctx))

	next := wmts(0.3)
	next.URL = "https://tiles/other"
	next.IsVisible = false
	require.NoError(t, c.Update(ctx, next))

	report := c.LastReport()
	assert.True(t, report.Reinit)
	assert.Equal(t, []Patch{Opacity(0.3), Visibility(false)}, report.Patches)
	assert.Equal(t, []string{"build", "build", "opacity", "visibility"}, s.events)
}

func TestController_FailedRebuildIsRetried(t *testing.T) {
	ctx := context.Background()
	c, s, sc := newTestController(t, wmts(1))
	require.NoError(t, c.Add(ctx))

	next := wmts(1)
	next.URL = "https://tiles/other"
	s.buildErr = errors.New("network down")
	assert.ErrorContains(t, c.Update(ctx, next), "network down")
	assert.Equal(t, "https://tiles/roads", c.Snapshot().URL)
	assert.Equal(t, StateInitialized, c.State())

	renders := sc.Renders()
	s.buildErr = nil
	require.NoError(t, c.Update(ctx, next))
	assert.Equal(t, 2, s.builds)
	assert.True(t, c.LastReport().Reinit)
	assert.Equal(t, "https://tiles/other", c.Snapshot().URL)
	assert.Greater(t, sc.Renders(), renders)

	require.NoError(t, c.Update(ctx, next))
	assert.Equal(t, 2, s.builds)
}

func TestController_FailedPatchIsRetried(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newTestController(t, wmts(1))
	require.NoError(t, c.Add(ctx))

	s.patchErr = errors.New("primitive destroyed")
	assert.ErrorContains(t, c.Update(ctx, wmts(0.5)), "primitive destroyed")
	assert.Equal(t, 1.0, c.Snapshot().Opacity)

	s.patchErr = nil
	require.NoError(t, c.Update(ctx, wmts(0.5)))
	assert.Equal(t, []Patch{Opacity(0.5)}, s.patches)
	assert.Equal(t, 0.5, c.Snapshot().Opacity)
}

func TestController_UpdateBeforeAddMovesBaseline(t *testing.T) {
	ctx := context.Background()
	c, s, sc := newTestController(t, wmts(1))

	require.NoError(t, c.Update(ctx, wmts(0.2)))
	assert.Equal(t, 0, s.builds)
	assert.Empty(t, s.patches)
	assert.Zero(t, sc.Renders())

	require.NoError(t, c.Add(ctx))
	require.NoError(t, c.Update(ctx, wmts(0.2)))
	assert.Equal(t, 1, s.builds)
	assert.Empty(t, s.patches)
	assert.Equal(t, 0.2, c.Snapshot().Opacity)
}

func TestController_RejectsForeignSnapshots(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestController(t, wmts(1))

	other := wmts(1)
	other.ID = "rivers"
	assert.True(t, errors.Is(c.Update(ctx, other), ErrLayerIDChanged))

	bg := layer.BackgroundLayer{Base: layer.Base{ID: "roads"}}
	assert.True(t, errors.Is(c.Update(ctx, bg), ErrLayerType))
}

func TestController_WatchSetMustStayFixed(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newTestController(t, wmts(1))
	require.NoError(t, c.Add(ctx))

	s.extra = true
	assert.True(t, errors.Is(c.Update(ctx, wmts(1)), ErrWatchMismatch))
}

func TestController_RemoveIsTerminal(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newTestController(t, wmts(1))
	require.NoError(t, c.Add(ctx))
	require.NoError(t, c.Remove(ctx))

	assert.Equal(t, 1, s.removals)
	assert.Equal(t, StateRemoved, c.State())
	assert.True(t, errors.Is(c.Add(ctx), ErrRemoved))
	assert.True(t, errors.Is(c.Update(ctx, wmts(0.5)), ErrRemoved))
	assert.True(t, errors.Is(c.Remove(ctx), ErrRemoved))
	assert.True(t, errors.Is(c.ZoomIntoView(), ErrRemoved))
	assert.True(t, errors.Is(c.MoveToTop(), ErrRemoved))
}

func TestController_NavigationAndExaggeration(t *testing.T) {
	ctx := context.Background()
	c, s, _ := newTestController(t, wmts(1))

	require.NoError(t, c.MoveToTop())
	assert.Zero(t, s.raises)

	require.NoError(t, c.Add(ctx))
	require.NoError(t, c.MoveToTop())
	require.NoError(t, c.ZoomIntoView())
	require.NoError(t, c.UpdateExaggeration(2.5))

	assert.Equal(t, 1, s.raises)
	assert.Equal(t, 1, s.zooms)
	assert.Equal(t, 2.5, s.factor)
	assert.Equal(t, "roads", c.ID())
	assert.Equal(t, layer.TypeWmts, c.Type())
}

var _ LayerController = (*Controller[layer.WmtsLayer])(nil)
