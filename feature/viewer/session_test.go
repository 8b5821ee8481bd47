package viewer

import (
	"context"
	"errors"
	"io"
	"testing"

	"layer-manager/core/layer"
	"layer-manager/core/reconcile"
	"layer-manager/core/resolver"
	"layer-manager/core/scene/memory"
	"layer-manager/feature/voxel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type urlResolver struct{}

func (urlResolver) Resolve(_ context.Context, src layer.Source) (resolver.Resource, error) {
	if src.Kind == layer.SourceURL {
		return resolver.Resource{URL: src.URL}, nil
	}
	return resolver.Resource{URL: "https://data/" + src.CacheKey()}, nil
}

func (urlResolver) Fetch(context.Context, resolver.Resource) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func newTestSession() (*Session, *memory.Scene, *memory.Loader) {
	sc := memory.NewScene()
	ld := memory.NewLoader()
	env := reconcile.Env{Scene: sc, Loader: ld, Resolver: urlResolver{}, Logger: zap.NewNop()}
	return NewSession(env, voxel.NewProgramCache()), sc, ld
}

func wmts(id string) layer.WmtsLayer {
	return layer.WmtsLayer{
		Base:            layer.Base{ID: id, Opacity: 1, IsVisible: true},
		ImagerySettings: layer.ImagerySettings{URL: "https://wmts/" + id, Format: "png"},
	}
}

func tiles(id string) layer.Tiles3dLayer {
	return layer.Tiles3dLayer{
		Base:   layer.Base{ID: id, Opacity: 1, IsVisible: true},
		Source: layer.URL("https://tiles/" + id + "/tileset.json"),
	}
}

func kmlLayer(id string) layer.KmlLayer {
	return layer.KmlLayer{
		Base:   layer.Base{ID: id, Opacity: 1, IsVisible: true},
		Source: layer.URL("https://kml/" + id + ".kml"),
	}
}

func imageryURLs(sc *memory.Scene) []string {
	var urls []string
	for _, l := range sc.ImageryList().Items() {
		urls = append(urls, l.Provider.URL)
	}
	return urls
}

func TestNewController_EveryType(t *testing.T) {
	env := reconcile.Env{Scene: memory.NewScene(), Loader: memory.NewLoader(), Resolver: urlResolver{}}
	for _, typ := range layer.Types {
		l, err := layer.New(typ)
		require.NoError(t, err)
		ctrl, err := NewController(l, env, voxel.NewProgramCache())
		require.NoError(t, err, typ)
		assert.Equal(t, typ, ctrl.Type())
	}
}

func TestSession_SyncAddsUpdatesRemoves(t *testing.T) {
	ctx := context.Background()
	s, sc, _ := newTestSession()

	report, err := s.Sync(ctx, []layer.Layer{wmts("a"), wmts("b"), tiles("t")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "t"}, report.Added)
	assert.Equal(t, []string{"a", "b", "t"}, s.Order())
	// Imagery is stacked bottom first.
	assert.Equal(t, []string{"https://wmts/b", "https://wmts/a"}, imageryURLs(sc))
	assert.Equal(t, 1, sc.PrimitiveList().Len())

	faded := wmts("a")
	faded.Opacity = 0.3
	report, err = s.Sync(ctx, []layer.Layer{faded, wmts("b")})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, report.Updated)
	assert.Equal(t, []string{"t"}, report.Removed)
	assert.Empty(t, report.Added)
	assert.Equal(t, 0, sc.PrimitiveList().Len())
	assert.InDelta(t, 0.3, sc.ImageryList().Items()[1].Alpha, 1e-9)
}

func TestSession_SyncKeepsStackWhenOrderUnchanged(t *testing.T) {
	ctx := context.Background()
	s, sc, _ := newTestSession()

	_, err := s.Sync(ctx, []layer.Layer{wmts("a"), wmts("b")})
	require.NoError(t, err)
	before := sc.Mutations()

	_, err = s.Sync(ctx, []layer.Layer{wmts("a"), wmts("b")})
	require.NoError(t, err)
	assert.Equal(t, before, sc.Mutations())
}

func TestSession_SyncReorders(t *testing.T) {
	ctx := context.Background()
	s, sc, _ := newTestSession()

	_, err := s.Sync(ctx, []layer.Layer{wmts("a"), wmts("b"), wmts("c")})
	require.NoError(t, err)

	_, err = s.Sync(ctx, []layer.Layer{wmts("c"), wmts("a"), wmts("b")})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://wmts/b", "https://wmts/a", "https://wmts/c"}, imageryURLs(sc))
}

func TestSession_SyncReportsFailuresAndContinues(t *testing.T) {
	ctx := context.Background()
	s, sc, ld := newTestSession()
	ld.Fail["https://tiles/broken/tileset.json"] = errors.New("404")

	report, err := s.Sync(ctx, []layer.Layer{wmts("a"), tiles("broken"), kmlLayer("k")})
	require.Error(t, err)
	assert.Contains(t, report.Failed, "broken")
	assert.ElementsMatch(t, []string{"a", "k"}, report.Added)
	assert.Equal(t, []string{"a", "k"}, s.Order())
	assert.Equal(t, 0, sc.PrimitiveList().Len())
	assert.Equal(t, 1, sc.DataSourceList().Len())
}

func TestSession_FailedUpdateKeepsAppliedLayer(t *testing.T) {
	ctx := context.Background()
	s, sc, ld := newTestSession()
	_, err := s.Sync(ctx, []layer.Layer{tiles("t")})
	require.NoError(t, err)

	moved := tiles("t")
	moved.Source = layer.URL("https://tiles/moved/tileset.json")
	ld.Fail["https://tiles/moved/tileset.json"] = errors.New("timeout")

	report, err := s.Sync(ctx, []layer.Layer{moved})
	require.Error(t, err)
	assert.Contains(t, report.Failed, "t")
	assert.Equal(t, []string{"t"}, s.Order())
	current, ok := s.Layer("t")
	require.True(t, ok)
	assert.Equal(t, "https://tiles/t/tileset.json", current.(layer.Tiles3dLayer).Source.URL)

	delete(ld.Fail, "https://tiles/moved/tileset.json")
	report, err = s.Sync(ctx, []layer.Layer{moved})
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, report.Updated)
	current, _ = s.Layer("t")
	assert.Equal(t, "https://tiles/moved/tileset.json", current.(layer.Tiles3dLayer).Source.URL)
	assert.Equal(t, 1, sc.PrimitiveList().Len())
}

func TestSession_SyncRejectsInvalidAndDuplicateLayers(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestSession()

	invalid := wmts("bad")
	invalid.Opacity = 2
	report, err := s.Sync(ctx, []layer.Layer{wmts("a"), wmts("a"), invalid})
	require.Error(t, err)
	assert.True(t, errors.Is(err, layer.ErrConfiguration))
	assert.Len(t, report.Failed, 2)
	assert.Equal(t, []string{"a"}, s.Order())
}

func TestSession_TypeChangeReplacesController(t *testing.T) {
	ctx := context.Background()
	s, sc, _ := newTestSession()

	_, err := s.Sync(ctx, []layer.Layer{wmts("x")})
	require.NoError(t, err)

	report, err := s.Sync(ctx, []layer.Layer{kmlLayer("x")})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, report.Added)
	assert.Equal(t, 0, sc.ImageryList().Len())
	assert.Equal(t, 1, sc.DataSourceList().Len())

	l, ok := s.Layer("x")
	require.True(t, ok)
	assert.Equal(t, layer.TypeKml, l.Type())
}

func TestSession_UpsertRemoveAndTop(t *testing.T) {
	ctx := context.Background()
	s, sc, _ := newTestSession()

	added, err := s.Upsert(ctx, wmts("a"))
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.Upsert(ctx, wmts("b"))
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"b", "a"}, s.Order())

	require.NoError(t, s.MoveToTop("a"))
	assert.Equal(t, []string{"a", "b"}, s.Order())
	assert.Equal(t, []string{"https://wmts/b", "https://wmts/a"}, imageryURLs(sc))

	added, err = s.Upsert(ctx, wmts("a"))
	require.NoError(t, err)
	assert.False(t, added)

	require.NoError(t, s.Remove(ctx, "a"))
	assert.Equal(t, []string{"b"}, s.Order())
	assert.True(t, errors.Is(s.Remove(ctx, "a"), ErrUnknownLayer))
	assert.True(t, errors.Is(s.MoveToTop("a"), ErrUnknownLayer))
	assert.True(t, errors.Is(s.ZoomIntoView("a"), ErrUnknownLayer))
}

func TestSession_SetExaggeration(t *testing.T) {
	ctx := context.Background()
	s, _, ld := newTestSession()

	_, err := s.Sync(ctx, []layer.Layer{tiles("t")})
	require.NoError(t, err)

	require.NoError(t, s.SetExaggeration(2.5))
	assert.Equal(t, 2.5, s.Exaggeration())
	require.Len(t, ld.Tilesets(), 1)
	assert.Equal(t, 2.5, ld.Tilesets()[0].Exaggeration)

	_, err = s.Upsert(ctx, tiles("u"))
	require.NoError(t, err)
	assert.Equal(t, 2.5, ld.Tilesets()[1].Exaggeration)

	assert.True(t, errors.Is(s.SetExaggeration(0), layer.ErrConfiguration))
}

func TestSession_Close(t *testing.T) {
	ctx := context.Background()
	s, sc, _ := newTestSession()

	_, err := s.Sync(ctx, []layer.Layer{wmts("a"), tiles("t"), kmlLayer("k")})
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))
	assert.Empty(t, s.Order())
	assert.Equal(t, 0, sc.ImageryList().Len())
	assert.Equal(t, 0, sc.PrimitiveList().Len())
	assert.Equal(t, 0, sc.DataSourceList().Len())
}
