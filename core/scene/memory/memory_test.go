package memory

import (
	"context"
	"errors"
	"testing"

	"layer-manager/core/resolver"
	"layer-manager/core/scene"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitives_OrderAndDestroy(t *testing.T) {
	sc := NewScene()
	prims := sc.PrimitiveList()

	a := &scene.Tileset{Resource: resolver.Resource{URL: "a"}}
	b := &scene.Tileset{Resource: resolver.Resource{URL: "b"}}
	c := &scene.Tileset{Resource: resolver.Resource{URL: "c"}}
	require.NoError(t, prims.Add(a, -1))
	require.NoError(t, prims.Add(b, -1))
	require.NoError(t, prims.Add(c, 1))
	assert.Equal(t, []scene.Primitive{a, c, b}, prims.Items())
	assert.Equal(t, 1, prims.IndexOf(c))

	prims.RaiseToTop(a)
	assert.Equal(t, []scene.Primitive{c, b, a}, prims.Items())

	require.NoError(t, prims.Remove(c))
	assert.True(t, c.IsDestroyed())
	require.NoError(t, prims.Detach(b))
	assert.False(t, b.IsDestroyed())
	assert.True(t, errors.Is(prims.Remove(c), scene.ErrNotFound))
	assert.Equal(t, 1, prims.Len())
	assert.Equal(t, int64(6), sc.Mutations())
}

func TestPrimitives_RaiseTopIsNoop(t *testing.T) {
	sc := NewScene()
	a := &scene.Tileset{}
	require.NoError(t, sc.PrimitiveList().Add(a, -1))
	before := sc.Mutations()
	sc.PrimitiveList().RaiseToTop(a)
	sc.PrimitiveList().RaiseToTop(&scene.Tileset{})
	assert.Equal(t, before, sc.Mutations())
}

func TestImageryLayers_RemoveErr(t *testing.T) {
	sc := NewScene()
	stack := sc.ImageryList()
	l := &scene.ImageryLayer{Provider: &scene.ImageryProvider{URL: "x"}}
	require.NoError(t, stack.Add(l, 0))

	stack.RemoveErr = scene.ErrTileDestroyed
	err := stack.Remove(l)
	assert.True(t, errors.Is(err, scene.ErrTileDestroyed))
	assert.Equal(t, 0, stack.Len())
	assert.Nil(t, stack.RemoveErr)
}

func TestScene_SnapshotAndCamera(t *testing.T) {
	sc := NewScene()
	require.NoError(t, sc.PrimitiveList().Add(&scene.Tileset{Resource: resolver.Resource{URL: "tiles"}, Show: true}, -1))
	require.NoError(t, sc.ImageryList().Add(&scene.ImageryLayer{Provider: &scene.ImageryProvider{URL: "wmts"}, Alpha: 0.5, Pickable: true}, -1))
	require.NoError(t, sc.DataSourceList().Add(&scene.DataSource{Name: "kml", Show: true}))
	release := sc.Picking().Acquire()
	sc.RequestRender()

	bound := orb.Bound{Min: orb.Point{5, 45}, Max: orb.Point{11, 48}}
	sc.Camera().FlyTo(bound)
	assert.Equal(t, bound, sc.CameraState().Target)
	assert.Equal(t, 1, sc.CameraState().Flights)

	snap := sc.Snapshot()
	require.Len(t, snap.Primitives, 1)
	assert.Equal(t, "tileset", snap.Primitives[0].Kind)
	assert.Equal(t, "tiles", snap.Primitives[0].URL)
	assert.Equal(t, []ImageryInfo{{URL: "wmts", Alpha: 0.5, Pickable: true}}, snap.Imagery)
	assert.Equal(t, []DataSourceInfo{{Name: "kml", Show: true}}, snap.DataSources)
	assert.True(t, snap.PickLocked)
	assert.Equal(t, int64(3), snap.Mutations)
	assert.Equal(t, int64(1), snap.Renders)

	release()
	assert.False(t, sc.Snapshot().PickLocked)
}

func TestLoader(t *testing.T) {
	ctx := context.Background()
	ld := NewLoader()
	ld.VoxelProperties["voxels"] = []string{"lithology"}
	ld.Fail["broken"] = errors.New("404")

	ts, err := ld.LoadTileset(ctx, resolver.Resource{URL: "tiles"})
	require.NoError(t, err)
	assert.True(t, ts.Show)
	assert.Equal(t, 1.0, ts.Exaggeration)
	assert.Equal(t, []*scene.Tileset{ts}, ld.Tilesets())

	provider, err := ld.LoadVoxelProvider(ctx, resolver.Resource{URL: "voxels"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lithology"}, provider.Properties)

	ds, err := ld.LoadDataSource(ctx, scene.DataSourceKML, resolver.Resource{URL: "doc.kml"}, true)
	require.NoError(t, err)
	assert.Equal(t, "doc.kml", ds.Name)

	_, err = ld.LoadTileset(ctx, resolver.Resource{URL: "broken"})
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = ld.LoadVoxelProvider(cancelled, resolver.Resource{URL: "voxels"})
	assert.True(t, errors.Is(err, context.Canceled))
}
