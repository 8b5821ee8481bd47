package kml

import (
	"context"
	"errors"
	"io"
	"testing"

	"layer-manager/core/layer"
	"layer-manager/core/reconcile"
	"layer-manager/core/resolver"
	"layer-manager/core/scene"
	"layer-manager/core/scene/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) LoadTileset(ctx context.Context, res resolver.Resource) (*scene.Tileset, error) {
	args := m.Called(ctx, res)
	return args.Get(0).(*scene.Tileset), args.Error(1)
}

func (m *mockLoader) LoadVoxelProvider(ctx context.Context, res resolver.Resource) (*scene.VoxelProvider, error) {
	args := m.Called(ctx, res)
	return args.Get(0).(*scene.VoxelProvider), args.Error(1)
}

func (m *mockLoader) LoadDataSource(ctx context.Context, kind scene.DataSourceKind, res resolver.Resource, clamp bool) (*scene.DataSource, error) {
	args := m.Called(ctx, kind, res, clamp)
	ds, _ := args.Get(0).(*scene.DataSource)
	return ds, args.Error(1)
}

type urlResolver struct{}

func (urlResolver) Resolve(_ context.Context, src layer.Source) (resolver.Resource, error) {
	return resolver.Resource{URL: src.URL}, nil
}

func (urlResolver) Fetch(context.Context, resolver.Resource) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func boreholes() layer.KmlLayer {
	return layer.KmlLayer{
		Base:   layer.Base{ID: "boreholes", Opacity: 1, IsVisible: true},
		Source: layer.URL("https://data/boreholes.kml"),
	}
}

func TestStrategy_ClampToGroundRebuilds(t *testing.T) {
	ctx := context.Background()
	sc := memory.NewScene()
	loader := &mockLoader{}
	res := resolver.Resource{URL: "https://data/boreholes.kml"}
	first := &scene.DataSource{}
	second := &scene.DataSource{}
	loader.On("LoadDataSource", mock.Anything, scene.DataSourceKML, res, false).Return(first, nil).Once()
	loader.On("LoadDataSource", mock.Anything, scene.DataSourceKML, res, true).Return(second, nil).Once()

	env := reconcile.Env{Scene: sc, Loader: loader, Resolver: urlResolver{}}
	s := NewStrategy(env)
	c, err := reconcile.NewController(boreholes(), env, s)
	require.NoError(t, err)
	require.NoError(t, c.Add(ctx))
	assert.Same(t, first, s.Current())
	assert.Equal(t, "boreholes", first.Name)
	assert.True(t, first.Show)

	next := boreholes()
	next.Opacity = 0.3
	require.NoError(t, c.Update(ctx, next))
	assert.Same(t, first, s.Current())

	next.ClampToGround = true
	require.NoError(t, c.Update(ctx, next))
	assert.Same(t, second, s.Current())
	assert.Equal(t, []*scene.DataSource{second}, sc.DataSourceList().Items())
	loader.AssertExpectations(t)
}

func TestStrategy_LoaderErrorPropagates(t *testing.T) {
	loader := &mockLoader{}
	loader.On("LoadDataSource", mock.Anything, scene.DataSourceKML, mock.Anything, false).Return(nil, errors.New("bad kml"))

	sc := memory.NewScene()
	env := reconcile.Env{Scene: sc, Loader: loader, Resolver: urlResolver{}}
	c, err := reconcile.NewController(boreholes(), env, NewStrategy(env))
	require.NoError(t, err)

	assert.ErrorContains(t, c.Add(context.Background()), "bad kml")
	assert.Zero(t, sc.DataSourceList().Len())
}
