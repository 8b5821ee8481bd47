package scene

import (
	"context"
	"errors"

	"layer-manager/core/resolver"

	"github.com/paulmach/orb"
)

// ErrTileDestroyed is returned by the renderer when an imagery layer is removed while
// its tiles are being destroyed. It is a known renderer defect and the only removal
// error the imagery strategy tolerates.
var ErrTileDestroyed = errors.New("imagery tile is already being destroyed")

// ErrNotFound is returned when removing a resource the collection does not hold.
var ErrNotFound = errors.New("resource not found in collection")

// Primitive is a resource held by the primitive collection.
type Primitive interface {
	// Destroy releases the renderer resources of the primitive.
	Destroy()
	// IsDestroyed reports whether Destroy was called.
	IsDestroyed() bool
}

// PrimitiveCollection is the scene's ordered primitive list. Index 0 is drawn first.
type PrimitiveCollection interface {
	// Add inserts p at index, or appends when index is negative or past the end.
	Add(p Primitive, index int) error
	// Remove removes and destroys p.
	Remove(p Primitive) error
	// Detach removes p without destroying it.
	Detach(p Primitive) error
	// IndexOf returns the position of p, or -1.
	IndexOf(p Primitive) int
	// RaiseToTop moves p to the end of the list.
	RaiseToTop(p Primitive)
	Len() int
}

// ImageryLayerCollection is the scene's ordered imagery stack. Index 0 is the bottom.
type ImageryLayerCollection interface {
	Add(l *ImageryLayer, index int) error
	Remove(l *ImageryLayer) error
	IndexOf(l *ImageryLayer) int
	RaiseToTop(l *ImageryLayer)
	Len() int
}

// DataSourceCollection holds the vector data sources of the scene.
type DataSourceCollection interface {
	Add(ds *DataSource) error
	Remove(ds *DataSource) error
	IndexOf(ds *DataSource) int
	RaiseToTop(ds *DataSource)
	Len() int
}

// Camera moves the view.
type Camera interface {
	FlyTo(bound orb.Bound)
}

// Scene is the capability surface of the 3D viewer.
type Scene interface {
	Primitives() PrimitiveCollection
	ImageryLayers() ImageryLayerCollection
	DataSources() DataSourceCollection
	Camera() Camera
	Picking() *PickService
	RequestRender()
}

// DataSourceKind selects the parser a loader uses for a data source.
type DataSourceKind string

const (
	DataSourceKML  DataSourceKind = "kml"
	DataSourceCZML DataSourceKind = "czml"
)

// Loader builds renderer resources from resolved resources.
type Loader interface {
	LoadTileset(ctx context.Context, res resolver.Resource) (*Tileset, error)
	LoadVoxelProvider(ctx context.Context, res resolver.Resource) (*VoxelProvider, error)
	LoadDataSource(ctx context.Context, kind DataSourceKind, res resolver.Resource, clampToGround bool) (*DataSource, error)
}
