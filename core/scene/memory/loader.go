package memory

import (
	"context"
	"fmt"
	"sync"

	"layer-manager/core/resolver"
	"layer-manager/core/scene"
)

// Loader builds resources without a renderer. Voxel providers expose the properties
// configured for their URL; tilesets start with an empty load queue.
type Loader struct {
	mu sync.Mutex

	// VoxelProperties maps a resource URL to the properties of its voxel cells.
	VoxelProperties map[string][]string
	// Fail maps a resource URL to a load error.
	Fail map[string]error

	tilesets []*scene.Tileset
}

// NewLoader returns an empty loader.
func NewLoader() *Loader {
	return &Loader{
		VoxelProperties: make(map[string][]string),
		Fail:            make(map[string]error),
	}
}

func (l *Loader) failure(url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Fail[url]
}

// LoadTileset returns a tileset for res, or the error registered in Fail for its URL.
func (l *Loader) LoadTileset(ctx context.Context, res resolver.Resource) (*scene.Tileset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := l.failure(res.URL); err != nil {
		return nil, fmt.Errorf("failed to load tileset %s: %w", res.URL, err)
	}
	ts := &scene.Tileset{Resource: res, Show: true, Exaggeration: 1}
	l.mu.Lock()
	l.tilesets = append(l.tilesets, ts)
	l.mu.Unlock()
	return ts, nil
}

func (l *Loader) LoadVoxelProvider(ctx context.Context, res resolver.Resource) (*scene.VoxelProvider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := l.failure(res.URL); err != nil {
		return nil, fmt.Errorf("failed to load voxel provider %s: %w", res.URL, err)
	}
	l.mu.Lock()
	props := l.VoxelProperties[res.URL]
	l.mu.Unlock()
	return &scene.VoxelProvider{Resource: res, Properties: props}, nil
}

// LoadDataSource returns a data source of kind with no entities.
func (l *Loader) LoadDataSource(ctx context.Context, kind scene.DataSourceKind, res resolver.Resource, clampToGround bool) (*scene.DataSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := l.failure(res.URL); err != nil {
		return nil, fmt.Errorf("failed to load %s data source %s: %w", kind, res.URL, err)
	}
	return &scene.DataSource{Name: res.URL, Show: true}, nil
}

// Tilesets returns every tileset loaded so far, oldest first.
func (l *Loader) Tilesets() []*scene.Tileset {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*scene.Tileset, len(l.tilesets))
	copy(out, l.tilesets)
	return out
}
