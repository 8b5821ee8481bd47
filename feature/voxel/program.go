package voxel

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"

	"layer-manager/core/scene"

	"golang.org/x/sync/singleflight"
)

// ProgramCache shares compiled programs between shaders with identical source.
type ProgramCache struct {
	mu       sync.RWMutex
	programs map[string]*scene.ShaderProgram
	sf       singleflight.Group
	compiles atomic.Int64
}

// NewProgramCache returns an empty cache. Tests use their own to count compiles.
func NewProgramCache() *ProgramCache {
	return &ProgramCache{programs: make(map[string]*scene.ShaderProgram)}
}

// Programs is the process-wide program cache.
var Programs = NewProgramCache()

// Get returns the program for source, compiling it on first use. Concurrent callers
// with the same source wait for a single compilation.
func (c *ProgramCache) Get(source string) *scene.ShaderProgram {
	id := programID(source)

	c.mu.RLock()
	p, ok := c.programs[id]
	c.mu.RUnlock()
	if ok {
		return p
	}

	v, _, _ := c.sf.Do(id, func() (interface{}, error) {
		c.mu.RLock()
		p, ok := c.programs[id]
		c.mu.RUnlock()
		if ok {
			return p, nil
		}

		p = &scene.ShaderProgram{ID: id, Source: source}
		c.compiles.Add(1)

		c.mu.Lock()
		c.programs[id] = p
		c.mu.Unlock()
		return p, nil
	})
	return v.(*scene.ShaderProgram)
}

// Compiles returns how many programs were compiled.
func (c *ProgramCache) Compiles() int64 { return c.compiles.Load() }

// Len returns the number of cached programs.
func (c *ProgramCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

func programID(source string) string {
	sum := sha256.Sum256([]byte(source))
	return "voxel-" + hex.EncodeToString(sum[:8])
}
