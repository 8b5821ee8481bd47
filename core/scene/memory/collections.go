package memory

import (
	"slices"
	"sync"

	"layer-manager/core/scene"
)

// list is an ordered collection of comparable resources that reports mutations.
type list[T comparable] struct {
	mu       sync.Mutex
	items    []T
	onChange func()
}

func (l *list[T]) add(item T, index int) {
	l.mu.Lock()
	if index < 0 || index >= len(l.items) {
		l.items = append(l.items, item)
	} else {
		l.items = slices.Insert(l.items, index, item)
	}
	l.mu.Unlock()
	l.changed()
}

func (l *list[T]) remove(item T) bool {
	l.mu.Lock()
	i := slices.Index(l.items, item)
	if i < 0 {
		l.mu.Unlock()
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	l.mu.Unlock()
	l.changed()
	return true
}

func (l *list[T]) indexOf(item T) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Index(l.items, item)
}

func (l *list[T]) raiseToTop(item T) {
	l.mu.Lock()
	i := slices.Index(l.items, item)
	if i < 0 || i == len(l.items)-1 {
		l.mu.Unlock()
		return
	}
	l.items = append(slices.Delete(l.items, i, i+1), item)
	l.mu.Unlock()
	l.changed()
}

func (l *list[T]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *list[T]) snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}

// Primitives is the in-memory primitive collection.
type Primitives struct{ list[scene.Primitive] }

func (p *Primitives) Add(prim scene.Primitive, index int) error {
	p.add(prim, index)
	return nil
}

func (p *Primitives) Remove(prim scene.Primitive) error {
	if !p.remove(prim) {
		return scene.ErrNotFound
	}
	prim.Destroy()
	return nil
}

func (p *Primitives) Detach(prim scene.Primitive) error {
	if !p.remove(prim) {
		return scene.ErrNotFound
	}
	return nil
}

func (p *Primitives) IndexOf(prim scene.Primitive) int  { return p.indexOf(prim) }
func (p *Primitives) RaiseToTop(prim scene.Primitive)   { p.raiseToTop(prim) }
func (p *Primitives) Len() int                          { return p.len() }
func (p *Primitives) Items() []scene.Primitive          { return p.snapshot() }

// ImageryLayers is the in-memory imagery stack.
type ImageryLayers struct {
	list[*scene.ImageryLayer]

	// RemoveErr, when set, is returned by the next Remove after the layer was
	// taken out of the stack. It simulates renderer errors raised mid-removal.
	RemoveErr error
}

func (c *ImageryLayers) Add(l *scene.ImageryLayer, index int) error {
	c.add(l, index)
	return nil
}

func (c *ImageryLayers) Remove(l *scene.ImageryLayer) error {
	if !c.remove(l) {
		return scene.ErrNotFound
	}
	if err := c.RemoveErr; err != nil {
		c.RemoveErr = nil
		return err
	}
	return nil
}

func (c *ImageryLayers) IndexOf(l *scene.ImageryLayer) int { return c.indexOf(l) }
func (c *ImageryLayers) RaiseToTop(l *scene.ImageryLayer)  { c.raiseToTop(l) }
func (c *ImageryLayers) Len() int                          { return c.len() }
func (c *ImageryLayers) Items() []*scene.ImageryLayer      { return c.snapshot() }

// DataSources is the in-memory data source collection.
type DataSources struct{ list[*scene.DataSource] }

func (c *DataSources) Add(ds *scene.DataSource) error {
	c.add(ds, -1)
	return nil
}

func (c *DataSources) Remove(ds *scene.DataSource) error {
	if !c.remove(ds) {
		return scene.ErrNotFound
	}
	return nil
}

func (c *DataSources) IndexOf(ds *scene.DataSource) int { return c.indexOf(ds) }
func (c *DataSources) RaiseToTop(ds *scene.DataSource)  { c.raiseToTop(ds) }
func (c *DataSources) Len() int                         { return c.len() }
func (c *DataSources) Items() []*scene.DataSource       { return c.snapshot() }

func (l *list[T]) changed() {
	if l.onChange != nil {
		l.onChange()
	}
}
