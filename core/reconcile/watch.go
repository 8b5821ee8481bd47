package reconcile

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
)

// ErrWatchMismatch is returned when a strategy registers a different set of watched
// fields than on the first pass. The set must stay fixed for the life of a controller.
var ErrWatchMismatch = errors.New("watched field set changed between updates")

// Diff is the outcome of one diff pass.
type Diff struct {
	// Changed lists the names of the watched fields whose value changed.
	Changed []string
	// Reinit is true when a changed field had no patch and the resource must be rebuilt.
	Reinit bool
	// Patches lists the patches of the changed fields, in registration order. With
	// Reinit they are applied to the rebuilt resource.
	Patches []Patch
}

// Empty reports whether nothing changed.
func (d Diff) Empty() bool {
	return !d.Reinit && len(d.Patches) == 0
}

type watched struct {
	value   any
	patches []Patch
}

// Watcher records the fields a strategy depends on for one layer snapshot and
// compares them against the previous snapshot.
type Watcher struct {
	order  []string
	fields map[string]watched
	err    error
}

func newWatcher() *Watcher {
	return &Watcher{fields: make(map[string]watched)}
}

// Watch registers a field. When its value differs from the previous pass the given
// patches are collected; a changed field without patches forces a rebuild.
func (w *Watcher) Watch(name string, value any, patches ...Patch) {
	if _, dup := w.fields[name]; dup {
		if w.err == nil {
			w.err = fmt.Errorf("%w: field %q watched twice", ErrWatchMismatch, name)
		}
		return
	}
	w.order = append(w.order, name)
	w.fields[name] = watched{value: value, patches: patches}
}

// Names returns the watched field names in registration order.
func (w *Watcher) Names() []string {
	return slices.Clone(w.order)
}

// diff compares next against prev. A nil prev means the first pass; the resource is
// built from scratch and nothing is reported.
func diff(prev, next *Watcher) (Diff, error) {
	if next.err != nil {
		return Diff{}, next.err
	}
	if prev == nil {
		return Diff{}, nil
	}
	if len(prev.order) != len(next.order) {
		return Diff{}, fmt.Errorf("%w: %v became %v", ErrWatchMismatch, prev.order, next.order)
	}

	var d Diff
	for _, name := range next.order {
		old, ok := prev.fields[name]
		if !ok {
			return Diff{}, fmt.Errorf("%w: new field %q", ErrWatchMismatch, name)
		}
		cur := next.fields[name]
		if equal(old.value, cur.value) {
			continue
		}
		d.Changed = append(d.Changed, name)
		if len(cur.patches) == 0 {
			d.Reinit = true
			continue
		}
		d.Patches = append(d.Patches, cur.patches...)
	}
	return d, nil
}

// equal compares two watched values. Slices and arrays of the same length are
// compared element by element, slices of different length are always different.
// Comparable values use ==, anything else falls back to deep equality.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	return equalValue(va, vb)
}

func equalValue(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.Slice, reflect.Array:
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !equalValue(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	}
	if a.Type().Comparable() && a.CanInterface() && b.CanInterface() {
		return safeEqual(a.Interface(), b.Interface())
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}

// safeEqual uses == and falls back to deep equality when the dynamic value is not
// comparable, e.g. an interface holding a slice.
func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = reflect.DeepEqual(a, b)
		}
	}()
	return a == b
}
