package property

import "fmt"

// Derived is a read-only value recomputed whenever a dependency changes.
// It has no Set; the only writer is its compute func.
type Derived[T comparable] struct {
	prop    *Property[T]
	compute func() T
	deps    []Dependency
	subs    []ListenerID
}

// NewDerived evaluates compute once and subscribes to every dependency.
// Dependencies are linked in argument order, so derived values built
// earlier on the same source recompute earlier.
func NewDerived[T comparable](name string, compute func() T, deps ...Dependency) *Derived[T] {
	d := &Derived[T]{
		prop:    &Property[T]{name: name},
		compute: compute,
		deps:    deps,
	}
	v := compute()
	d.prop.value = v
	d.prop.initial = v

	for _, dep := range deps {
		d.subs = append(d.subs, dep.Subscribe(d.onDependencyChanged))
	}
	return d
}

// onDependencyChanged has no caller to report to, so a reentrant update
// is a programming error and fails fast.
func (d *Derived[T]) onDependencyChanged() {
	if err := d.Recompute(); err != nil {
		panic(fmt.Sprintf("derived %q: %v", d.prop.name, err))
	}
}

// Recompute re-evaluates the compute func and notifies on change.
func (d *Derived[T]) Recompute() error {
	return d.prop.set(d.compute())
}

// Dispose unlinks from all dependencies. The value is frozen afterwards.
func (d *Derived[T]) Dispose() {
	for i, dep := range d.deps {
		dep.Unlink(d.subs[i])
	}
	d.deps = nil
	d.subs = nil
}

func (d *Derived[T]) Name() string                       { return d.prop.name }
func (d *Derived[T]) Get() T                             { return d.prop.value }
func (d *Derived[T]) Link(fn Observer[T]) ListenerID     { return d.prop.Link(fn) }
func (d *Derived[T]) LazyLink(fn Observer[T]) ListenerID { return d.prop.LazyLink(fn) }
func (d *Derived[T]) Subscribe(fn func()) ListenerID     { return d.prop.Subscribe(fn) }
func (d *Derived[T]) Unlink(id ListenerID) bool          { return d.prop.Unlink(id) }
