package reactive

import "sync"

// Derived is a value computed from explicit upstream sources. The compute
// function runs lazily: a Get recomputes only when some upstream version
// counter moved since the last computation. Change notification is pushed
// through without recomputing, so downstream watchers decide when to pull.
type Derived[T any] struct {
	compute func() T
	cached  T
	deps    []Source
	seen    []uint64
	subs    map[int]func()
	mu      sync.Mutex
	version uint64
	valid   bool
	nextSub int
}

// Derive creates a derived value over the given sources. Every source the
// compute function reads must be listed; unlisted sources will not
// invalidate the memoized value.
func Derive[T any](compute func() T, deps ...Source) *Derived[T] {
	d := &Derived[T]{
		compute: compute,
		deps:    deps,
		seen:    make([]uint64, len(deps)),
		subs:    make(map[int]func()),
	}
	for _, dep := range deps {
		dep.OnChange(d.invalidate)
	}
	return d
}

// Get returns the derived value, recomputing it if any dependency changed.
func (d *Derived[T]) Get() T {
	d.refresh()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cached
}

// Version returns a counter that increases whenever a recomputation
// produced a value. Stale dependencies are refreshed first, so chained
// derivations observe consistent versions.
func (d *Derived[T]) Version() uint64 {
	d.refresh()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

// OnChange registers a callback invoked whenever any dependency changes.
func (d *Derived[T]) OnChange(fn func()) func() {
	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

func (d *Derived[T]) refresh() {
	d.mu.Lock()
	stale := !d.valid
	for i, dep := range d.deps {
		// Reading dependency versions may itself refresh a chained
		// Derived, so drop the lock around it.
		d.mu.Unlock()
		v := dep.Version()
		d.mu.Lock()
		if v != d.seen[i] {
			d.seen[i] = v
			stale = true
		}
	}
	if !stale {
		d.mu.Unlock()
		return
	}
	compute := d.compute
	d.mu.Unlock()

	// Compute outside the lock: the function reads upstream cells.
	value := compute()

	d.mu.Lock()
	d.cached = value
	d.valid = true
	d.version++
	d.mu.Unlock()
}

func (d *Derived[T]) invalidate() {
	d.mu.Lock()
	subs := make([]func(), 0, len(d.subs))
	for _, fn := range d.subs {
		subs = append(subs, fn)
	}
	d.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
