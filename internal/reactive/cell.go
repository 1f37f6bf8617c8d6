// Package reactive provides the state-cell primitive the application state
// graph is built on: mutable cells with change notification, and derived
// values memoized on per-source version counters.
package reactive

import "sync"

// Source is anything a derivation or watcher can depend on.
type Source interface {
	// Version returns a counter that increases every time the source's
	// value changes.
	Version() uint64
	// OnChange registers a callback invoked after every change. The
	// returned function cancels the registration.
	OnChange(fn func()) func()
}

// Cell is a mutable reactive value.
type Cell[T any] struct {
	value   T
	subs    map[int]func()
	mu      sync.Mutex
	version uint64
	nextSub int
}

// NewCell creates a cell holding the given initial value.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value: initial,
		subs:  make(map[int]func()),
	}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set replaces the value and notifies subscribers.
func (c *Cell[T]) Set(value T) {
	c.mu.Lock()
	c.value = value
	c.version++
	subs := c.snapshotSubs()
	c.mu.Unlock()

	// Callbacks run outside the lock so a subscriber may read or write
	// cells, including this one.
	for _, fn := range subs {
		fn()
	}
}

// Update applies fn to the current value and stores the result.
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	c.value = fn(c.value)
	c.version++
	subs := c.snapshotSubs()
	c.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Version returns the cell's change counter.
func (c *Cell[T]) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// OnChange registers a callback invoked after every Set or Update.
func (c *Cell[T]) OnChange(fn func()) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Cell[T]) snapshotSubs() []func() {
	subs := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	return subs
}
