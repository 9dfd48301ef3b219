// Package observer implements the weak, non-owning reference used to
// expose a Process's parent-side pipe endpoints: a handle must report
// itself expired once the owning Process has closed that side, without
// the handle itself keeping the endpoint alive or blocking its close.
package observer

import "sync"

// Cell is the owner-side slot an observer.Handle watches. The owner
// calls Clear when it closes the underlying resource.
type Cell[T any] struct {
	mu      sync.RWMutex
	value   T
	expired bool
}

// NewCell wraps an initial value in a fresh, non-expired Cell.
func NewCell[T any](value T) *Cell[T] {
	return &Cell[T]{value: value}
}

// Clear marks the cell expired; subsequent Handle.Get calls report it.
func (c *Cell[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expired = true
}

// Handle returns a weak, read-only view of this cell.
func (c *Cell[T]) Handle() Handle[T] {
	return Handle[T]{cell: c}
}

// Handle is a non-owning lookup handle over a Cell.
type Handle[T any] struct {
	cell *Cell[T]
}

// Get returns the current value and whether it is still live. When
// the owner has cleared the cell (or the Handle is the zero value),
// ok is false and value is the zero value of T.
func (h Handle[T]) Get() (value T, ok bool) {
	if h.cell == nil {
		return value, false
	}
	h.cell.mu.RLock()
	defer h.cell.mu.RUnlock()
	if h.cell.expired {
		return value, false
	}
	return h.cell.value, true
}
