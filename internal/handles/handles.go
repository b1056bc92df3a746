// Package handles maps Go values to integer handles that can be stored in
// native memory.
//
// PDFium calls back into Go for custom file access and for saving. The
// callback receives a pointer-sized "param" chosen by us; Go pointers must
// not be stored there, so the param is a handle from a Map instead.
package handles

import "sync"

// Map is a concurrency-safe handle table for values of type T.
// Handles start at 1 and are never reused, so 0 always means "none".
type Map[T any] struct {
	mu     sync.RWMutex
	values map[uintptr]T
	next   uintptr
}

// New returns an empty Map.
func New[T any]() *Map[T] {
	return &Map[T]{values: make(map[uintptr]T), next: 1}
}

// Register stores v and returns its handle. v stays reachable until
// Unregister is called with the handle.
func (m *Map[T]) Register(v T) uintptr {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.next
	m.next++
	m.values[h] = v
	return h
}

// Lookup returns the value for h, if registered.
func (m *Map[T]) Lookup(h uintptr) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[h]
	return v, ok
}

// Unregister removes h. Unknown handles are ignored.
func (m *Map[T]) Unregister(h uintptr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, h)
}

// Count returns the number of registered handles. Tests use it to check
// that callbacks were unregistered when their document closed.
func (m *Map[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
