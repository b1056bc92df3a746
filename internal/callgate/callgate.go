// Package callgate serializes every call into the native PDF library.
//
// PDFium is not thread-safe: no two calls may be in flight at once, from any
// goroutine. All bindings in fpdf run their native call inside Do or Call.
//
// The gate is not reentrant. A function running under the gate must not call
// back into a gated binding (for example from a file-access callback), or it
// deadlocks.
package callgate

import (
	"sync"
	"sync/atomic"
)

var (
	mu    sync.Mutex
	calls atomic.Uint64
)

// Do runs fn with exclusive access to the native library.
func Do(fn func()) {
	mu.Lock()
	defer mu.Unlock()
	calls.Add(1)
	fn()
}

// Call runs fn with exclusive access to the native library and returns its
// result.
func Call[T any](fn func() T) T {
	mu.Lock()
	defer mu.Unlock()
	calls.Add(1)
	return fn()
}

// Call2 is Call for native functions that fill an out-parameter as well as
// returning a status.
func Call2[T, U any](fn func() (T, U)) (T, U) {
	mu.Lock()
	defer mu.Unlock()
	calls.Add(1)
	return fn()
}

// Calls returns the number of gated calls made so far.
func Calls() uint64 {
	return calls.Load()
}

// TryHeld reports whether the gate is currently held by someone. It is only
// meant for tests and diagnostics; the answer is stale as soon as it returns.
func TryHeld() bool {
	if mu.TryLock() {
		mu.Unlock()
		return false
	}
	return true
}
