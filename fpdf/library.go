//go:build !ios && !android && (amd64 || arm64)

package fpdf

import (
	"sync"

	"github.com/obinnaokechukwu/pdfgo/internal/bindings"
	"github.com/obinnaokechukwu/pdfgo/internal/callgate"
)

// lifetime is held for reading by releases in flight and for writing while
// the library is brought up or torn down.
var lifetime sync.RWMutex

// InitLibrary runs FPDF_InitLibraryWithConfig and marks the library
// available for releases.
func InitLibrary() error {
	t := table()
	if t == nil || t.InitLibraryWithConfig == nil {
		return bindings.ErrNotLoaded
	}
	lifetime.Lock()
	defer lifetime.Unlock()
	cfg := &LibraryConfig{Version: 2}
	callgate.Do(func() { t.InitLibraryWithConfig(cfg) })
	bindings.SetInitialized(true)
	return nil
}

// DestroyLibrary runs FPDF_DestroyLibrary. It waits for releases already
// inside WhileInitialized, and the availability flag drops before the
// native teardown, so no release can start against a destroyed library.
func DestroyLibrary() {
	lifetime.Lock()
	defer lifetime.Unlock()
	bindings.SetInitialized(false)
	t := table()
	if t == nil || t.DestroyLibrary == nil {
		return
	}
	callgate.Do(t.DestroyLibrary)
}

// WhileInitialized runs release if the library is initialized and reports
// whether it ran. DestroyLibrary cannot start until release returns, so the
// check and the call form one step. release may use the call gate but must
// not call InitLibrary or DestroyLibrary.
func WhileInitialized(release func()) bool {
	lifetime.RLock()
	defer lifetime.RUnlock()
	if !bindings.Initialized() {
		return false
	}
	release()
	return true
}

// LastError returns FPDF_GetLastError.
func LastError() ErrorCode {
	t := table()
	if t == nil || t.GetLastError == nil {
		return ErrUnknown
	}
	return ErrorCode(callgate.Call(t.GetLastError))
}
