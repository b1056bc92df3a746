//go:build !ios && !android && (amd64 || arm64)

package bindings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLibrarySearchPaths(t *testing.T) {
	paths := LibrarySearchPaths()
	if len(paths) == 0 {
		t.Error("LibrarySearchPaths should return at least one path")
	}
}

func TestFindLibrary(t *testing.T) {
	// PDFium is usually not installed system-wide; just make sure this
	// doesn't panic and reports a typed error.
	path, err := FindLibrary()
	if err != nil {
		if !errors.Is(err, ErrLibraryNotFound) {
			t.Errorf("unexpected error type: %v", err)
		}
		t.Logf("PDFium not found (expected if not installed): %v", err)
		return
	}
	t.Logf("PDFium found at %s", path)
}

func TestLoadBadPath(t *testing.T) {
	if IsLoaded() {
		t.Skip("library already loaded by another test")
	}
	bogus := filepath.Join(t.TempDir(), "no-such-pdfium")
	_, err := Load(bogus)
	if !errors.Is(err, ErrLibraryNotFound) {
		t.Fatalf("Load(%q) error = %v, want ErrLibraryNotFound", bogus, err)
	}
	if IsLoaded() {
		t.Error("IsLoaded should stay false after a failed Load")
	}
}

func TestSymbolBeforeLoad(t *testing.T) {
	if IsLoaded() {
		t.Skip("library already loaded by another test")
	}
	if _, err := Symbol("FPDF_InitLibrary"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Symbol() error = %v, want ErrNotLoaded", err)
	}
}

func TestInitializedFlag(t *testing.T) {
	defer SetInitialized(false)

	SetInitialized(true)
	if !Initialized() {
		t.Error("Initialized should be true after SetInitialized(true)")
	}
	SetInitialized(false)
	if Initialized() {
		t.Error("Initialized should be false after SetInitialized(false)")
	}
}

func TestBuild(t *testing.T) {
	defer SetBuild(0)
	SetBuild(6996)
	if Build() != 6996 {
		t.Errorf("Build() = %d, want 6996", Build())
	}
}

// Integration test - only runs if PDFium is available.
func TestLoadPDFium(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PDFium load test in short mode")
	}
	if _, err := FindLibrary(); err != nil && os.Getenv(EnvLibraryPath) == "" {
		t.Skipf("PDFium not available: %v", err)
	}

	lib, err := Load("")
	if err != nil {
		t.Skipf("PDFium not loadable: %v", err)
	}
	if lib == 0 || !IsLoaded() {
		t.Fatal("Load returned success without a handle")
	}
	if _, err := Symbol("FPDF_InitLibraryWithConfig"); err != nil {
		t.Errorf("FPDF_InitLibraryWithConfig missing: %v", err)
	}
	t.Logf("PDFium loaded from %s", Path())
}
