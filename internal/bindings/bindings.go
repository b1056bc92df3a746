//go:build !ios && !android && (amd64 || arm64)

// Package bindings locates and opens the PDFium shared library and tracks the
// process-wide state that every binding depends on: whether the library is
// loaded, whether FPDF_InitLibrary has run, and which PDFium build is in use.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/pdfgo/internal/platform"
)

// EnvLibraryPath names a PDFium library file, or a directory containing
// one, that is tried before the system search paths.
const EnvLibraryPath = "PDFGO_LIBRARY_PATH"

// ErrNotLoaded is returned when PDFium functions are called before Init.
var ErrNotLoaded = errors.New("pdfgo: PDFium not loaded; call pdfgo.Init() first")

// ErrLibraryNotFound is returned when the PDFium library cannot be found.
var ErrLibraryNotFound = errors.New("pdfgo: PDFium library not found")

const libraryName = "pdfium"

var (
	loadMu  sync.Mutex
	libPDF  uintptr
	libPath string

	initialized atomic.Bool
	build       atomic.Int64
)

// IsLoaded returns true if the PDFium library has been opened.
func IsLoaded() bool {
	loadMu.Lock()
	defer loadMu.Unlock()
	return libPDF != 0
}

// Load opens PDFium and returns its handle. path may name the library file
// or a directory; when empty, EnvLibraryPath and then the platform search
// paths are tried. Once a library is open, later calls return it unchanged
// whatever path they pass.
func Load(path string) (uintptr, error) {
	loadMu.Lock()
	defer loadMu.Unlock()

	if libPDF != 0 {
		return libPDF, nil
	}

	var candidates []string
	if path != "" {
		candidates = append(candidates, expand(path)...)
	} else if env := os.Getenv(EnvLibraryPath); env != "" {
		candidates = append(candidates, expand(env)...)
	}
	for _, dir := range LibrarySearchPaths() {
		candidates = append(candidates, filepath.Join(dir, platform.FormatLibraryName(libraryName, 0)))
	}
	// Let the dynamic loader search on its own last.
	candidates = append(candidates, platform.FormatLibraryName(libraryName, 0))

	var errs []error
	for _, c := range candidates {
		lib, err := tryOpen(c)
		if err == nil {
			libPDF, libPath = lib, c
			return lib, nil
		}
		if path != "" {
			errs = append(errs, fmt.Errorf("%s: %w", c, err))
		}
	}
	if path != "" {
		return 0, fmt.Errorf("%w: %w", ErrLibraryNotFound, errors.Join(errs...))
	}
	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, platform.FormatLibraryName(libraryName, 0))
}

// expand turns a file-or-directory setting into library paths to try.
func expand(p string) []string {
	if fi, err := os.Stat(p); err == nil && fi.IsDir() {
		return []string{filepath.Join(p, platform.FormatLibraryName(libraryName, 0))}
	}
	return []string{p}
}

// tryOpen opens a library with RTLD_NOW | RTLD_GLOBAL. Symbols are resolved
// eagerly so a broken build fails at Init, not at the first render.
func tryOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// Lib returns the PDFium library handle, or 0 when not loaded.
func Lib() uintptr {
	loadMu.Lock()
	defer loadMu.Unlock()
	return libPDF
}

// Path returns the path the library was opened from.
func Path() string {
	loadMu.Lock()
	defer loadMu.Unlock()
	return libPath
}

// Symbol looks up an optional symbol. It returns 0 and an error when the
// symbol is missing from this PDFium build.
func Symbol(name string) (uintptr, error) {
	lib := Lib()
	if lib == 0 {
		return 0, ErrNotLoaded
	}
	return purego.Dlsym(lib, name)
}

// FindLibrary searches for PDFium and returns its full path.
// This is useful for diagnostics.
func FindLibrary() (string, error) {
	var dirs []string
	if env := os.Getenv(EnvLibraryPath); env != "" {
		for _, c := range expand(env) {
			if _, err := os.Stat(c); err == nil {
				return c, nil
			}
		}
	}
	dirs = append(dirs, LibrarySearchPaths()...)
	for _, dir := range dirs {
		full := filepath.Join(dir, platform.FormatLibraryName(libraryName, 0))
		if _, err := os.Stat(full); err == nil {
			return full, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, libraryName)
}

// LibrarySearchPaths returns platform-specific library search paths.
func LibrarySearchPaths() []string {
	var paths []string

	switch runtime.GOOS {
	case "linux", "freebsd":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/local/lib",
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/lib",
			"/opt/pdfium/lib",
		)

	case "darwin":
		if dyldPath := os.Getenv("DYLD_LIBRARY_PATH"); dyldPath != "" {
			paths = append(paths, filepath.SplitList(dyldPath)...)
		}
		paths = append(paths,
			"/opt/homebrew/lib", // Apple Silicon
			"/usr/local/lib",    // Intel
			"/opt/pdfium/lib",
		)

	case "windows":
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}
		if winPath := os.Getenv("PATH"); winPath != "" {
			paths = append(paths, filepath.SplitList(winPath)...)
		}
	}

	return paths
}

// Initialized reports whether FPDF_InitLibrary has run and
// FPDF_DestroyLibrary has not run since. Late finalizers consult it before
// calling into the library.
func Initialized() bool {
	return initialized.Load()
}

// SetInitialized records the library's process-wide init state.
func SetInitialized(v bool) {
	initialized.Store(v)
}

// Build returns the configured PDFium build number (the Chromium branch
// number of the binary, e.g. 6996), or 0 when unknown.
func Build() int {
	return int(build.Load())
}

// SetBuild records the PDFium build number. Some functions changed their
// signatures between builds; bindings consult this to pick the right one.
func SetBuild(n int) {
	build.Store(int64(n))
}
