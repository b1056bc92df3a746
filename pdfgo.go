//go:build !ios && !android && (amd64 || arm64)

// Package pdfgo provides bindings to PDFium for reading, rendering and
// editing PDF documents without CGO, using purego.
//
// Every native object is wrapped in a Go value that owns its handle:
// Document, Page, TextPage, TextSearch, PageObject, FormEnv and Bitmap.
// Handles form a tree (a page belongs to its document, a text page to its
// page) and closing a wrapper closes everything spawned from it first.
// Wrappers that are never closed are released by the garbage collector with
// the same protocol, so Close is recommended but not required.
//
// Call Init once before opening documents and Destroy at shutdown.
//
// For direct access to the C API, see package fpdf.
package pdfgo

import (
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
	"github.com/obinnaokechukwu/pdfgo/internal/bindings"
	"github.com/obinnaokechukwu/pdfgo/lifecycle"
	"github.com/obinnaokechukwu/pdfgo/logging"
)

// Environment variables read by Init. Options passed to Init take
// precedence.
const (
	EnvLibraryPath = bindings.EnvLibraryPath // library file or directory
	EnvBuild       = "PDFGO_PDFIUM_BUILD"    // PDFium build number, e.g. 6996
	EnvTrace       = "PDFGO_TRACE"           // log every handle release
)

// Handle kinds, as they appear in diagnostics.
const (
	KindDocument   lifecycle.Kind = "document"
	KindPage       lifecycle.Kind = "page"
	KindTextPage   lifecycle.Kind = "textpage"
	KindSearch     lifecycle.Kind = "search"
	KindBitmap     lifecycle.Kind = "bitmap"
	KindPageObject lifecycle.Kind = "pageobject"
	KindAttachment lifecycle.Kind = "attachment"
	KindFormEnv    lifecycle.Kind = "formenv"
)

func init() {
	lifecycle.Default.SetScope(fpdf.WhileInitialized)
}

// InitOptions configures Init.
type InitOptions struct {
	// LibraryPath is the PDFium library file or a directory containing it.
	LibraryPath string

	// Build is the PDFium build number. Functions whose signature changed
	// between builds use it to pick the right behavior; 0 means unknown.
	Build int

	// Trace logs every handle release with its origin at info level.
	Trace bool
}

// Option is a functional option for Init.
type Option func(*InitOptions)

// WithLibraryPath loads PDFium from path instead of searching for it.
func WithLibraryPath(path string) Option {
	return func(o *InitOptions) {
		o.LibraryPath = path
	}
}

// WithBuild declares the PDFium build number of the loaded library.
func WithBuild(n int) Option {
	return func(o *InitOptions) {
		o.Build = n
	}
}

// WithTrace turns release tracing on or off.
func WithTrace(on bool) Option {
	return func(o *InitOptions) {
		o.Trace = on
	}
}

func optionsFromEnv() InitOptions {
	o := InitOptions{LibraryPath: os.Getenv(EnvLibraryPath)}
	if v := os.Getenv(EnvBuild); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			o.Build = n
		} else {
			logging.Logger().Warn("ignoring malformed build number", "env", EnvBuild, "value", v)
		}
	}
	if v := os.Getenv(EnvTrace); v != "" {
		o.Trace, _ = strconv.ParseBool(v)
	}
	return o
}

var initMu sync.Mutex

// Init loads PDFium (unless a function table is already installed) and
// initializes the library. It is safe to call multiple times; calls after
// the first successful one do nothing until Destroy.
func Init(opts ...Option) error {
	initMu.Lock()
	defer initMu.Unlock()

	if bindings.Initialized() {
		return nil
	}
	o := optionsFromEnv()
	for _, opt := range opts {
		opt(&o)
	}

	if !fpdf.Loaded() {
		lib, err := bindings.Load(o.LibraryPath)
		if err != nil {
			return err
		}
		t, err := fpdf.Open(lib)
		if err != nil {
			return err
		}
		fpdf.Use(t)
	}
	bindings.SetBuild(o.Build)
	lifecycle.Default.SetTrace(o.Trace)
	if err := fpdf.InitLibrary(); err != nil {
		return err
	}
	logging.Logger().Debug("PDFium initialized", "path", bindings.Path(), "build", o.Build)
	return nil
}

// IsInitialized reports whether Init has run and Destroy has not.
func IsInitialized() bool {
	return bindings.Initialized()
}

// Destroy tears the library down. Handles still open are not released by
// it: releases that run later (explicit or from the garbage collector) are
// skipped and logged as leaks. Close documents, or call CloseAll, before
// calling Destroy.
func Destroy() {
	initMu.Lock()
	defer initMu.Unlock()

	if !bindings.Initialized() {
		return
	}
	if live := lifecycle.Default.Stats().Live; live > 0 {
		logging.Logger().Warn("destroying PDFium with open handles", "live", live)
	}
	fpdf.DestroyLibrary()
}

// CloseAll closes every open handle of the default registry, documents
// and other roots first, and returns how many roots it closed. Calling it
// before Destroy releases what the program forgot to close.
func CloseAll() int {
	return lifecycle.Default.CloseAll()
}

// SetLogger sets the logger used for lifecycle diagnostics. nil discards
// all output.
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// Stats returns counters of the default handle registry.
func Stats() lifecycle.Stats {
	return lifecycle.Default.Stats()
}

// LiveHandles lists handles that are neither closed nor collected yet.
func LiveHandles() []lifecycle.EntryInfo {
	return lifecycle.Default.LiveEntries()
}
