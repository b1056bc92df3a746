//go:build !ios && !android && (amd64 || arm64)

// Package platform describes the host platform as far as loading PDFium goes.
package platform

import (
	"fmt"
	"runtime"
	"strings"
	"unsafe"
)

// Is64Bit indicates whether the platform is 64-bit.
// purego only supports 64-bit targets, and so does pdfgo.
const Is64Bit = unsafe.Sizeof(uintptr(0)) == 8

// LongIs64Bit reports whether C's unsigned long is 64 bits wide. It is on
// every supported target except Windows (LLP64).
const LongIs64Bit = runtime.GOOS != "windows"

// LibraryExtension is the file extension for shared libraries on this platform.
var LibraryExtension string

// LibraryPrefix is the prefix for shared library names on this platform.
var LibraryPrefix string

func init() {
	switch runtime.GOOS {
	case "darwin":
		LibraryExtension = ".dylib"
		LibraryPrefix = "lib"
	case "windows":
		LibraryExtension = ".dll"
		LibraryPrefix = ""
	default: // linux, freebsd, etc.
		LibraryExtension = ".so"
		LibraryPrefix = "lib"
	}
}

// FormatLibraryName returns the platform-specific library filename.
// PDFium binaries are normally unversioned, so version 0 is the common case.
//
// Examples:
//   - Linux:   FormatLibraryName("pdfium", 0) -> "libpdfium.so"
//   - macOS:   FormatLibraryName("pdfium", 0) -> "libpdfium.dylib"
//   - Windows: FormatLibraryName("pdfium", 0) -> "pdfium.dll"
func FormatLibraryName(name string, version int) string {
	if version <= 0 {
		return LibraryPrefix + name + LibraryExtension
	}
	switch runtime.GOOS {
	case "darwin":
		return fmt.Sprintf("%s%s.%d%s", LibraryPrefix, name, version, LibraryExtension)
	case "windows":
		return fmt.Sprintf("%s%s-%d%s", LibraryPrefix, name, version, LibraryExtension)
	default:
		return fmt.Sprintf("%s%s%s.%d", LibraryPrefix, name, LibraryExtension, version)
	}
}

// IsLibraryFile reports whether name looks like a shared library for this
// platform, versioned or not.
func IsLibraryFile(name string) bool {
	if strings.HasSuffix(name, LibraryExtension) {
		return true
	}
	switch runtime.GOOS {
	case "darwin", "windows":
		return false
	default:
		return strings.Contains(name, LibraryExtension+".")
	}
}

// GOOS returns the current operating system.
func GOOS() string {
	return runtime.GOOS
}

// GOARCH returns the current architecture.
func GOARCH() string {
	return runtime.GOARCH
}
