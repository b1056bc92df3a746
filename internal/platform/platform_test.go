//go:build !ios && !android && (amd64 || arm64)

package platform

import (
	"runtime"
	"testing"
)

func TestIs64Bit(t *testing.T) {
	if !Is64Bit {
		t.Error("Platform should be 64-bit")
	}
}

func TestLongIs64Bit(t *testing.T) {
	if runtime.GOOS == "windows" && LongIs64Bit {
		t.Error("unsigned long is 32-bit on Windows")
	}
	if runtime.GOOS != "windows" && !LongIs64Bit {
		t.Errorf("unsigned long should be 64-bit on %s", runtime.GOOS)
	}
}

func TestLibraryExtension(t *testing.T) {
	switch runtime.GOOS {
	case "darwin":
		if LibraryExtension != ".dylib" {
			t.Errorf("expected .dylib, got %s", LibraryExtension)
		}
	case "windows":
		if LibraryExtension != ".dll" {
			t.Errorf("expected .dll, got %s", LibraryExtension)
		}
	default:
		if LibraryExtension != ".so" {
			t.Errorf("expected .so, got %s", LibraryExtension)
		}
	}
}

func TestFormatLibraryName(t *testing.T) {
	tests := []struct {
		name    string
		version int
		goos    string
		want    string
	}{
		{"pdfium", 0, "linux", "libpdfium.so"},
		{"pdfium", 7, "linux", "libpdfium.so.7"},
		{"pdfium", 0, "darwin", "libpdfium.dylib"},
		{"pdfium", 7, "darwin", "libpdfium.7.dylib"},
		{"pdfium", 0, "windows", "pdfium.dll"},
		{"pdfium", 7, "windows", "pdfium-7.dll"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"_"+tt.goos, func(t *testing.T) {
			if runtime.GOOS != tt.goos {
				t.Skipf("test only applies to %s", tt.goos)
			}
			got := FormatLibraryName(tt.name, tt.version)
			if got != tt.want {
				t.Errorf("FormatLibraryName(%q, %d) = %q, want %q", tt.name, tt.version, got, tt.want)
			}
		})
	}
}

func TestIsLibraryFile(t *testing.T) {
	if !IsLibraryFile(FormatLibraryName("pdfium", 0)) {
		t.Errorf("%q should be a library file", FormatLibraryName("pdfium", 0))
	}
	if IsLibraryFile("pdfium.h") {
		t.Error("pdfium.h is not a library file")
	}
	if runtime.GOOS == "linux" && !IsLibraryFile("libpdfium.so.7") {
		t.Error("versioned .so should count as a library file")
	}
}
