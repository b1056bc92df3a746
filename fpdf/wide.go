//go:build !ios && !android && (amd64 || arm64)

package fpdf

import (
	"bytes"
	"unsafe"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeWide converts s to a NUL-terminated UTF-16LE FPDF_WIDESTRING.
func EncodeWide(s string) []byte {
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		// The encoder replaces invalid UTF-8 rather than failing.
		b = nil
	}
	return append(b, 0, 0)
}

// DecodeWide converts a UTF-16LE buffer to a string, stopping at the first
// NUL code unit.
func DecodeWide(b []byte) string {
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			b = b[:i]
			break
		}
	}
	if len(b)%2 == 1 {
		b = b[:len(b)-1]
	}
	s, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(s)
}

// WideAt reads a NUL-terminated UTF-16LE string from native memory.
func WideAt(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	var buf bytes.Buffer
	for i := uintptr(0); ; i += 2 {
		lo := *(*byte)(unsafe.Add(p, i))
		hi := *(*byte)(unsafe.Add(p, i+1))
		if lo == 0 && hi == 0 {
			break
		}
		buf.WriteByte(lo)
		buf.WriteByte(hi)
	}
	return DecodeWide(buf.Bytes())
}

// bufPtr returns a pointer to b's first element, or nil for an empty slice.
func bufPtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(b))
}
