//go:build windows && (amd64 || arm64)

package fpdf

// Ulong is C's unsigned long, which stays 32 bits on Windows.
type Ulong = uint32
