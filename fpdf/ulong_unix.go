//go:build !ios && !android && (amd64 || arm64) && !windows

package fpdf

// Ulong is C's unsigned long, which is 64 bits on LP64 platforms.
type Ulong = uint64
