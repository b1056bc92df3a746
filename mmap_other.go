//go:build !ios && !android && (amd64 || arm64) && !unix && !windows

package pdfgo

import "os"

// mapFile reads the whole file; there is no mmap on this platform.
func mapFile(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	return data, nil, err
}
