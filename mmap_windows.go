//go:build !ios && !android && (amd64 || arm64) && windows

package pdfgo

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mapFile maps path read-only with CreateFileMapping and MapViewOfFile.
// The returned function unmaps the view and closes the mapping.
func mapFile(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := st.Size()
	if size == 0 {
		return nil, nil, nil
	}
	mapping, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return nil, nil, &os.PathError{Op: "CreateFileMapping", Path: path, Err: err}
	}
	addr, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(mapping)
		return nil, nil, &os.PathError{Op: "MapViewOfFile", Path: path, Err: err}
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
	unmap := func() error {
		err := windows.UnmapViewOfFile(addr)
		if cerr := windows.CloseHandle(mapping); err == nil {
			err = cerr
		}
		return err
	}
	return data, unmap, nil
}
