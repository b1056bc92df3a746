//go:build !ios && !android && (amd64 || arm64)

package fpdf

import (
	"io"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/pdfgo/internal/handles"
)

// FileAccess mirrors FPDF_FILEACCESS. PDFium keeps a pointer to it for the
// whole life of the document, so callers must pin it until
// FPDF_CloseDocument returns.
type FileAccess struct {
	FileLen  Ulong
	GetBlock uintptr // int (*)(void* param, unsigned long pos, unsigned char* buf, unsigned long size)
	Param    uintptr
}

// FileWrite mirrors FPDF_FILEWRITE. PDFium hands the struct pointer back
// to WriteBlock, so the trailing handle field (never read by PDFium) tells us
// which writer to use.
type FileWrite struct {
	Version    int32
	WriteBlock uintptr // int (*)(FPDF_FILEWRITE* self, const void* data, unsigned long size)
	handle     uintptr
}

type writeTarget struct {
	w   io.Writer
	err error
}

var (
	readers = handles.New[io.ReaderAt]()
	writers = handles.New[*writeTarget]()

	callbacksOnce sync.Once
	getBlockCB    uintptr
	writeBlockCB  uintptr
)

// initCallbacks creates the C trampolines once; purego has a fixed callback
// budget, so they are shared by every FileAccess and FileWrite.
func initCallbacks() {
	callbacksOnce.Do(func() {
		getBlockCB = purego.NewCallback(func(_ purego.CDecl, param unsafe.Pointer, pos Ulong, buf *byte, size Ulong) int32 {
			fa := FileAccess{Param: uintptr(param)}
			if fa.ReadBlock(int64(pos), unsafe.Slice(buf, int(size))) {
				return 1
			}
			return 0
		})
		writeBlockCB = purego.NewCallback(func(_ purego.CDecl, self unsafe.Pointer, data *byte, size Ulong) int32 {
			if (*FileWrite)(self).Write(unsafe.Slice(data, int(size))) {
				return 1
			}
			return 0
		})
	})
}

// NewFileAccess wraps r for FPDF_LoadCustomDocument. Call Release once the
// document is closed.
func NewFileAccess(r io.ReaderAt, size int64) *FileAccess {
	return &FileAccess{
		FileLen:  Ulong(size),
		GetBlock: getBlockCB,
		Param:    readers.Register(r),
	}
}

// ReadBlock fills buf from offset pos, reporting success the way
// m_GetBlock does. Short reads are failures.
func (fa *FileAccess) ReadBlock(pos int64, buf []byte) bool {
	r, ok := readers.Lookup(fa.Param)
	if !ok {
		return false
	}
	n, err := r.ReadAt(buf, pos)
	return n == len(buf) && (err == nil || err == io.EOF)
}

// Release forgets the reader.
func (fa *FileAccess) Release() {
	readers.Unregister(fa.Param)
	fa.Param = 0
}

// NewFileWrite wraps w for FPDF_SaveAsCopy. Call Release after saving.
func NewFileWrite(w io.Writer) *FileWrite {
	return &FileWrite{
		Version:    1,
		WriteBlock: writeBlockCB,
		handle:     writers.Register(&writeTarget{w: w}),
	}
}

// Write forwards one block to the wrapped writer. After the first error
// every later block is refused.
func (fw *FileWrite) Write(p []byte) bool {
	t, ok := writers.Lookup(fw.handle)
	if !ok || t.err != nil {
		return false
	}
	if _, err := t.w.Write(p); err != nil {
		t.err = err
		return false
	}
	return true
}

// Err returns the first write error, if any.
func (fw *FileWrite) Err() error {
	t, ok := writers.Lookup(fw.handle)
	if !ok {
		return nil
	}
	return t.err
}

// Release forgets the writer.
func (fw *FileWrite) Release() {
	writers.Unregister(fw.handle)
	fw.handle = 0
}

// OpenCallbacks reports how many FileAccess and FileWrite values are still
// registered. Tests use it to detect leaked readers.
func OpenCallbacks() int {
	return readers.Count() + writers.Count()
}
