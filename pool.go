//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// PinnedBufferUsage reports Go memory currently pinned for PDFium: bitmap
// buffers handed to FPDFBitmap_CreateEx and documents opened from bytes.
type PinnedBufferUsage struct {
	PinnedBuffers int
	PinnedBytes   int64
}

var (
	pinMu          sync.Mutex
	pinLimitBytes  atomic.Int64
	pinPinnedBytes atomic.Int64
	pinPinnedCount atomic.Int64
)

// SetPinnedBufferMemoryLimit sets a best-effort limit for total bytes
// pinned by host-allocated bitmaps and in-memory documents. A limit <= 0
// disables enforcement.
func SetPinnedBufferMemoryLimit(bytes int64) {
	pinLimitBytes.Store(bytes)
}

// PinnedBufferMemoryUsage returns the current pinned buffer count/bytes.
func PinnedBufferMemoryUsage() PinnedBufferUsage {
	return PinnedBufferUsage{
		PinnedBuffers: int(pinPinnedCount.Load()),
		PinnedBytes:   pinPinnedBytes.Load(),
	}
}

// pinnedBuffer keeps a Go buffer at a fixed address while PDFium holds a
// pointer to it.
type pinnedBuffer struct {
	pin  runtime.Pinner
	data []byte
	once sync.Once
}

// pinBuffer pins data and accounts for it, failing with ErrMemoryLimit if
// the configured limit would be exceeded.
func pinBuffer(data []byte) (*pinnedBuffer, error) {
	size := int64(len(data))

	pinMu.Lock()
	if lim := pinLimitBytes.Load(); lim > 0 && pinPinnedBytes.Load()+size > lim {
		pinMu.Unlock()
		return nil, fmt.Errorf("%w: pinning %d bytes, %d of %d in use", ErrMemoryLimit, size, pinPinnedBytes.Load(), lim)
	}
	pinPinnedBytes.Add(size)
	pinPinnedCount.Add(1)
	pinMu.Unlock()

	p := &pinnedBuffer{data: data}
	if len(data) > 0 {
		p.pin.Pin(&data[0])
	}
	return p, nil
}

// release unpins the buffer. Later calls do nothing.
func (p *pinnedBuffer) release() {
	p.once.Do(func() {
		p.pin.Unpin()
		pinPinnedBytes.Add(-int64(len(p.data)))
		pinPinnedCount.Add(-1)
		p.data = nil
	})
}
