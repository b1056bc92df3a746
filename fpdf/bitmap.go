//go:build !ios && !android && (amd64 || arm64)

package fpdf

import (
	"unsafe"

	"github.com/obinnaokechukwu/pdfgo/internal/bindings"
	"github.com/obinnaokechukwu/pdfgo/internal/callgate"
)

// BitmapCreate allocates a packed BGRx or BGRA bitmap in PDFium's memory.
func BitmapCreate(width, height int, alpha bool) Bitmap {
	t := table()
	if t == nil {
		return 0
	}
	var a int32
	if alpha {
		a = 1
	}
	return callgate.Call(func() Bitmap { return t.BitmapCreate(int32(width), int32(height), a) })
}

// BitmapCreateEx creates a bitmap. With buf nil PDFium allocates the
// memory (stride 0 lets it choose); otherwise buf is used as-is and must
// stay pinned until BitmapDestroy.
func BitmapCreateEx(width, height int, format BitmapFormat, buf unsafe.Pointer, stride int) Bitmap {
	t := table()
	if t == nil {
		return 0
	}
	return callgate.Call(func() Bitmap {
		return t.BitmapCreateEx(int32(width), int32(height), format, buf, int32(stride))
	})
}

// BitmapDestroy releases bmp. PDFium frees the buffer only if it allocated
// it.
func BitmapDestroy(bmp Bitmap) {
	t := table()
	if t == nil || bmp == 0 {
		return
	}
	callgate.Do(func() { t.BitmapDestroy(bmp) })
}

// BitmapInfo is what PDFium reports about a bitmap.
type BitmapInfo struct {
	Width, Height, Stride int
	Format                BitmapFormat
	Buffer                unsafe.Pointer
}

// BitmapDescribe queries all bitmap properties in one gated call.
func BitmapDescribe(bmp Bitmap) BitmapInfo {
	t := table()
	if t == nil {
		return BitmapInfo{}
	}
	return callgate.Call(func() BitmapInfo {
		return BitmapInfo{
			Width:  int(t.BitmapGetWidth(bmp)),
			Height: int(t.BitmapGetHeight(bmp)),
			Stride: int(t.BitmapGetStride(bmp)),
			Format: t.BitmapGetFormat(bmp),
			Buffer: t.BitmapGetBuffer(bmp),
		}
	})
}

// BitmapFillRect fills a rectangle with color (0xAARRGGBB as PDFium reads
// it). On builds before FillRectReturnsBool there is no status to check and
// the call always reports success.
func BitmapFillRect(bmp Bitmap, left, top, width, height int, color uint32) bool {
	t := table()
	if t == nil {
		return false
	}
	ret := callgate.Call(func() int32 {
		return t.BitmapFillRect(bmp, int32(left), int32(top), int32(width), int32(height), color)
	})
	if bindings.Build() < FillRectReturnsBool {
		return true
	}
	return ret != 0
}
