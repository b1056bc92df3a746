//go:build !ios && !android && (amd64 || arm64)

package fpdftest

import (
	"image/color"
	"unsafe"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
)

type bitmap struct {
	w, h, stride int
	format       fpdf.BitmapFormat
	buf          []byte
	external     bool
}

func bytesPerPixel(format fpdf.BitmapFormat) int {
	switch format {
	case fpdf.BitmapGray:
		return 1
	case fpdf.BitmapBGR:
		return 3
	case fpdf.BitmapBGRx, fpdf.BitmapBGRA:
		return 4
	}
	return 0
}

func gray(r, g, b uint8) uint8 {
	return uint8((int(b)*11 + int(g)*59 + int(r)*30) / 100)
}

// fill paints the clipped rectangle. With rev the channels are stored
// R G B A instead of B G R A.
func (b *bitmap) fill(x, y, w, h int, c color.NRGBA, rev bool) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, b.w), min(y+h, b.h)
	bpp := bytesPerPixel(b.format)
	px := [4]byte{c.B, c.G, c.R, c.A}
	if rev {
		px = [4]byte{c.R, c.G, c.B, c.A}
	}
	switch b.format {
	case fpdf.BitmapGray:
		px[0] = gray(c.R, c.G, c.B)
	case fpdf.BitmapBGRx:
		px[3] = 0xFF
	}
	for row := y0; row < y1; row++ {
		line := b.buf[row*b.stride:]
		for col := x0; col < x1; col++ {
			copy(line[col*bpp:col*bpp+bpp], px[:bpp])
		}
	}
}

func (f *Fake) addBitmap(b *bitmap) fpdf.Bitmap {
	h := fpdf.Bitmap(f.handle())
	f.bitmaps[h] = b
	return h
}

func (f *Fake) bitmapCreate(width, height, alpha int32) fpdf.Bitmap {
	format := fpdf.BitmapBGRx
	if alpha != 0 {
		format = fpdf.BitmapBGRA
	}
	return f.bitmapCreateEx(width, height, format, nil, 0)
}

func (f *Fake) bitmapCreateEx(width, height int32, format fpdf.BitmapFormat, firstScan unsafe.Pointer, stride int32) fpdf.Bitmap {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFBitmap_CreateEx", 0)
	bpp := bytesPerPixel(format)
	if f.FailBitmaps || bpp == 0 || width <= 0 || height <= 0 {
		return 0
	}
	b := &bitmap{w: int(width), h: int(height), format: format, stride: int(stride)}
	if b.stride == 0 {
		b.stride = (b.w*bpp + 3) &^ 3
	}
	if b.stride < b.w*bpp {
		f.violate("FPDFBitmap_CreateEx: stride %d too small for %dx%d format %d", stride, width, height, format)
		return 0
	}
	if firstScan != nil {
		b.buf = unsafe.Slice((*byte)(firstScan), b.stride*b.h)
		b.external = true
	} else {
		b.buf = make([]byte, b.stride*b.h)
	}
	return f.addBitmap(b)
}

func (f *Fake) bitmap(name string, h fpdf.Bitmap) *bitmap {
	b, ok := f.bitmaps[h]
	if !ok {
		f.violate("%s(%#x): unknown or destroyed bitmap", name, h)
	}
	return b
}

func (f *Fake) bitmapDestroy(h fpdf.Bitmap) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFBitmap_Destroy", uintptr(h))
	if f.bitmap("FPDFBitmap_Destroy", h) == nil {
		return
	}
	delete(f.bitmaps, h)
}

func (f *Fake) bitmapFormat(h fpdf.Bitmap) fpdf.BitmapFormat {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b := f.bitmap("FPDFBitmap_GetFormat", h); b != nil {
		return b.format
	}
	return fpdf.BitmapUnknown
}

func (f *Fake) bitmapWidth(h fpdf.Bitmap) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b := f.bitmap("FPDFBitmap_GetWidth", h); b != nil {
		return int32(b.w)
	}
	return 0
}

func (f *Fake) bitmapHeight(h fpdf.Bitmap) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b := f.bitmap("FPDFBitmap_GetHeight", h); b != nil {
		return int32(b.h)
	}
	return 0
}

func (f *Fake) bitmapStride(h fpdf.Bitmap) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b := f.bitmap("FPDFBitmap_GetStride", h); b != nil {
		return int32(b.stride)
	}
	return 0
}

func (f *Fake) bitmapBuffer(h fpdf.Bitmap) unsafe.Pointer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b := f.bitmap("FPDFBitmap_GetBuffer", h); b != nil {
		return unsafe.Pointer(unsafe.SliceData(b.buf))
	}
	return nil
}

func (f *Fake) bitmapFillRect(h fpdf.Bitmap, left, top, width, height int32, argb uint32) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFBitmap_FillRect", uintptr(h))
	b := f.bitmap("FPDFBitmap_FillRect", h)
	if b == nil || f.FailFillRect {
		return 0
	}
	c := color.NRGBA{A: uint8(argb >> 24), R: uint8(argb >> 16), G: uint8(argb >> 8), B: uint8(argb)}
	b.fill(int(left), int(top), int(width), int(height), c, false)
	return 1
}

// BitmapBytes returns a copy of the memory behind a live bitmap, or nil.
func (f *Fake) BitmapBytes(h fpdf.Bitmap) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bitmaps[h]; ok {
		return append([]byte(nil), b.buf...)
	}
	return nil
}
