//go:build !ios && !android && (amd64 || arm64)

package fpdftest

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"unsafe"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
)

type imageData struct {
	bmp     *bitmap
	raw     []byte // stream as stored: JPEG bytes, or the packed pixels
	decoded []byte // packed pixels
}

func mul(a, b fpdf.Matrix) fpdf.Matrix {
	return fpdf.Matrix{
		A: a.A*b.A + a.B*b.C,
		B: a.A*b.B + a.B*b.D,
		C: a.C*b.A + a.D*b.C,
		D: a.C*b.B + a.D*b.D,
		E: a.E*b.A + a.F*b.C + b.E,
		F: a.E*b.B + a.F*b.D + b.F,
	}
}

// bounds maps the object space box through the matrix and returns the
// enclosing axis aligned box.
func (o *object) bounds() (left, bottom, right, top float32) {
	m := o.matrix
	left, bottom = float32(math.Inf(1)), float32(math.Inf(1))
	right, top = float32(math.Inf(-1)), float32(math.Inf(-1))
	for _, p := range [][2]float32{{o.left, o.bottom}, {o.right, o.bottom}, {o.left, o.top}, {o.right, o.top}} {
		x := p[0]*m.A + p[1]*m.C + m.E
		y := p[0]*m.B + p[1]*m.D + m.F
		left, right = min(left, x), max(right, x)
		bottom, top = min(bottom, y), max(top, y)
	}
	return left, bottom, right, top
}

// at reads pixel (x, y) of a bitmap stored in PDFium byte order.
func (b *bitmap) at(x, y int) color.NRGBA {
	bpp := bytesPerPixel(b.format)
	px := b.buf[y*b.stride+x*bpp:]
	switch b.format {
	case fpdf.BitmapGray:
		return color.NRGBA{R: px[0], G: px[0], B: px[0], A: 0xFF}
	case fpdf.BitmapBGRA:
		return color.NRGBA{R: px[2], G: px[1], B: px[0], A: px[3]}
	}
	return color.NRGBA{R: px[2], G: px[1], B: px[0], A: 0xFF}
}

func (b *bitmap) clone() *bitmap {
	c := *b
	c.buf = append([]byte(nil), b.buf...)
	c.external = false
	return &c
}

// packed returns the pixel rows without stride padding.
func (b *bitmap) packed() []byte {
	row := b.w * bytesPerPixel(b.format)
	out := make([]byte, 0, row*b.h)
	for y := range b.h {
		out = append(out, b.buf[y*b.stride:y*b.stride+row]...)
	}
	return out
}

func (f *Fake) checkPages(name string, pages *fpdf.Page, count int32) {
	if count == 0 {
		return
	}
	if pages == nil || count < 0 {
		f.violate("%s: bad page list %p/%d", name, pages, count)
		return
	}
	for _, ph := range unsafe.Slice(pages, count) {
		f.page(name, ph)
	}
}

func (f *Fake) imageObject(name string, h fpdf.PageObject) *object {
	o := f.object(name, h)
	if o != nil && o.typ != fpdf.ObjectImage {
		f.violate("%s(%#x): not an image object", name, h)
		return nil
	}
	return o
}

func (f *Fake) newImageObject(h fpdf.Document) fpdf.PageObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFPageObj_NewImageObj", uintptr(h))
	if f.doc("FPDFPageObj_NewImageObj", h) == nil {
		return 0
	}
	o := &object{h: fpdf.PageObject(f.handle()), typ: fpdf.ObjectImage, doc: h, right: 1, top: 1, matrix: identity}
	f.objects[o.h] = o
	return o.h
}

func (f *Fake) imageSetBitmap(pages *fpdf.Page, count int32, oh fpdf.PageObject, bh fpdf.Bitmap) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFImageObj_SetBitmap", uintptr(oh))
	f.checkPages("FPDFImageObj_SetBitmap", pages, count)
	o := f.imageObject("FPDFImageObj_SetBitmap", oh)
	b := f.bitmap("FPDFImageObj_SetBitmap", bh)
	if o == nil || b == nil {
		return 0
	}
	c := b.clone()
	px := c.packed()
	o.image = &imageData{bmp: c, raw: px, decoded: px}
	return 1
}

func (f *Fake) imageGetBitmap(oh fpdf.PageObject) fpdf.Bitmap {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFImageObj_GetBitmap", uintptr(oh))
	o := f.imageObject("FPDFImageObj_GetBitmap", oh)
	if o == nil || o.image == nil || f.FailBitmaps {
		return 0
	}
	return f.addBitmap(o.image.bmp.clone())
}

// imageRenderedBitmap samples the image into a BGRA bitmap covering the
// object's bounds, one pixel per point.
func (f *Fake) imageRenderedBitmap(dh fpdf.Document, ph fpdf.Page, oh fpdf.PageObject) fpdf.Bitmap {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFImageObj_GetRenderedBitmap", uintptr(oh))
	if f.doc("FPDFImageObj_GetRenderedBitmap", dh) == nil {
		return 0
	}
	o := f.imageObject("FPDFImageObj_GetRenderedBitmap", oh)
	if o == nil {
		return 0
	}
	if ph != 0 {
		if f.page("FPDFImageObj_GetRenderedBitmap", ph) == nil {
			return 0
		}
		if o.page != ph {
			f.violate("FPDFImageObj_GetRenderedBitmap(%#x): object is not on page %#x", oh, ph)
			return 0
		}
	}
	if o.doc != dh {
		f.violate("FPDFImageObj_GetRenderedBitmap(%#x): object belongs to document %#x", oh, o.doc)
		return 0
	}
	if o.image == nil || f.FailBitmaps {
		return 0
	}
	l, b, r, t := o.bounds()
	w, h := max(int(math.Ceil(float64(r-l))), 1), max(int(math.Ceil(float64(t-b))), 1)
	src := o.image.bmp
	out := &bitmap{w: w, h: h, stride: w * 4, format: fpdf.BitmapBGRA, buf: make([]byte, w*h*4)}
	for y := range h {
		for x := range w {
			c := src.at(x*src.w/w, y*src.h/h)
			copy(out.buf[y*out.stride+x*4:], []byte{c.B, c.G, c.R, c.A})
		}
	}
	return f.addBitmap(out)
}

func (f *Fake) imageLoadJPEGInline(pages *fpdf.Page, count int32, oh fpdf.PageObject, access *fpdf.FileAccess) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFImageObj_LoadJpegFileInline", uintptr(oh))
	f.checkPages("FPDFImageObj_LoadJpegFileInline", pages, count)
	o := f.imageObject("FPDFImageObj_LoadJpegFileInline", oh)
	if o == nil || access == nil {
		return 0
	}
	data := make([]byte, access.FileLen)
	if !access.ReadBlock(0, data) {
		return 0
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return 0
	}
	o.image = &imageData{bmp: toBitmap(img), raw: data}
	o.image.decoded = o.image.bmp.packed()
	return 1
}

// toBitmap stores a decoded JPEG the way PDFium hands it back: Gray for
// one component, BGR otherwise.
func toBitmap(img image.Image) *bitmap {
	r := img.Bounds()
	b := &bitmap{w: r.Dx(), h: r.Dy(), format: fpdf.BitmapBGR}
	if _, ok := img.(*image.Gray); ok {
		b.format = fpdf.BitmapGray
	}
	bpp := bytesPerPixel(b.format)
	b.stride = (b.w*bpp + 3) &^ 3
	b.buf = make([]byte, b.stride*b.h)
	for y := range b.h {
		for x := range b.w {
			c := color.NRGBAModel.Convert(img.At(r.Min.X+x, r.Min.Y+y)).(color.NRGBA)
			px := b.buf[y*b.stride+x*bpp:]
			if bpp == 1 {
				px[0] = gray(c.R, c.G, c.B)
				continue
			}
			px[0], px[1], px[2] = c.B, c.G, c.R
		}
	}
	return b
}

func (f *Fake) imageStream(name string, decoded bool) func(fpdf.PageObject, unsafe.Pointer, fpdf.Ulong) fpdf.Ulong {
	return func(oh fpdf.PageObject, buf unsafe.Pointer, buflen fpdf.Ulong) fpdf.Ulong {
		f.mu.Lock()
		defer f.mu.Unlock()
		o := f.imageObject(name, oh)
		if o == nil || o.image == nil {
			return 0
		}
		data := o.image.raw
		if decoded {
			data = o.image.decoded
		}
		if buf != nil && int(buflen) >= len(data) {
			copy(unsafe.Slice((*byte)(buf), buflen), data)
		}
		return fpdf.Ulong(len(data))
	}
}

func (f *Fake) objectMatrix(h fpdf.PageObject, m *fpdf.Matrix) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.object("FPDFPageObj_GetMatrix", h)
	if o == nil || m == nil {
		return 0
	}
	*m = o.matrix
	return 1
}

func (f *Fake) setObjectMatrix(h fpdf.PageObject, m *fpdf.Matrix) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFPageObj_SetMatrix", uintptr(h))
	o := f.object("FPDFPageObj_SetMatrix", h)
	if o == nil || m == nil {
		return 0
	}
	o.matrix = *m
	return 1
}

func (f *Fake) transformObject(h fpdf.PageObject, a, b, c, d, e, g float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFPageObj_Transform", uintptr(h))
	if o := f.object("FPDFPageObj_Transform", h); o != nil {
		o.matrix = mul(o.matrix, fpdf.Matrix{A: float32(a), B: float32(b), C: float32(c), D: float32(d), E: float32(e), F: float32(g)})
	}
}

func (f *Fake) getBox(box fpdf.BoxType) func(fpdf.Page, *float32, *float32, *float32, *float32) int32 {
	name := "FPDFPage_Get" + box.String()
	return func(ph fpdf.Page, l, b, r, t *float32) int32 {
		f.mu.Lock()
		defer f.mu.Unlock()
		p := f.page(name, ph)
		if p == nil {
			return 0
		}
		v, ok := p.data.boxes[box]
		if !ok && box == fpdf.MediaBox {
			// Every generated page carries a /MediaBox.
			v, ok = [4]float32{0, 0, float32(p.data.width), float32(p.data.height)}, true
		}
		if !ok {
			return 0
		}
		*l, *b, *r, *t = v[0], v[1], v[2], v[3]
		return 1
	}
}

func (f *Fake) setBox(box fpdf.BoxType) func(fpdf.Page, float32, float32, float32, float32) {
	name := "FPDFPage_Set" + box.String()
	return func(ph fpdf.Page, l, b, r, t float32) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.record(name, uintptr(ph))
		p := f.page(name, ph)
		if p == nil {
			return
		}
		if p.data.boxes == nil {
			p.data.boxes = make(map[fpdf.BoxType][4]float32)
		}
		p.data.boxes[box] = [4]float32{l, b, r, t}
	}
}
