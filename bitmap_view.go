//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Array is a height x width x channels view of bitmap memory. Element
// (y, x, c) lives at Data[y*Strides[0] + x*Strides[1] + c*Strides[2]].
type Array struct {
	Data    []byte
	Shape   [3]int
	Strides [3]int

	aliased bool
	owner   *Bitmap // keeps aliased memory reachable
}

// Aliased reports whether Data is the bitmap's memory rather than a copy.
func (a *Array) Aliased() bool {
	return a.aliased
}

func (a *Array) offset(y, x, c int) int {
	return y*a.Strides[0] + x*a.Strides[1] + c*a.Strides[2]
}

// At returns element (y, x, c).
func (a *Array) At(y, x, c int) byte {
	return a.Data[a.offset(y, x, c)]
}

// Set stores v at (y, x, c). On an aliased array this writes the bitmap.
func (a *Array) Set(y, x, c int, v byte) {
	a.Data[a.offset(y, x, c)] = v
}

// AsArray returns a strided view sharing the bitmap's memory. Padding at
// the end of rows is part of Data but never addressed by an index.
func (b *Bitmap) AsArray() *Array {
	return &Array{
		Data:    b.buffer,
		Shape:   [3]int{b.height, b.width, b.channels},
		Strides: [3]int{b.stride, b.channels, 1},
		aliased: true,
		owner:   b,
	}
}

// AsPackedArray returns a view without row padding. It aliases the bitmap
// when the bitmap is packed and copies it otherwise.
func (b *Bitmap) AsPackedArray() *Array {
	if b.Packed() {
		return b.AsArray()
	}
	row := b.width * b.channels
	data := make([]byte, row*b.height)
	for y := range b.height {
		copy(data[y*row:(y+1)*row], b.buffer[y*b.stride:y*b.stride+row])
	}
	return &Array{
		Data:    data,
		Shape:   [3]int{b.height, b.width, b.channels},
		Strides: [3]int{row, b.channels, 1},
	}
}

// ImageView is a bitmap presented as an image.Image.
type ImageView struct {
	Image   image.Image
	Aliased bool // Image shares the bitmap's memory

	owner *Bitmap
}

// AsImage presents the bitmap as an image. Gray bitmaps become *image.Gray
// and BGRA bitmaps rendered with reversed byte order become *image.NRGBA,
// both sharing the bitmap's memory. Other layouts are converted into a new
// *image.NRGBA.
func (b *Bitmap) AsImage() (*ImageView, error) {
	if b.origin == LibraryAllocated && b.node.Closed() {
		return nil, ErrClosed
	}
	switch {
	case b.format == FormatGray:
		img := &image.Gray{Pix: b.buffer, Stride: b.stride, Rect: b.Bounds()}
		return &ImageView{Image: img, Aliased: true, owner: b}, nil
	case b.format == FormatBGRA && b.revByteOrder:
		img := &image.NRGBA{Pix: b.buffer, Stride: b.stride, Rect: b.Bounds()}
		return &ImageView{Image: img, Aliased: true, owner: b}, nil
	}
	img, err := b.CopyImage()
	if err != nil {
		return nil, err
	}
	return &ImageView{Image: img}, nil
}

// CopyImage returns a copy of the bitmap that does not depend on it: an
// *image.Gray for Gray bitmaps, an *image.NRGBA otherwise.
func (b *Bitmap) CopyImage() (image.Image, error) {
	if b.origin == LibraryAllocated && b.node.Closed() {
		return nil, ErrClosed
	}
	r := b.Bounds()
	if b.format == FormatGray {
		dst := image.NewGray(r)
		for y := range b.height {
			copy(dst.Pix[y*dst.Stride:], b.buffer[y*b.stride:y*b.stride+b.width])
		}
		return dst, nil
	}
	dst := image.NewNRGBA(r)
	draw.Copy(dst, image.Point{}, pixels{b}, r, draw.Src, nil)
	return dst, nil
}

// pixels reads a color bitmap pixel by pixel in its memory layout.
type pixels struct {
	b *Bitmap
}

func (p pixels) ColorModel() color.Model { return color.NRGBAModel }
func (p pixels) Bounds() image.Rectangle { return p.b.Bounds() }

func (p pixels) At(x, y int) color.Color {
	b := p.b
	if !image.Pt(x, y).In(b.Bounds()) {
		return color.NRGBA{}
	}
	px := b.buffer[y*b.stride+x*b.channels:]
	c := color.NRGBA{R: px[2], G: px[1], B: px[0], A: 0xff}
	if b.revByteOrder {
		c.R, c.B = px[0], px[2]
	}
	if b.format == FormatBGRA {
		c.A = px[3]
	}
	return c
}
