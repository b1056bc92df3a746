//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
)

// RenderFlags are raw FPDF_RenderPageBitmap flags, for RenderOptions.ExtraFlags.
type RenderFlags = fpdf.RenderFlags

// DefaultMemoryLimit is the largest bitmap Render allocates unless
// RenderOptions.MemoryLimit says otherwise.
const DefaultMemoryLimit = 1 << 30

// RenderOptions configures Page.Render. The zero value renders at 72 dpi on
// white without annotations or form fields; DefaultRenderOptions turns
// those on.
type RenderOptions struct {
	// Scale is pixels per PDF point. 0 means 1 (72 dpi).
	Scale float64

	// Rotation in degrees (0, 90, 180, 270), on top of the page's own.
	Rotation int

	// Crop is cut from the left, bottom, right and top edges, in points,
	// after rotation.
	Crop [4]float64

	// Grayscale renders into a one-channel bitmap.
	Grayscale bool

	// Background fills the bitmap before rendering. nil is opaque white. A
	// translucent background selects a BGRA bitmap.
	Background color.Color

	// RevByteOrder renders RGB(A) instead of BGR(A).
	RevByteOrder bool

	// PreferBGRx picks a four-byte opaque format over BGR.
	PreferBGRx bool

	DrawAnnots bool
	// DrawForms draws form fields when the page was loaded while the
	// document had a form environment.
	DrawForms bool

	NoSmoothText  bool
	NoSmoothImage bool
	NoSmoothPath  bool
	ForceHalftone bool
	LCDText       bool
	Printing      bool

	// ExtraFlags are OR-ed into the flags passed to PDFium.
	ExtraFlags RenderFlags

	// MemoryLimit caps the bitmap size in bytes. 0 means no limit.
	MemoryLimit int

	// Buffer, when set, receives the pixels instead of a new allocation.
	Buffer []byte
}

// DefaultRenderOptions returns options for drawing a page as a viewer would.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Scale:       1,
		DrawAnnots:  true,
		DrawForms:   true,
		MemoryLimit: DefaultMemoryLimit,
	}
}

func (o RenderOptions) flags() RenderFlags {
	f := o.ExtraFlags
	set := func(on bool, flag RenderFlags) {
		if on {
			f |= flag
		}
	}
	set(o.Grayscale, fpdf.RenderGrayscale)
	set(o.DrawAnnots, fpdf.RenderAnnot)
	set(o.NoSmoothText, fpdf.RenderNoSmoothText)
	set(o.NoSmoothImage, fpdf.RenderNoSmoothImage)
	set(o.NoSmoothPath, fpdf.RenderNoSmoothPath)
	set(o.ForceHalftone, fpdf.RenderForceHalftone)
	set(o.RevByteOrder, fpdf.RenderReverseByteOrder)
	set(o.LCDText, fpdf.RenderLCDText)
	set(o.Printing, fpdf.RenderPrinting)
	return f
}

// format picks the bitmap format for the options: translucent backgrounds
// need alpha, grayscale needs one channel.
func (o RenderOptions) format() (BitmapFormat, color.NRGBA) {
	bg := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	if o.Background != nil {
		bg = color.NRGBAModel.Convert(o.Background).(color.NRGBA)
	}
	switch {
	case bg.A < 0xff:
		return FormatBGRA, bg
	case o.Grayscale:
		return FormatGray, bg
	case o.PreferBGRx:
		return FormatBGRx, bg
	default:
		return FormatBGR, bg
	}
}

// renderGeometry is the bitmap size and the placement of the whole page
// relative to it.
type renderGeometry struct {
	width, height         int // bitmap
	startX, startY        int
	pageWidth, pageHeight int // full page at scale, after rotation
	turns                 int
}

func computeGeometry(pageWidth, pageHeight float64, o RenderOptions) (renderGeometry, error) {
	scale := o.Scale
	if scale == 0 {
		scale = 1
	}
	if scale < 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return renderGeometry{}, fmt.Errorf("pdfgo: invalid render scale %v", o.Scale)
	}
	turns, err := quarterTurns(o.Rotation)
	if err != nil {
		return renderGeometry{}, err
	}
	w, h := math.Ceil(pageWidth*scale), math.Ceil(pageHeight*scale)
	if !(w <= maxBitmapDim && h <= maxBitmapDim) {
		return renderGeometry{}, fmt.Errorf("%w: page is %vx%v pixels at scale %v", ErrBitmapSize, w, h, scale)
	}
	srcW, srcH := int(w), int(h)
	if turns%2 == 1 {
		srcW, srcH = srcH, srcW
	}
	var crop [4]int
	for i, c := range o.Crop {
		v := math.Ceil(c * scale)
		if !(math.Abs(v) <= maxBitmapDim) {
			return renderGeometry{}, fmt.Errorf("%w: crop %v", ErrInvalidRect, o.Crop)
		}
		crop[i] = int(v)
	}
	g := renderGeometry{
		width:      srcW - crop[0] - crop[2],
		height:     srcH - crop[1] - crop[3],
		startX:     -crop[0],
		startY:     -crop[3],
		pageWidth:  srcW,
		pageHeight: srcH,
		turns:      turns,
	}
	if g.width < 1 || g.height < 1 {
		return renderGeometry{}, fmt.Errorf("%w: crop %v exceeds page size %dx%d", ErrInvalidRect, crop, srcW, srcH)
	}
	if g.width > maxBitmapDim || g.height > maxBitmapDim {
		return renderGeometry{}, fmt.Errorf("%w: crop %v widens the page to %dx%d", ErrBitmapSize, crop, g.width, g.height)
	}
	return g, nil
}

// Render draws the page into a new host-allocated bitmap. The bitmap is
// independent of the page and must be closed by the caller.
func (p *Page) Render(opts RenderOptions) (*Bitmap, error) {
	defer runtime.KeepAlive(p)
	h, err := p.handle()
	if err != nil {
		return nil, err
	}
	w, ht := fpdf.PageSize(h)
	g, err := computeGeometry(float64(w), float64(ht), opts)
	if err != nil {
		return nil, err
	}

	format, bg := opts.format()
	rev := opts.RevByteOrder && format != FormatGray
	_, size, err := bitmapLayout(g.width, g.height, formats[format].channels, 0)
	if err != nil {
		return nil, err
	}
	if opts.MemoryLimit > 0 && size > opts.MemoryLimit {
		return nil, fmt.Errorf("%w: %dx%d bitmap needs %d bytes, limit is %d",
			ErrMemoryLimit, g.width, g.height, size, opts.MemoryLimit)
	}

	bopts := []BitmapOption{WithRevByteOrder(rev)}
	if opts.Buffer != nil {
		bopts = append(bopts, WithBuffer(opts.Buffer))
	}
	bmp, err := NewNativeBitmap(g.width, g.height, format, bopts...)
	if err != nil {
		return nil, err
	}
	if err := bmp.FillRect(bg, bmp.Bounds()); err != nil {
		bmp.Close()
		return nil, err
	}
	bh, err := bmp.handle()
	if err != nil {
		return nil, err
	}

	var form fpdf.FormHandle
	if opts.DrawForms {
		form = p.form
	}
	flags := opts.flags()
	if !rev {
		flags &^= fpdf.RenderReverseByteOrder
	}
	fpdf.RenderPageBitmap(bh, h, form, g.startX, g.startY, g.pageWidth, g.pageHeight, g.turns, flags)
	runtime.KeepAlive(bmp)
	return bmp, nil
}

// RenderImage renders the page and returns a copy of the pixels, closing
// the intermediate bitmap.
func (p *Page) RenderImage(opts RenderOptions) (image.Image, error) {
	bmp, err := p.Render(opts)
	if err != nil {
		return nil, err
	}
	defer bmp.Close()
	return bmp.CopyImage()
}
