//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"
	"unsafe"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
	"github.com/obinnaokechukwu/pdfgo/internal/bindings"
	"github.com/obinnaokechukwu/pdfgo/lifecycle"
)

// BitmapFormat is a PDFium pixel format.
type BitmapFormat = fpdf.BitmapFormat

const (
	FormatGray = fpdf.BitmapGray // 1 byte per pixel
	FormatBGR  = fpdf.BitmapBGR  // 3 bytes per pixel
	FormatBGRx = fpdf.BitmapBGRx // 4 bytes per pixel, fourth unused
	FormatBGRA = fpdf.BitmapBGRA // 4 bytes per pixel with alpha
)

type formatInfo struct {
	channels int
	mode     string // channel order in memory
	revMode  string // channel order with RenderReverseByteOrder
}

var formats = map[BitmapFormat]formatInfo{
	FormatGray: {1, "L", "L"},
	FormatBGR:  {3, "BGR", "RGB"},
	FormatBGRx: {4, "BGRX", "RGBX"},
	FormatBGRA: {4, "BGRA", "RGBA"},
}

func lookupFormat(f BitmapFormat) (formatInfo, error) {
	info, ok := formats[f]
	if !ok {
		return formatInfo{}, fmt.Errorf("%w: %d", ErrUnsupportedFormat, int(f))
	}
	return info, nil
}

// Channels returns the bytes per pixel of format.
func Channels(format BitmapFormat) (int, error) {
	info, err := lookupFormat(format)
	return info.channels, err
}

// Mode returns the memory channel order of format ("BGRA", or "RGBA" with
// reversed byte order).
func Mode(format BitmapFormat, revByteOrder bool) (string, error) {
	info, err := lookupFormat(format)
	if err != nil {
		return "", err
	}
	return info.order(revByteOrder), nil
}

func (f formatInfo) order(rev bool) string {
	if rev {
		return f.revMode
	}
	return f.mode
}

// BufferOrigin says who allocated a bitmap's memory.
type BufferOrigin int

const (
	// HostAllocated memory is a Go slice, pinned while PDFium uses it.
	HostAllocated BufferOrigin = iota
	// LibraryAllocated memory belongs to PDFium and is freed with the
	// bitmap.
	LibraryAllocated
)

func (o BufferOrigin) String() string {
	if o == HostAllocated {
		return "host"
	}
	return "library"
}

// Bitmap is a PDFium bitmap together with the memory behind it.
//
// Views returned by AsArray and AsImage may alias that memory. A view keeps
// the Bitmap reachable, so the garbage collector never frees memory under a
// live view, but an explicit Close does: views of a LibraryAllocated bitmap
// must not be used after Close. Views of a HostAllocated bitmap stay valid
// Go memory, though PDFium no longer writes to it.
type Bitmap struct {
	node   *lifecycle.Node
	buffer []byte

	width, height, stride int
	format                BitmapFormat
	channels              int
	revByteOrder          bool
	origin                BufferOrigin
}

// BitmapOptions configures bitmap constructors.
type BitmapOptions struct {
	// Stride is the row length in bytes; 0 means packed (or chosen by
	// PDFium for foreign bitmaps). Host-allocated only.
	Stride int

	// Buffer is caller memory to render into. It must hold at least
	// Stride*height bytes. Host-allocated only.
	Buffer []byte

	// RevByteOrder records that pixels are stored R G B instead of B G R,
	// as rendering with RenderOptions.RevByteOrder produces.
	RevByteOrder bool
}

// BitmapOption is a functional option for bitmap constructors.
type BitmapOption func(*BitmapOptions)

// WithStride sets the row length in bytes.
func WithStride(stride int) BitmapOption {
	return func(o *BitmapOptions) {
		o.Stride = stride
	}
}

// WithBuffer renders into buf instead of a fresh allocation.
func WithBuffer(buf []byte) BitmapOption {
	return func(o *BitmapOptions) {
		o.Buffer = buf
	}
}

// WithRevByteOrder marks the bitmap as RGB(A) ordered.
func WithRevByteOrder(rev bool) BitmapOption {
	return func(o *BitmapOptions) {
		o.RevByteOrder = rev
	}
}

func bitmapOptions(options []BitmapOption) BitmapOptions {
	var o BitmapOptions
	for _, opt := range options {
		opt(&o)
	}
	return o
}

const (
	// maxBitmapDim bounds widths, heights and strides to PDFium's int.
	maxBitmapDim = math.MaxInt32
	// maxBitmapBytes is PDFium's own limit: stride*height is a uint32.
	maxBitmapBytes = math.MaxUint32
)

// bitmapLayout checks a bitmap's dimensions and returns its stride and
// buffer size. A zero stride means packed rows.
func bitmapLayout(width, height, channels, stride int) (int, int, error) {
	if width <= 0 || height <= 0 || width > maxBitmapDim || height > maxBitmapDim {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrBitmapSize, width, height)
	}
	if width > maxBitmapDim/channels {
		return 0, 0, fmt.Errorf("%w: rows of %d pixels at %d bytes each", ErrBitmapSize, width, channels)
	}
	row := width * channels
	if stride == 0 {
		stride = row
	}
	if stride < row {
		return 0, 0, fmt.Errorf("pdfgo: stride %d is less than %d bytes per row", stride, row)
	}
	if stride > maxBitmapDim || stride > maxBitmapBytes/height {
		return 0, 0, fmt.Errorf("%w: %d rows of %d bytes", ErrBitmapSize, height, stride)
	}
	return stride, stride * height, nil
}

func releaseBitmap(raw uintptr) {
	fpdf.BitmapDestroy(fpdf.Bitmap(raw))
}

// NewNativeBitmap creates a bitmap over Go memory. The buffer is pinned
// until the bitmap is released and counts against the pinned memory limit.
func NewNativeBitmap(width, height int, format BitmapFormat, options ...BitmapOption) (*Bitmap, error) {
	if !bindings.Initialized() {
		return nil, ErrNotInitialized
	}
	info, err := lookupFormat(format)
	if err != nil {
		return nil, err
	}
	o := bitmapOptions(options)
	stride, size, err := bitmapLayout(width, height, info.channels, o.Stride)
	if err != nil {
		return nil, err
	}
	buf := o.Buffer
	if buf == nil {
		buf = make([]byte, size)
	}
	if len(buf) < size {
		return nil, fmt.Errorf("pdfgo: buffer of %d bytes is smaller than %d", len(buf), size)
	}
	buf = buf[:size:size]

	pinned, err := pinBuffer(buf)
	if err != nil {
		return nil, err
	}
	h := fpdf.BitmapCreateEx(width, height, format, unsafe.Pointer(unsafe.SliceData(buf)), stride)
	if h == 0 {
		err := allocError("FPDFBitmap_CreateEx")
		pinned.release()
		return nil, err
	}

	b := &Bitmap{
		buffer:       buf,
		width:        width,
		height:       height,
		stride:       stride,
		format:       format,
		channels:     info.channels,
		revByteOrder: o.RevByteOrder,
		origin:       HostAllocated,
	}
	if err := b.acquire(h, lifecycle.WithHostCleanup(pinned.release)); err != nil {
		pinned.release()
		return nil, err
	}
	return b, nil
}

// NewForeignBitmap creates a bitmap whose memory PDFium allocates. Unless
// forcePacked is set PDFium picks the stride, which may include padding.
func NewForeignBitmap(width, height int, format BitmapFormat, forcePacked bool, options ...BitmapOption) (*Bitmap, error) {
	if !bindings.Initialized() {
		return nil, ErrNotInitialized
	}
	info, err := lookupFormat(format)
	if err != nil {
		return nil, err
	}
	o := bitmapOptions(options)
	if o.Buffer != nil || o.Stride != 0 {
		return nil, errors.New("pdfgo: WithBuffer and WithStride apply to native bitmaps only")
	}
	stride, _, err := bitmapLayout(width, height, info.channels, 0)
	if err != nil {
		return nil, err
	}
	if !forcePacked {
		stride = 0
	}
	h := fpdf.BitmapCreateEx(width, height, format, nil, stride)
	if h == 0 {
		return nil, allocError("FPDFBitmap_CreateEx")
	}
	return newForeign(h, o.RevByteOrder)
}

// NewForeignSimpleBitmap creates a packed BGRA (useAlpha) or BGRx bitmap
// with FPDFBitmap_Create.
func NewForeignSimpleBitmap(width, height int, useAlpha bool, options ...BitmapOption) (*Bitmap, error) {
	if !bindings.Initialized() {
		return nil, ErrNotInitialized
	}
	if _, _, err := bitmapLayout(width, height, 4, 0); err != nil {
		return nil, err
	}
	o := bitmapOptions(options)
	if o.Buffer != nil || o.Stride != 0 {
		return nil, errors.New("pdfgo: WithBuffer and WithStride apply to native bitmaps only")
	}
	h := fpdf.BitmapCreate(width, height, useAlpha)
	if h == 0 {
		return nil, allocError("FPDFBitmap_Create")
	}
	return newForeign(h, o.RevByteOrder)
}

// newForeign reads a library-allocated bitmap's layout back from PDFium.
func newForeign(h fpdf.Bitmap, rev bool) (*Bitmap, error) {
	d := fpdf.BitmapDescribe(h)
	info, err := lookupFormat(d.Format)
	if err == nil && (d.Buffer == nil || d.Stride < d.Width*info.channels) {
		err = fmt.Errorf("pdfgo: PDFium reported an unusable bitmap layout %+v", d)
	}
	if err != nil {
		releaseBitmap(uintptr(h))
		return nil, err
	}
	size := d.Stride * d.Height
	b := &Bitmap{
		buffer:       unsafe.Slice((*byte)(d.Buffer), size)[:size:size],
		width:        d.Width,
		height:       d.Height,
		stride:       d.Stride,
		format:       d.Format,
		channels:     info.channels,
		revByteOrder: rev,
		origin:       LibraryAllocated,
	}
	if err := b.acquire(h); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bitmap) acquire(h fpdf.Bitmap, opts ...lifecycle.Option) error {
	label := fmt.Sprintf("%dx%d", b.width, b.height)
	n, err := lifecycle.Acquire(b, uintptr(h), KindBitmap, nil, releaseBitmap,
		append(opts, lifecycle.WithLabel(label))...)
	if err != nil {
		releaseBitmap(uintptr(h))
		return err
	}
	b.node = n
	return nil
}

// Close destroys the bitmap and, for host-allocated memory, unpins it.
func (b *Bitmap) Close() bool {
	return b.node.Close()
}

// Closed reports whether the bitmap has been closed.
func (b *Bitmap) Closed() bool {
	return b.node.Closed()
}

// Node returns the lifecycle node of the bitmap.
func (b *Bitmap) Node() *lifecycle.Node {
	return b.node
}

func (b *Bitmap) handle() (fpdf.Bitmap, error) {
	raw, ok := b.node.Live()
	if !ok {
		return 0, ErrClosed
	}
	return fpdf.Bitmap(raw), nil
}

func (b *Bitmap) Width() int              { return b.width }
func (b *Bitmap) Height() int             { return b.height }
func (b *Bitmap) Stride() int             { return b.stride }
func (b *Bitmap) Format() BitmapFormat    { return b.format }
func (b *Bitmap) Channels() int           { return b.channels }
func (b *Bitmap) RevByteOrder() bool      { return b.revByteOrder }
func (b *Bitmap) Origin() BufferOrigin    { return b.origin }
func (b *Bitmap) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

// Mode returns the channel order of the pixels in memory.
func (b *Bitmap) Mode() string {
	return formats[b.format].order(b.revByteOrder)
}

// Packed reports whether rows have no padding.
func (b *Bitmap) Packed() bool {
	return b.stride == b.width*b.channels
}

// Buffer returns the bitmap memory, Stride*Height bytes. It aliases the
// bitmap; see the type documentation for how long it stays valid.
func (b *Bitmap) Buffer() []byte {
	return b.buffer
}

// BitmapInfo summarizes a bitmap.
type BitmapInfo struct {
	Width, Height, Stride int
	Format                BitmapFormat
	RevByteOrder          bool
	Channels              int
	Mode                  string
	Origin                BufferOrigin
}

// Info returns the bitmap's layout.
func (b *Bitmap) Info() BitmapInfo {
	return BitmapInfo{
		Width:        b.width,
		Height:       b.height,
		Stride:       b.stride,
		Format:       b.format,
		RevByteOrder: b.revByteOrder,
		Channels:     b.channels,
		Mode:         b.Mode(),
		Origin:       b.origin,
	}
}

// colorToHex packs c as 0xAARRGGBB the way FPDFBitmap_FillRect reads it.
// With reversed byte order red and blue swap places, so the bytes land in
// memory as R G B A.
func colorToHex(c color.Color, rev bool) uint32 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	hi, lo := n.R, n.B
	if rev {
		hi, lo = n.B, n.R
	}
	return uint32(n.A)<<24 | uint32(hi)<<16 | uint32(n.G)<<8 | uint32(lo)
}

// FillRect fills r with c. An empty rectangle does nothing; a rectangle
// reaching outside the bitmap is ErrInvalidRect.
func (b *Bitmap) FillRect(c color.Color, r image.Rectangle) error {
	defer runtime.KeepAlive(b)
	h, err := b.handle()
	if err != nil {
		return err
	}
	if r.Empty() {
		return nil
	}
	if !r.In(b.Bounds()) {
		return fmt.Errorf("%w: %v outside %v", ErrInvalidRect, r, b.Bounds())
	}
	if !fpdf.BitmapFillRect(h, r.Min.X, r.Min.Y, r.Dx(), r.Dy(), colorToHex(c, b.revByteOrder)) {
		return opError("FPDFBitmap_FillRect")
	}
	return nil
}

// FromImage copies img into a new host-allocated bitmap: Gray for
// *image.Gray, RGB for opaque images and RGBA otherwise (reversed byte
// order, so AsImage can alias the result).
func FromImage(img image.Image) (*Bitmap, error) {
	r := img.Bounds()
	format := FormatBGRA
	switch {
	case isGray(img):
		format = FormatGray
	case isOpaque(img):
		format = FormatBGR
	}
	b, err := NewNativeBitmap(r.Dx(), r.Dy(), format, WithRevByteOrder(true))
	if err != nil {
		return nil, err
	}
	arr := b.AsArray()
	for y := range r.Dy() {
		for x := range r.Dx() {
			c := img.At(r.Min.X+x, r.Min.Y+y)
			if format == FormatGray {
				arr.Set(y, x, 0, color.GrayModel.Convert(c).(color.Gray).Y)
				continue
			}
			n := color.NRGBAModel.Convert(c).(color.NRGBA)
			arr.Set(y, x, 0, n.R)
			arr.Set(y, x, 1, n.G)
			arr.Set(y, x, 2, n.B)
			if format == FormatBGRA {
				arr.Set(y, x, 3, n.A)
			}
		}
	}
	return b, nil
}

func isGray(img image.Image) bool {
	return img.ColorModel() == color.GrayModel
}

func isOpaque(img image.Image) bool {
	o, ok := img.(interface{ Opaque() bool })
	return ok && o.Opaque()
}
