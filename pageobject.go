//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"errors"
	"image/color"
	"runtime"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
	"github.com/obinnaokechukwu/pdfgo/internal/bindings"
	"github.com/obinnaokechukwu/pdfgo/lifecycle"
)

// ObjectType is the kind of a page object.
type ObjectType = fpdf.ObjectType

const (
	ObjectUnknown = fpdf.ObjectUnknown
	ObjectText    = fpdf.ObjectText
	ObjectPath    = fpdf.ObjectPath
	ObjectImage   = fpdf.ObjectImage
	ObjectShading = fpdf.ObjectShading
	ObjectForm    = fpdf.ObjectForm
)

// Rect is a rectangle in PDF user space (points, origin bottom left).
type Rect struct {
	Left, Bottom, Right, Top float32
}

// PageObject is a text, path, image, shading or form XObject on a page.
// Objects obtained from Page.Object are owned by the page. Objects created
// with NewRectObject or Document.NewImageObject, or removed from their
// page, are loose: they own their handle until inserted into a page.
//
// An object bound to a document (every object except a fresh rectangle)
// stays a child of that document while loose, so it is destroyed before
// the document closes.
type PageObject struct {
	node *lifecycle.Node
	page *Page     // nil while loose
	doc  *Document // nil until the object is tied to a document
}

func releasePageObject(raw uintptr) {
	fpdf.DestroyObject(fpdf.PageObject(raw))
}

// NewRectObject creates a loose rectangle path at (x, y) with the given
// size in points.
func NewRectObject(x, y, width, height float32) (*PageObject, error) {
	if !bindings.Initialized() {
		return nil, ErrNotInitialized
	}
	oh := fpdf.NewRectObject(x, y, width, height)
	if oh == 0 {
		return nil, allocError("FPDFPageObj_CreateNewRect")
	}
	obj := &PageObject{}
	n, err := lifecycle.Acquire(obj, uintptr(oh), KindPageObject, nil, releasePageObject)
	if err != nil {
		releasePageObject(uintptr(oh))
		return nil, err
	}
	obj.node = n
	return obj, nil
}

// Close invalidates the object. A loose object is destroyed; an object on
// a page is only forgotten, since the page owns it.
func (o *PageObject) Close() bool {
	return o.node.Close()
}

// Closed reports whether the object, or the page it is on, is closed.
func (o *PageObject) Closed() bool {
	return o.node.TreeClosed()
}

// Document returns the document the object belongs to, or nil for a
// rectangle that has never been on a page.
func (o *PageObject) Document() *Document {
	return o.doc
}

// Page returns the page the object is on, or nil while loose.
func (o *PageObject) Page() *Page {
	return o.page
}

// Loose reports whether the object owns its handle.
func (o *PageObject) Loose() bool {
	return o.node.Owning()
}

func (o *PageObject) handle() (fpdf.PageObject, error) {
	raw, ok := o.node.Live()
	if !ok {
		return 0, ErrClosed
	}
	return fpdf.PageObject(raw), nil
}

// Type returns the object type.
func (o *PageObject) Type() ObjectType {
	defer runtime.KeepAlive(o)
	h, err := o.handle()
	if err != nil {
		return fpdf.ObjectUnknown
	}
	return fpdf.ObjectTypeOf(h)
}

// Bounds returns the object's bounding box in page coordinates.
func (o *PageObject) Bounds() (Rect, error) {
	defer runtime.KeepAlive(o)
	h, err := o.handle()
	if err != nil {
		return Rect{}, err
	}
	l, b, r, t, ok := fpdf.ObjectBounds(h)
	if !ok {
		return Rect{}, opError("FPDFPageObj_GetBounds")
	}
	return Rect{Left: l, Bottom: b, Right: r, Top: t}, nil
}

// Pos returns the bounding box of an object that is on a page. Loose
// objects have no page coordinates and get an error.
func (o *PageObject) Pos() (Rect, error) {
	if o.page == nil {
		return Rect{}, errors.New("pdfgo: loose page object has no position")
	}
	return o.Bounds()
}

// Matrix returns the transform from object space to page space.
func (o *PageObject) Matrix() (Matrix, error) {
	defer runtime.KeepAlive(o)
	h, err := o.handle()
	if err != nil {
		return Matrix{}, err
	}
	m, ok := fpdf.ObjectMatrix(h)
	if !ok {
		return Matrix{}, opError("FPDFPageObj_GetMatrix")
	}
	return Matrix(m), nil
}

// SetMatrix replaces the object's transform.
func (o *PageObject) SetMatrix(m Matrix) error {
	defer runtime.KeepAlive(o)
	h, err := o.handle()
	if err != nil {
		return err
	}
	if !fpdf.SetObjectMatrix(h, fpdf.Matrix(m)) {
		return opError("FPDFPageObj_SetMatrix")
	}
	return nil
}

// Transform applies m after the object's current transform.
func (o *PageObject) Transform(m Matrix) error {
	defer runtime.KeepAlive(o)
	h, err := o.handle()
	if err != nil {
		return err
	}
	if !fpdf.TransformObject(h, fpdf.Matrix(m)) {
		return opError("FPDFPageObj_Transform")
	}
	return nil
}

// SetFillColor sets the fill color and, for paths, turns filling on.
func (o *PageObject) SetFillColor(c color.Color) error {
	defer runtime.KeepAlive(o)
	h, err := o.handle()
	if err != nil {
		return err
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if !fpdf.SetObjectFill(h, n.R, n.G, n.B, n.A) {
		return opError("FPDFPageObj_SetFillColor")
	}
	if fpdf.ObjectTypeOf(h) == fpdf.ObjectPath && !fpdf.SetPathDrawMode(h, fpdf.FillWinding, false) {
		return opError("FPDFPath_SetDrawMode")
	}
	return nil
}
