//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
	"github.com/obinnaokechukwu/pdfgo/lifecycle"
)

// Page is a loaded page. It keeps its document reachable, so a page can
// outlive the caller's reference to the *Document; closing the document
// still closes the page.
type Page struct {
	node  *lifecycle.Node
	doc   *Document
	index int
	form  fpdf.FormHandle // environment the page was loaded under, or 0
}

// Close closes text pages and page objects obtained from the page, then
// the page. It returns false if the page was already closed.
func (p *Page) Close() bool {
	return p.node.Close()
}

// Closed reports whether the page, or its document, has been closed.
func (p *Page) Closed() bool {
	return p.node.TreeClosed()
}

// Node returns the lifecycle node of the page.
func (p *Page) Node() *lifecycle.Node {
	return p.node
}

// Document returns the document the page was loaded from.
func (p *Page) Document() *Document {
	return p.doc
}

// Index returns the index the page was loaded at.
func (p *Page) Index() int {
	return p.index
}

func (p *Page) handle() (fpdf.Page, error) {
	raw, ok := p.node.Live()
	if !ok {
		return 0, ErrClosed
	}
	return fpdf.Page(raw), nil
}

// Size returns the page width and height in points, without rotation.
func (p *Page) Size() (width, height float64) {
	defer runtime.KeepAlive(p)
	h, err := p.handle()
	if err != nil {
		return 0, 0
	}
	w, ht := fpdf.PageSize(h)
	return float64(w), float64(ht)
}

// Rotation returns the page's /Rotate value in degrees (0, 90, 180, 270).
func (p *Page) Rotation() int {
	defer runtime.KeepAlive(p)
	h, err := p.handle()
	if err != nil {
		return 0
	}
	return fpdf.PageRotation(h) * 90
}

// SetRotation sets /Rotate. degrees must be a multiple of 90.
func (p *Page) SetRotation(degrees int) error {
	defer runtime.KeepAlive(p)
	h, err := p.handle()
	if err != nil {
		return err
	}
	turns, err := quarterTurns(degrees)
	if err != nil {
		return err
	}
	fpdf.SetPageRotation(h, turns)
	return nil
}

func quarterTurns(degrees int) (int, error) {
	if degrees%90 != 0 {
		return 0, fmt.Errorf("pdfgo: rotation %d is not a multiple of 90", degrees)
	}
	return ((degrees/90)%4 + 4) % 4, nil
}

// TextPage loads the text layer of the page.
func (p *Page) TextPage() (*TextPage, error) {
	defer runtime.KeepAlive(p)
	h, err := p.handle()
	if err != nil {
		return nil, err
	}
	th := fpdf.LoadTextPage(h)
	if th == 0 {
		return nil, allocError("FPDFText_LoadPage")
	}
	tp := &TextPage{page: p}
	n, err := lifecycle.Acquire(tp, uintptr(th), KindTextPage, p.node, releaseTextPage)
	if err != nil {
		releaseTextPage(uintptr(th))
		return nil, err
	}
	tp.node = n
	return tp, nil
}

// ObjectCount returns the number of top-level page objects.
func (p *Page) ObjectCount() int {
	defer runtime.KeepAlive(p)
	h, err := p.handle()
	if err != nil {
		return 0
	}
	return fpdf.CountObjects(h)
}

// Object returns page object index. The page owns it; the returned value is
// invalidated when the page closes.
func (p *Page) Object(index int) (*PageObject, error) {
	defer runtime.KeepAlive(p)
	h, err := p.handle()
	if err != nil {
		return nil, err
	}
	if n := fpdf.CountObjects(h); index < 0 || index >= n {
		return nil, fmt.Errorf("pdfgo: page object index %d out of range [0, %d)", index, n)
	}
	oh := fpdf.GetObject(h, index)
	if oh == 0 {
		return nil, allocError("FPDFPage_GetObject")
	}
	obj := &PageObject{page: p, doc: p.doc}
	n, err := lifecycle.Acquire(obj, uintptr(oh), KindPageObject, p.node, nil, lifecycle.WithoutFree())
	if err != nil {
		return nil, err
	}
	obj.node = n
	return obj, nil
}

// Objects returns every top-level page object.
func (p *Page) Objects() ([]*PageObject, error) {
	n := p.ObjectCount()
	objs := make([]*PageObject, 0, n)
	for i := range n {
		obj, err := p.Object(i)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, nil
}

// InsertObject moves a loose object onto the page. The page owns it
// afterwards and the object closes with the page. Call GenerateContent to
// make the change part of the saved document.
func (p *Page) InsertObject(obj *PageObject) error {
	defer runtime.KeepAlive(p)
	defer runtime.KeepAlive(obj)
	h, err := p.handle()
	if err != nil {
		return err
	}
	oh, err := obj.handle()
	if err != nil {
		return err
	}
	if obj.page != nil {
		return fmt.Errorf("pdfgo: page object already belongs to page %d", obj.page.index)
	}
	if obj.doc != nil && obj.doc != p.doc {
		return errors.New("pdfgo: page object belongs to another document")
	}
	if err := obj.node.Reparent(p.node); err != nil {
		return fmt.Errorf("pdfgo: insert page object: %w", err)
	}
	fpdf.InsertObject(h, oh)
	obj.page, obj.doc = p, p.doc
	return nil
}

// RemoveObject takes obj off the page. The caller owns it afterwards; it is
// destroyed when closed, collected or when its document closes, unless
// inserted again.
func (p *Page) RemoveObject(obj *PageObject) error {
	defer runtime.KeepAlive(p)
	defer runtime.KeepAlive(obj)
	h, err := p.handle()
	if err != nil {
		return err
	}
	oh, err := obj.handle()
	if err != nil {
		return err
	}
	if obj.page != p {
		return fmt.Errorf("pdfgo: page object is not on page %d", p.index)
	}
	if !fpdf.RemoveObject(h, oh) {
		return opError("FPDFPage_RemoveObject")
	}
	if err := lifecycle.Orphan(obj.node, p.doc.node, obj, releasePageObject); err != nil {
		return fmt.Errorf("pdfgo: remove page object: %w", err)
	}
	obj.page = nil
	return nil
}

// GenerateContent writes object edits into the page content stream.
func (p *Page) GenerateContent() error {
	defer runtime.KeepAlive(p)
	h, err := p.handle()
	if err != nil {
		return err
	}
	if !fpdf.GenerateContent(h) {
		return opError("FPDFPage_GenerateContent")
	}
	return nil
}
