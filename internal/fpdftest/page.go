//go:build !ios && !android && (amd64 || arm64)

package fpdftest

import (
	"slices"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
)

type page struct {
	h       fpdf.Page
	doc     fpdf.Document
	index   int
	data    *pageData
	objects []fpdf.PageObject
	formed  bool // FORM_OnAfterLoadPage seen
}

type object struct {
	h    fpdf.PageObject
	typ  fpdf.ObjectType
	page fpdf.Page     // 0 while loose
	doc  fpdf.Document // document the object's resources live in, or 0
	// Object space extent; the reported bounds are this box mapped
	// through matrix.
	left, bottom, right, top float32
	matrix                   fpdf.Matrix
	fill                     [4]uint32
	fillMode                 fpdf.FillMode
	stroke                   bool
	image                    *imageData // image objects only
}

var identity = fpdf.Matrix{A: 1, D: 1}

func (f *Fake) page(name string, h fpdf.Page) *page {
	p, ok := f.pages[h]
	if !ok {
		f.violate("%s(%#x): unknown or closed page", name, h)
		return nil
	}
	if _, ok := f.docs[p.doc]; !ok {
		f.violate("%s(%#x): document %#x already closed", name, h, p.doc)
	}
	return p
}

func (f *Fake) openPage(d *document, index int) fpdf.Page {
	p := &page{h: fpdf.Page(f.handle()), doc: d.h, index: index, data: d.pages[index]}
	// Every page starts with the text object drawing its line.
	if p.data.text != "" {
		o := &object{h: fpdf.PageObject(f.handle()), typ: fpdf.ObjectText, page: p.h, doc: d.h, matrix: identity,
			left: 72, bottom: float32(p.data.height - 72), right: 72 + 12*float32(len(p.data.text)), top: float32(p.data.height - 48)}
		f.objects[o.h] = o
		p.objects = append(p.objects, o.h)
	}
	f.pages[p.h] = p
	return p.h
}

func (f *Fake) loadPage(h fpdf.Document, index int32) fpdf.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDF_LoadPage", uintptr(h))
	d := f.doc("FPDF_LoadPage", h)
	if d == nil {
		return 0
	}
	if index < 0 || int(index) >= len(d.pages) {
		f.lastErr = fpdf.ErrPage
		return 0
	}
	return f.openPage(d, int(index))
}

func (f *Fake) newPage(h fpdf.Document, index int32, width, height float64) fpdf.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFPage_New", uintptr(h))
	d := f.doc("FPDFPage_New", h)
	if d == nil {
		return 0
	}
	i := min(max(int(index), 0), len(d.pages))
	d.pages = slices.Insert(d.pages, i, &pageData{width: width, height: height})
	return f.openPage(d, i)
}

func (f *Fake) deletePage(h fpdf.Document, index int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFPage_Delete", uintptr(h))
	d := f.doc("FPDFPage_Delete", h)
	if d == nil || index < 0 || int(index) >= len(d.pages) {
		return
	}
	d.pages = slices.Delete(d.pages, int(index), int(index)+1)
}

func (f *Fake) closePage(h fpdf.Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDF_ClosePage", uintptr(h))
	p := f.page("FPDF_ClosePage", h)
	if p == nil {
		return
	}
	for th, tp := range f.texts {
		if tp.page == h {
			f.violate("FPDF_ClosePage(%#x): text page %#x still open", h, th)
		}
	}
	if d := f.docs[p.doc]; d != nil && d.form != 0 && p.formed {
		f.violate("FPDF_ClosePage(%#x): FORM_OnBeforeClosePage not called", h)
	}
	for _, o := range p.objects {
		delete(f.objects, o)
	}
	delete(f.pages, h)
}

func (f *Fake) pageWidth(h fpdf.Page) float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.page("FPDF_GetPageWidthF", h); p != nil {
		return float32(p.data.width)
	}
	return 0
}

func (f *Fake) pageHeight(h fpdf.Page) float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.page("FPDF_GetPageHeightF", h); p != nil {
		return float32(p.data.height)
	}
	return 0
}

func (f *Fake) getRotation(h fpdf.Page) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.page("FPDFPage_GetRotation", h); p != nil {
		return int32(p.data.rotate)
	}
	return 0
}

func (f *Fake) setRotation(h fpdf.Page, rotate int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.page("FPDFPage_SetRotation", h); p != nil {
		p.data.rotate = int(rotate) % 4
	}
}

// renderPageBitmap paints the target area with PageColor(index).
func (f *Fake) renderPageBitmap(bh fpdf.Bitmap, ph fpdf.Page, startX, startY, sizeX, sizeY, rotate int32, flags fpdf.RenderFlags) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDF_RenderPageBitmap", uintptr(ph))
	p := f.page("FPDF_RenderPageBitmap", ph)
	b := f.bitmap("FPDF_RenderPageBitmap", bh)
	if p == nil || b == nil {
		return
	}
	if rotate < 0 || rotate > 3 {
		f.violate("FPDF_RenderPageBitmap: rotation %d", rotate)
	}
	c := PageColor(p.index)
	if flags&fpdf.RenderGrayscale != 0 {
		y := gray(c.R, c.G, c.B)
		c.R, c.G, c.B = y, y, y
	}
	b.fill(int(startX), int(startY), int(sizeX), int(sizeY), c, flags&fpdf.RenderReverseByteOrder != 0)
}

func (f *Fake) countObjects(h fpdf.Page) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.page("FPDFPage_CountObjects", h); p != nil {
		return int32(len(p.objects))
	}
	return -1
}

func (f *Fake) getObject(h fpdf.Page, index int32) fpdf.PageObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.page("FPDFPage_GetObject", h)
	if p == nil || index < 0 || int(index) >= len(p.objects) {
		return 0
	}
	return p.objects[index]
}

func (f *Fake) object(name string, h fpdf.PageObject) *object {
	o, ok := f.objects[h]
	if !ok {
		f.violate("%s(%#x): unknown or freed page object", name, h)
	}
	return o
}

func (f *Fake) insertObject(ph fpdf.Page, oh fpdf.PageObject) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFPage_InsertObject", uintptr(oh))
	p := f.page("FPDFPage_InsertObject", ph)
	o := f.object("FPDFPage_InsertObject", oh)
	if p == nil || o == nil {
		return
	}
	if o.page != 0 {
		f.violate("FPDFPage_InsertObject(%#x): object already on page %#x", oh, o.page)
		return
	}
	if o.doc != 0 && o.doc != p.doc {
		f.violate("FPDFPage_InsertObject(%#x): object belongs to document %#x, page to %#x", oh, o.doc, p.doc)
		return
	}
	o.page, o.doc = ph, p.doc
	p.objects = append(p.objects, oh)
}

func (f *Fake) removeObject(ph fpdf.Page, oh fpdf.PageObject) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFPage_RemoveObject", uintptr(oh))
	p := f.page("FPDFPage_RemoveObject", ph)
	o := f.object("FPDFPage_RemoveObject", oh)
	if p == nil || o == nil || o.page != ph {
		return 0
	}
	p.objects = slices.DeleteFunc(p.objects, func(x fpdf.PageObject) bool { return x == oh })
	o.page = 0
	return 1
}

func (f *Fake) generateContent(h fpdf.Page) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFPage_GenerateContent", uintptr(h))
	if f.page("FPDFPage_GenerateContent", h) == nil {
		return 0
	}
	return 1
}

func (f *Fake) createRect(x, y, w, h float32) fpdf.PageObject {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := &object{h: fpdf.PageObject(f.handle()), typ: fpdf.ObjectPath, left: x, bottom: y, right: x + w, top: y + h, matrix: identity}
	f.objects[o.h] = o
	f.record("FPDFPageObj_CreateNewRect", uintptr(o.h))
	return o.h
}

func (f *Fake) destroyObject(h fpdf.PageObject) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFPageObj_Destroy", uintptr(h))
	o := f.object("FPDFPageObj_Destroy", h)
	if o == nil {
		return
	}
	if o.page != 0 {
		f.violate("FPDFPageObj_Destroy(%#x): object is owned by page %#x", h, o.page)
		return
	}
	delete(f.objects, h)
}

func (f *Fake) objectType(h fpdf.PageObject) fpdf.ObjectType {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o := f.object("FPDFPageObj_GetType", h); o != nil {
		return o.typ
	}
	return fpdf.ObjectUnknown
}

func (f *Fake) objectBounds(h fpdf.PageObject, l, b, r, t *float32) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.object("FPDFPageObj_GetBounds", h)
	if o == nil {
		return 0
	}
	*l, *b, *r, *t = o.bounds()
	return 1
}

func (f *Fake) setFill(h fpdf.PageObject, r, g, b, a uint32) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.object("FPDFPageObj_SetFillColor", h)
	if o == nil || r > 255 || g > 255 || b > 255 || a > 255 {
		return 0
	}
	o.fill = [4]uint32{r, g, b, a}
	return 1
}

func (f *Fake) setDrawMode(h fpdf.PageObject, mode fpdf.FillMode, stroke int32) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.object("FPDFPath_SetDrawMode", h)
	if o == nil || o.typ != fpdf.ObjectPath {
		return 0
	}
	o.fillMode, o.stroke = mode, stroke != 0
	return 1
}
