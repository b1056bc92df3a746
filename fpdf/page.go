//go:build !ios && !android && (amd64 || arm64)

package fpdf

import "github.com/obinnaokechukwu/pdfgo/internal/callgate"

// LoadPage loads page index of doc, or returns 0.
func LoadPage(doc Document, index int) Page {
	t := table()
	if t == nil {
		return 0
	}
	return callgate.Call(func() Page { return t.LoadPage(doc, int32(index)) })
}

// ClosePage releases page. Text pages loaded from it must be closed first.
func ClosePage(page Page) {
	t := table()
	if t == nil || page == 0 {
		return
	}
	callgate.Do(func() { t.ClosePage(page) })
}

// NewPage inserts a blank page of the given size (in points) at index.
func NewPage(doc Document, index int, width, height float64) Page {
	t := table()
	if t == nil {
		return 0
	}
	return callgate.Call(func() Page { return t.NewPage(doc, int32(index), width, height) })
}

// DeletePage removes page index from doc.
func DeletePage(doc Document, index int) {
	t := table()
	if t == nil {
		return
	}
	callgate.Do(func() { t.DeletePage(doc, int32(index)) })
}

// PageSize returns the page width and height in points.
func PageSize(page Page) (width, height float32) {
	t := table()
	if t == nil {
		return 0, 0
	}
	return callgate.Call2(func() (float32, float32) {
		return t.GetPageWidthF(page), t.GetPageHeightF(page)
	})
}

// PageRotation returns the /Rotate value as 0..3 quarter turns.
func PageRotation(page Page) int {
	t := table()
	if t == nil {
		return 0
	}
	return int(callgate.Call(func() int32 { return t.GetPageRotation(page) }))
}

// SetPageRotation sets /Rotate to rotate quarter turns.
func SetPageRotation(page Page, rotate int) {
	t := table()
	if t == nil {
		return
	}
	callgate.Do(func() { t.SetPageRotation(page, int32(rotate)) })
}

// RenderPageBitmap draws page into bmp. When form is non-zero, form fields
// are drawn on top with FPDF_FFLDraw in the same gated call.
func RenderPageBitmap(bmp Bitmap, page Page, form FormHandle, startX, startY, sizeX, sizeY, rotate int, flags RenderFlags) {
	t := table()
	if t == nil {
		return
	}
	callgate.Do(func() {
		t.RenderPageBitmap(bmp, page, int32(startX), int32(startY), int32(sizeX), int32(sizeY), int32(rotate), flags)
		if form != 0 && t.FFLDraw != nil {
			t.FFLDraw(form, bmp, page, int32(startX), int32(startY), int32(sizeX), int32(sizeY), int32(rotate), flags)
		}
	})
}

// CountObjects returns the number of top-level page objects.
func CountObjects(page Page) int {
	t := table()
	if t == nil {
		return 0
	}
	return int(callgate.Call(func() int32 { return t.CountObjects(page) }))
}

// GetObject returns page object index. The page keeps ownership.
func GetObject(page Page, index int) PageObject {
	t := table()
	if t == nil {
		return 0
	}
	return callgate.Call(func() PageObject { return t.GetObject(page, int32(index)) })
}

// InsertObject transfers ownership of obj to page.
func InsertObject(page Page, obj PageObject) {
	t := table()
	if t == nil {
		return
	}
	callgate.Do(func() { t.InsertObject(page, obj) })
}

// RemoveObject detaches obj from page; the caller owns it afterwards.
func RemoveObject(page Page, obj PageObject) bool {
	t := table()
	if t == nil {
		return false
	}
	return callgate.Call(func() int32 { return t.RemoveObject(page, obj) }) != 0
}

// GenerateContent rewrites the page content stream after object edits.
func GenerateContent(page Page) bool {
	t := table()
	if t == nil {
		return false
	}
	return callgate.Call(func() int32 { return t.GenerateContent(page) }) != 0
}

// NewRectObject creates a loose rectangle path object owned by the caller.
func NewRectObject(x, y, w, h float32) PageObject {
	t := table()
	if t == nil {
		return 0
	}
	return callgate.Call(func() PageObject { return t.CreateRectObject(x, y, w, h) })
}

// DestroyObject frees a page object that is not attached to any page.
func DestroyObject(obj PageObject) {
	t := table()
	if t == nil || obj == 0 {
		return
	}
	callgate.Do(func() { t.DestroyObject(obj) })
}

// ObjectTypeOf returns the FPDF_PAGEOBJ_* type of obj.
func ObjectTypeOf(obj PageObject) ObjectType {
	t := table()
	if t == nil {
		return ObjectUnknown
	}
	return callgate.Call(func() ObjectType { return t.GetObjectType(obj) })
}

// ObjectBounds returns the object's bounding box in page coordinates.
func ObjectBounds(obj PageObject) (left, bottom, right, top float32, ok bool) {
	t := table()
	if t == nil {
		return 0, 0, 0, 0, false
	}
	ret := callgate.Call(func() int32 { return t.GetObjectBounds(obj, &left, &bottom, &right, &top) })
	return left, bottom, right, top, ret != 0
}

// SetObjectFill sets the fill color of obj.
func SetObjectFill(obj PageObject, r, g, b, a uint8) bool {
	t := table()
	if t == nil {
		return false
	}
	return callgate.Call(func() int32 {
		return t.SetObjectFillRGBA(obj, uint32(r), uint32(g), uint32(b), uint32(a))
	}) != 0
}

// SetPathDrawMode sets how a path object is painted.
func SetPathDrawMode(obj PageObject, fill FillMode, stroke bool) bool {
	t := table()
	if t == nil {
		return false
	}
	var s int32
	if stroke {
		s = 1
	}
	return callgate.Call(func() int32 { return t.SetPathDrawMode(obj, fill, s) }) != 0
}
