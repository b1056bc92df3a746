//go:build !ios && !android && (amd64 || arm64)

package fpdf

import (
	"runtime"
	"unsafe"

	"github.com/obinnaokechukwu/pdfgo/internal/callgate"
)

// NewImageObject creates an empty, loose image object bound to doc. The
// caller owns it until it is inserted into a page.
func NewImageObject(doc Document) PageObject {
	t := table()
	if t == nil || t.NewImageObject == nil {
		return 0
	}
	return callgate.Call(func() PageObject { return t.NewImageObject(doc) })
}

func pagesPtr(pages []Page) *Page {
	if len(pages) == 0 {
		return nil
	}
	return &pages[0]
}

// ImageSetBitmap replaces the image data of obj with a copy of bmp. pages
// are the loaded pages whose cached content must be dropped.
func ImageSetBitmap(pages []Page, obj PageObject, bmp Bitmap) bool {
	t := table()
	if t == nil || t.ImageSetBitmap == nil {
		return false
	}
	ok := callgate.Call(func() int32 { return t.ImageSetBitmap(pagesPtr(pages), int32(len(pages)), obj, bmp) }) != 0
	runtime.KeepAlive(pages)
	return ok
}

// ImageBitmap returns a new bitmap with the image's pixels as stored. The
// caller owns it.
func ImageBitmap(obj PageObject) Bitmap {
	t := table()
	if t == nil || t.ImageGetBitmap == nil {
		return 0
	}
	return callgate.Call(func() Bitmap { return t.ImageGetBitmap(obj) })
}

// ImageRenderedBitmap renders obj with its matrix and masks applied. page
// may be 0 for a loose object. The caller owns the result.
func ImageRenderedBitmap(doc Document, page Page, obj PageObject) Bitmap {
	t := table()
	if t == nil || t.ImageGetRenderedBitmap == nil {
		return 0
	}
	return callgate.Call(func() Bitmap { return t.ImageGetRenderedBitmap(doc, page, obj) })
}

// ImageLoadJPEGInline reads a JPEG through access and embeds it into obj.
// Inline loading consumes the data during the call, so access may be
// released as soon as it returns.
func ImageLoadJPEGInline(pages []Page, obj PageObject, access *FileAccess) bool {
	t := table()
	if t == nil || t.ImageLoadJpegFileInline == nil {
		return false
	}
	ok := callgate.Call(func() int32 {
		return t.ImageLoadJpegFileInline(pagesPtr(pages), int32(len(pages)), obj, access)
	}) != 0
	runtime.KeepAlive(pages)
	runtime.KeepAlive(access)
	return ok
}

// ImageData returns the image stream of obj, decoded (filters removed) or
// raw. It returns nil if the data is unavailable.
func ImageData(obj PageObject, decoded bool) []byte {
	t := table()
	if t == nil {
		return nil
	}
	get := t.ImageGetImageDataRaw
	if decoded {
		get = t.ImageGetImageDataDecoded
	}
	if get == nil {
		return nil
	}
	return callgate.Call(func() []byte {
		n := get(obj, nil, 0)
		if n == 0 {
			return nil
		}
		buf := make([]byte, n)
		got := get(obj, unsafe.Pointer(unsafe.SliceData(buf)), n)
		return buf[:min(got, n)]
	})
}

// ObjectMatrix returns the transform of obj.
func ObjectMatrix(obj PageObject) (Matrix, bool) {
	t := table()
	if t == nil || t.GetObjectMatrix == nil {
		return Matrix{}, false
	}
	var m Matrix
	ok := callgate.Call(func() int32 { return t.GetObjectMatrix(obj, &m) }) != 0
	return m, ok
}

// SetObjectMatrix replaces the transform of obj.
func SetObjectMatrix(obj PageObject, m Matrix) bool {
	t := table()
	if t == nil || t.SetObjectMatrix == nil {
		return false
	}
	return callgate.Call(func() int32 { return t.SetObjectMatrix(obj, &m) }) != 0
}

// TransformObject post-multiplies the transform of obj by m.
func TransformObject(obj PageObject, m Matrix) bool {
	t := table()
	if t == nil || t.TransformObject == nil {
		return false
	}
	callgate.Do(func() {
		t.TransformObject(obj, float64(m.A), float64(m.B), float64(m.C), float64(m.D), float64(m.E), float64(m.F))
	})
	return true
}

func (t *Table) boxGetter(box BoxType) func(Page, *float32, *float32, *float32, *float32) int32 {
	switch box {
	case MediaBox:
		return t.GetMediaBox
	case CropBox:
		return t.GetCropBox
	case BleedBox:
		return t.GetBleedBox
	case TrimBox:
		return t.GetTrimBox
	case ArtBox:
		return t.GetArtBox
	}
	return nil
}

func (t *Table) boxSetter(box BoxType) func(Page, float32, float32, float32, float32) {
	switch box {
	case MediaBox:
		return t.SetMediaBox
	case CropBox:
		return t.SetCropBox
	case BleedBox:
		return t.SetBleedBox
	case TrimBox:
		return t.SetTrimBox
	case ArtBox:
		return t.SetArtBox
	}
	return nil
}

// PageBox returns the box as stored in the page dictionary. ok is false
// if the page does not define it.
func PageBox(page Page, box BoxType) (left, bottom, right, top float32, ok bool) {
	t := table()
	if t == nil {
		return 0, 0, 0, 0, false
	}
	get := t.boxGetter(box)
	if get == nil {
		return 0, 0, 0, 0, false
	}
	ret := callgate.Call(func() int32 { return get(page, &left, &bottom, &right, &top) })
	return left, bottom, right, top, ret != 0
}

// SetPageBox writes the box into the page dictionary.
func SetPageBox(page Page, box BoxType, left, bottom, right, top float32) bool {
	t := table()
	if t == nil {
		return false
	}
	set := t.boxSetter(box)
	if set == nil {
		return false
	}
	callgate.Do(func() { set(page, left, bottom, right, top) })
	return true
}
