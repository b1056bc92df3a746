//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"fmt"
	"io"
	"runtime"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
	"github.com/obinnaokechukwu/pdfgo/lifecycle"
)

// NewImageObject creates an empty loose image object. Give it pixels with
// SetBitmap or LoadJPEG, place it with SetMatrix (an image fills the unit
// square of its object space) and insert it into one of the document's
// pages.
func (d *Document) NewImageObject() (*PageObject, error) {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return nil, err
	}
	oh := fpdf.NewImageObject(h)
	if oh == 0 {
		return nil, allocError("FPDFPageObj_NewImageObj")
	}
	obj := &PageObject{doc: d}
	n, err := lifecycle.Acquire(obj, uintptr(oh), KindPageObject, d.node, releasePageObject)
	if err != nil {
		releasePageObject(uintptr(oh))
		return nil, err
	}
	obj.node = n
	return obj, nil
}

// imageHandle returns the handle of an image object.
func (o *PageObject) imageHandle() (fpdf.PageObject, error) {
	h, err := o.handle()
	if err != nil {
		return 0, err
	}
	if fpdf.ObjectTypeOf(h) != fpdf.ObjectImage {
		return 0, ErrNotImage
	}
	return h, nil
}

// pageHandles resolves pages, defaulting to the page the object is on.
// PDFium drops its cached copy of the image on each of them.
func (o *PageObject) pageHandles(pages []*Page) ([]fpdf.Page, error) {
	if len(pages) == 0 && o.page != nil {
		pages = []*Page{o.page}
	}
	hs := make([]fpdf.Page, 0, len(pages))
	for _, p := range pages {
		h, err := p.handle()
		if err != nil {
			return nil, err
		}
		hs = append(hs, h)
	}
	return hs, nil
}

// Bitmap returns the pixels of an image object in a new bitmap owned by
// the caller. With render false the image is returned as stored; with
// render true it is drawn the way it appears on the page, with its matrix
// and masks applied.
func (o *PageObject) Bitmap(render bool) (*Bitmap, error) {
	defer runtime.KeepAlive(o)
	h, err := o.imageHandle()
	if err != nil {
		return nil, err
	}
	var bh fpdf.Bitmap
	if render {
		dh, err := o.doc.handle()
		if err != nil {
			return nil, err
		}
		var ph fpdf.Page
		if o.page != nil {
			if ph, err = o.page.handle(); err != nil {
				return nil, err
			}
		}
		bh = fpdf.ImageRenderedBitmap(dh, ph, h)
		if bh == 0 {
			return nil, allocError("FPDFImageObj_GetRenderedBitmap")
		}
	} else {
		bh = fpdf.ImageBitmap(h)
		if bh == 0 {
			return nil, allocError("FPDFImageObj_GetBitmap")
		}
	}
	return newForeign(bh, false)
}

// SetBitmap replaces the image with a copy of b, which must not use
// reversed byte order. pages lists the loaded pages that show the image;
// it defaults to the object's own page.
func (o *PageObject) SetBitmap(b *Bitmap, pages ...*Page) error {
	defer runtime.KeepAlive(o)
	defer runtime.KeepAlive(b)
	defer runtime.KeepAlive(pages)
	h, err := o.imageHandle()
	if err != nil {
		return err
	}
	bh, err := b.handle()
	if err != nil {
		return err
	}
	if b.revByteOrder && b.channels > 1 {
		// PDFium reads bitmap memory as BGR(A) and has no flag to say otherwise.
		return fmt.Errorf("pdfgo: image bitmap must be in PDFium byte order, got %s", b.Mode())
	}
	phs, err := o.pageHandles(pages)
	if err != nil {
		return err
	}
	if !fpdf.ImageSetBitmap(phs, h, bh) {
		return opError("FPDFImageObj_SetBitmap")
	}
	return nil
}

// LoadJPEG embeds size bytes of JPEG data read from r as the image. The
// data is copied into the document during the call. pages has the same
// meaning as for SetBitmap.
func (o *PageObject) LoadJPEG(r io.ReaderAt, size int64, pages ...*Page) error {
	defer runtime.KeepAlive(o)
	defer runtime.KeepAlive(pages)
	h, err := o.imageHandle()
	if err != nil {
		return err
	}
	phs, err := o.pageHandles(pages)
	if err != nil {
		return err
	}
	access := fpdf.NewFileAccess(r, size)
	defer access.Release()
	if !fpdf.ImageLoadJPEGInline(phs, h, access) {
		return opError("FPDFImageObj_LoadJpegFileInline")
	}
	return nil
}

// Data returns the image stream: with decoded true after its filters
// are applied, otherwise as stored in the file.
func (o *PageObject) Data(decoded bool) ([]byte, error) {
	defer runtime.KeepAlive(o)
	h, err := o.imageHandle()
	if err != nil {
		return nil, err
	}
	data := fpdf.ImageData(h, decoded)
	if data == nil {
		return nil, opError("FPDFImageObj_GetImageData")
	}
	return data, nil
}
