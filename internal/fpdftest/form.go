//go:build !ios && !android && (amd64 || arm64)

package fpdftest

import (
	"github.com/obinnaokechukwu/pdfgo/fpdf"
)

type form struct {
	h    fpdf.FormHandle
	doc  fpdf.Document
	info *fpdf.FormFillInfo
}

func (f *Fake) initForm(h fpdf.Document, info *fpdf.FormFillInfo) fpdf.FormHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFDOC_InitFormFillEnvironment", uintptr(h))
	d := f.doc("FPDFDOC_InitFormFillEnvironment", h)
	if d == nil || info == nil || info.Version < 1 || info.Version > 2 {
		return 0
	}
	if d.form != 0 {
		f.violate("FPDFDOC_InitFormFillEnvironment(%#x): environment %#x already open", h, d.form)
		return 0
	}
	fm := &form{h: fpdf.FormHandle(f.handle()), doc: h, info: info}
	f.forms[fm.h] = fm
	d.form = fm.h
	return fm.h
}

func (f *Fake) form(name string, h fpdf.FormHandle) *form {
	fm, ok := f.forms[h]
	if !ok {
		f.violate("%s(%#x): unknown or closed form environment", name, h)
		return nil
	}
	if _, ok := f.docs[fm.doc]; !ok {
		f.violate("%s(%#x): document %#x already closed", name, h, fm.doc)
	}
	return fm
}

func (f *Fake) exitForm(h fpdf.FormHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFDOC_ExitFormFillEnvironment", uintptr(h))
	fm := f.form("FPDFDOC_ExitFormFillEnvironment", h)
	if fm == nil {
		return
	}
	for ph, p := range f.pages {
		if p.doc == fm.doc && p.formed {
			f.violate("FPDFDOC_ExitFormFillEnvironment(%#x): page %#x still attached", h, ph)
		}
	}
	if d := f.docs[fm.doc]; d != nil {
		d.form = 0
	}
	delete(f.forms, h)
}

func (f *Fake) formAfterLoad(ph fpdf.Page, h fpdf.FormHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FORM_OnAfterLoadPage", uintptr(ph))
	p := f.page("FORM_OnAfterLoadPage", ph)
	if p == nil || f.form("FORM_OnAfterLoadPage", h) == nil {
		return
	}
	p.formed = true
}

func (f *Fake) formBeforeClose(ph fpdf.Page, h fpdf.FormHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FORM_OnBeforeClosePage", uintptr(ph))
	p := f.page("FORM_OnBeforeClosePage", ph)
	if p == nil || f.form("FORM_OnBeforeClosePage", h) == nil {
		return
	}
	p.formed = false
}

func (f *Fake) fflDraw(h fpdf.FormHandle, bh fpdf.Bitmap, ph fpdf.Page, startX, startY, sizeX, sizeY, rotate int32, flags fpdf.RenderFlags) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDF_FFLDraw", uintptr(ph))
	f.form("FPDF_FFLDraw", h)
	f.page("FPDF_FFLDraw", ph)
	f.bitmap("FPDF_FFLDraw", bh)
}
