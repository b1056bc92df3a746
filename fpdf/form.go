//go:build !ios && !android && (amd64 || arm64)

package fpdf

import "github.com/obinnaokechukwu/pdfgo/internal/callgate"

// InitFormEnv creates a form-fill environment for doc. PDFium keeps info
// until ExitFormEnv, so it must stay pinned that long.
func InitFormEnv(doc Document, info *FormFillInfo) FormHandle {
	t := table()
	if t == nil || t.InitFormFillEnvironment == nil {
		return 0
	}
	return callgate.Call(func() FormHandle { return t.InitFormFillEnvironment(doc, info) })
}

// ExitFormEnv releases form. Call it before closing the document.
func ExitFormEnv(form FormHandle) {
	t := table()
	if t == nil || t.ExitFormFillEnvironment == nil || form == 0 {
		return
	}
	callgate.Do(func() { t.ExitFormFillEnvironment(form) })
}

// FormAfterLoadPage tells the form environment about a newly loaded page.
func FormAfterLoadPage(page Page, form FormHandle) {
	t := table()
	if t == nil || t.OnAfterLoadPage == nil || form == 0 {
		return
	}
	callgate.Do(func() { t.OnAfterLoadPage(page, form) })
}

// ClosePageWithForm runs FORM_OnBeforeClosePage (when form is non-zero)
// and FPDF_ClosePage in one gated call.
func ClosePageWithForm(page Page, form FormHandle) {
	t := table()
	if t == nil || page == 0 {
		return
	}
	callgate.Do(func() {
		if form != 0 && t.OnBeforeClosePage != nil {
			t.OnBeforeClosePage(page, form)
		}
		t.ClosePage(page)
	})
}
