//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"runtime"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
	"github.com/obinnaokechukwu/pdfgo/lifecycle"
)

// FormEnv is a document's form-fill environment. Pages loaded while it is
// open belong to it, and rendering draws their form fields.
type FormEnv struct {
	node *lifecycle.Node
	doc  *Document
}

// InitFormEnv creates the form environment, or returns the open one.
// Call it before loading pages: pages loaded earlier are not attached.
func (d *Document) InitFormEnv() (*FormEnv, error) {
	defer runtime.KeepAlive(d)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.form != nil && !d.form.node.TreeClosed() {
		return d.form, nil
	}
	h, err := d.handle()
	if err != nil {
		return nil, err
	}

	info := &fpdf.FormFillInfo{Version: 1}
	if ft := fpdf.FormTypeOf(h); ft == fpdf.FormXFAFull || ft == fpdf.FormXFAForeground {
		info.Version = 2
	}
	// PDFium keeps info until the environment exits.
	pin := new(runtime.Pinner)
	pin.Pin(info)
	fh := fpdf.InitFormEnv(h, info)
	if fh == 0 {
		pin.Unpin()
		return nil, allocError("FPDFDOC_InitFormFillEnvironment")
	}

	env := &FormEnv{doc: d}
	n, err := lifecycle.Acquire(env, uintptr(fh), KindFormEnv, d.node, releaseFormEnv,
		lifecycle.WithHostCleanup(pin.Unpin))
	if err != nil {
		releaseFormEnv(uintptr(fh))
		pin.Unpin()
		return nil, err
	}
	env.node = n
	d.form = env
	return env, nil
}

// FormEnv returns the open form environment, or nil.
func (d *Document) FormEnv() *FormEnv {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.form == nil || d.form.node.TreeClosed() {
		return nil
	}
	return d.form
}

func releaseFormEnv(raw uintptr) {
	fpdf.ExitFormEnv(fpdf.FormHandle(raw))
}

// Close closes the pages attached to the environment, then exits it.
func (f *FormEnv) Close() bool {
	return f.node.Close()
}

// Document returns the document the environment belongs to.
func (f *FormEnv) Document() *Document {
	return f.doc
}
