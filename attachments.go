//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"fmt"
	"runtime"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
	"github.com/obinnaokechukwu/pdfgo/lifecycle"
)

// Attachment is a file embedded in a document. The document owns it.
type Attachment struct {
	node *lifecycle.Node
	doc  *Document
}

// AttachmentCount returns the number of embedded files.
func (d *Document) AttachmentCount() int {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return 0
	}
	return fpdf.AttachmentCount(h)
}

// Attachment returns embedded file index.
func (d *Document) Attachment(index int) (*Attachment, error) {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return nil, err
	}
	if n := fpdf.AttachmentCount(h); index < 0 || index >= n {
		return nil, fmt.Errorf("pdfgo: attachment index %d out of range [0, %d)", index, n)
	}
	ah := fpdf.GetAttachment(h, index)
	if ah == 0 {
		return nil, allocError("FPDFDoc_GetAttachment")
	}
	return d.adoptAttachment(ah)
}

// NewAttachment adds an empty embedded file called name. Fill it with
// SetData.
func (d *Document) NewAttachment(name string) (*Attachment, error) {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return nil, err
	}
	ah := fpdf.AddAttachment(h, name)
	if ah == 0 {
		return nil, allocError("FPDFDoc_AddAttachment")
	}
	return d.adoptAttachment(ah)
}

// DeleteAttachment removes embedded file index. Attachment values obtained
// earlier must not be used afterwards.
func (d *Document) DeleteAttachment(index int) error {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return err
	}
	if !fpdf.DeleteAttachment(h, index) {
		return opError("FPDFDoc_DeleteAttachment")
	}
	return nil
}

func (d *Document) adoptAttachment(ah fpdf.Attachment) (*Attachment, error) {
	a := &Attachment{doc: d}
	n, err := lifecycle.Acquire(a, uintptr(ah), KindAttachment, d.node, nil, lifecycle.WithoutFree())
	if err != nil {
		return nil, err
	}
	a.node = n
	return a, nil
}

// Close forgets the attachment. Nothing is freed; the document owns it.
func (a *Attachment) Close() bool {
	return a.node.Close()
}

func (a *Attachment) handle() (fpdf.Attachment, error) {
	raw, ok := a.node.Live()
	if !ok {
		return 0, ErrClosed
	}
	return fpdf.Attachment(raw), nil
}

// Name returns the file name of the attachment.
func (a *Attachment) Name() string {
	defer runtime.KeepAlive(a)
	h, err := a.handle()
	if err != nil {
		return ""
	}
	return fpdf.AttachmentName(h)
}

// Data returns the contents of the attachment.
func (a *Attachment) Data() ([]byte, error) {
	defer runtime.KeepAlive(a)
	h, err := a.handle()
	if err != nil {
		return nil, err
	}
	data, ok := fpdf.AttachmentData(h)
	if !ok {
		return nil, opError("FPDFAttachment_GetFile")
	}
	return data, nil
}

// SetData replaces the contents of the attachment.
func (a *Attachment) SetData(data []byte) error {
	defer runtime.KeepAlive(a)
	h, err := a.handle()
	if err != nil {
		return err
	}
	dh, err := a.doc.handle()
	if err != nil {
		return err
	}
	if !fpdf.SetAttachmentData(h, dh, data) {
		return opError("FPDFAttachment_SetFile")
	}
	return nil
}
