//go:build !ios && !android && (amd64 || arm64)

package fpdftest

import (
	"slices"
	"unsafe"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
)

type attachment struct {
	h    fpdf.Attachment
	doc  fpdf.Document
	name string
	data []byte
	set  bool
}

func (f *Fake) attachmentCount(h fpdf.Document) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.doc("FPDFDoc_GetAttachmentCount", h)
	if d == nil {
		return 0
	}
	return int32(len(d.attachments))
}

func (f *Fake) getAttachment(h fpdf.Document, index int32) fpdf.Attachment {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.doc("FPDFDoc_GetAttachment", h)
	if d == nil || index < 0 || int(index) >= len(d.attachments) {
		return 0
	}
	return d.attachments[index].h
}

func (f *Fake) addAttachment(h fpdf.Document, name unsafe.Pointer) fpdf.Attachment {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFDoc_AddAttachment", uintptr(h))
	d := f.doc("FPDFDoc_AddAttachment", h)
	if d == nil || name == nil {
		return 0
	}
	n := fpdf.WideAt(name)
	if n == "" || slices.ContainsFunc(d.attachments, func(a *attachment) bool { return a.name == n }) {
		return 0
	}
	a := &attachment{h: fpdf.Attachment(f.handle()), doc: h, name: n}
	d.attachments = append(d.attachments, a)
	f.attachments[a.h] = a
	return a.h
}

func (f *Fake) deleteAttachment(h fpdf.Document, index int32) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFDoc_DeleteAttachment", uintptr(h))
	d := f.doc("FPDFDoc_DeleteAttachment", h)
	if d == nil || index < 0 || int(index) >= len(d.attachments) {
		return 0
	}
	delete(f.attachments, d.attachments[index].h)
	d.attachments = slices.Delete(d.attachments, int(index), int(index)+1)
	return 1
}

func (f *Fake) attachment(name string, h fpdf.Attachment) *attachment {
	a, ok := f.attachments[h]
	if !ok {
		f.violate("%s(%#x): unknown or deleted attachment", name, h)
	}
	return a
}

func (f *Fake) attachmentName(h fpdf.Attachment, buf unsafe.Pointer, buflen fpdf.Ulong) fpdf.Ulong {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.attachment("FPDFAttachment_GetName", h)
	if a == nil {
		return 0
	}
	return copyOut(fpdf.EncodeWide(a.name), buf, buflen)
}

func (f *Fake) attachmentFile(h fpdf.Attachment, buf unsafe.Pointer, buflen fpdf.Ulong, outLen *fpdf.Ulong) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.attachment("FPDFAttachment_GetFile", h)
	if a == nil || !a.set || outLen == nil {
		return 0
	}
	*outLen = copyOut(a.data, buf, buflen)
	return 1
}

func (f *Fake) setAttachmentFile(h fpdf.Attachment, doc fpdf.Document, contents unsafe.Pointer, length fpdf.Ulong) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFAttachment_SetFile", uintptr(h))
	a := f.attachment("FPDFAttachment_SetFile", h)
	if a == nil || a.doc != doc || (contents == nil && length > 0) {
		return 0
	}
	a.data = nil
	if length > 0 {
		a.data = slices.Clone(unsafe.Slice((*byte)(contents), length))
	}
	a.set = true
	return 1
}
