//go:build !ios && !android && (amd64 || arm64)

package fpdf

import (
	"runtime"

	"github.com/obinnaokechukwu/pdfgo/internal/callgate"
)

// AttachmentCount returns the number of embedded files in doc.
func AttachmentCount(doc Document) int {
	t := table()
	if t == nil || t.GetAttachmentCount == nil {
		return 0
	}
	return int(callgate.Call(func() int32 { return t.GetAttachmentCount(doc) }))
}

// GetAttachment returns embedded file index. The document owns it.
func GetAttachment(doc Document, index int) Attachment {
	t := table()
	if t == nil || t.GetAttachment == nil {
		return 0
	}
	return callgate.Call(func() Attachment { return t.GetAttachment(doc, int32(index)) })
}

// AddAttachment adds an empty embedded file called name.
func AddAttachment(doc Document, name string) Attachment {
	t := table()
	if t == nil || t.AddAttachment == nil {
		return 0
	}
	n := EncodeWide(name)
	a := callgate.Call(func() Attachment { return t.AddAttachment(doc, bufPtr(n)) })
	runtime.KeepAlive(n)
	return a
}

// DeleteAttachment removes embedded file index. Attachment handles taken
// from doc earlier become invalid.
func DeleteAttachment(doc Document, index int) bool {
	t := table()
	if t == nil || t.DeleteAttachment == nil {
		return false
	}
	return callgate.Call(func() int32 { return t.DeleteAttachment(doc, int32(index)) }) != 0
}

// AttachmentName returns the file name of att.
func AttachmentName(att Attachment) string {
	t := table()
	if t == nil || t.AttachmentGetName == nil {
		return ""
	}
	return callgate.Call(func() string {
		n := t.AttachmentGetName(att, nil, 0)
		if n <= 2 {
			return ""
		}
		buf := make([]byte, n)
		t.AttachmentGetName(att, bufPtr(buf), n)
		return DecodeWide(buf)
	})
}

// AttachmentData returns the contents of att.
func AttachmentData(att Attachment) ([]byte, bool) {
	t := table()
	if t == nil || t.AttachmentGetFile == nil {
		return nil, false
	}
	return callgate.Call2(func() ([]byte, bool) {
		var n Ulong
		if t.AttachmentGetFile(att, nil, 0, &n) == 0 {
			return nil, false
		}
		if n == 0 {
			return []byte{}, true
		}
		buf := make([]byte, n)
		if t.AttachmentGetFile(att, bufPtr(buf), n, &n) == 0 {
			return nil, false
		}
		return buf[:n], true
	})
}

// SetAttachmentData replaces the contents of att.
func SetAttachmentData(att Attachment, doc Document, data []byte) bool {
	t := table()
	if t == nil || t.AttachmentSetFile == nil {
		return false
	}
	ok := callgate.Call(func() int32 {
		return t.AttachmentSetFile(att, doc, bufPtr(data), Ulong(len(data)))
	}) != 0
	runtime.KeepAlive(data)
	return ok
}
