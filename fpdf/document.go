//go:build !ios && !android && (amd64 || arm64)

package fpdf

import (
	"runtime"

	"github.com/obinnaokechukwu/pdfgo/internal/callgate"
)

// LoadDocument opens the file at path. The returned handle is 0 on failure;
// see LastError.
func LoadDocument(path, password string) Document {
	t := table()
	if t == nil {
		return 0
	}
	return callgate.Call(func() Document { return t.LoadDocument(path, password) })
}

// LoadMemDocument opens a document that reads directly from data. PDFium
// does not copy data, so it must stay pinned until CloseDocument.
func LoadMemDocument(data []byte, password string) Document {
	t := table()
	if t == nil {
		return 0
	}
	return callgate.Call(func() Document {
		return t.LoadMemDocument64(bufPtr(data), uintptr(len(data)), password)
	})
}

// LoadCustomDocument opens a document through access, which must stay
// pinned until CloseDocument.
func LoadCustomDocument(access *FileAccess, password string) Document {
	t := table()
	if t == nil {
		return 0
	}
	return callgate.Call(func() Document { return t.LoadCustomDocument(access, password) })
}

// CreateNewDocument returns an empty document.
func CreateNewDocument() Document {
	t := table()
	if t == nil {
		return 0
	}
	return callgate.Call(t.CreateNewDocument)
}

// CloseDocument releases doc. Every page, text page and form environment
// of doc must already be closed.
func CloseDocument(doc Document) {
	t := table()
	if t == nil || doc == 0 {
		return
	}
	callgate.Do(func() { t.CloseDocument(doc) })
}

// PageCount returns the number of pages in doc.
func PageCount(doc Document) int {
	t := table()
	if t == nil {
		return 0
	}
	return int(callgate.Call(func() int32 { return t.GetPageCount(doc) }))
}

// FileVersion returns the PDF version as 10*major+minor (e.g. 17 for 1.7).
// ok is false for documents created from scratch.
func FileVersion(doc Document) (version int, ok bool) {
	t := table()
	if t == nil {
		return 0, false
	}
	var v int32
	ret := callgate.Call(func() int32 { return t.GetFileVersion(doc, &v) })
	return int(v), ret != 0
}

// FileIdentifier returns one half of the trailer /ID array, or nil.
func FileIdentifier(doc Document, kind FileIDType) []byte {
	t := table()
	if t == nil || t.GetFileIdentifier == nil {
		return nil
	}
	return callgate.Call(func() []byte {
		n := t.GetFileIdentifier(doc, kind, nil, 0)
		if n <= 1 {
			return nil
		}
		buf := make([]byte, n)
		t.GetFileIdentifier(doc, kind, bufPtr(buf), n)
		return buf[:n-1] // drop the NUL terminator
	})
}

// MetaText returns the Info dictionary entry for tag (e.g. "Title").
func MetaText(doc Document, tag string) string {
	t := table()
	if t == nil {
		return ""
	}
	return callgate.Call(func() string {
		n := t.GetMetaText(doc, tag, nil, 0)
		if n <= 2 {
			return ""
		}
		buf := make([]byte, n)
		t.GetMetaText(doc, tag, bufPtr(buf), n)
		return DecodeWide(buf)
	})
}

// PageMode returns the document's /PageMode as a PAGEMODE_* value, or -1.
func PageMode(doc Document) int {
	t := table()
	if t == nil || t.GetPageMode == nil {
		return -1
	}
	return int(callgate.Call(func() int32 { return t.GetPageMode(doc) }))
}

// FormTypeOf returns the kind of interactive form doc carries.
func FormTypeOf(doc Document) FormType {
	t := table()
	if t == nil || t.GetFormType == nil {
		return FormNone
	}
	return FormType(callgate.Call(func() int32 { return t.GetFormType(doc) }))
}

// SaveAsCopy writes doc through w. version <= 0 keeps the document's own
// version.
func SaveAsCopy(doc Document, w *FileWrite, flags SaveFlags, version int) bool {
	t := table()
	if t == nil {
		return false
	}
	var pin runtime.Pinner
	pin.Pin(w)
	defer pin.Unpin()
	return callgate.Call(func() int32 {
		if version > 0 {
			return t.SaveWithVersion(doc, w, flags, int32(version))
		}
		return t.SaveAsCopy(doc, w, flags)
	}) != 0
}
