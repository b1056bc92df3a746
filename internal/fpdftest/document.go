//go:build !ios && !android && (amd64 || arm64)

package fpdftest

import (
	"bytes"
	"encoding/hex"
	"os"
	"regexp"
	"strconv"
	"unsafe"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
)

type document struct {
	h           fpdf.Document
	version     int
	meta        map[string]string
	id          []byte
	formType    fpdf.FormType
	pages       []*pageData
	form        fpdf.FormHandle
	attachments []*attachment
	access      *fpdf.FileAccess
}

type pageData struct {
	width, height float64
	rotate        int
	text          string
	boxes         map[fpdf.BoxType][4]float32 // set through FPDFPage_Set*Box
}

var (
	rePassword = regexp.MustCompile(`%fpdftest-password:(\S+)`)
	rePage     = regexp.MustCompile(`/Type /Page /Parent \d+ 0 R /MediaBox \[0 0 ([0-9.]+) ([0-9.]+)\] /Rotate (\d+)`)
	reStream   = regexp.MustCompile(`(?s)stream\n(.*?)\nendstream`)
	reShow     = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\) Tj`)
	reInfo     = regexp.MustCompile(`(?s)4 0 obj\n<<(.*?)>>\nendobj`)
	reInfoKey  = regexp.MustCompile(`/(\w+) \(((?:\\.|[^\\)])*)\)`)
	reID       = regexp.MustCompile(`/ID \[<([0-9a-fA-F]+)> <([0-9a-fA-F]+)>\]`)
)

// parse understands documents produced by PDF.Bytes.
func parse(data []byte, password string) (*document, fpdf.ErrorCode) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) || len(data) < 8 {
		return nil, fpdf.ErrFormat
	}
	if m := rePassword.FindSubmatch(data); m != nil && string(m[1]) != password {
		return nil, fpdf.ErrPassword
	}
	d := &document{
		version: int(data[5]-'0')*10 + int(data[7]-'0'),
		meta:    make(map[string]string),
	}
	streams := reStream.FindAllSubmatch(data, -1)
	for i, m := range rePage.FindAllSubmatch(data, -1) {
		p := &pageData{}
		p.width, _ = strconv.ParseFloat(string(m[1]), 64)
		p.height, _ = strconv.ParseFloat(string(m[2]), 64)
		rot, _ := strconv.Atoi(string(m[3]))
		p.rotate = (rot / 90) % 4
		if i < len(streams) {
			if t := reShow.FindSubmatch(streams[i][1]); t != nil {
				p.text = unescape(string(t[1]))
			}
		}
		d.pages = append(d.pages, p)
	}
	if m := reInfo.FindSubmatch(data); m != nil {
		for _, kv := range reInfoKey.FindAllSubmatch(m[1], -1) {
			d.meta[string(kv[1])] = unescape(string(kv[2]))
		}
	}
	if m := reID.FindSubmatch(data); m != nil {
		d.id, _ = hex.DecodeString(string(m[1]))
	}
	if bytes.Contains(data, []byte("/AcroForm")) {
		d.formType = fpdf.FormAcro
	}
	return d, fpdf.ErrSuccess
}

func (f *Fake) addDocument(d *document) fpdf.Document {
	d.h = fpdf.Document(f.handle())
	f.docs[d.h] = d
	f.lastErr = fpdf.ErrSuccess
	return d.h
}

func (f *Fake) loadDocument(path, password string) fpdf.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requireInit("FPDF_LoadDocument")
	f.record("FPDF_LoadDocument", 0)
	data, err := os.ReadFile(path)
	if err != nil {
		f.lastErr = fpdf.ErrFile
		return 0
	}
	d, code := parse(data, password)
	if d == nil {
		f.lastErr = code
		return 0
	}
	return f.addDocument(d)
}

func (f *Fake) loadMemDocument(data unsafe.Pointer, size uintptr, password string) fpdf.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requireInit("FPDF_LoadMemDocument64")
	f.record("FPDF_LoadMemDocument64", 0)
	if data == nil || size == 0 {
		f.lastErr = fpdf.ErrFormat
		return 0
	}
	d, code := parse(unsafe.Slice((*byte)(data), size), password)
	if d == nil {
		f.lastErr = code
		return 0
	}
	return f.addDocument(d)
}

func (f *Fake) loadCustomDocument(access *fpdf.FileAccess, password string) fpdf.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requireInit("FPDF_LoadCustomDocument")
	f.record("FPDF_LoadCustomDocument", 0)
	if access == nil {
		f.lastErr = fpdf.ErrFile
		return 0
	}
	buf := make([]byte, access.FileLen)
	if !access.ReadBlock(0, buf) {
		f.lastErr = fpdf.ErrFile
		return 0
	}
	d, code := parse(buf, password)
	if d == nil {
		f.lastErr = code
		return 0
	}
	d.access = access
	return f.addDocument(d)
}

func (f *Fake) createNewDocument() fpdf.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requireInit("FPDF_CreateNewDocument")
	f.record("FPDF_CreateNewDocument", 0)
	return f.addDocument(&document{meta: make(map[string]string)})
}

func (f *Fake) closeDocument(h fpdf.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDF_CloseDocument", uintptr(h))
	d, ok := f.docs[h]
	if !ok {
		f.violate("FPDF_CloseDocument(%#x): unknown or closed document", h)
		return
	}
	for ph, p := range f.pages {
		if p.doc == h {
			f.violate("FPDF_CloseDocument(%#x): page %#x still open", h, ph)
		}
	}
	if d.form != 0 {
		f.violate("FPDF_CloseDocument(%#x): form environment %#x still open", h, d.form)
	}
	if d.access != nil && !d.access.ReadBlock(0, make([]byte, 1)) && d.access.FileLen > 0 {
		f.violate("FPDF_CloseDocument(%#x): file access released before the document", h)
	}
	for oh, o := range f.objects {
		if o.doc == h && o.page == 0 {
			f.violate("FPDF_CloseDocument(%#x): loose page object %#x still bound to it", h, oh)
		}
	}
	for _, a := range d.attachments {
		delete(f.attachments, a.h)
	}
	delete(f.docs, h)
}

func (f *Fake) doc(name string, h fpdf.Document) *document {
	d, ok := f.docs[h]
	if !ok {
		f.violate("%s(%#x): unknown or closed document", name, h)
	}
	return d
}

func (f *Fake) getPageCount(h fpdf.Document) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDF_GetPageCount", uintptr(h))
	d := f.doc("FPDF_GetPageCount", h)
	if d == nil {
		return 0
	}
	return int32(len(d.pages))
}

func (f *Fake) getFileVersion(h fpdf.Document, v *int32) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.doc("FPDF_GetFileVersion", h)
	if d == nil || d.version == 0 {
		return 0
	}
	*v = int32(d.version)
	return 1
}

// copyOut mimics PDFium's two-call buffer protocol: it always returns the
// required size and fills buf only when it is large enough.
func copyOut(src []byte, buf unsafe.Pointer, buflen fpdf.Ulong) fpdf.Ulong {
	if buf != nil && buflen >= fpdf.Ulong(len(src)) {
		copy(unsafe.Slice((*byte)(buf), buflen), src)
	}
	return fpdf.Ulong(len(src))
}

func (f *Fake) getFileIdentifier(h fpdf.Document, kind fpdf.FileIDType, buf unsafe.Pointer, buflen fpdf.Ulong) fpdf.Ulong {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.doc("FPDF_GetFileIdentifier", h)
	if d == nil || d.id == nil || (kind != fpdf.FileIDPermanent && kind != fpdf.FileIDChanging) {
		return 0
	}
	return copyOut(append(bytes.Clone(d.id), 0), buf, buflen)
}

func (f *Fake) getMetaText(h fpdf.Document, tag string, buf unsafe.Pointer, buflen fpdf.Ulong) fpdf.Ulong {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.doc("FPDF_GetMetaText", h)
	if d == nil {
		return 0
	}
	return copyOut(fpdf.EncodeWide(d.meta[tag]), buf, buflen)
}

func (f *Fake) getPageMode(h fpdf.Document) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.doc("FPDFDoc_GetPageMode", h) == nil {
		return -1
	}
	return 0 // PAGEMODE_USENONE
}

func (f *Fake) getFormType(h fpdf.Document) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.doc("FPDF_GetFormType", h)
	if d == nil {
		return 0
	}
	return int32(d.formType)
}

func (f *Fake) save(name string, h fpdf.Document, w *fpdf.FileWrite, version int32) int32 {
	f.mu.Lock()
	f.record(name, uintptr(h))
	d := f.doc(name, h)
	if d == nil || w == nil {
		f.mu.Unlock()
		return 0
	}
	p := PDF{
		Pages:   len(d.pages),
		Version: d.version,
		Title:   d.meta["Title"],
		Author:  d.meta["Author"],
		Form:    d.formType == fpdf.FormAcro,
	}
	if version > 0 {
		p.Version = int(version)
	}
	if len(d.pages) > 0 {
		p.Width, p.Height, p.Rotate = d.pages[0].width, d.pages[0].height, d.pages[0].rotate*90
	}
	texts := make([]string, len(d.pages))
	for i, pg := range d.pages {
		texts[i] = pg.text
	}
	p.Text = func(i int) string { return texts[i] }
	f.mu.Unlock()

	// Write outside the lock, in several blocks like PDFium does.
	data := p.Bytes()
	for len(data) > 0 {
		n := min(len(data), 512)
		if !w.Write(data[:n]) {
			return 0
		}
		data = data[n:]
	}
	return 1
}

func (f *Fake) saveAsCopy(h fpdf.Document, w *fpdf.FileWrite, _ fpdf.SaveFlags) int32 {
	return f.save("FPDF_SaveAsCopy", h, w, 0)
}

func (f *Fake) saveWithVersion(h fpdf.Document, w *fpdf.FileWrite, _ fpdf.SaveFlags, version int32) int32 {
	return f.save("FPDF_SaveWithVersion", h, w, version)
}
