//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
	"github.com/obinnaokechukwu/pdfgo/internal/bindings"
	"github.com/obinnaokechukwu/pdfgo/lifecycle"
)

// FileAccess selects how PDFium reads a document opened by path.
type FileAccess int

const (
	// FileAccessNative lets PDFium open and read the file itself.
	FileAccessNative FileAccess = iota
	// FileAccessBuffer reads the file through Go as PDFium asks for blocks.
	FileAccessBuffer
	// FileAccessBytes reads the whole file into memory first.
	FileAccessBytes
	// FileAccessMmap maps the file into memory. Platforms without mmap fall
	// back to FileAccessBytes.
	FileAccessMmap
)

func (a FileAccess) String() string {
	switch a {
	case FileAccessNative:
		return "native"
	case FileAccessBuffer:
		return "buffer"
	case FileAccessBytes:
		return "bytes"
	case FileAccessMmap:
		return "mmap"
	default:
		return fmt.Sprintf("FileAccess(%d)", int(a))
	}
}

// OpenOptions configures Open, OpenBytes and OpenReader.
type OpenOptions struct {
	// Password for encrypted documents.
	Password string

	// Access is how Open reads the file. Ignored by OpenBytes and
	// OpenReader.
	Access FileAccess
}

// OpenOption is a functional option for opening documents.
type OpenOption func(*OpenOptions)

// WithPassword sets the password used to decrypt the document.
func WithPassword(password string) OpenOption {
	return func(o *OpenOptions) {
		o.Password = password
	}
}

// WithFileAccess selects the file access strategy for Open.
func WithFileAccess(access FileAccess) OpenOption {
	return func(o *OpenOptions) {
		o.Access = access
	}
}

// Document is an open PDF document. It owns every page, text page, form
// environment and attachment obtained from it; closing the document closes
// them too.
type Document struct {
	node *lifecycle.Node

	mu   sync.Mutex
	form *FormEnv
}

// source is the Go memory and state PDFium reads from while a document is
// open. It is released after FPDF_CloseDocument, or abandoned with the
// handle if the library is gone by then.
type source struct {
	pin    runtime.Pinner
	buf    *pinnedBuffer
	access *fpdf.FileAccess
	closer func() error
}

func (s *source) release() {
	s.pin.Unpin()
	if s.buf != nil {
		s.buf.release()
	}
	if s.access != nil {
		s.access.Release()
	}
	if s.closer != nil {
		s.closer()
	}
}

func releaseDocument(raw uintptr) {
	fpdf.CloseDocument(fpdf.Document(raw))
}

func openOptions(options []OpenOption) OpenOptions {
	var o OpenOptions
	for _, opt := range options {
		opt(&o)
	}
	return o
}

// Open opens the PDF file at path.
func Open(path string, options ...OpenOption) (*Document, error) {
	if !bindings.Initialized() {
		return nil, ErrNotInitialized
	}
	o := openOptions(options)
	label := filepath.Base(path)

	switch o.Access {
	case FileAccessNative:
		h := fpdf.LoadDocument(path, o.Password)
		if h == 0 {
			return nil, fmt.Errorf("pdfgo: open %s: %w", path, allocError("FPDF_LoadDocument"))
		}
		return newDocument(h, label, nil)

	case FileAccessBytes:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("pdfgo: open %s: %w", path, err)
		}
		return openMemory(data, o.Password, label, nil)

	case FileAccessMmap:
		data, unmap, err := mapFile(path)
		if err != nil {
			return nil, fmt.Errorf("pdfgo: open %s: %w", path, err)
		}
		return openMemory(data, o.Password, label, unmap)

	case FileAccessBuffer:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("pdfgo: open %s: %w", path, err)
		}
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("pdfgo: open %s: %w", path, err)
		}
		return openCustom(f, st.Size(), o.Password, label, f.Close)

	default:
		return nil, fmt.Errorf("pdfgo: open %s: unknown file access %v", path, o.Access)
	}
}

// OpenBytes opens a document held in memory. PDFium reads data in place
// for as long as the document is open; the caller must not modify it.
func OpenBytes(data []byte, options ...OpenOption) (*Document, error) {
	if !bindings.Initialized() {
		return nil, ErrNotInitialized
	}
	o := openOptions(options)
	return openMemory(data, o.Password, "<bytes>", nil)
}

// OpenReader opens a document of the given size read through r. r is
// called from PDFium on demand until the document is closed.
func OpenReader(r io.ReaderAt, size int64, options ...OpenOption) (*Document, error) {
	if !bindings.Initialized() {
		return nil, ErrNotInitialized
	}
	o := openOptions(options)
	return openCustom(r, size, o.Password, "<reader>", nil)
}

// openMemory opens data in place. With a closer, data is a file mapping
// outside the Go heap and needs no pinning.
func openMemory(data []byte, password, label string, closer func() error) (*Document, error) {
	src := &source{closer: closer}
	if closer == nil {
		buf, err := pinBuffer(data)
		if err != nil {
			return nil, err
		}
		src.buf = buf
	}
	h := fpdf.LoadMemDocument(data, password)
	if h == 0 {
		err := allocError("FPDF_LoadMemDocument64")
		src.release()
		return nil, err
	}
	return newDocument(h, label, src)
}

func openCustom(r io.ReaderAt, size int64, password, label string, closer func() error) (*Document, error) {
	src := &source{access: fpdf.NewFileAccess(r, size), closer: closer}
	src.pin.Pin(src.access)
	h := fpdf.LoadCustomDocument(src.access, password)
	if h == 0 {
		err := allocError("FPDF_LoadCustomDocument")
		src.release()
		return nil, err
	}
	return newDocument(h, label, src)
}

// NewDocument creates an empty document.
func NewDocument() (*Document, error) {
	if !bindings.Initialized() {
		return nil, ErrNotInitialized
	}
	h := fpdf.CreateNewDocument()
	if h == 0 {
		return nil, allocError("FPDF_CreateNewDocument")
	}
	return newDocument(h, "<new>", nil)
}

func newDocument(h fpdf.Document, label string, src *source) (*Document, error) {
	d := &Document{}
	opts := []lifecycle.Option{lifecycle.WithLabel(label)}
	if src != nil {
		opts = append(opts, lifecycle.WithHostCleanup(src.release))
	}
	n, err := lifecycle.Acquire(d, uintptr(h), KindDocument, nil, releaseDocument, opts...)
	if err != nil {
		releaseDocument(uintptr(h))
		if src != nil {
			src.release()
		}
		return nil, err
	}
	d.node = n
	return d, nil
}

// Close closes every object obtained from the document, then the
// document. It returns false if the document was already closed.
func (d *Document) Close() bool {
	return d.node.Close()
}

// Closed reports whether the document has been closed.
func (d *Document) Closed() bool {
	return d.node.Closed()
}

// Node returns the lifecycle node of the document.
func (d *Document) Node() *lifecycle.Node {
	return d.node
}

func (d *Document) handle() (fpdf.Document, error) {
	raw, ok := d.node.Live()
	if !ok {
		return 0, ErrClosed
	}
	return fpdf.Document(raw), nil
}

// PageCount returns the number of pages, or 0 for a closed document.
func (d *Document) PageCount() int {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return 0
	}
	return fpdf.PageCount(h)
}

// Page loads page index (0-based).
func (d *Document) Page(index int) (*Page, error) {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return nil, err
	}
	if n := fpdf.PageCount(h); index < 0 || index >= n {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageIndex, index, n)
	}
	ph := fpdf.LoadPage(h, index)
	if ph == 0 {
		return nil, allocError("FPDF_LoadPage")
	}
	return d.adoptPage(ph, index)
}

// NewPage inserts a blank page of the given size in points at index and
// returns it. An index past the end appends.
func (d *Document) NewPage(index int, width, height float64) (*Page, error) {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return nil, err
	}
	index = min(max(index, 0), fpdf.PageCount(h))
	ph := fpdf.NewPage(h, index, width, height)
	if ph == 0 {
		return nil, allocError("FPDFPage_New")
	}
	return d.adoptPage(ph, index)
}

// DeletePage removes page index from the document. Pages already loaded
// keep their handles but no longer belong to the document's page list.
func (d *Document) DeletePage(index int) error {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return err
	}
	if n := fpdf.PageCount(h); index < 0 || index >= n {
		return fmt.Errorf("%w: %d of %d", ErrPageIndex, index, n)
	}
	fpdf.DeletePage(h, index)
	return nil
}

// adoptPage wraps a freshly loaded page handle. A page loaded while the
// document has a form environment belongs to that environment, so it is
// closed (with FORM_OnBeforeClosePage) before the environment exits.
func (d *Document) adoptPage(ph fpdf.Page, index int) (*Page, error) {
	parent := d.node
	var form fpdf.FormHandle
	if env := d.FormEnv(); env != nil {
		if raw, ok := env.node.Live(); ok {
			parent = env.node
			form = fpdf.FormHandle(raw)
		}
	}

	p := &Page{doc: d, index: index, form: form}
	release := func(raw uintptr) {
		fpdf.ClosePageWithForm(fpdf.Page(raw), form)
	}
	n, err := lifecycle.Acquire(p, uintptr(ph), KindPage, parent, release,
		lifecycle.WithLabel("page "+strconv.Itoa(index)))
	if err != nil {
		fpdf.ClosePage(ph)
		return nil, err
	}
	p.node = n
	if form != 0 {
		fpdf.FormAfterLoadPage(ph, form)
	}
	return p, nil
}

// Version returns the PDF version as 10*major+minor (17 for PDF 1.7). ok
// is false for new documents.
func (d *Document) Version() (version int, ok bool) {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return 0, false
	}
	return fpdf.FileVersion(h)
}

// FileIdentifier returns the permanent or changing half of the trailer
// /ID, or nil if the document has none.
func (d *Document) FileIdentifier(kind fpdf.FileIDType) []byte {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return nil
	}
	return fpdf.FileIdentifier(h, kind)
}

// MetadataKeys are the Info dictionary entries returned by Metadata.
var MetadataKeys = []string{"Title", "Author", "Subject", "Keywords", "Creator", "Producer", "CreationDate", "ModDate"}

// Metadata returns the non-empty Info dictionary entries.
func (d *Document) Metadata() map[string]string {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return nil
	}
	meta := make(map[string]string)
	for _, k := range MetadataKeys {
		if v := fpdf.MetaText(h, k); v != "" {
			meta[k] = v
		}
	}
	return meta
}

// PageMode returns the /PageMode as a PAGEMODE_* value, or -1.
func (d *Document) PageMode() int {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return -1
	}
	return fpdf.PageMode(h)
}

// FormType reports the kind of interactive form the document carries.
func (d *Document) FormType() fpdf.FormType {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return fpdf.FormNone
	}
	return fpdf.FormTypeOf(h)
}

// SaveOptions configures Save.
type SaveOptions struct {
	// Version is the PDF version to write (e.g. 17); 0 keeps the
	// document's own.
	Version int

	// Incremental appends changes instead of rewriting the file.
	Incremental bool
}

// SaveOption is a functional option for Save.
type SaveOption func(*SaveOptions)

// WithSaveVersion writes the given PDF version.
func WithSaveVersion(version int) SaveOption {
	return func(o *SaveOptions) {
		o.Version = version
	}
}

// WithIncremental saves incrementally.
func WithIncremental() SaveOption {
	return func(o *SaveOptions) {
		o.Incremental = true
	}
}

// Save writes the document to w.
func (d *Document) Save(w io.Writer, options ...SaveOption) error {
	defer runtime.KeepAlive(d)
	h, err := d.handle()
	if err != nil {
		return err
	}
	var o SaveOptions
	for _, opt := range options {
		opt(&o)
	}
	flags := fpdf.SaveNoIncremental
	if o.Incremental {
		flags = fpdf.SaveIncremental
	}

	fw := fpdf.NewFileWrite(w)
	defer fw.Release()
	ok := fpdf.SaveAsCopy(h, fw, flags, o.Version)
	if err := fw.Err(); err != nil {
		return fmt.Errorf("pdfgo: save: %w", err)
	}
	if !ok {
		return opError("FPDF_SaveAsCopy")
	}
	return nil
}
