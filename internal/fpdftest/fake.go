//go:build !ios && !android && (amd64 || arm64)

// Package fpdftest is an in-process stand-in for PDFium, used by tests that
// exercise handle lifecycles without the shared library.
//
// The fake models documents generated by PDF.Bytes: pages with one line of
// text, page objects, attachments, a form environment and bitmaps backed by
// ordinary Go memory. Every call is logged, and misuse that would be a
// use-after-free in real PDFium (closing a page after its document, reading
// a destroyed bitmap) is recorded as a violation instead of crashing.
package fpdftest

import (
	"fmt"
	"image/color"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
)

// Call is one logged native call.
type Call struct {
	Name   string
	Handle uintptr
}

// Fake is the state of the fake library.
type Fake struct {
	mu         sync.Mutex
	next       uintptr
	calls      []Call
	violations []string
	lastErr    fpdf.ErrorCode
	inits      int

	docs        map[fpdf.Document]*document
	pages       map[fpdf.Page]*page
	texts       map[fpdf.TextPage]*textPage
	searches    map[fpdf.Search]*search
	bitmaps     map[fpdf.Bitmap]*bitmap
	objects     map[fpdf.PageObject]*object
	attachments map[fpdf.Attachment]*attachment
	forms       map[fpdf.FormHandle]*form

	// FailBitmaps makes every bitmap allocation fail.
	FailBitmaps bool
	// FailFillRect makes FPDFBitmap_FillRect report failure.
	FailFillRect bool
}

// New returns an empty fake. Most tests want Install instead.
func New() *Fake {
	return &Fake{
		next:        0x1000,
		docs:        make(map[fpdf.Document]*document),
		pages:       make(map[fpdf.Page]*page),
		texts:       make(map[fpdf.TextPage]*textPage),
		searches:    make(map[fpdf.Search]*search),
		bitmaps:     make(map[fpdf.Bitmap]*bitmap),
		objects:     make(map[fpdf.PageObject]*object),
		attachments: make(map[fpdf.Attachment]*attachment),
		forms:       make(map[fpdf.FormHandle]*form),
	}
}

// Install creates a fake, makes it the active fpdf table and restores the
// previous table when tb finishes.
func Install(tb testing.TB) *Fake {
	tb.Helper()
	f := New()
	restore := fpdf.Use(f.Table())
	tb.Cleanup(restore)
	return f
}

// PageColor is the color the fake paints page i with.
func PageColor(i int) color.NRGBA {
	return color.NRGBA{R: byte(0x10 * (i + 1)), G: 0x80, B: byte(0xF0 - 0x10*i), A: 0xFF}
}

func (f *Fake) handle() uintptr {
	f.next += 0x10
	return f.next
}

func (f *Fake) record(name string, h uintptr) {
	f.calls = append(f.calls, Call{Name: name, Handle: h})
}

func (f *Fake) violate(format string, args ...any) {
	f.violations = append(f.violations, fmt.Sprintf(format, args...))
}

// Calls returns a copy of the call log.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallCount returns how many calls to the named function were logged.
func (f *Fake) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// IndexOf returns the position of the first logged call to name on handle
// h, or -1.
func (f *Fake) IndexOf(name string, h uintptr) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Index(f.calls, Call{Name: name, Handle: h})
}

// Violations returns every misuse the fake detected.
func (f *Fake) Violations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.violations)
}

// Open returns the number of live handles by kind. Kinds with no live
// handles are omitted.
func (f *Fake) Open() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int)
	add := func(k string, n int) {
		if n > 0 {
			out[k] = n
		}
	}
	add("document", len(f.docs))
	add("page", len(f.pages))
	add("textpage", len(f.texts))
	add("search", len(f.searches))
	add("bitmap", len(f.bitmaps))
	add("form", len(f.forms))
	loose := 0
	for _, o := range f.objects {
		if o.page == 0 {
			loose++
		}
	}
	add("object", loose)
	return out
}

// Initialized reports whether FPDF_InitLibraryWithConfig ran without a
// matching FPDF_DestroyLibrary.
func (f *Fake) Initialized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inits > 0
}

// Table returns the fpdf function table backed by f.
func (f *Fake) Table() *fpdf.Table {
	return &fpdf.Table{
		InitLibraryWithConfig: f.initLibrary,
		DestroyLibrary:        f.destroyLibrary,
		GetLastError:          f.getLastError,

		LoadDocument:       f.loadDocument,
		LoadMemDocument64:  f.loadMemDocument,
		LoadCustomDocument: f.loadCustomDocument,
		CreateNewDocument:  f.createNewDocument,
		CloseDocument:      f.closeDocument,
		GetPageCount:       f.getPageCount,
		GetFileVersion:     f.getFileVersion,
		GetFileIdentifier:  f.getFileIdentifier,
		GetMetaText:        f.getMetaText,
		GetPageMode:        f.getPageMode,
		GetFormType:        f.getFormType,
		SaveAsCopy:         f.saveAsCopy,
		SaveWithVersion:    f.saveWithVersion,

		LoadPage:          f.loadPage,
		ClosePage:         f.closePage,
		NewPage:           f.newPage,
		DeletePage:        f.deletePage,
		GetPageWidthF:     f.pageWidth,
		GetPageHeightF:    f.pageHeight,
		GetPageRotation:   f.getRotation,
		SetPageRotation:   f.setRotation,
		RenderPageBitmap:  f.renderPageBitmap,
		CountObjects:      f.countObjects,
		GetObject:         f.getObject,
		InsertObject:      f.insertObject,
		RemoveObject:      f.removeObject,
		GenerateContent:   f.generateContent,
		CreateRectObject:  f.createRect,
		DestroyObject:     f.destroyObject,
		GetObjectType:     f.objectType,
		GetObjectBounds:   f.objectBounds,
		SetObjectFillRGBA: f.setFill,
		SetPathDrawMode:   f.setDrawMode,
		GetObjectMatrix:   f.objectMatrix,
		SetObjectMatrix:   f.setObjectMatrix,
		TransformObject:   f.transformObject,

		GetMediaBox: f.getBox(fpdf.MediaBox),
		GetCropBox:  f.getBox(fpdf.CropBox),
		GetBleedBox: f.getBox(fpdf.BleedBox),
		GetTrimBox:  f.getBox(fpdf.TrimBox),
		GetArtBox:   f.getBox(fpdf.ArtBox),
		SetMediaBox: f.setBox(fpdf.MediaBox),
		SetCropBox:  f.setBox(fpdf.CropBox),
		SetBleedBox: f.setBox(fpdf.BleedBox),
		SetTrimBox:  f.setBox(fpdf.TrimBox),
		SetArtBox:   f.setBox(fpdf.ArtBox),

		NewImageObject:           f.newImageObject,
		ImageSetBitmap:           f.imageSetBitmap,
		ImageGetBitmap:           f.imageGetBitmap,
		ImageGetRenderedBitmap:   f.imageRenderedBitmap,
		ImageLoadJpegFileInline:  f.imageLoadJPEGInline,
		ImageGetImageDataDecoded: f.imageStream("FPDFImageObj_GetImageDataDecoded", true),
		ImageGetImageDataRaw:     f.imageStream("FPDFImageObj_GetImageDataRaw", false),

		LoadTextPage:      f.loadTextPage,
		CloseTextPage:     f.closeTextPage,
		CountChars:        f.countChars,
		GetText:           f.getText,
		FindStart:         f.findStart,
		FindNext:          f.findNext,
		FindPrev:          f.findPrev,
		GetSchResultIndex: f.schResultIndex,
		GetSchCount:       f.schCount,
		FindClose:         f.findClose,

		BitmapCreate:    f.bitmapCreate,
		BitmapCreateEx:  f.bitmapCreateEx,
		BitmapDestroy:   f.bitmapDestroy,
		BitmapGetFormat: f.bitmapFormat,
		BitmapGetWidth:  f.bitmapWidth,
		BitmapGetHeight: f.bitmapHeight,
		BitmapGetStride: f.bitmapStride,
		BitmapGetBuffer: f.bitmapBuffer,
		BitmapFillRect:  f.bitmapFillRect,

		GetAttachmentCount: f.attachmentCount,
		GetAttachment:      f.getAttachment,
		AddAttachment:      f.addAttachment,
		DeleteAttachment:   f.deleteAttachment,
		AttachmentGetName:  f.attachmentName,
		AttachmentGetFile:  f.attachmentFile,
		AttachmentSetFile:  f.setAttachmentFile,

		InitFormFillEnvironment: f.initForm,
		ExitFormFillEnvironment: f.exitForm,
		OnAfterLoadPage:         f.formAfterLoad,
		OnBeforeClosePage:       f.formBeforeClose,
		FFLDraw:                 f.fflDraw,
	}
}

func (f *Fake) initLibrary(cfg *fpdf.LibraryConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDF_InitLibraryWithConfig", 0)
	if cfg == nil || cfg.Version < 2 {
		f.violate("FPDF_InitLibraryWithConfig: bad config %+v", cfg)
	}
	f.inits++
}

func (f *Fake) destroyLibrary() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDF_DestroyLibrary", 0)
	if f.inits == 0 {
		f.violate("FPDF_DestroyLibrary without init")
		return
	}
	f.inits--
}

func (f *Fake) getLastError() fpdf.Ulong {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fpdf.Ulong(f.lastErr)
}

// requireInit flags calls made before init. Callers hold f.mu.
func (f *Fake) requireInit(name string) {
	if f.inits == 0 {
		f.violate("%s called before FPDF_InitLibraryWithConfig", name)
	}
}

// foldText applies the search flags to text for matching.
func foldText(s string, flags fpdf.SearchFlags) string {
	if flags&fpdf.MatchCase != 0 {
		return s
	}
	return strings.ToLower(s)
}
