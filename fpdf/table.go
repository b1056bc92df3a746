//go:build !ios && !android && (amd64 || arm64)

package fpdf

import (
	"sync/atomic"
	"unsafe"
)

// Table holds one Go function per PDFium entry point. Open fills it from the
// shared library; tests build one by hand. A nil field means the symbol is
// unavailable in this build, and the matching wrapper degrades to a zero
// result.
type Table struct {
	// Library
	InitLibraryWithConfig func(cfg *LibraryConfig)
	DestroyLibrary        func()
	GetLastError          func() Ulong

	// Documents
	LoadDocument       func(path, password string) Document
	LoadMemDocument64  func(data unsafe.Pointer, size uintptr, password string) Document
	LoadCustomDocument func(access *FileAccess, password string) Document
	CreateNewDocument  func() Document
	CloseDocument      func(doc Document)
	GetPageCount       func(doc Document) int32
	GetFileVersion     func(doc Document, version *int32) int32
	GetFileIdentifier  func(doc Document, idType FileIDType, buf unsafe.Pointer, buflen Ulong) Ulong
	GetMetaText        func(doc Document, tag string, buf unsafe.Pointer, buflen Ulong) Ulong
	GetPageMode        func(doc Document) int32
	GetFormType        func(doc Document) int32
	SaveAsCopy         func(doc Document, w *FileWrite, flags SaveFlags) int32
	SaveWithVersion    func(doc Document, w *FileWrite, flags SaveFlags, version int32) int32

	// Pages
	LoadPage          func(doc Document, index int32) Page
	ClosePage         func(page Page)
	NewPage           func(doc Document, index int32, width, height float64) Page
	DeletePage        func(doc Document, index int32)
	GetPageWidthF     func(page Page) float32
	GetPageHeightF    func(page Page) float32
	GetPageRotation   func(page Page) int32
	SetPageRotation   func(page Page, rotate int32)
	RenderPageBitmap  func(bmp Bitmap, page Page, startX, startY, sizeX, sizeY, rotate int32, flags RenderFlags)
	CountObjects      func(page Page) int32
	GetObject         func(page Page, index int32) PageObject
	InsertObject      func(page Page, obj PageObject)
	RemoveObject      func(page Page, obj PageObject) int32
	GenerateContent   func(page Page) int32
	CreateRectObject  func(x, y, w, h float32) PageObject
	DestroyObject     func(obj PageObject)
	GetObjectType     func(obj PageObject) ObjectType
	GetObjectBounds   func(obj PageObject, left, bottom, right, top *float32) int32
	SetObjectFillRGBA func(obj PageObject, r, g, b, a uint32) int32
	SetPathDrawMode   func(obj PageObject, fill FillMode, stroke int32) int32
	GetObjectMatrix   func(obj PageObject, m *Matrix) int32
	SetObjectMatrix   func(obj PageObject, m *Matrix) int32
	TransformObject   func(obj PageObject, a, b, c, d, e, f float64)

	// Page boxes
	GetMediaBox func(page Page, left, bottom, right, top *float32) int32
	GetCropBox  func(page Page, left, bottom, right, top *float32) int32
	GetBleedBox func(page Page, left, bottom, right, top *float32) int32
	GetTrimBox  func(page Page, left, bottom, right, top *float32) int32
	GetArtBox   func(page Page, left, bottom, right, top *float32) int32
	SetMediaBox func(page Page, left, bottom, right, top float32)
	SetCropBox  func(page Page, left, bottom, right, top float32)
	SetBleedBox func(page Page, left, bottom, right, top float32)
	SetTrimBox  func(page Page, left, bottom, right, top float32)
	SetArtBox   func(page Page, left, bottom, right, top float32)

	// Image objects
	NewImageObject           func(doc Document) PageObject
	ImageSetBitmap           func(pages *Page, count int32, obj PageObject, bmp Bitmap) int32
	ImageGetBitmap           func(obj PageObject) Bitmap
	ImageGetRenderedBitmap   func(doc Document, page Page, obj PageObject) Bitmap
	ImageLoadJpegFileInline  func(pages *Page, count int32, obj PageObject, access *FileAccess) int32
	ImageGetImageDataDecoded func(obj PageObject, buf unsafe.Pointer, buflen Ulong) Ulong
	ImageGetImageDataRaw     func(obj PageObject, buf unsafe.Pointer, buflen Ulong) Ulong

	// Text
	LoadTextPage      func(page Page) TextPage
	CloseTextPage     func(tp TextPage)
	CountChars        func(tp TextPage) int32
	GetText           func(tp TextPage, start, count int32, result unsafe.Pointer) int32
	FindStart         func(tp TextPage, query unsafe.Pointer, flags SearchFlags, start int32) Search
	FindNext          func(s Search) int32
	FindPrev          func(s Search) int32
	GetSchResultIndex func(s Search) int32
	GetSchCount       func(s Search) int32
	FindClose         func(s Search)

	// Bitmaps
	BitmapCreate    func(width, height, alpha int32) Bitmap
	BitmapCreateEx  func(width, height int32, format BitmapFormat, firstScan unsafe.Pointer, stride int32) Bitmap
	BitmapDestroy   func(bmp Bitmap)
	BitmapGetFormat func(bmp Bitmap) BitmapFormat
	BitmapGetWidth  func(bmp Bitmap) int32
	BitmapGetHeight func(bmp Bitmap) int32
	BitmapGetStride func(bmp Bitmap) int32
	BitmapGetBuffer func(bmp Bitmap) unsafe.Pointer
	// BitmapFillRect is declared with a status result; builds older than
	// FillRectReturnsBool return void and the value is garbage.
	BitmapFillRect func(bmp Bitmap, left, top, width, height int32, color uint32) int32

	// Attachments
	GetAttachmentCount func(doc Document) int32
	GetAttachment      func(doc Document, index int32) Attachment
	AddAttachment      func(doc Document, name unsafe.Pointer) Attachment
	DeleteAttachment   func(doc Document, index int32) int32
	AttachmentGetName  func(att Attachment, buf unsafe.Pointer, buflen Ulong) Ulong
	AttachmentGetFile  func(att Attachment, buf unsafe.Pointer, buflen Ulong, outLen *Ulong) int32
	AttachmentSetFile  func(att Attachment, doc Document, contents unsafe.Pointer, length Ulong) int32

	// Forms
	InitFormFillEnvironment func(doc Document, info *FormFillInfo) FormHandle
	ExitFormFillEnvironment func(form FormHandle)
	OnAfterLoadPage         func(page Page, form FormHandle)
	OnBeforeClosePage       func(page Page, form FormHandle)
	FFLDraw                 func(form FormHandle, bmp Bitmap, page Page, startX, startY, sizeX, sizeY, rotate int32, flags RenderFlags)
}

var current atomic.Pointer[Table]

// Use installs t as the active function table and returns a function that
// restores the previous one. Passing nil uninstalls the table.
func Use(t *Table) (restore func()) {
	prev := current.Swap(t)
	return func() { current.Store(prev) }
}

// Loaded reports whether a function table is installed.
func Loaded() bool {
	return current.Load() != nil
}

func table() *Table {
	return current.Load()
}
