//go:build !ios && !android && (amd64 || arm64)

// Package fpdf provides the raw PDFium C API as Go functions.
//
// Every function here runs its native call through the process-wide call
// gate, so callers never need their own locking. Handles are opaque
// pointer-sized values; ownership and release order are the caller's
// business (see package lifecycle).
//
// The function table can be replaced with Use, which lets tests run against
// an in-process fake instead of the shared library.
package fpdf

import "fmt"

// Opaque PDFium handles.
type (
	Document   uintptr // FPDF_DOCUMENT
	Page       uintptr // FPDF_PAGE
	TextPage   uintptr // FPDF_TEXTPAGE
	Search     uintptr // FPDF_SCHHANDLE
	Bitmap     uintptr // FPDF_BITMAP
	PageObject uintptr // FPDF_PAGEOBJECT
	Attachment uintptr // FPDF_ATTACHMENT
	FormHandle uintptr // FPDF_FORMHANDLE
)

// BitmapFormat is a FPDFBitmap_* pixel format.
type BitmapFormat int32

const (
	BitmapUnknown BitmapFormat = 0
	BitmapGray    BitmapFormat = 1 // 1 byte per pixel
	BitmapBGR     BitmapFormat = 2 // 3 bytes per pixel, B G R
	BitmapBGRx    BitmapFormat = 3 // 4 bytes per pixel, B G R, unused
	BitmapBGRA    BitmapFormat = 4 // 4 bytes per pixel, B G R A
)

// RenderFlags are the flags accepted by FPDF_RenderPageBitmap and FPDF_FFLDraw.
type RenderFlags int32

const (
	RenderAnnot             RenderFlags = 0x01
	RenderLCDText           RenderFlags = 0x02
	RenderNoNativeText      RenderFlags = 0x04
	RenderGrayscale         RenderFlags = 0x08
	RenderReverseByteOrder  RenderFlags = 0x10
	RenderConvertFillStroke RenderFlags = 0x20
	RenderDebugInfo         RenderFlags = 0x80
	RenderNoCatch           RenderFlags = 0x100
	RenderLimitedImageCache RenderFlags = 0x200
	RenderForceHalftone     RenderFlags = 0x400
	RenderPrinting          RenderFlags = 0x800
	RenderNoSmoothText      RenderFlags = 0x1000
	RenderNoSmoothImage     RenderFlags = 0x2000
	RenderNoSmoothPath      RenderFlags = 0x4000
)

// ErrorCode is a FPDF_ERR_* value from FPDF_GetLastError.
type ErrorCode uint32

const (
	ErrSuccess  ErrorCode = 0
	ErrUnknown  ErrorCode = 1
	ErrFile     ErrorCode = 2
	ErrFormat   ErrorCode = 3
	ErrPassword ErrorCode = 4
	ErrSecurity ErrorCode = 5
	ErrPage     ErrorCode = 6
)

func (c ErrorCode) String() string {
	switch c {
	case ErrSuccess:
		return "success"
	case ErrUnknown:
		return "unknown error"
	case ErrFile:
		return "file not found or could not be opened"
	case ErrFormat:
		return "file not in PDF format or corrupted"
	case ErrPassword:
		return "password required or incorrect password"
	case ErrSecurity:
		return "unsupported security scheme"
	case ErrPage:
		return "page not found or content error"
	default:
		return "unrecognized error"
	}
}

// SearchFlags control FPDFText_FindStart.
type SearchFlags uint32

const (
	MatchCase      SearchFlags = 0x1
	MatchWholeWord SearchFlags = 0x2
	Consecutive    SearchFlags = 0x4
)

// SaveFlags control FPDF_SaveAsCopy.
type SaveFlags uint32

const (
	SaveIncremental    SaveFlags = 1
	SaveNoIncremental  SaveFlags = 2
	SaveRemoveSecurity SaveFlags = 3
)

// ObjectType is a FPDF_PAGEOBJ_* value.
type ObjectType int32

const (
	ObjectUnknown ObjectType = 0
	ObjectText    ObjectType = 1
	ObjectPath    ObjectType = 2
	ObjectImage   ObjectType = 3
	ObjectShading ObjectType = 4
	ObjectForm    ObjectType = 5
)

// Matrix mirrors FS_MATRIX, the transform
//
//	| a b 0 |
//	| c d 0 |
//	| e f 1 |
//
// applied to row vectors (x, y, 1).
type Matrix struct {
	A, B, C, D, E, F float32
}

// BoxType selects one of the page boundary boxes.
type BoxType int

const (
	MediaBox BoxType = iota
	CropBox
	BleedBox
	TrimBox
	ArtBox
)

func (b BoxType) String() string {
	switch b {
	case MediaBox:
		return "MediaBox"
	case CropBox:
		return "CropBox"
	case BleedBox:
		return "BleedBox"
	case TrimBox:
		return "TrimBox"
	case ArtBox:
		return "ArtBox"
	}
	return fmt.Sprintf("BoxType(%d)", int(b))
}

// FillMode is a FPDF_FILLMODE_* value for path objects.
type FillMode int32

const (
	FillNone      FillMode = 0
	FillAlternate FillMode = 1
	FillWinding   FillMode = 2
)

// FileIDType selects the permanent or changing part of the trailer /ID.
type FileIDType int32

const (
	FileIDPermanent FileIDType = 0
	FileIDChanging  FileIDType = 1
)

// FormType is a FORMTYPE_* value.
type FormType int32

const (
	FormNone          FormType = 0
	FormAcro          FormType = 1
	FormXFAFull       FormType = 2
	FormXFAForeground FormType = 3
)

// FillRectReturnsBool is the first PDFium build whose FPDFBitmap_FillRect
// returns FPDF_BOOL instead of void.
const FillRectReturnsBool = 6569

// LibraryConfig mirrors FPDF_LIBRARY_CONFIG up to version 4.
type LibraryConfig struct {
	Version        int32
	UserFontPaths  uintptr // const char**
	Isolate        uintptr
	V8EmbedderSlot uint32
	Platform       uintptr
	RendererType   int32
}

// FormFillInfo mirrors FPDF_FORMFILLINFO with every callback left NULL.
// PDFium checks each callback for NULL before invoking it. The trailing
// slots cover the largest struct version so PDFium never reads past the end.
type FormFillInfo struct {
	Version int32
	_       [48]uintptr
}
