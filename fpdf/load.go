//go:build !ios && !android && (amd64 || arm64)

package fpdf

import (
	"fmt"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/pdfgo/internal/bindings"
)

// symbol binds one Table field to a C symbol.
type symbol struct {
	fptr     any
	name     string
	optional bool
}

func (t *Table) symbols() []symbol {
	return []symbol{
		{&t.InitLibraryWithConfig, "FPDF_InitLibraryWithConfig", false},
		{&t.DestroyLibrary, "FPDF_DestroyLibrary", false},
		{&t.GetLastError, "FPDF_GetLastError", false},

		{&t.LoadDocument, "FPDF_LoadDocument", false},
		{&t.LoadMemDocument64, "FPDF_LoadMemDocument64", false},
		{&t.LoadCustomDocument, "FPDF_LoadCustomDocument", false},
		{&t.CreateNewDocument, "FPDF_CreateNewDocument", false},
		{&t.CloseDocument, "FPDF_CloseDocument", false},
		{&t.GetPageCount, "FPDF_GetPageCount", false},
		{&t.GetFileVersion, "FPDF_GetFileVersion", false},
		{&t.GetFileIdentifier, "FPDF_GetFileIdentifier", true},
		{&t.GetMetaText, "FPDF_GetMetaText", false},
		{&t.GetPageMode, "FPDFDoc_GetPageMode", true},
		{&t.GetFormType, "FPDF_GetFormType", true},
		{&t.SaveAsCopy, "FPDF_SaveAsCopy", false},
		{&t.SaveWithVersion, "FPDF_SaveWithVersion", false},

		{&t.LoadPage, "FPDF_LoadPage", false},
		{&t.ClosePage, "FPDF_ClosePage", false},
		{&t.NewPage, "FPDFPage_New", false},
		{&t.DeletePage, "FPDFPage_Delete", false},
		{&t.GetPageWidthF, "FPDF_GetPageWidthF", false},
		{&t.GetPageHeightF, "FPDF_GetPageHeightF", false},
		{&t.GetPageRotation, "FPDFPage_GetRotation", false},
		{&t.SetPageRotation, "FPDFPage_SetRotation", false},
		{&t.RenderPageBitmap, "FPDF_RenderPageBitmap", false},
		{&t.CountObjects, "FPDFPage_CountObjects", false},
		{&t.GetObject, "FPDFPage_GetObject", false},
		{&t.InsertObject, "FPDFPage_InsertObject", false},
		{&t.RemoveObject, "FPDFPage_RemoveObject", false},
		{&t.GenerateContent, "FPDFPage_GenerateContent", false},
		{&t.CreateRectObject, "FPDFPageObj_CreateNewRect", false},
		{&t.DestroyObject, "FPDFPageObj_Destroy", false},
		{&t.GetObjectType, "FPDFPageObj_GetType", false},
		{&t.GetObjectBounds, "FPDFPageObj_GetBounds", false},
		{&t.SetObjectFillRGBA, "FPDFPageObj_SetFillColor", false},
		{&t.SetPathDrawMode, "FPDFPath_SetDrawMode", false},
		{&t.GetObjectMatrix, "FPDFPageObj_GetMatrix", true},
		{&t.SetObjectMatrix, "FPDFPageObj_SetMatrix", true},
		{&t.TransformObject, "FPDFPageObj_Transform", true},

		{&t.GetMediaBox, "FPDFPage_GetMediaBox", true},
		{&t.GetCropBox, "FPDFPage_GetCropBox", true},
		{&t.GetBleedBox, "FPDFPage_GetBleedBox", true},
		{&t.GetTrimBox, "FPDFPage_GetTrimBox", true},
		{&t.GetArtBox, "FPDFPage_GetArtBox", true},
		{&t.SetMediaBox, "FPDFPage_SetMediaBox", true},
		{&t.SetCropBox, "FPDFPage_SetCropBox", true},
		{&t.SetBleedBox, "FPDFPage_SetBleedBox", true},
		{&t.SetTrimBox, "FPDFPage_SetTrimBox", true},
		{&t.SetArtBox, "FPDFPage_SetArtBox", true},

		{&t.NewImageObject, "FPDFPageObj_NewImageObj", true},
		{&t.ImageSetBitmap, "FPDFImageObj_SetBitmap", true},
		{&t.ImageGetBitmap, "FPDFImageObj_GetBitmap", true},
		{&t.ImageGetRenderedBitmap, "FPDFImageObj_GetRenderedBitmap", true},
		{&t.ImageLoadJpegFileInline, "FPDFImageObj_LoadJpegFileInline", true},
		{&t.ImageGetImageDataDecoded, "FPDFImageObj_GetImageDataDecoded", true},
		{&t.ImageGetImageDataRaw, "FPDFImageObj_GetImageDataRaw", true},

		{&t.LoadTextPage, "FPDFText_LoadPage", false},
		{&t.CloseTextPage, "FPDFText_ClosePage", false},
		{&t.CountChars, "FPDFText_CountChars", false},
		{&t.GetText, "FPDFText_GetText", false},
		{&t.FindStart, "FPDFText_FindStart", false},
		{&t.FindNext, "FPDFText_FindNext", false},
		{&t.FindPrev, "FPDFText_FindPrev", false},
		{&t.GetSchResultIndex, "FPDFText_GetSchResultIndex", false},
		{&t.GetSchCount, "FPDFText_GetSchCount", false},
		{&t.FindClose, "FPDFText_FindClose", false},

		{&t.BitmapCreate, "FPDFBitmap_Create", false},
		{&t.BitmapCreateEx, "FPDFBitmap_CreateEx", false},
		{&t.BitmapDestroy, "FPDFBitmap_Destroy", false},
		{&t.BitmapGetFormat, "FPDFBitmap_GetFormat", false},
		{&t.BitmapGetWidth, "FPDFBitmap_GetWidth", false},
		{&t.BitmapGetHeight, "FPDFBitmap_GetHeight", false},
		{&t.BitmapGetStride, "FPDFBitmap_GetStride", false},
		{&t.BitmapGetBuffer, "FPDFBitmap_GetBuffer", false},
		{&t.BitmapFillRect, "FPDFBitmap_FillRect", false},

		{&t.GetAttachmentCount, "FPDFDoc_GetAttachmentCount", true},
		{&t.GetAttachment, "FPDFDoc_GetAttachment", true},
		{&t.AddAttachment, "FPDFDoc_AddAttachment", true},
		{&t.DeleteAttachment, "FPDFDoc_DeleteAttachment", true},
		{&t.AttachmentGetName, "FPDFAttachment_GetName", true},
		{&t.AttachmentGetFile, "FPDFAttachment_GetFile", true},
		{&t.AttachmentSetFile, "FPDFAttachment_SetFile", true},

		{&t.InitFormFillEnvironment, "FPDFDOC_InitFormFillEnvironment", true},
		{&t.ExitFormFillEnvironment, "FPDFDOC_ExitFormFillEnvironment", true},
		{&t.OnAfterLoadPage, "FORM_OnAfterLoadPage", true},
		{&t.OnBeforeClosePage, "FORM_OnBeforeClosePage", true},
		{&t.FFLDraw, "FPDF_FFLDraw", true},
	}
}

// Open registers every PDFium entry point found in lib and returns the
// resulting table. A missing required symbol is an error; a missing
// optional one leaves its field nil.
func Open(lib uintptr) (*Table, error) {
	if lib == 0 {
		return nil, bindings.ErrNotLoaded
	}
	initCallbacks()

	t := &Table{}
	for _, s := range t.symbols() {
		addr, err := purego.Dlsym(lib, s.name)
		if err != nil || addr == 0 {
			if s.optional {
				continue
			}
			return nil, fmt.Errorf("pdfgo: PDFium symbol %s missing: %w", s.name, err)
		}
		purego.RegisterFunc(s.fptr, addr)
	}
	return t, nil
}
