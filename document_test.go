//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"bytes"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
	"github.com/obinnaokechukwu/pdfgo/internal/fpdftest"
)

func writePDF(t *testing.T, p fpdftest.PDF) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pdf")
	if err := os.WriteFile(path, p.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestOpenFileAccess(t *testing.T) {
	f := setup(t)
	path := writePDF(t, fpdftest.PDF{Pages: 3, Title: "Quarterly"})

	for _, access := range []FileAccess{FileAccessNative, FileAccessBuffer, FileAccessBytes, FileAccessMmap} {
		t.Run(access.String(), func(t *testing.T) {
			doc, err := Open(path, WithFileAccess(access))
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if n := doc.PageCount(); n != 3 {
				t.Errorf("PageCount = %d, want 3", n)
			}
			if got := doc.Metadata()["Title"]; got != "Quarterly" {
				t.Errorf("Title = %q", got)
			}
			doc.Close()
		})
	}
	checkClean(t, f)
}

func TestOpenMissingFile(t *testing.T) {
	setup(t)
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("err = %v, want ErrAllocation", err)
	}
	if c := Code(err); c != CodeFile {
		t.Errorf("Code = %v, want %v", c, CodeFile)
	}
}

func TestOpenPassword(t *testing.T) {
	f := setup(t)
	data := fpdftest.PDF{Pages: 1, Password: "secret"}.Bytes()
	before := PinnedBufferMemoryUsage()

	if _, err := OpenBytes(data, WithPassword("wrong")); Code(err) != CodePassword {
		t.Errorf("wrong password: err = %v", err)
	}
	if got := PinnedBufferMemoryUsage(); got != before {
		t.Errorf("failed open left pinned memory: %+v, before %+v", got, before)
	}
	doc, err := OpenBytes(data, WithPassword("secret"))
	if err != nil {
		t.Fatalf("OpenBytes failed: %v", err)
	}
	doc.Close()
	checkClean(t, f)
}

func TestOpenBytesPinsUntilClose(t *testing.T) {
	setup(t)
	data := fpdftest.NewPDF(1)
	before := PinnedBufferMemoryUsage()

	doc, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("OpenBytes failed: %v", err)
	}
	during := PinnedBufferMemoryUsage()
	if during.PinnedBuffers != before.PinnedBuffers+1 || during.PinnedBytes != before.PinnedBytes+int64(len(data)) {
		t.Errorf("usage while open = %+v, before %+v", during, before)
	}
	doc.Close()
	if got := PinnedBufferMemoryUsage(); got != before {
		t.Errorf("usage after Close = %+v, want %+v", got, before)
	}
}

func TestDocumentInfo(t *testing.T) {
	setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 2, Version: 16, Title: "T", Author: "A"})

	if v, ok := doc.Version(); !ok || v != 16 {
		t.Errorf("Version = %d, %v", v, ok)
	}
	want := map[string]string{"Title": "T", "Author": "A", "Producer": "pdfgo fpdftest"}
	if diff := cmp.Diff(want, doc.Metadata()); diff != "" {
		t.Errorf("Metadata (-want +got):\n%s", diff)
	}
	if id := doc.FileIdentifier(fpdf.FileIDPermanent); len(id) == 0 {
		t.Error("FileIdentifier is empty")
	}
	if _, err := doc.Page(2); !errors.Is(err, ErrPageIndex) {
		t.Errorf("Page(2): err = %v, want ErrPageIndex", err)
	}
}

func TestPageGeometry(t *testing.T) {
	setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1, Width: 200, Height: 100, Rotate: 90})
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if w, h := page.Size(); w != 200 || h != 100 {
		t.Errorf("Size = %vx%v", w, h)
	}
	if r := page.Rotation(); r != 90 {
		t.Errorf("Rotation = %d, want 90", r)
	}
	if err := page.SetRotation(-90); err != nil {
		t.Fatalf("SetRotation failed: %v", err)
	}
	if r := page.Rotation(); r != 270 {
		t.Errorf("Rotation after SetRotation(-90) = %d, want 270", r)
	}
	if err := page.SetRotation(45); err == nil {
		t.Error("SetRotation(45) succeeded")
	}
}

func TestNewDocumentAndSave(t *testing.T) {
	f := setup(t)
	doc, err := NewDocument()
	if err != nil {
		t.Fatalf("NewDocument failed: %v", err)
	}
	for i := range 2 {
		page, err := doc.NewPage(i, 300, 400)
		if err != nil {
			t.Fatalf("NewPage failed: %v", err)
		}
		page.Close()
	}
	if err := doc.DeletePage(0); err != nil {
		t.Fatalf("DeletePage failed: %v", err)
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf, WithSaveVersion(15)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	doc.Close()

	reopened, err := OpenBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if n := reopened.PageCount(); n != 1 {
		t.Errorf("PageCount = %d, want 1", n)
	}
	if v, _ := reopened.Version(); v != 15 {
		t.Errorf("Version = %d, want 15", v)
	}
	reopened.Close()
	checkClean(t, f)
}

func TestTextAndSearch(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1, Text: func(int) string { return "one two One twone" }})
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	tp, err := page.TextPage()
	if err != nil {
		t.Fatalf("TextPage failed: %v", err)
	}
	if n := tp.CountChars(); n != 17 {
		t.Errorf("CountChars = %d, want 17", n)
	}
	if got, err := tp.Text(4, 3); err != nil || got != "two" {
		t.Errorf("Text(4, 3) = %q, %v", got, err)
	}

	s, err := tp.Search("one", MatchCase, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	want := []Match{{Index: 0, Count: 3}, {Index: 14, Count: 3}}
	if diff := cmp.Diff(want, s.All()); diff != "" {
		t.Errorf("matches (-want +got):\n%s", diff)
	}

	// Closing the text page ends the search first.
	tp.Close()
	if _, ok := s.Next(); ok {
		t.Error("Next succeeded on a closed search")
	}
	page.Close()
	doc.Close()
	checkClean(t, f)
}

func TestPageObjects(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1})
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	base := page.ObjectCount()

	rect, err := NewRectObject(10, 20, 30, 40)
	if err != nil {
		t.Fatalf("NewRectObject failed: %v", err)
	}
	if !rect.Loose() {
		t.Error("new object is not loose")
	}
	if err := rect.SetFillColor(color.NRGBA{R: 0xff, A: 0xff}); err != nil {
		t.Fatalf("SetFillColor failed: %v", err)
	}
	if err := page.InsertObject(rect); err != nil {
		t.Fatalf("InsertObject failed: %v", err)
	}
	if rect.Loose() {
		t.Error("inserted object still loose")
	}
	if n := page.ObjectCount(); n != base+1 {
		t.Errorf("ObjectCount = %d, want %d", n, base+1)
	}
	if b, err := rect.Bounds(); err != nil || b != (Rect{Left: 10, Bottom: 20, Right: 40, Top: 60}) {
		t.Errorf("Bounds = %+v, %v", b, err)
	}
	if err := page.GenerateContent(); err != nil {
		t.Errorf("GenerateContent failed: %v", err)
	}

	if err := page.RemoveObject(rect); err != nil {
		t.Fatalf("RemoveObject failed: %v", err)
	}
	if !rect.Loose() {
		t.Error("removed object is not loose")
	}
	page.Close()
	if rect.Closed() {
		t.Fatal("removed object closed with the page")
	}
	raw := rect.node.Raw()
	rect.Close()
	if f.IndexOf("FPDFPageObj_Destroy", raw) < 0 {
		t.Error("removed object was not destroyed")
	}
	doc.Close()
	checkClean(t, f)
}

func TestInsertedObjectClosesWithPage(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1})
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	rect, err := NewRectObject(0, 0, 1, 1)
	if err != nil {
		t.Fatalf("NewRectObject failed: %v", err)
	}
	if err := page.InsertObject(rect); err != nil {
		t.Fatalf("InsertObject failed: %v", err)
	}
	page.Close()
	if !rect.Closed() {
		t.Error("object on page still open after page closed")
	}
	if n := f.CallCount("FPDFPageObj_Destroy"); n != 0 {
		t.Errorf("page-owned object destroyed %d times", n)
	}
	doc.Close()
	checkClean(t, f)
}

func TestAttachments(t *testing.T) {
	f := setup(t)
	doc, err := NewDocument()
	if err != nil {
		t.Fatalf("NewDocument failed: %v", err)
	}
	a, err := doc.NewAttachment("notes.txt")
	if err != nil {
		t.Fatalf("NewAttachment failed: %v", err)
	}
	if err := a.SetData([]byte("hello")); err != nil {
		t.Fatalf("SetData failed: %v", err)
	}
	if n := doc.AttachmentCount(); n != 1 {
		t.Fatalf("AttachmentCount = %d", n)
	}
	got, err := doc.Attachment(0)
	if err != nil {
		t.Fatalf("Attachment failed: %v", err)
	}
	if name := got.Name(); name != "notes.txt" {
		t.Errorf("Name = %q", name)
	}
	if data, err := got.Data(); err != nil || string(data) != "hello" {
		t.Errorf("Data = %q, %v", data, err)
	}
	if err := doc.DeleteAttachment(0); err != nil {
		t.Fatalf("DeleteAttachment failed: %v", err)
	}
	doc.Close()
	if _, err := got.Data(); !errors.Is(err, ErrClosed) {
		t.Errorf("Data after Close: err = %v, want ErrClosed", err)
	}
	checkClean(t, f)
}

func TestFormEnvClosesAfterItsPages(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 2, Form: true})

	env, err := doc.InitFormEnv()
	if err != nil {
		t.Fatalf("InitFormEnv failed: %v", err)
	}
	again, err := doc.InitFormEnv()
	if err != nil || again != env {
		t.Errorf("second InitFormEnv = %p, %v; want the open environment", again, err)
	}
	page, err := doc.Page(1)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if page.node.Parent() != env.node {
		t.Error("page loaded under a form environment is not its child")
	}
	pageRaw, envRaw, docRaw := page.node.Raw(), env.node.Raw(), doc.node.Raw()

	doc.Close()
	order := []int{
		f.IndexOf("FORM_OnAfterLoadPage", pageRaw),
		f.IndexOf("FORM_OnBeforeClosePage", pageRaw),
		f.IndexOf("FPDF_ClosePage", pageRaw),
		f.IndexOf("FPDFDOC_ExitFormFillEnvironment", envRaw),
		f.IndexOf("FPDF_CloseDocument", docRaw),
	}
	for i, idx := range order {
		if idx < 0 {
			t.Fatalf("call %d missing from log", i)
		}
		if i > 0 && idx < order[i-1] {
			t.Errorf("calls out of order: %v", order)
		}
	}
	if doc.FormEnv() != nil {
		t.Error("FormEnv returned a closed environment")
	}
	checkClean(t, f)
}
