//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"errors"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/obinnaokechukwu/pdfgo/internal/fpdftest"
	"github.com/obinnaokechukwu/pdfgo/logging"
)

// setup installs the fake PDFium and initializes the library against it.
func setup(t *testing.T) *fpdftest.Fake {
	t.Helper()
	f := fpdftest.Install(t)
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(Destroy)
	return f
}

// captureLogs routes library diagnostics into a buffer for the test.
func captureLogs(t *testing.T) *logging.BufferedLogHandler {
	t.Helper()
	h := logging.NewBufferedLogHandler(&slog.HandlerOptions{Level: slog.LevelDebug})
	SetLogger(slog.New(h))
	t.Cleanup(func() { SetLogger(nil) })
	return h
}

// openPDF opens a generated document that is closed when the test ends.
func openPDF(t *testing.T, p fpdftest.PDF) *Document {
	t.Helper()
	doc, err := OpenBytes(p.Bytes())
	if err != nil {
		t.Fatalf("OpenBytes failed: %v", err)
	}
	t.Cleanup(func() { doc.Close() })
	return doc
}

// checkClean fails if the fake saw misuse or still holds handles.
func checkClean(t *testing.T, f *fpdftest.Fake) {
	t.Helper()
	if v := f.Violations(); len(v) > 0 {
		t.Errorf("violations: %v", v)
	}
	if open := f.Open(); len(open) > 0 {
		t.Errorf("leaked handles: %v", open)
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		runtime.GC()
		time.Sleep(2 * time.Millisecond)
	}
}

func TestInit(t *testing.T) {
	setup(t)
	if !IsInitialized() {
		t.Fatal("IsInitialized returned false after Init")
	}
	if err := Init(); err != nil {
		t.Errorf("second Init failed: %v", err)
	}
}

func TestOpenBeforeInit(t *testing.T) {
	fpdftest.Install(t)
	if _, err := OpenBytes(fpdftest.NewPDF(1)); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("OpenBytes before Init: err = %v, want ErrNotInitialized", err)
	}
	if _, err := NewNativeBitmap(1, 1, FormatGray); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("NewNativeBitmap before Init: err = %v, want ErrNotInitialized", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1})
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	before := Stats().DuplicateCloses

	if !page.Close() {
		t.Fatal("first Close returned false")
	}
	if page.Close() {
		t.Error("second Close returned true")
	}
	if n := f.CallCount("FPDF_ClosePage"); n != 1 {
		t.Errorf("FPDF_ClosePage called %d times, want 1", n)
	}
	if got := Stats().DuplicateCloses - before; got != 1 {
		t.Errorf("DuplicateCloses grew by %d, want 1", got)
	}

	doc.Close()
	if doc.Close() {
		t.Error("second document Close returned true")
	}
	checkClean(t, f)
}

func TestCloseCascadesChildrenFirst(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 2})

	page, err := doc.Page(1)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	tp, err := page.TextPage()
	if err != nil {
		t.Fatalf("TextPage failed: %v", err)
	}
	search, err := tp.Search("Page", 0, 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	raws := []uintptr{search.node.Raw(), tp.node.Raw(), page.node.Raw(), doc.node.Raw()}

	if !doc.Close() {
		t.Fatal("Close returned false")
	}

	order := []int{
		f.IndexOf("FPDFText_FindClose", raws[0]),
		f.IndexOf("FPDFText_ClosePage", raws[1]),
		f.IndexOf("FPDF_ClosePage", raws[2]),
		f.IndexOf("FPDF_CloseDocument", raws[3]),
	}
	for i, idx := range order {
		if idx < 0 {
			t.Fatalf("release %d missing from call log", i)
		}
		if i > 0 && idx < order[i-1] {
			t.Errorf("releases out of order: %v", order)
		}
	}
	for _, closed := range []bool{search.node.Closed(), tp.node.Closed(), page.Closed(), doc.Closed()} {
		if !closed {
			t.Error("object still open after its document closed")
		}
	}
	checkClean(t, f)
}

func TestClosedObjectsReportErrClosed(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1})
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	doc.Close()

	if !page.Closed() {
		t.Error("page not closed with its document")
	}
	if _, err := page.TextPage(); !errors.Is(err, ErrClosed) {
		t.Errorf("TextPage on closed page: err = %v, want ErrClosed", err)
	}
	if _, err := page.Render(RenderOptions{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Render on closed page: err = %v, want ErrClosed", err)
	}
	if _, err := doc.Page(0); !errors.Is(err, ErrClosed) {
		t.Errorf("Page on closed document: err = %v, want ErrClosed", err)
	}
	if n := doc.PageCount(); n != 0 {
		t.Errorf("PageCount on closed document = %d", n)
	}
	checkClean(t, f)
}

// loadPage loads page 0 and lets the caller drop every reference to it.
func loadPage(t *testing.T, doc *Document) uintptr {
	t.Helper()
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	return page.node.Raw()
}

func TestUnreachablePageIsReleased(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1})
	before := Stats().Finalized

	raw := loadPage(t, doc)
	eventually(t, "page finalizer", func() bool {
		return f.IndexOf("FPDF_ClosePage", raw) >= 0
	})

	if n := doc.Node().LiveChildren(); n != 0 {
		t.Errorf("document still lists %d live children", n)
	}
	if Stats().Finalized <= before {
		t.Error("Finalized counter did not grow")
	}
	if doc.Closed() {
		t.Fatal("document closed by a child's finalizer")
	}
	if n := doc.PageCount(); n != 1 {
		t.Errorf("PageCount = %d after page was collected", n)
	}
	doc.Close()
	checkClean(t, f)
}

func TestPageKeepsDocumentReachable(t *testing.T) {
	f := setup(t)
	page := func() *Page {
		doc, err := OpenBytes(fpdftest.NewPDF(2))
		if err != nil {
			t.Fatalf("OpenBytes failed: %v", err)
		}
		p, err := doc.Page(1)
		if err != nil {
			t.Fatalf("Page failed: %v", err)
		}
		return p
	}()

	for range 3 {
		runtime.GC()
	}
	if page.Closed() {
		t.Fatal("page closed while still referenced")
	}
	if w, h := page.Size(); w == 0 || h == 0 {
		t.Errorf("Size = %vx%v", w, h)
	}
	page.Document().Close()
	checkClean(t, f)
}

func TestDestroyWithOpenHandlesSkipsReleases(t *testing.T) {
	f := fpdftest.Install(t)
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(Destroy)
	logs := captureLogs(t)
	doc, err := OpenBytes(fpdftest.NewPDF(1))
	if err != nil {
		t.Fatalf("OpenBytes failed: %v", err)
	}
	before := Stats().ShutdownRaces

	Destroy()
	if IsInitialized() {
		t.Fatal("IsInitialized after Destroy")
	}
	doc.Close()

	if n := f.CallCount("FPDF_CloseDocument"); n != 0 {
		t.Errorf("FPDF_CloseDocument called %d times after Destroy", n)
	}
	if got := Stats().ShutdownRaces - before; got != 1 {
		t.Errorf("ShutdownRaces grew by %d, want 1", got)
	}
	if !logs.Contains("destroying PDFium with open handles") {
		t.Errorf("missing Destroy warning in logs:\n%s", logs)
	}
}

func TestCloseAll(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 2})
	page, err := doc.Page(1)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	bmp, err := NewNativeBitmap(4, 4, FormatBGRA)
	if err != nil {
		t.Fatalf("NewNativeBitmap failed: %v", err)
	}
	dh, ph := doc.node.Raw(), page.node.Raw()

	if n := CloseAll(); n < 2 {
		t.Errorf("CloseAll closed %d roots, want at least 2", n)
	}
	if !doc.Closed() || !page.Closed() || !bmp.Closed() {
		t.Errorf("closed: doc %v page %v bitmap %v", doc.Closed(), page.Closed(), bmp.Closed())
	}
	pi, di := f.IndexOf("FPDF_ClosePage", ph), f.IndexOf("FPDF_CloseDocument", dh)
	if pi < 0 || di < 0 || pi > di {
		t.Errorf("close order: page at %d, document at %d", pi, di)
	}
	checkClean(t, f)
}

func TestDestroyRacingFinalizers(t *testing.T) {
	f := fpdftest.Install(t)
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(Destroy)
	before := Stats()

	const docs = 50
	for range docs {
		if _, err := OpenBytes(fpdftest.NewPDF(1)); err != nil {
			t.Fatalf("OpenBytes failed: %v", err)
		}
	}
	collected := make(chan struct{})
	go func() {
		runtime.GC()
		runtime.GC()
		close(collected)
	}()
	Destroy()
	<-collected

	eventually(t, "abandoned documents to be finalized", func() bool {
		st := Stats()
		return (st.Released-before.Released)+(st.ShutdownRaces-before.ShutdownRaces) >= docs
	})
	calls := f.Calls()
	destroyed := -1
	for i, c := range calls {
		if c.Name == "FPDF_DestroyLibrary" {
			destroyed = i
		}
	}
	if destroyed < 0 {
		t.Fatal("FPDF_DestroyLibrary never called")
	}
	for _, c := range calls[destroyed+1:] {
		if c.Name == "FPDF_CloseDocument" {
			t.Errorf("FPDF_CloseDocument(%#x) called after FPDF_DestroyLibrary", c.Handle)
		}
	}
}

func TestLiveHandles(t *testing.T) {
	setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1})
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}

	var kinds []string
	for _, e := range LiveHandles() {
		if e.ID == doc.node.ID() || e.ID == page.node.ID() {
			kinds = append(kinds, string(e.Kind)+" "+e.Label)
		}
	}
	want := []string{"document <bytes>", "page page 0"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("live handles (-want +got):\n%s", diff)
	}
}
