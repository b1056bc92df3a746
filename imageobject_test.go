//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/obinnaokechukwu/pdfgo/internal/fpdftest"
)

func newImage(t *testing.T, doc *Document) *PageObject {
	t.Helper()
	img, err := doc.NewImageObject()
	if err != nil {
		t.Fatalf("NewImageObject failed: %v", err)
	}
	return img
}

func pixelAt(t *testing.T, b *Bitmap, x, y int) color.NRGBA {
	t.Helper()
	img, err := b.CopyImage()
	if err != nil {
		t.Fatalf("CopyImage failed: %v", err)
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestImageObjectClosesWithDocument(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1})
	img := newImage(t, doc)
	if !img.Loose() || img.Document() != doc || img.Page() != nil {
		t.Fatalf("new image: loose=%v doc=%p page=%p", img.Loose(), img.Document(), img.Page())
	}
	if img.Type() != ObjectImage {
		t.Errorf("Type = %v, want image", img.Type())
	}
	if img.node.Parent() != doc.node {
		t.Error("loose image is not a child of its document")
	}

	raw, dh := img.node.Raw(), doc.node.Raw()
	doc.Close()
	if !img.Closed() {
		t.Error("image still open after its document closed")
	}
	destroyed := f.IndexOf("FPDFPageObj_Destroy", raw)
	closed := f.IndexOf("FPDF_CloseDocument", dh)
	if destroyed < 0 || destroyed > closed {
		t.Errorf("image destroyed at call %d, document closed at %d", destroyed, closed)
	}
	checkClean(t, f)
}

func TestImageObjectSetBitmap(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1})
	img := newImage(t, doc)

	blue := color.NRGBA{B: 0xff, A: 0xff}
	src := newBitmap(t, 4, 3, FormatBGRA)
	if err := src.FillRect(blue, src.Bounds()); err != nil {
		t.Fatalf("FillRect failed: %v", err)
	}
	if err := img.SetBitmap(src); err != nil {
		t.Fatalf("SetBitmap failed: %v", err)
	}
	// The image keeps its own copy.
	src.Close()

	got, err := img.Bitmap(false)
	if err != nil {
		t.Fatalf("Bitmap failed: %v", err)
	}
	if got.Width() != 4 || got.Height() != 3 || got.Format() != FormatBGRA {
		t.Errorf("bitmap = %dx%d format %v", got.Width(), got.Height(), got.Format())
	}
	if got.Origin() != LibraryAllocated {
		t.Errorf("Origin = %v, want LibraryAllocated", got.Origin())
	}
	if got.Node().Parent() != nil {
		t.Error("extracted bitmap should not depend on the image")
	}
	if c := pixelAt(t, got, 3, 2); c != blue {
		t.Errorf("pixel = %v, want %v", c, blue)
	}
	if data, err := img.Data(true); err != nil || len(data) != 4*3*4 {
		t.Errorf("Data = %d bytes, %v", len(data), err)
	}

	// The bitmap is independent of the image and the document.
	img.Close()
	doc.Close()
	if got.Closed() {
		t.Fatal("extracted bitmap closed with the document")
	}
	got.Close()
	checkClean(t, f)
}

func TestImageObjectRejectsReversedBitmap(t *testing.T) {
	setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1})
	img := newImage(t, doc)
	src := newBitmap(t, 2, 2, FormatBGRA, WithRevByteOrder(true))
	if err := img.SetBitmap(src); err == nil {
		t.Fatal("SetBitmap accepted an RGBA bitmap")
	}
	gray := newBitmap(t, 2, 2, FormatGray, WithRevByteOrder(true))
	if err := img.SetBitmap(gray); err != nil {
		t.Errorf("SetBitmap(gray) failed: %v", err)
	}
}

func TestImageObjectOnPage(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1})
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	img := newImage(t, doc)
	src := newBitmap(t, 2, 2, FormatBGR)
	red := color.NRGBA{R: 0xff, A: 0xff}
	if err := src.FillRect(red, src.Bounds()); err != nil {
		t.Fatalf("FillRect failed: %v", err)
	}
	if err := img.SetBitmap(src); err != nil {
		t.Fatalf("SetBitmap failed: %v", err)
	}
	if err := img.SetMatrix(Identity.Scale(20, 10).Translate(100, 200)); err != nil {
		t.Fatalf("SetMatrix failed: %v", err)
	}
	if _, err := img.Pos(); err == nil {
		t.Error("Pos succeeded on a loose object")
	}

	if err := page.InsertObject(img); err != nil {
		t.Fatalf("InsertObject failed: %v", err)
	}
	pos, err := img.Pos()
	if err != nil {
		t.Fatalf("Pos failed: %v", err)
	}
	if want := (Rect{Left: 100, Bottom: 200, Right: 120, Top: 210}); pos != want {
		t.Errorf("Pos = %+v, want %+v", pos, want)
	}

	rendered, err := img.Bitmap(true)
	if err != nil {
		t.Fatalf("Bitmap(true) failed: %v", err)
	}
	if rendered.Width() != 20 || rendered.Height() != 10 || rendered.Format() != FormatBGRA {
		t.Errorf("rendered = %dx%d format %v", rendered.Width(), rendered.Height(), rendered.Format())
	}
	if c := pixelAt(t, rendered, 19, 9); c != red {
		t.Errorf("rendered pixel = %v, want %v", c, red)
	}
	rendered.Close()

	// Taking the image off the page hands it back to the document.
	if err := page.RemoveObject(img); err != nil {
		t.Fatalf("RemoveObject failed: %v", err)
	}
	if img.node.Parent() != doc.node || !img.Loose() {
		t.Fatal("removed image should be a loose child of its document")
	}
	page.Close()
	if img.Closed() {
		t.Fatal("removed image closed with the page")
	}
	loose, err := img.Bitmap(true)
	if err != nil {
		t.Fatalf("Bitmap(true) on a loose image failed: %v", err)
	}
	loose.Close()
	doc.Close()
	if !img.Closed() {
		t.Error("removed image outlived its document")
	}
	src.Close()
	checkClean(t, f)
}

func TestImageObjectLoadJPEG(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1})
	img := newImage(t, doc)

	want := color.NRGBA{R: 200, G: 40, B: 40, A: 0xff}
	src := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	for i := 0; i < len(src.Pix); i += 4 {
		copy(src.Pix[i:], []byte{want.R, want.G, want.B, want.A})
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("jpeg.Encode failed: %v", err)
	}
	data := buf.Bytes()
	if err := img.LoadJPEG(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("LoadJPEG failed: %v", err)
	}
	if n := f.CallCount("FPDFImageObj_LoadJpegFileInline"); n != 1 {
		t.Errorf("LoadJpegFileInline called %d times", n)
	}

	raw, err := img.Data(false)
	if err != nil || !bytes.Equal(raw, data) {
		t.Errorf("raw data does not match the JPEG (%d bytes, %v)", len(raw), err)
	}
	b, err := img.Bitmap(false)
	if err != nil {
		t.Fatalf("Bitmap failed: %v", err)
	}
	defer b.Close()
	if b.Width() != 16 || b.Height() != 8 || b.Format() != FormatBGR {
		t.Fatalf("bitmap = %dx%d format %v", b.Width(), b.Height(), b.Format())
	}
	near := cmp.Comparer(func(a, b uint8) bool { return int(a)-int(b) <= 6 && int(b)-int(a) <= 6 })
	if diff := cmp.Diff(want, pixelAt(t, b, 8, 4), near); diff != "" {
		t.Errorf("pixel (-want +got):\n%s", diff)
	}

	if err := img.LoadJPEG(bytes.NewReader([]byte("not a jpeg")), 10); !errors.Is(err, ErrOperation) {
		t.Errorf("LoadJPEG(garbage) error = %v, want ErrOperation", err)
	}
}

func TestImageObjectErrors(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1})
	other := openPDF(t, fpdftest.PDF{Pages: 1})

	rect, err := NewRectObject(0, 0, 5, 5)
	if err != nil {
		t.Fatalf("NewRectObject failed: %v", err)
	}
	defer rect.Close()
	if _, err := rect.Bitmap(false); !errors.Is(err, ErrNotImage) {
		t.Errorf("rect.Bitmap error = %v, want ErrNotImage", err)
	}
	if err := rect.SetBitmap(newBitmap(t, 1, 1, FormatBGR)); !errors.Is(err, ErrNotImage) {
		t.Errorf("rect.SetBitmap error = %v, want ErrNotImage", err)
	}

	img := newImage(t, doc)
	if _, err := img.Bitmap(false); !errors.Is(err, ErrAllocation) {
		t.Errorf("Bitmap of an empty image: error = %v, want ErrAllocation", err)
	}

	page, err := other.Page(0)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if err := page.InsertObject(img); err == nil {
		t.Error("inserted an image into another document's page")
	}
	if img.Page() != nil || !img.Loose() {
		t.Error("rejected insert changed the object")
	}

	img.Close()
	if _, err := img.Bitmap(false); !errors.Is(err, ErrClosed) {
		t.Errorf("Bitmap after Close: error = %v, want ErrClosed", err)
	}
	page.Close()
	if v := f.Violations(); len(v) > 0 {
		t.Errorf("violations: %v", v)
	}
}

func TestPageObjectMatrix(t *testing.T) {
	setup(t)
	rect, err := NewRectObject(10, 10, 20, 10)
	if err != nil {
		t.Fatalf("NewRectObject failed: %v", err)
	}
	defer rect.Close()

	m, err := rect.Matrix()
	if err != nil || m != Identity {
		t.Fatalf("Matrix = %+v, %v; want identity", m, err)
	}
	if err := rect.Transform(Identity.Translate(5, -5)); err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	if b, _ := rect.Bounds(); b != (Rect{Left: 15, Bottom: 5, Right: 35, Top: 15}) {
		t.Errorf("Bounds after Transform = %+v", b)
	}
	if err := rect.Transform(Identity.Scale(2, 2)); err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	want := Identity.Translate(5, -5).Scale(2, 2)
	if m, _ := rect.Matrix(); m != want {
		t.Errorf("Matrix = %+v, want %+v", m, want)
	}

	if err := rect.SetMatrix(Identity); err != nil {
		t.Fatalf("SetMatrix failed: %v", err)
	}
	if b, _ := rect.Bounds(); b != (Rect{Left: 10, Bottom: 10, Right: 30, Top: 20}) {
		t.Errorf("Bounds after SetMatrix = %+v", b)
	}

	rect.Close()
	if _, err := rect.Matrix(); !errors.Is(err, ErrClosed) {
		t.Errorf("Matrix after Close: error = %v, want ErrClosed", err)
	}
}

func TestMatrix(t *testing.T) {
	type point struct{ X, Y float32 }
	apply := func(m Matrix, x, y float32) point {
		px, py := m.Apply(x, y)
		return point{px, py}
	}
	tests := []struct {
		name string
		m    Matrix
		in   point
		want point
	}{
		{"identity", Identity, point{3, 4}, point{3, 4}},
		{"scale then translate", Identity.Scale(2, 3).Translate(10, 20), point{1, 1}, point{12, 23}},
		{"translate then scale", Identity.Translate(10, 20).Scale(2, 3), point{1, 1}, point{22, 63}},
		{"quarter turn", Identity.Rotate(90), point{1, 0}, point{0, 1}},
		{"half turn", Identity.Rotate(-180), point{1, 2}, point{-1, -2}},
		{"three quarters", Identity.Rotate(270), point{1, 0}, point{0, -1}},
		{"eighth turn", Identity.Rotate(45), point{1, 0}, point{0.70710677, 0.70710677}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(tt.m, tt.in.X, tt.in.Y)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
				t.Errorf("Apply (-want +got):\n%s", diff)
			}
		})
	}

	if m := Identity.Rotate(90); m != (Matrix{B: 1, C: -1}) {
		t.Errorf("Rotate(90) = %+v, want an exact quarter turn", m)
	}
	m := Identity.Scale(2, 2).Translate(1, 1)
	if got := m.Multiply(Identity); got != m {
		t.Errorf("m x identity = %+v, want %+v", got, m)
	}
}
