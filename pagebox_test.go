//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"errors"
	"testing"

	"github.com/obinnaokechukwu/pdfgo/internal/fpdftest"
)

func TestPageBoxes(t *testing.T) {
	f := setup(t)
	doc := openPDF(t, fpdftest.PDF{Pages: 1, Width: 300, Height: 400})
	page, err := doc.Page(0)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	media := Rect{Right: 300, Top: 400}

	if r, ok := page.DefinedBox(MediaBox); !ok || r != media {
		t.Errorf("DefinedBox(MediaBox) = %+v, %v", r, ok)
	}
	if _, ok := page.DefinedBox(CropBox); ok {
		t.Error("generated page should have no CropBox")
	}
	for _, box := range []BoxType{MediaBox, CropBox, BleedBox, TrimBox, ArtBox} {
		if r, err := page.Box(box); err != nil || r != media {
			t.Errorf("Box(%v) = %+v, %v; want the media box", box, r, err)
		}
	}

	crop := Rect{Left: 10, Bottom: 20, Right: 290, Top: 380}
	if err := page.SetBox(CropBox, crop); err != nil {
		t.Fatalf("SetBox failed: %v", err)
	}
	trim := Rect{Left: 15, Bottom: 25, Right: 285, Top: 375}
	if err := page.SetBox(TrimBox, trim); err != nil {
		t.Fatalf("SetBox failed: %v", err)
	}
	tests := []struct {
		box  BoxType
		want Rect
	}{
		{MediaBox, media},
		{CropBox, crop},
		{BleedBox, crop},
		{TrimBox, trim},
		{ArtBox, crop},
	}
	for _, tt := range tests {
		if r, err := page.Box(tt.box); err != nil || r != tt.want {
			t.Errorf("Box(%v) = %+v, %v; want %+v", tt.box, r, err, tt.want)
		}
	}

	page.Close()
	if _, err := page.Box(CropBox); !errors.Is(err, ErrClosed) {
		t.Errorf("Box on a closed page: error = %v, want ErrClosed", err)
	}
	if err := page.SetBox(CropBox, crop); !errors.Is(err, ErrClosed) {
		t.Errorf("SetBox on a closed page: error = %v, want ErrClosed", err)
	}
	doc.Close()
	checkClean(t, f)
}
