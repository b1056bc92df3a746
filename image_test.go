//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func TestImageFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want ImageFormat
	}{
		{"a.png", ImagePNG},
		{"a.JPG", ImageJPEG},
		{"dir/b.jpeg", ImageJPEG},
		{"c.bmp", ImageBMP},
		{"d.tif", ImageTIFF},
		{"d.TIFF", ImageTIFF},
	}
	for _, tt := range tests {
		got, err := ImageFormatFromPath(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("ImageFormatFromPath(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
		}
	}
	if _, err := ImageFormatFromPath("page.gif"); err == nil {
		t.Error("expected an error for .gif")
	}
}

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	for y := range 4 {
		for x := range 6 {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: uint8(40 * y), B: uint8(30 * x), A: 0xff})
		}
	}
	return img
}

func TestEncodeImageLossless(t *testing.T) {
	src := testImage()
	decoders := map[ImageFormat]func(*bytes.Reader) (image.Image, error){
		ImagePNG:  func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) },
		ImageBMP:  func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) },
		ImageTIFF: func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) },
	}
	for format, decode := range decoders {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeImage(&buf, src, format); err != nil {
				t.Fatalf("EncodeImage failed: %v", err)
			}
			got, err := decode(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if got.Bounds() != src.Bounds() {
				t.Fatalf("bounds = %v, want %v", got.Bounds(), src.Bounds())
			}
			for _, pt := range []image.Point{{0, 0}, {5, 3}, {2, 1}} {
				want := src.NRGBAAt(pt.X, pt.Y)
				if c := color.NRGBAModel.Convert(got.At(pt.X, pt.Y)); c != want {
					t.Errorf("pixel %v = %v, want %v", pt, c, want)
				}
			}
		})
	}
}

func TestEncodeImageJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeImage(&buf, testImage(), ImageJPEG); err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if cfg.Width != 6 || cfg.Height != 4 {
		t.Errorf("size = %dx%d, want 6x4", cfg.Width, cfg.Height)
	}
}

func TestEncodeImageUnknownFormat(t *testing.T) {
	if err := EncodeImage(&bytes.Buffer{}, testImage(), "webp"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestSaveImageRejectsExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gif")
	if err := SaveImage(testImage(), path); err == nil {
		t.Fatal("expected an error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file was created: %v", err)
	}
}

func TestBitmapSave(t *testing.T) {
	setup(t)
	b := newBitmap(t, 5, 3, FormatBGRA, WithRevByteOrder(true))
	red := color.NRGBA{R: 0xff, A: 0xff}
	if err := b.FillRect(red, image.Rect(0, 0, 5, 3)); err != nil {
		t.Fatalf("FillRect failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "bitmap.png")
	if err := b.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 5, 3) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if c := color.NRGBAModel.Convert(img.At(4, 2)); c != red {
		t.Errorf("pixel = %v, want %v", c, red)
	}
}
