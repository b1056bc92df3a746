//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ImageFormat names an encoder for EncodeImage.
type ImageFormat string

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
	ImageBMP  ImageFormat = "bmp"
	ImageTIFF ImageFormat = "tiff"
)

// JPEGQuality is used when encoding JPEG images.
var JPEGQuality = 90

// ImageFormatFromPath picks the format from a file extension.
func ImageFormatFromPath(filename string) (ImageFormat, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".png":
		return ImagePNG, nil
	case ".jpg", ".jpeg":
		return ImageJPEG, nil
	case ".bmp":
		return ImageBMP, nil
	case ".tif", ".tiff":
		return ImageTIFF, nil
	default:
		return "", errors.New("pdfgo: unsupported image format: " + ext)
	}
}

// EncodeImage writes img to w in the given format.
func EncodeImage(w io.Writer, img image.Image, format ImageFormat) error {
	switch format {
	case ImagePNG:
		return png.Encode(w, img)
	case ImageJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case ImageBMP:
		return bmp.Encode(w, img)
	case ImageTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("pdfgo: unsupported image format: %q", format)
	}
}

// SaveImage writes img to filename. The format is determined by the file
// extension (png, jpg, jpeg, bmp, tif, tiff).
func SaveImage(img image.Image, filename string) error {
	format, err := ImageFormatFromPath(filename)
	if err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("pdfgo: failed to create output file: %w", err)
	}
	if err := EncodeImage(f, img, format); err != nil {
		f.Close()
		os.Remove(filename)
		return fmt.Errorf("pdfgo: encode %s: %w", filename, err)
	}
	return f.Close()
}

// Save writes the bitmap to filename, as SaveImage does.
func (b *Bitmap) Save(filename string) error {
	view, err := b.AsImage()
	if err != nil {
		return err
	}
	return SaveImage(view.Image, filename)
}
