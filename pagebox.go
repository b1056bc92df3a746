//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"fmt"
	"runtime"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
)

// BoxType names a page boundary box.
type BoxType = fpdf.BoxType

const (
	MediaBox = fpdf.MediaBox
	CropBox  = fpdf.CropBox
	BleedBox = fpdf.BleedBox
	TrimBox  = fpdf.TrimBox
	ArtBox   = fpdf.ArtBox
)

// letter is the media box viewers assume when a page has none.
var letter = Rect{Right: 612, Top: 792}

// DefinedBox returns box as stored in the page dictionary. ok is false if
// the page does not define it or is closed.
func (p *Page) DefinedBox(box BoxType) (r Rect, ok bool) {
	defer runtime.KeepAlive(p)
	h, err := p.handle()
	if err != nil {
		return Rect{}, false
	}
	l, b, rt, t, ok := fpdf.PageBox(h, box)
	if !ok {
		return Rect{}, false
	}
	return Rect{Left: l, Bottom: b, Right: rt, Top: t}, true
}

// Box returns box with the usual defaults for missing entries: the media
// box falls back to US Letter, the crop box to the media box and the
// bleed, trim and art boxes to the crop box.
func (p *Page) Box(box BoxType) (Rect, error) {
	if p.Closed() {
		return Rect{}, ErrClosed
	}
	for {
		if r, ok := p.DefinedBox(box); ok {
			return r, nil
		}
		switch box {
		case MediaBox:
			return letter, nil
		case CropBox:
			box = MediaBox
		case BleedBox, TrimBox, ArtBox:
			box = CropBox
		default:
			return Rect{}, fmt.Errorf("pdfgo: unknown page box %v", box)
		}
	}
}

// SetBox writes box into the page dictionary.
func (p *Page) SetBox(box BoxType, r Rect) error {
	defer runtime.KeepAlive(p)
	h, err := p.handle()
	if err != nil {
		return err
	}
	if !fpdf.SetPageBox(h, box, r.Left, r.Bottom, r.Right, r.Top) {
		return opError("FPDFPage_Set" + box.String())
	}
	return nil
}
