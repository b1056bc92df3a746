//go:build !ios && !android && (amd64 || arm64)

package fpdftest

import (
	"unicode"
	"unsafe"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
)

type textPage struct {
	page fpdf.Page
	text []rune
}

type search struct {
	tp      fpdf.TextPage
	matches []int
	cur     int // index into matches, -1 before the first FindNext
	qlen    int
}

func (f *Fake) loadTextPage(h fpdf.Page) fpdf.TextPage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFText_LoadPage", uintptr(h))
	p := f.page("FPDFText_LoadPage", h)
	if p == nil {
		return 0
	}
	tp := fpdf.TextPage(f.handle())
	f.texts[tp] = &textPage{page: h, text: []rune(p.data.text)}
	return tp
}

func (f *Fake) text(name string, h fpdf.TextPage) *textPage {
	tp, ok := f.texts[h]
	if !ok {
		f.violate("%s(%#x): unknown or closed text page", name, h)
		return nil
	}
	if _, ok := f.pages[tp.page]; !ok {
		f.violate("%s(%#x): page %#x already closed", name, h, tp.page)
	}
	return tp
}

func (f *Fake) closeTextPage(h fpdf.TextPage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFText_ClosePage", uintptr(h))
	if f.text("FPDFText_ClosePage", h) == nil {
		return
	}
	for sh, s := range f.searches {
		if s.tp == h {
			f.violate("FPDFText_ClosePage(%#x): search %#x still open", h, sh)
		}
	}
	delete(f.texts, h)
}

func (f *Fake) countChars(h fpdf.TextPage) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	tp := f.text("FPDFText_CountChars", h)
	if tp == nil {
		return -1
	}
	return int32(len(tp.text))
}

// getText writes count UTF-16 units plus a terminator, as FPDFText_GetText
// does, and returns the number of units written including the terminator.
func (f *Fake) getText(h fpdf.TextPage, start, count int32, result unsafe.Pointer) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	tp := f.text("FPDFText_GetText", h)
	if tp == nil || start < 0 || count < 0 || int(start) > len(tp.text) || result == nil {
		return 0
	}
	end := min(int(start+count), len(tp.text))
	enc := fpdf.EncodeWide(string(tp.text[start:end]))
	enc = enc[:min(len(enc), 2*int(count+1))]
	copy(unsafe.Slice((*byte)(result), len(enc)), enc)
	return int32(len(enc) / 2)
}

func (f *Fake) findStart(h fpdf.TextPage, query unsafe.Pointer, flags fpdf.SearchFlags, start int32) fpdf.Search {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFText_FindStart", uintptr(h))
	tp := f.text("FPDFText_FindStart", h)
	if tp == nil || query == nil {
		return 0
	}
	q := []rune(foldText(fpdf.WideAt(query), flags))
	hay := []rune(foldText(string(tp.text), flags))
	s := &search{tp: h, cur: -1, qlen: len(q)}
	if len(q) > 0 {
		for i := max(int(start), 0); i+len(q) <= len(hay); i++ {
			if string(hay[i:i+len(q)]) != string(q) {
				continue
			}
			if flags&fpdf.MatchWholeWord != 0 && !wordBounded(hay, i, len(q)) {
				continue
			}
			s.matches = append(s.matches, i)
			if flags&fpdf.Consecutive == 0 {
				i += len(q) - 1
			}
		}
	}
	sh := fpdf.Search(f.handle())
	f.searches[sh] = s
	return sh
}

func wordBounded(s []rune, i, n int) bool {
	word := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }
	return (i == 0 || !word(s[i-1])) && (i+n == len(s) || !word(s[i+n]))
}

func (f *Fake) search(name string, h fpdf.Search) *search {
	s, ok := f.searches[h]
	if !ok {
		f.violate("%s(%#x): unknown or closed search", name, h)
		return nil
	}
	if _, ok := f.texts[s.tp]; !ok {
		f.violate("%s(%#x): text page %#x already closed", name, h, s.tp)
	}
	return s
}

func (f *Fake) findNext(h fpdf.Search) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.search("FPDFText_FindNext", h)
	if s == nil || s.cur+1 >= len(s.matches) {
		return 0
	}
	s.cur++
	return 1
}

func (f *Fake) findPrev(h fpdf.Search) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.search("FPDFText_FindPrev", h)
	if s == nil || s.cur <= 0 {
		return 0
	}
	s.cur--
	return 1
}

func (f *Fake) schResultIndex(h fpdf.Search) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.search("FPDFText_GetSchResultIndex", h)
	if s == nil || s.cur < 0 {
		return -1
	}
	return int32(s.matches[s.cur])
}

func (f *Fake) schCount(h fpdf.Search) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.search("FPDFText_GetSchCount", h)
	if s == nil || s.cur < 0 {
		return 0
	}
	return int32(s.qlen)
}

func (f *Fake) findClose(h fpdf.Search) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FPDFText_FindClose", uintptr(h))
	if f.search("FPDFText_FindClose", h) == nil {
		return
	}
	delete(f.searches, h)
}
