//go:build !ios && !android && (amd64 || arm64)

package pdfgo

import (
	"runtime"

	"github.com/obinnaokechukwu/pdfgo/fpdf"
	"github.com/obinnaokechukwu/pdfgo/lifecycle"
)

// SearchFlags control TextPage.Search.
type SearchFlags = fpdf.SearchFlags

const (
	MatchCase      = fpdf.MatchCase
	MatchWholeWord = fpdf.MatchWholeWord
	Consecutive    = fpdf.Consecutive
)

// TextPage is the text layer of a page.
type TextPage struct {
	node *lifecycle.Node
	page *Page
}

func releaseTextPage(raw uintptr) {
	fpdf.CloseTextPage(fpdf.TextPage(raw))
}

// Close closes searches started on the text page, then the text page.
func (tp *TextPage) Close() bool {
	return tp.node.Close()
}

// Page returns the page the text was loaded from.
func (tp *TextPage) Page() *Page {
	return tp.page
}

func (tp *TextPage) handle() (fpdf.TextPage, error) {
	raw, ok := tp.node.Live()
	if !ok {
		return 0, ErrClosed
	}
	return fpdf.TextPage(raw), nil
}

// CountChars returns the number of characters, or -1 on failure.
func (tp *TextPage) CountChars() int {
	defer runtime.KeepAlive(tp)
	h, err := tp.handle()
	if err != nil {
		return -1
	}
	return fpdf.CountChars(h)
}

// Text returns count characters starting at index start.
func (tp *TextPage) Text(start, count int) (string, error) {
	defer runtime.KeepAlive(tp)
	h, err := tp.handle()
	if err != nil {
		return "", err
	}
	return fpdf.Text(h, start, count), nil
}

// AllText returns the whole text of the page.
func (tp *TextPage) AllText() (string, error) {
	defer runtime.KeepAlive(tp)
	h, err := tp.handle()
	if err != nil {
		return "", err
	}
	return fpdf.Text(h, 0, fpdf.CountChars(h)), nil
}

// Search starts a search for query from character index start.
func (tp *TextPage) Search(query string, flags SearchFlags, start int) (*TextSearch, error) {
	defer runtime.KeepAlive(tp)
	h, err := tp.handle()
	if err != nil {
		return nil, err
	}
	sh := fpdf.FindStart(h, query, flags, start)
	if sh == 0 {
		return nil, allocError("FPDFText_FindStart")
	}
	s := &TextSearch{textPage: tp}
	n, err := lifecycle.Acquire(s, uintptr(sh), KindSearch, tp.node, releaseSearch,
		lifecycle.WithLabel(query))
	if err != nil {
		releaseSearch(uintptr(sh))
		return nil, err
	}
	s.node = n
	return s, nil
}

// TextSearch iterates over the matches of a search.
type TextSearch struct {
	node     *lifecycle.Node
	textPage *TextPage
}

// Match is one search hit, in characters.
type Match struct {
	Index int
	Count int
}

func releaseSearch(raw uintptr) {
	fpdf.FindClose(fpdf.Search(raw))
}

// Close ends the search.
func (s *TextSearch) Close() bool {
	return s.node.Close()
}

// Next moves to the next match. ok is false when there is none or the
// search is closed.
func (s *TextSearch) Next() (m Match, ok bool) {
	return s.step(fpdf.FindNext)
}

// Prev moves to the previous match.
func (s *TextSearch) Prev() (m Match, ok bool) {
	return s.step(fpdf.FindPrev)
}

func (s *TextSearch) step(move func(fpdf.Search) bool) (Match, bool) {
	defer runtime.KeepAlive(s)
	raw, live := s.node.Live()
	if !live {
		return Match{}, false
	}
	h := fpdf.Search(raw)
	if !move(h) {
		return Match{}, false
	}
	i, n := fpdf.SearchResult(h)
	return Match{Index: i, Count: n}, true
}

// All collects the remaining matches.
func (s *TextSearch) All() []Match {
	var out []Match
	for {
		m, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, m)
	}
}
