//go:build !ios && !android && (amd64 || arm64)

package fpdf

import (
	"runtime"

	"github.com/obinnaokechukwu/pdfgo/internal/callgate"
)

// LoadTextPage prepares text extraction for page.
func LoadTextPage(page Page) TextPage {
	t := table()
	if t == nil {
		return 0
	}
	return callgate.Call(func() TextPage { return t.LoadTextPage(page) })
}

// CloseTextPage releases tp. Searches started on it must be closed first.
func CloseTextPage(tp TextPage) {
	t := table()
	if t == nil || tp == 0 {
		return
	}
	callgate.Do(func() { t.CloseTextPage(tp) })
}

// CountChars returns the number of characters on the text page, or -1.
func CountChars(tp TextPage) int {
	t := table()
	if t == nil {
		return -1
	}
	return int(callgate.Call(func() int32 { return t.CountChars(tp) }))
}

// Text returns count characters starting at start.
func Text(tp TextPage, start, count int) string {
	t := table()
	if t == nil || count <= 0 {
		return ""
	}
	// Room for count UTF-16 units plus the terminator.
	buf := make([]byte, 2*(count+1))
	n := callgate.Call(func() int32 { return t.GetText(tp, int32(start), int32(count), bufPtr(buf)) })
	if n <= 0 {
		return ""
	}
	return DecodeWide(buf[:2*int(n)])
}

// FindStart begins a search for query on tp, from character index start.
func FindStart(tp TextPage, query string, flags SearchFlags, start int) Search {
	t := table()
	if t == nil {
		return 0
	}
	q := EncodeWide(query)
	s := callgate.Call(func() Search { return t.FindStart(tp, bufPtr(q), flags, int32(start)) })
	runtime.KeepAlive(q)
	return s
}

// FindNext advances to the next match.
func FindNext(s Search) bool {
	t := table()
	if t == nil {
		return false
	}
	return callgate.Call(func() int32 { return t.FindNext(s) }) != 0
}

// FindPrev moves to the previous match.
func FindPrev(s Search) bool {
	t := table()
	if t == nil {
		return false
	}
	return callgate.Call(func() int32 { return t.FindPrev(s) }) != 0
}

// SearchResult returns the character index and length of the current match.
func SearchResult(s Search) (index, count int) {
	t := table()
	if t == nil {
		return 0, 0
	}
	i, c := callgate.Call2(func() (int32, int32) { return t.GetSchResultIndex(s), t.GetSchCount(s) })
	return int(i), int(c)
}

// FindClose releases s.
func FindClose(s Search) {
	t := table()
	if t == nil || s == 0 {
		return
	}
	callgate.Do(func() { t.FindClose(s) })
}
