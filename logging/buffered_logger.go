package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// BufferedLogHandler implements slog.Handler and captures records in memory
// as JSON lines. Tests use it to assert which lifecycle diagnostics fired.
//
//	handler := logging.NewBufferedLogHandler(nil)
//	logging.SetLogger(slog.New(handler))
//	defer logging.SetLogger(nil)
//
//	// ... close things out of order ...
//
//	if handler.Count("ordering violation") != 1 {
//		t.Fatal(handler.String())
//	}
type BufferedLogHandler struct {
	level      slog.Leveler
	buf        *lockedBuffer
	preAttrs   []string // already group-prefixed
	groupNames []string
}

// lockedBuffer is shared between a handler and its WithAttrs/WithGroup
// derivatives, so it carries its own mutex.
type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

// NewBufferedLogHandler creates a handler with an empty buffer. Pass nil to
// capture every level.
func NewBufferedLogHandler(opts *slog.HandlerOptions) *BufferedLogHandler {
	h := &BufferedLogHandler{buf: &lockedBuffer{}}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled implements slog.Handler.
func (h *BufferedLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	if h.level == nil {
		return true
	}
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *BufferedLogHandler) Handle(_ context.Context, r slog.Record) error {
	entry := Entry{
		Level:    LevelName(r.Level),
		Message:  r.Message,
		DateTime: r.Time.Format(time.DateTime),
	}
	entry.Attrs = append(entry.Attrs, h.preAttrs...)
	r.Attrs(func(attr slog.Attr) bool {
		entry.Attrs = append(entry.Attrs, h.prefixedAttr(attr))
		return true
	})

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	h.buf.b.Write(data)
	h.buf.b.WriteByte('\n')
	return nil
}

func (h *BufferedLogHandler) prefixedAttr(attr slog.Attr) string {
	if len(h.groupNames) == 0 {
		return attr.String()
	}
	return strings.Join(h.groupNames, ".") + "." + attr.String()
}

// WithAttrs implements slog.Handler.
func (h *BufferedLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]string, len(h.preAttrs), len(h.preAttrs)+len(attrs))
	copy(newAttrs, h.preAttrs)
	for _, a := range attrs {
		newAttrs = append(newAttrs, h.prefixedAttr(a))
	}
	return &BufferedLogHandler{
		level:      h.level,
		buf:        h.buf,
		preAttrs:   newAttrs,
		groupNames: h.groupNames,
	}
}

// WithGroup implements slog.Handler.
func (h *BufferedLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newGroups := make([]string, len(h.groupNames), len(h.groupNames)+1)
	copy(newGroups, h.groupNames)
	return &BufferedLogHandler{
		level:      h.level,
		buf:        h.buf,
		preAttrs:   h.preAttrs,
		groupNames: append(newGroups, name),
	}
}

// String returns all captured output.
func (h *BufferedLogHandler) String() string {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	return h.buf.b.String()
}

// Reset clears all captured output.
func (h *BufferedLogHandler) Reset() {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	h.buf.b.Reset()
}

// Contains reports whether the captured output contains s.
func (h *BufferedLogHandler) Contains(s string) bool {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	return bytes.Contains(h.buf.b.Bytes(), []byte(s))
}

// Len returns the number of captured bytes.
func (h *BufferedLogHandler) Len() int {
	h.buf.mu.Lock()
	defer h.buf.mu.Unlock()
	return h.buf.b.Len()
}

// Entries decodes the captured records in the order they were logged.
func (h *BufferedLogHandler) Entries() []Entry {
	h.buf.mu.Lock()
	data := bytes.Clone(h.buf.b.Bytes())
	h.buf.mu.Unlock()

	var out []Entry
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var e Entry
		if json.Unmarshal(sc.Bytes(), &e) == nil {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many captured records have exactly the message msg.
func (h *BufferedLogHandler) Count(msg string) int {
	n := 0
	for _, e := range h.Entries() {
		if e.Message == msg {
			n++
		}
	}
	return n
}

// Entry is one captured log record.
type Entry struct {
	Level    string   `json:"level"`
	Message  string   `json:"message"`
	DateTime string   `json:"datetime"`
	Attrs    []string `json:"attrs,omitempty"`
}

// Attr returns the value of the first attribute named key, formatted the way
// slog.Attr.String does.
func (e Entry) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if k, v, ok := strings.Cut(a, "="); ok && k == key {
			return v, true
		}
	}
	return "", false
}
