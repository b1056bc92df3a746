package logging_test

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/obinnaokechukwu/pdfgo/logging"
)

func TestBufferedLogHandler_CapturesOutput(t *testing.T) {
	handler := logging.NewBufferedLogHandler(nil)
	logger := slog.New(handler)

	logger.Debug("duplicate close", slog.String("kind", "page"))
	logger.Info("released", slog.Int("id", 42))
	logger.Warn("leaking handle")

	if !handler.Contains("duplicate close") {
		t.Error("expected output to contain 'duplicate close'")
	}
	if !handler.Contains("kind=page") {
		t.Error("expected output to contain 'kind=page' attribute")
	}
	lines := strings.Split(strings.TrimSpace(handler.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("expected 3 log lines, got %d", len(lines))
	}
}

func TestBufferedLogHandler_Reset(t *testing.T) {
	handler := logging.NewBufferedLogHandler(nil)
	slog.New(handler).Info("before reset")
	if handler.Len() == 0 {
		t.Error("expected non-zero length before reset")
	}
	handler.Reset()
	if handler.Len() != 0 || handler.String() != "" {
		t.Error("expected empty buffer after reset")
	}
}

func TestBufferedLogHandler_LevelFilter(t *testing.T) {
	handler := logging.NewBufferedLogHandler(&slog.HandlerOptions{Level: slog.LevelWarn})
	if handler.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !handler.Enabled(t.Context(), logging.LevelFatal) {
		t.Error("fatal should be enabled at warn level")
	}
}

func TestBufferedLogHandler_WithAttrsSharesBuffer(t *testing.T) {
	handler := logging.NewBufferedLogHandler(nil)
	child := slog.New(handler).With(slog.String("component", "lifecycle")).WithGroup("node")

	child.Info("closed", slog.Int("id", 3))

	entries := handler.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected parent handler to see 1 entry, got %d", len(entries))
	}
	if _, ok := entries[0].Attr("component"); !ok {
		t.Errorf("missing pre-set attr: %v", entries[0].Attrs)
	}
	if v, ok := entries[0].Attr("node.id"); !ok || v != "3" {
		t.Errorf("grouped attr = %q, %v; attrs %v", v, ok, entries[0].Attrs)
	}
}

func TestBufferedLogHandler_Count(t *testing.T) {
	handler := logging.NewBufferedLogHandler(nil)
	l := slog.New(handler)
	l.Warn("duplicate close")
	l.Warn("duplicate close")
	l.Warn("duplicate close ignored")

	if got := handler.Count("duplicate close"); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}
}
