package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/obinnaokechukwu/pdfgo/logging"
)

func TestLogger_DefaultDiscards(t *testing.T) {
	logging.SetLogger(nil)
	l := logging.Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	// Must not panic.
	l.Info("dropped")
	logging.Fatal("dropped too")
}

func TestSetLogger_Concurrent(t *testing.T) {
	defer logging.SetLogger(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logging.SetLogger(slog.New(logging.NewBufferedLogHandler(nil)))
			_ = logging.Logger()
		}()
	}
	wg.Wait()
}

func TestFatal_UsesFatalLevel(t *testing.T) {
	handler := logging.NewBufferedLogHandler(nil)
	logging.SetLogger(slog.New(handler))
	defer logging.SetLogger(nil)

	logging.Fatal("boom", slog.Int("id", 7))

	entries := handler.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d: %s", len(entries), handler.String())
	}
	if entries[0].Level != "FATAL" {
		t.Errorf("level = %q, want FATAL", entries[0].Level)
	}
	if v, ok := entries[0].Attr("id"); !ok || v != "7" {
		t.Errorf("attr id = %q, %v", v, ok)
	}
}

func TestFatal_FilteredByLevel(t *testing.T) {
	handler := logging.NewBufferedLogHandler(&slog.HandlerOptions{Level: logging.LevelFatal})
	logging.SetLogger(slog.New(handler))
	defer logging.SetLogger(nil)

	logging.Logger().Error("not fatal")
	logging.Fatal("fatal")

	if handler.Count("not fatal") != 0 {
		t.Error("error-level record should be filtered")
	}
	if handler.Count("fatal") != 1 {
		t.Error("fatal record should be captured")
	}
}

func TestReplaceLevelNames(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: logging.ReplaceLevelNames,
	}))
	l.Log(t.Context(), logging.LevelFatal, "x")
	l.Warn("y")

	out := buf.String()
	if !strings.Contains(out, "level=FATAL") {
		t.Errorf("missing FATAL level name in %q", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("missing WARN level name in %q", out)
	}
}
