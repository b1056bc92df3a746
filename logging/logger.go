// Package logging holds the *slog.Logger used for pdfgo's lifecycle
// diagnostics (duplicate closes, ordering violations, shutdown leaks).
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// LevelFatal marks diagnostics that indicate native memory may already be
// invalid, such as a child released after its parent. Records at this level
// are never turned into panics; they exist to be loud.
const LevelFatal = slog.Level(12)

var logger atomic.Pointer[slog.Logger]

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// SetLogger configures the package-level logger.
// Pass nil to disable logging (slog.DiscardHandler is used).
//
// SetLogger is safe for concurrent use.
//
// Example sending diagnostics to stderr:
//
//	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//		Level:       slog.LevelDebug,
//		ReplaceAttr: logging.ReplaceLevelNames,
//	})))
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		sl = newDiscardLogger()
	}
	logger.Store(sl)
}

// Logger returns the package-level logger, or a discard logger when none
// was set.
func Logger() *slog.Logger {
	l := logger.Load()
	if l == nil {
		l = newDiscardLogger()
		logger.Store(l)
	}
	return l
}

// Fatal logs msg at LevelFatal.
func Fatal(msg string, args ...any) {
	Logger().Log(context.Background(), LevelFatal, msg, args...)
}

// LevelName returns the display name for l, naming LevelFatal "FATAL".
func LevelName(l slog.Level) string {
	if l >= LevelFatal {
		return "FATAL"
	}
	return l.String()
}

// ReplaceLevelNames is a slog.HandlerOptions.ReplaceAttr hook that prints
// LevelFatal as "FATAL" instead of "ERROR+4".
func ReplaceLevelNames(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if l, ok := a.Value.Any().(slog.Level); ok {
		a.Value = slog.StringValue(LevelName(l))
	}
	return a
}
