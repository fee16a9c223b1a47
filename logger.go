package tantivy

import (
	"context"
	"log/slog"
	"os"

	"github.com/drusellers/tantivy/model"
)

// Logger wraps slog.Logger with index-specific helpers so operations
// log with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogCommit logs a commit operation.
func (l *Logger) LogCommit(ctx context.Context, id model.SegmentID, numDocs uint32, err error) {
	if err != nil {
		l.ErrorContext(ctx, "commit failed",
			"segment", id.String(),
			"docs", numDocs,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "commit completed",
			"segment", id.String(),
			"docs", numDocs,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, segments int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"segments", segments,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"segments", segments,
		)
	}
}

// LogDelete logs the application of pending delete terms at commit.
func (l *Logger) LogDelete(ctx context.Context, terms int, matched uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"terms", terms,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete applied",
			"terms", terms,
			"matched", matched,
		)
	}
}

// LogOpen logs an index open.
func (l *Logger) LogOpen(ctx context.Context, segments int, numDocs uint64) {
	l.InfoContext(ctx, "index opened",
		"segments", segments,
		"docs", numDocs,
	)
}
