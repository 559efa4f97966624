package songdex

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with songdex-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithRoot adds the scanned music folder to the logger.
func (l *Logger) WithRoot(root string) *Logger {
	return &Logger{
		Logger: l.Logger.With("root", root),
	}
}

// LogRescan logs the outcome of a rescan or import.
func (l *Logger) LogRescan(ctx context.Context, res ScanResult, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "rescan failed",
			"status", res.Status,
			"error", err,
		)
	case res.Status == ScanFileInUse:
		l.WarnContext(ctx, "rescan skipped, library is being rebuilt elsewhere")
	case res.Status == ScanCompletedWithErrors:
		l.WarnContext(ctx, "rescan completed with errors",
			"songs", res.Songs,
			"failed", len(res.Errors),
			"reused", res.Reused,
		)
	default:
		l.InfoContext(ctx, "rescan completed",
			"songs", res.Songs,
			"reused", res.Reused,
		)
	}
}

// LogSearch logs a search.
func (l *Logger) LogSearch(ctx context.Context, query string, k, resultsFound int) {
	l.DebugContext(ctx, "search completed",
		"query", query,
		"k", k,
		"results", resultsFound,
	)
}
