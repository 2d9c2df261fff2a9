package stackrec

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with engine-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithRegion adds a region field to the logger.
func (l *Logger) WithRegion(region string) *Logger {
	return &Logger{
		Logger: l.Logger.With("region", region),
	}
}

// LogLoad logs a model load operation.
func (l *Logger) LogLoad(ctx context.Context, region string, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model load failed",
			"region", region,
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "model load completed",
			"region", region,
			"duration", duration,
		)
	}
}

// LogPredict logs a prediction request.
func (l *Logger) LogPredict(ctx context.Context, matched bool, recommended, missing int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "predict failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "predict completed",
			"matched", matched,
			"recommended", recommended,
			"missing", missing,
		)
	}
}

// LogThresholdBreach logs an unknown-package threshold breach. The request
// still succeeds with an empty recommendation list.
func (l *Logger) LogThresholdBreach(ctx context.Context, missing, input int, threshold float64) {
	l.ErrorContext(ctx, "missing packages beyond unknown threshold",
		"missing", missing,
		"input", input,
		"threshold", threshold,
	)
}
