package colbuf

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with colbuf-specific fields.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithColumn adds a column field to the logger.
func (l *Logger) WithColumn(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("column", name),
	}
}

// WithRowID adds a row id field to the logger.
func (l *Logger) WithRowID(id uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("row_id", id),
	}
}

// LogAppend logs an appended row.
func (l *Logger) LogAppend(ctx context.Context, id uint64, flushTo uint64) {
	if flushTo != noFlush {
		l.DebugContext(ctx, "row appended, flush requested",
			"row_id", id,
			"flush_to", flushTo,
		)
		return
	}
	l.DebugContext(ctx, "row appended",
		"row_id", id,
	)
}

// LogAbandon logs a row that was abandoned on every column.
// Use WithRowID to attach the row.
func (l *Logger) LogAbandon(ctx context.Context, err error) {
	l.WarnContext(ctx, "row abandoned",
		"error", err,
	)
}

// LogNullFill logs an incomplete row completed as NULL.
// Use WithColumn and WithRowID to attach the column and row.
func (l *Logger) LogNullFill(ctx context.Context, err error) {
	l.WarnContext(ctx, "incomplete row completed as NULL",
		"error", err,
	)
}

// LogFlush logs a column flush. Use WithColumn to attach the column.
func (l *Logger) LogFlush(ctx context.Context, start, end, elems uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed",
			"start_id", start,
			"end_id", end,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "column flushed",
		"start_id", start,
		"end_id", end,
		"rows", end-start,
		"elems", elems,
	)
}

// LogDeliver logs the delivery of a blob to the sink. Use WithColumn to
// attach the column.
func (l *Logger) LogDeliver(ctx context.Context, start, end uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delivery failed",
			"start_id", start,
			"end_id", end,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "blob delivered",
		"start_id", start,
		"end_id", end,
	)
}
