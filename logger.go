package colgo

import (
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// Logger wraps slog.Logger with colgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger

	// grows samples grow events: a bulk load can grow many columns in a
	// tight loop.
	grows *rate.Sometimes
}

func newLogger(l *slog.Logger) *Logger {
	return &Logger{
		Logger: l,
		grows:  &rate.Sometimes{First: 16, Interval: time.Second},
	}
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return newLogger(slog.New(handler))
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return newLogger(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return newLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return newLogger(slog.New(slog.DiscardHandler))
}

// WithID adds a database id field to the logger.
func (l *Logger) WithID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("db", id),
		grows:  l.grows,
	}
}

// LogColumnCreated logs the creation of a column.
func (l *Logger) LogColumnCreated(typeName string, size int, offHeap bool) {
	l.Debug("column created",
		"type", typeName,
		"size", size,
		"off_heap", offHeap,
	)
}

// LogGrow logs a column reallocation. Bursts are sampled.
func (l *Logger) LogGrow(typeName string, oldCap, newCap int) {
	l.grows.Do(func() {
		l.Debug("column grown",
			"type", typeName,
			"old_cap", oldCap,
			"new_cap", newCap,
		)
	})
}

// LogFree logs a record free.
func (l *Logger) LogFree(r Record, fields int, err error) {
	if err != nil {
		l.Warn("free failed",
			"record", r.String(),
			"error", err,
		)
	} else {
		l.Debug("record freed",
			"record", r.String(),
			"fields", fields,
		)
	}
}

// LogClose logs a database close.
func (l *Logger) LogClose(records, columns int, err error) {
	if err != nil {
		l.Error("close failed",
			"error", err,
		)
	} else {
		l.Info("database closed",
			"records", records,
			"columns", columns,
		)
	}
}
