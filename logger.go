package kdtree

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with kdtree-specific context.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler. If handler is
// nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all log output. Trees default
// to this unless WithLogger is passed.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level.
	})
	return &Logger{Logger: slog.New(handler)}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(dims, count int) {
	l.Debug("insert completed", "dimension", dims, "count", count)
}

// LogFind logs a find operation.
func (l *Logger) LogFind(found bool) {
	l.Debug("find completed", "found", found)
}

// LogErase logs an erase operation.
func (l *Logger) LogErase(found bool) {
	l.Debug("erase completed", "found", found)
}

// LogShrink logs a shrink attempt.
func (l *Logger) LogShrink(collapsed bool) {
	l.Debug("shrink attempted", "collapsed", collapsed)
}
