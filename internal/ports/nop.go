package ports

import "context"

// NopLogger is a no-op logger that discards all messages.
type NopLogger struct {
	level Level
}

// NewNopLogger creates a new no-op logger.
func NewNopLogger() *NopLogger {
	return &NopLogger{level: LevelInfo}
}

// Debug does nothing.
func (l *NopLogger) Debug(_ context.Context, _ string, _ ...Field) {}

// Info does nothing.
func (l *NopLogger) Info(_ context.Context, _ string, _ ...Field) {}

// Warn does nothing.
func (l *NopLogger) Warn(_ context.Context, _ string, _ ...Field) {}

// Error does nothing.
func (l *NopLogger) Error(_ context.Context, _ string, _ ...Field) {}

// With returns itself (no-op has no fields to add).
func (l *NopLogger) With(_ ...Field) Logger {
	return l
}

// Level returns the log level.
func (l *NopLogger) Level() Level {
	return l.level
}

// SetLevel sets the log level.
func (l *NopLogger) SetLevel(level Level) {
	l.level = level
}

var _ Logger = (*NopLogger)(nil)
