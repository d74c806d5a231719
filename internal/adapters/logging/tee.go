package logging

import (
	"context"

	"github.com/felixgeelhaar/centos2alma/internal/ports"
)

// Tee forwards every entry to each of its loggers. Each logger applies its
// own level filter.
type Tee struct {
	loggers []ports.Logger
}

// NewTee creates a logger that writes to all given loggers. Nil loggers are ignored.
func NewTee(loggers ...ports.Logger) *Tee {
	t := &Tee{}
	for _, l := range loggers {
		if l != nil {
			t.loggers = append(t.loggers, l)
		}
	}
	return t
}

// Debug logs a debug message to every logger.
func (t *Tee) Debug(ctx context.Context, msg string, fields ...ports.Field) {
	for _, l := range t.loggers {
		l.Debug(ctx, msg, fields...)
	}
}

// Info logs an informational message to every logger.
func (t *Tee) Info(ctx context.Context, msg string, fields ...ports.Field) {
	for _, l := range t.loggers {
		l.Info(ctx, msg, fields...)
	}
}

// Warn logs a warning to every logger.
func (t *Tee) Warn(ctx context.Context, msg string, fields ...ports.Field) {
	for _, l := range t.loggers {
		l.Warn(ctx, msg, fields...)
	}
}

// Error logs an error to every logger.
func (t *Tee) Error(ctx context.Context, msg string, fields ...ports.Field) {
	for _, l := range t.loggers {
		l.Error(ctx, msg, fields...)
	}
}

// With returns a Tee whose loggers all carry the extra fields.
func (t *Tee) With(fields ...ports.Field) ports.Logger {
	derived := make([]ports.Logger, len(t.loggers))
	for i, l := range t.loggers {
		derived[i] = l.With(fields...)
	}
	return &Tee{loggers: derived}
}

// Level returns the most verbose level among the loggers.
func (t *Tee) Level() ports.Level {
	level := ports.LevelError
	for _, l := range t.loggers {
		if l.Level() < level {
			level = l.Level()
		}
	}
	return level
}

// SetLevel sets the level on every logger.
func (t *Tee) SetLevel(level ports.Level) {
	for _, l := range t.loggers {
		l.SetLevel(level)
	}
}

var _ ports.Logger = (*Tee)(nil)
