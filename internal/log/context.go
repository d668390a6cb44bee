package log

import (
	"context"
	"log/slog"
	"time"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts the logger stored by NewContext
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	// Return default logger if not found
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogOperation records the outcome of one ledger operation. Failures log at Error.
func (sl *StructuredLogger) LogOperation(ctx context.Context, operation string, started time.Time, err error, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields[FieldDuration] = time.Since(started).Milliseconds()
	fields.WithOperation(operation)

	if err != nil {
		sl.logger.ErrorContext(ctx, "Ledger operation failed", fields.WithError(err).ToSlice()...)
		return
	}
	sl.logger.InfoContext(ctx, "Ledger operation completed", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	sl.logger.ErrorContext(ctx, msg, fields.WithError(err).WithOperation(operation).ToSlice()...)
}
