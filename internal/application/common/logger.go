package common

import "context"

// Log levels understood by every ProcessLogger.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARNING"
	LevelError = "ERROR"
)

// ProcessLogger provides logging for a running simulation process
type ProcessLogger interface {
	Log(level, message string, metadata map[string]interface{})
}

// Context keys for passing logger through context
type contextKey int

const (
	loggerKey contextKey = iota
	processIDKey
)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger ProcessLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from context, or returns a no-op logger if not found
func LoggerFromContext(ctx context.Context) ProcessLogger {
	if logger, ok := ctx.Value(loggerKey).(ProcessLogger); ok {
		return logger
	}
	return &noOpLogger{}
}

// WithProcessID tags the context with the owning process id
func WithProcessID(ctx context.Context, processID string) context.Context {
	return context.WithValue(ctx, processIDKey, processID)
}

// ProcessIDFromContext returns the owning process id, or "" when untagged
func ProcessIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(processIDKey).(string)
	return id
}

// noOpLogger is a logger that does nothing (fallback when no logger in context)
type noOpLogger struct{}

func (l *noOpLogger) Log(level, message string, metadata map[string]interface{}) {}
