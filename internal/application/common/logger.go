package common

import "context"

// EngineLogger receives the structured log lines of handlers and the planner.
// Levels are "DEBUG", "INFO", "WARNING" and "ERROR".
type EngineLogger interface {
	Log(level, message string, metadata map[string]interface{})
}

type contextKey int

const loggerKey contextKey = iota

// WithLogger attaches logger to ctx
func WithLogger(ctx context.Context, logger EngineLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext returns the attached logger, or one that discards
// everything so handlers never need a nil check
func LoggerFromContext(ctx context.Context) EngineLogger {
	if logger, ok := ctx.Value(loggerKey).(EngineLogger); ok {
		return logger
	}
	return discardLogger{}
}

type discardLogger struct{}

func (discardLogger) Log(string, string, map[string]interface{}) {}
