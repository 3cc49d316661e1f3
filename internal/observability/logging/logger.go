// Package logging builds the slog loggers both binaries run on and carries
// loggers and request IDs through context so delivery attempts can be traced
// end to end in log output.
package logging

import (
	"context"
	"log/slog"
	"os"

	"tripnotify/internal/handler/http/requestid"
)

// NewLogger returns a JSON logger for production use. LOG_LEVEL=debug lowers
// the level; warnings and errors carry source locations.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, handlerOptions()))
}

// NewTextLogger returns a text logger for local development.
func NewTextLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, handlerOptions()))
}

func handlerOptions() *slog.HandlerOptions {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	}
}

// WithRequestID attaches the context's request ID to the logger, so every
// line from one dispatch call shares a correlation key. Without a request ID
// the logger is returned unchanged.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		return logger
	}
	return logger.With("request_id", reqID)
}

// WithFields attaches a set of structured fields to the logger.
func WithFields(logger *slog.Logger, fields map[string]interface{}) *slog.Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return logger.With(args...)
}

type contextKey string

const loggerContextKey contextKey = "logger"

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext returns the context's logger, or slog.Default when none was
// stored.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
