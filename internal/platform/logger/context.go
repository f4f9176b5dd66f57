package logger

import (
	"context"
	"log/slog"
)

// contextKey is a private type for context keys defined in this package.
// Using a dedicated type prevents collisions with keys from other packages.
type contextKey int

// loggerKey is the context key under which a *slog.Logger is stored.
const loggerKey contextKey = iota

// WithLogger returns a new context with the provided logger attached.
// Handlers and services should attach a logger enriched with scope-specific
// attributes (run ID, task ID) before passing the context down.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger stored in the context, falling back to
// slog.Default() when the context carries none. It never returns nil, so
// callers can use the result without checking.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// FromContextOrDefault retrieves the logger stored in the context, falling
// back to the provided default logger, and finally to slog.Default() when
// both are absent. Useful for components constructed with an optional logger.
func FromContextOrDefault(ctx context.Context, defaultLogger *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	if defaultLogger != nil {
		return defaultLogger
	}
	return slog.Default()
}
