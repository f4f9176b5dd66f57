// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels, and helpers for carrying a logger through a
// context.Context so request- or run-scoped attributes propagate to every layer.
package logger
