package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Config holds the settings needed to initialize the logging system.
type Config struct {
	// Level is the minimum log level to emit: "debug", "info", "warn" or
	// "error" (case-insensitive). An unrecognized value falls back to info.
	Level string
}

// Setup initializes and configures the application's logging system based on
// the provided configuration. It creates a structured JSON logger writing to
// stdout with the appropriate log level and sets it as the default logger for
// the application.
func Setup(cfg Config) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo

		// Use a temporary text logger so the warning is visible even
		// before the real handler is installed.
		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.Level,
			"default_level", "info")
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(handler)

	// Set as the process default so slog package-level functions
	// (slog.Info, slog.Error, ...) use the same handler.
	slog.SetDefault(logger)

	return logger, nil
}
