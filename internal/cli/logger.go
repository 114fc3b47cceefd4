package cli

import (
	"io"
	"log/slog"
	"strings"
)

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string // debug, info, warn, error; defaults to info
	Format string // json or text; defaults to text
}

// NewLogger creates a *slog.Logger writing to w and sets it as the default
// logger.
//
// Format "json" produces structured JSON output for services.
// Format "text" produces human-readable output.
func NewLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
