package cli

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jbonatakis/mockingbird/internal/config"
)

func logLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(config.EnvLogLevel))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newTextLogger is used by headless commands, which log to stderr.
func newTextLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel()}))
}

// newJSONLogger is used when the terminal belongs to someone else: the TUI
// and the MCP stdio transport.
func newJSONLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel()}))
}
