package http

import (
	"log/slog"
	"os"
)

// DebugEnv names the environment variable that switches the default logger on.
const DebugEnv = "USERVER_DEBUG"

// DefaultLogger discards everything unless DebugEnv is set, in which case it writes
// debug level text records to stderr.
func DefaultLogger() *slog.Logger {
	if os.Getenv(DebugEnv) == "" {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
