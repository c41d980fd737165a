package logging

import (
	"log/slog"
	"os"
)

// NewStdoutHandler is the JSON stdout handler shared by Setup and the
// post-database multi-handler.
func NewStdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(NewStdoutHandler()))
}
