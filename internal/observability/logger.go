// Package observability holds the process-wide logger and error reporting.
package observability

import (
	"log/slog"
	"os"
)

// NewLogger returns a JSON slog logger writing to stdout. Handlers must never
// log plaintext passwords or raw token strings.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
