package logger

import (
	"log/slog"
	"os"
)

// New returns the root structured logger; handlers and services derive
// per-request context from it rather than constructing their own.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
