package testutil

import (
	"log/slog"

	"github.com/bayegaspard/datasite/internal/logger"
)

// MakeNoopLogger returns a logger that discards everything, for tests that
// take a *logger.Logger but should stay silent.
func MakeNoopLogger() *logger.Logger {
	return &logger.Logger{Logger: slog.New(slog.DiscardHandler)}
}
