package logger

import (
	"log/slog"
	"os"
)

// Logger wraps slog with component tagging and a fatal helper.
type Logger struct {
	*slog.Logger
}

// New builds a JSON logger writing to stdout. Level follows slog numbering:
// -4 debug, 0 info, 4 warn, 8 error.
func New(level int) *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.Level(level),
	})
	return &Logger{Logger: slog.New(handler)}
}

// Named returns a child logger tagged with a component name.
func (l *Logger) Named(component string) *Logger {
	return &Logger{Logger: l.Logger.With("component", component)}
}

// Fatal logs at error level and exits the process.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
