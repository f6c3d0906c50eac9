// Package logging configures the shared console logger.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New returns a leveled console logger writing to stderr. Diagnostics go
// to stderr so report output on stdout stays machine-readable.
func New(level string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           ParseLevel(level),
		ReportTimestamp: false,
		Prefix:          "todocomb",
	})
}

// ParseLevel maps a level name to a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
