// Package telemetry provides structured logging for workflows and commands.
package telemetry

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger creates a console logger for a component. Logs go to stderr so
// stdout stays clean for listings and prompts.
func NewLogger(component string, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()
}
