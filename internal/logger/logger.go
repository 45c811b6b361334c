// Package logger is a thin wrapper around zerolog.Logger with the
// constructors used across the application. Embedding zerolog.Logger keeps
// the full zerolog API available on *Logger.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

type Logger struct {
	zerolog.Logger
}

// NewLogger builds a JSON logger writing to stdout, tagged with a role field
// (e.g. "api") so output from different processes can be told apart.
func NewLogger(role string) *Logger {
	l := zerolog.New(os.Stdout).With().
		Str("role", role).
		Timestamp().
		Logger()
	return &Logger{l}
}

// Nop returns a logger that discards everything. Intended for tests.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}
