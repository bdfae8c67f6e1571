// Package logger builds the structured logger shared by the pipeline.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"
)

// New returns a console logger writing to stderr at the given level.
// debug forces the debug level regardless of level.
func New(level string, debug bool) *log.Logger {
	lvl := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if debug {
		lvl = log.DebugLevel
	}
	return &log.Logger{
		Level:      lvl,
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			Writer:         os.Stderr,
			ColorOutput:    true,
			EndWithMessage: true,
		},
	}
}

// Nop returns a logger that discards everything.
func Nop() *log.Logger {
	return &log.Logger{
		Level:  log.ErrorLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}
