// Package logger builds the structured logger used by every component.
package logger

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w. format is "json" for one JSON object
// per line; anything else selects the human-readable console output.
func New(w io.Writer, format string, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	out := w
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
