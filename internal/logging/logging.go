// Package logging configures the zerolog logger extbuild passes around in
// context.Context.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New creates a logger writing to w. format is "console" or "json"; level is
// one of debug, info, warn, error and falls back to info.
func New(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
