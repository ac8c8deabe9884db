// Package logger builds the zerolog logger shared by the service and CLI.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a configured zerolog.Logger writing to w (stdout when nil).
// Development environments get a human-friendly console writer; everything
// else gets JSON lines. An unknown level falls back to info.
func New(appEnv, level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if IsDevelopment(appEnv) {
		cw := zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
			cw.Out = w
			cw.TimeFormat = "2006-01-02 15:04:05"
		})
		return zerolog.New(cw).Level(lvl).With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// IsDevelopment reports whether appEnv names a development environment.
func IsDevelopment(appEnv string) bool {
	env := strings.ToLower(strings.TrimSpace(appEnv))
	return env == "development" || env == "dev"
}

// Nop returns a disabled logger, useful for tests.
func Nop() zerolog.Logger {
	return zerolog.New(io.Discard)
}
