package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Setup configures the global log level and returns a logger writing to
// stdout. Format "text" selects the human-readable console writer;
// anything else is JSON.
func Setup(level, format string) zerolog.Logger {
	return SetupWithWriter(level, format, os.Stdout)
}

// SetupWithWriter is Setup with an explicit output, for tests.
func SetupWithWriter(level, format string, out io.Writer) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(lvl)

	if format == "text" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}

	return zerolog.New(out).With().Timestamp().Logger()
}
