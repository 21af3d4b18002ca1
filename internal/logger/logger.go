package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a component-tagged logger. APP_ENV=dev switches to the console
// writer; the given level string falls back to info when unparseable.
func New(component, level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log = zerolog.New(writer)
	} else {
		log = zerolog.New(os.Stdout)
	}
	return log.Level(parsed).With().Timestamp().Str("component", component).Logger()
}
