package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. Local runs get a console writer,
// everything else emits JSON lines.
func Init(level, environment, service string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if environment == "local" {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(writer).With().Timestamp().Str("service", service).Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", service).Logger()
	}

	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
