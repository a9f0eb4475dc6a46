package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global zerolog logger. format "console" switches to a
// human-readable writer; anything else keeps JSON lines on stdout.
func Init(level, format, service string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.New(os.Stdout)
	if strings.EqualFold(format, "console") {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	log.Logger = logger.With().Timestamp().Str("service", service).Logger()
}

// FromEnv reads LOG_LEVEL and LOG_FORMAT.
func FromEnv(service string) {
	Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), service)
}
