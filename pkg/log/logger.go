package log

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Logger = zerolog.Logger

// New builds the service logger. In local mode output is pretty-printed to
// the console; everywhere else it is JSON on stdout.
func New(env string) Logger {
	level := zerolog.InfoLevel
	if env == "local" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
		level = zerolog.DebugLevel
	}
	return log.Level(level)
}

// Nop returns a logger that discards everything, for tests.
func Nop() Logger {
	return zerolog.Nop()
}
