package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// newLogger builds the console logger shared by all subcommands.
func newLogger(debug bool) logAdapter {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
	log.Logger = logger
	return logAdapter{logger}
}

// logAdapter exposes a zerolog logger through the printf-style interfaces
// the client packages accept.
type logAdapter struct {
	zerolog.Logger
}

func (l logAdapter) Debugf(format string, args ...any) {
	l.Debug().Msgf(format, args...)
}

func (l logAdapter) Infof(format string, args ...any) {
	l.Info().Msgf(format, args...)
}

func (l logAdapter) Warnf(format string, args ...any) {
	l.Warn().Msgf(format, args...)
}

func (l logAdapter) Errorf(format string, args ...any) {
	l.Error().Msgf(format, args...)
}
