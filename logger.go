package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/wayfinder-io/wayfinder/waylib"
)

type logger struct {
	lookupLog zerolog.Logger
	updateLog zerolog.Logger
}

func (l *logger) LookupError(target string, err error) {
	l.lookupLog.Error().Str("target", target).Err(err).Msg("")
}

func (l *logger) UpdateInfo(name string, msg string) {
	l.updateLog.Info().Str("database", name).Msg(msg)
}

func (l *logger) UpdateError(name string, err error) {
	l.updateLog.Error().Str("database", name).Err(err).Msg("")
}

func newLogger(debug bool) waylib.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return &logger{
		lookupLog: zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("event_name", "lookup").Logger(),
		updateLog: zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("event_name", "update").Logger(),
	}
}
