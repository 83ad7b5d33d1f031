package progress

import (
	"github.com/rs/zerolog"
)

// Discard ignores every update
var Discard Sink = discard{}

type discard struct{}

func (discard) SetProgress(float64) {}
func (discard) SetStatus(string)    {}
func (discard) SetTiming(string)    {}

// LogSink writes one log line per timing update, carrying the latest
// fraction and status.
type LogSink struct {
	logger   zerolog.Logger
	fraction float64
	status   string
}

// NewLogSink returns a sink logging through logger
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) SetProgress(fraction float64) {
	s.fraction = fraction
}

func (s *LogSink) SetStatus(text string) {
	s.status = text
}

func (s *LogSink) SetTiming(text string) {
	s.logger.Info().
		Float64("progress", s.fraction).
		Str("status", s.status).
		Msg(text)
}

type multi []Sink

// Multi fans every update out to sinks in order
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) SetProgress(fraction float64) {
	for _, s := range m {
		s.SetProgress(fraction)
	}
}

func (m multi) SetStatus(text string) {
	for _, s := range m {
		s.SetStatus(text)
	}
}

func (m multi) SetTiming(text string) {
	for _, s := range m {
		s.SetTiming(text)
	}
}
