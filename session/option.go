package session

import (
	"time"

	"github.com/rs/zerolog"
)

// Option represents session option
type Option func(s *Session)

// WithFiller replaces the placeholder argument policy
func WithFiller(filler ArgumentFiller) Option {
	return func(s *Session) {
		if filler != nil {
			s.filler = filler
		}
	}
}

// WithListener sets change listener
func WithListener(listener Listener) Option {
	return func(s *Session) {
		s.listener = listener
	}
}

// WithLogger sets logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock overrides time source
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}
