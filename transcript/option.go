package transcript

import "time"

// Option represents log option
type Option func(l *Log)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		if now != nil {
			l.now = now
		}
	}
}
