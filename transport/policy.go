package transport

import "time"

const (
	DefaultMaxAttempts = 10
	DefaultInterval    = 3000 * time.Millisecond
)

// Policy defines the reconnect budget.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultPolicy returns 10 attempts spaced 3s apart.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Interval: DefaultInterval}
}

func (p Policy) normalize() Policy {
	if p.MaxAttempts < 0 {
		p.MaxAttempts = 0
	}
	if p.Interval < 0 {
		p.Interval = 0
	}
	return p
}
