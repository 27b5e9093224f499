package transport

import "time"

// EventKind distinguishes lifecycle events from inbound frames.
type EventKind int

const (
	StateChanged EventKind = iota
	Frame
)

// Event is one item of the ordered inbound stream.
type Event struct {
	Kind EventKind
	// State is the new state for StateChanged events.
	State State
	// Frame is the raw inbound message for Frame events.
	Frame []byte
	// Attempt is the reconnect attempt number, 0 for the initial connect.
	Attempt int
	// Err is the transport error that caused a Closed transition, if any.
	Err error
	At  time.Time
}
