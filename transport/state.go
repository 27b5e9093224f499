package transport

// State is the lifecycle state of a control channel connection.
type State int32

const (
	Uninstantiated State = iota
	Connecting
	Open
	Closing
	Closed
	// Exhausted is the terminal closed state reached once the retry budget is used up.
	Exhausted
)

func (s State) String() string {
	switch s {
	case Uninstantiated:
		return "uninstantiated"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// Label returns a user facing status label.
func (s State) Label() string {
	switch s {
	case Connecting:
		return "Connecting..."
	case Open:
		return "Connected"
	case Closing:
		return "Closing..."
	case Closed:
		return "Disconnected"
	case Exhausted:
		return "Disconnected (gave up)"
	}
	return "Uninstantiated"
}

// Terminal reports whether no further connection attempts will be made.
func (s State) Terminal() bool {
	return s == Exhausted
}
