package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Direction identifies who produced a transcript entry.
type Direction string

const (
	Sent     Direction = "sent"
	Received Direction = "received"
	System   Direction = "system"
)

// Label returns the heading used when an entry is rendered.
func (d Direction) Label() string {
	switch d {
	case Sent:
		return "Request"
	case Received:
		return "Response"
	default:
		return "System"
	}
}

// Entry is one transcript record. Payload holds the raw frame for sent and
// received entries, Message the human readable text of system entries.
type Entry struct {
	Seq       int
	Direction Direction
	Payload   []byte
	Message   string
	Timestamp time.Time
}

type entryJSON struct {
	Seq       int             `json:"seq"`
	Direction Direction       `json:"direction"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Raw       string          `json:"raw,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// MarshalJSON embeds valid JSON payloads as-is and falls back to a raw string
// for frames that were not valid JSON.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{Seq: e.Seq, Direction: e.Direction, Message: e.Message, Timestamp: e.Timestamp}
	if len(e.Payload) > 0 {
		if json.Valid(e.Payload) {
			out.Payload = e.Payload
		} else {
			out.Raw = string(e.Payload)
		}
	}
	return json.Marshal(out)
}

// Render formats the entry the way the inspector log view shows it.
func (e Entry) Render() string {
	header := fmt.Sprintf("[%s] %s", e.Timestamp.Format("15:04:05"), e.Direction.Label())
	if e.Direction == System {
		return header + ": " + e.Message
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, e.Payload, "", "  "); err != nil {
		return header + "\n" + string(e.Payload)
	}
	return header + "\n" + pretty.String()
}

// Log is an append-only, ordered transcript. It is not safe for concurrent
// writers; the session actor is its only writer.
type Log struct {
	entries []Entry
	now     func() time.Time
}

// Append records an entry and returns it with its sequence and timestamp set.
func (l *Log) Append(direction Direction, payload []byte, message string) Entry {
	var data []byte
	if len(payload) > 0 {
		data = make([]byte, len(payload))
		copy(data, payload)
	}
	entry := Entry{
		Seq:       len(l.entries) + 1,
		Direction: direction,
		Payload:   data,
		Message:   message,
		Timestamp: l.now(),
	}
	l.entries = append(l.entries, entry)
	return entry
}

// Len returns number of entries
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns a copy of all entries in order.
func (l *Log) Entries() []Entry {
	result := make([]Entry, len(l.entries))
	copy(result, l.entries)
	return result
}

// WriteJSONLines writes entries as newline-delimited JSON.
func WriteJSONLines(w io.Writer, entries []Entry) error {
	encoder := json.NewEncoder(w)
	for i := range entries {
		if err := encoder.Encode(entries[i]); err != nil {
			return fmt.Errorf("failed to encode transcript entry %d: %w", entries[i].Seq, err)
		}
	}
	return nil
}

// New creates a transcript log
func New(options ...Option) *Log {
	ret := &Log{now: time.Now}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
