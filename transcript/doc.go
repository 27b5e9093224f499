// Package transcript keeps the ordered, append-only log of every frame sent and
// received on a control channel connection, interleaved with system events.
//
// Order is wire order: entries are appended at the moment a frame is written or
// read, never re-sorted by request/response pairing.
package transcript
