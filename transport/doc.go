// Package transport manages the WebSocket lifecycle of an inspector control
// channel.
//
// A Manager is bound to one URL. Connect starts a background loop that dials,
// pumps inbound frames and, on an unexpected close, retries after a fixed
// interval until its attempt budget is spent. The budget covers one outage and
// is restored whenever a connection opens:
//
//	uninstantiated -> connecting -> open -> (closing -> closed) | closed
//	closed -> connecting           (while attempts remain)
//	closed -> exhausted            (budget spent, terminal)
//
// Lifecycle changes and frames share one ordered channel so that a consumer
// observes "open" before any frame read on that socket. Send never queues:
// frames offered while the socket is not open are dropped.
//
// Example:
//
//	manager := transport.New(url, transport.WithPolicy(transport.DefaultPolicy()))
//	manager.Connect(ctx)
//	for event := range manager.Events() {
//		...
//	}
package transport
