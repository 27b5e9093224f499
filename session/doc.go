// Package session implements the JSON-RPC layer of the inspector on top of a
// transport event stream.
//
// A Session is an actor: Run consumes transport events and invocation commands
// on a single goroutine, which is the only writer of session state. Every time the connection opens the
// session announces it in the transcript and re-sends discovery
// (tools/list with id "init"). A discovery response carrying a tools array
// replaces the capability list wholesale; any other frame only lands in the
// transcript, unless its id matches a pending tools/call, in which case the
// invocation is marked succeeded or failed.
//
// Example:
//
//	manager := transport.New(url)
//	aSession := session.New(manager, session.WithListener(func(change *session.Change) { ... }))
//	go aSession.Run(ctx)
//	manager.Connect(ctx)
//	id, ok := aSession.InvokeTool(ctx, "echo")
package session
