package session

import (
	"github.com/viant/mcpinspect/schema"
	"github.com/viant/mcpinspect/transcript"
	"github.com/viant/mcpinspect/transport"
)

// ChangeKind identifies what a Change carries.
type ChangeKind int

const (
	EntryAppended ChangeKind = iota
	StateChanged
	ToolsReplaced
	InvocationCompleted
)

// Change is published to the listener after each mutation of session state.
type Change struct {
	Kind       ChangeKind
	Entry      *transcript.Entry
	State      transport.State
	Tools      []schema.Tool
	Invocation *Invocation
}

// Listener observes changes. It runs on the session goroutine, so it must not
// block and must not call Invoke synchronously.
type Listener func(change *Change)
