package mcpinspect

import (
	"context"
	"sync"

	"github.com/viant/mcpinspect/schema"
	"github.com/viant/mcpinspect/session"
	"github.com/viant/mcpinspect/transcript"
	"github.com/viant/mcpinspect/transport"
)

// Connection is one inspected resource: a transport manager and the session
// running on top of it. A Connection is single use; inspecting again replaces it.
type Connection struct {
	ID         string
	ResourceID string
	URL        string

	manager    *transport.Manager
	session    *session.Session
	cancel     context.CancelFunc
	done       chan struct{}
	toolsReady chan struct{}
	readyOnce  sync.Once
	closeOnce  sync.Once
}

// Invoke calls a discovered tool with placeholder arguments built from its input schema.
func (c *Connection) Invoke(ctx context.Context, tool string) (string, bool) {
	return c.session.InvokeTool(ctx, tool)
}

// InvokeWith calls a tool with explicit arguments.
func (c *Connection) InvokeWith(ctx context.Context, tool string, arguments map[string]interface{}) (string, bool) {
	return c.session.InvokeWith(ctx, tool, arguments)
}

// Tools returns discovered tools
func (c *Connection) Tools() []schema.Tool {
	return c.session.Tools()
}

// Transcript returns transcript entries
func (c *Connection) Transcript() []transcript.Entry {
	return c.session.Transcript()
}

// Invocations returns invocations in send order
func (c *Connection) Invocations() []session.Invocation {
	return c.session.Invocations()
}

// Invocation returns an invocation by request id
func (c *Connection) Invocation(id string) (session.Invocation, bool) {
	return c.session.Invocation(id)
}

// State returns the connection state seen by the session
func (c *Connection) State() transport.State {
	return c.session.State()
}

// Attempts returns reconnect attempts used so far
func (c *Connection) Attempts() int {
	return c.manager.Attempts()
}

// ToolsReady is closed once the first discovery response has been applied.
func (c *Connection) ToolsReady() <-chan struct{} {
	return c.toolsReady
}

// Done is closed when both the transport and the session stopped.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Disconnect closes the socket without retrying; the session records the close
// and stops.
func (c *Connection) Disconnect() {
	c.manager.Close()
}

func (c *Connection) markToolsReady() {
	c.readyOnce.Do(func() { close(c.toolsReady) })
}

func (c *Connection) start(ctx context.Context) {
	go func() { _ = c.session.Run(ctx) }()
	c.manager.Connect(ctx)
	go func() {
		<-c.manager.Done()
		<-c.session.Done()
		close(c.done)
	}()
}

// teardown cancels retries, discards undelivered events and waits for both
// goroutines to stop.
func (c *Connection) teardown() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.manager.Close()
	})
	<-c.done
}
