package session

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcpinspect/internal/conv"
	"github.com/viant/mcpinspect/schema"
	"github.com/viant/mcpinspect/transcript"
	"github.com/viant/mcpinspect/transport"
)

const (
	MessageConnected    = "Connected to MCP Server WebSocket"
	MessageDisconnected = "Disconnected from MCP Server"
	MessageGaveUp       = "Reconnect attempts exhausted, giving up"
)

// Transport is the part of transport.Manager the session depends on.
type Transport interface {
	Send(frame []byte) bool
	Events() <-chan transport.Event
}

type (
	invokeCommand struct {
		tool        string
		inputSchema *schema.InputSchema
		arguments   map[string]interface{}
		reply       chan invokeReply
	}

	invokeReply struct {
		id string
		ok bool
	}

	// response holds the fields a frame is correlated on; the jsonrpc tag is not required.
	response struct {
		Id     interface{}     `json:"id"`
		Result json.RawMessage `json:"result"`
		Error  json.RawMessage `json:"error"`
	}
)

// failure decodes the error member, it returns nil when absent or null.
func (r *response) failure() *jsonrpc.Error {
	if len(r.Error) == 0 || string(r.Error) == "null" {
		return nil
	}
	ret := &jsonrpc.Error{}
	if err := json.Unmarshal(r.Error, ret); err != nil {
		return jsonrpc.NewInternalError("malformed error: "+err.Error(), r.Error)
	}
	return ret
}

// Session layers JSON-RPC request/response handling on a transport. All state
// is mutated by the Run goroutine only; accessors read published copies.
type Session struct {
	transport Transport
	filler    ArgumentFiller
	listener  Listener
	logger    zerolog.Logger
	now       func() time.Time
	commands  chan *invokeCommand
	done      chan struct{}

	mux         sync.RWMutex
	state       transport.State
	tools       []schema.Tool
	log         *transcript.Log
	invocations map[string]*Invocation
	order       []string
	lastID      int
}

// Run processes transport events and invocation commands in order until the
// event stream ends or ctx is cancelled. It must be called once.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	events := s.transport.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.handle(event)
		case command := <-s.commands:
			id, ok := s.invoke(command)
			command.reply <- invokeReply{id: id, ok: ok}
		}
	}
}

// Done is closed when Run returns
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Invoke sends tools/call for the named tool with arguments derived from
// inputSchema by the session filler. It returns the allocated request id; ok is
// false when the connection is not open or the session is not running. The
// response is correlated later and surfaces through Invocation and the transcript.
func (s *Session) Invoke(ctx context.Context, tool string, inputSchema *schema.InputSchema) (string, bool) {
	return s.submit(ctx, &invokeCommand{tool: tool, inputSchema: inputSchema})
}

// InvokeWith sends tools/call with explicit arguments.
func (s *Session) InvokeWith(ctx context.Context, tool string, arguments map[string]interface{}) (string, bool) {
	if arguments == nil {
		arguments = map[string]interface{}{}
	}
	return s.submit(ctx, &invokeCommand{tool: tool, arguments: arguments})
}

// InvokeTool invokes a discovered tool using its advertised input schema.
func (s *Session) InvokeTool(ctx context.Context, tool string) (string, bool) {
	capability, ok := s.Tool(tool)
	if !ok {
		return "", false
	}
	return s.Invoke(ctx, capability.Name, capability.InputSchema)
}

func (s *Session) submit(ctx context.Context, command *invokeCommand) (string, bool) {
	command.reply = make(chan invokeReply, 1)
	select {
	case s.commands <- command:
	case <-s.done:
		return "", false
	case <-ctx.Done():
		return "", false
	}
	reply := <-command.reply
	return reply.id, reply.ok
}

// State returns the connection state as last observed by the session
func (s *Session) State() transport.State {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.state
}

// Tools returns the current capability snapshot
func (s *Session) Tools() []schema.Tool {
	s.mux.RLock()
	defer s.mux.RUnlock()
	result := make([]schema.Tool, len(s.tools))
	copy(result, s.tools)
	return result
}

// Tool returns a discovered tool by name
func (s *Session) Tool(name string) (schema.Tool, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	for _, tool := range s.tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return schema.Tool{}, false
}

// Transcript returns all transcript entries in wire order
func (s *Session) Transcript() []transcript.Entry {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.log.Entries()
}

// Invocations returns invocations in send order
func (s *Session) Invocations() []Invocation {
	s.mux.RLock()
	defer s.mux.RUnlock()
	result := make([]Invocation, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.invocations[id].clone())
	}
	return result
}

// Invocation returns an invocation by request id
func (s *Session) Invocation(id string) (Invocation, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	invocation, ok := s.invocations[id]
	if !ok {
		return Invocation{}, false
	}
	return invocation.clone(), true
}

func (s *Session) handle(event transport.Event) {
	switch event.Kind {
	case transport.StateChanged:
		s.mux.Lock()
		s.state = event.State
		s.mux.Unlock()
		s.notify(&Change{Kind: StateChanged, State: event.State})
		switch event.State {
		case transport.Open:
			s.onOpen()
		case transport.Closed:
			s.onClosed(event)
		case transport.Exhausted:
			s.appendEntry(transcript.System, nil, MessageGaveUp)
		}
	case transport.Frame:
		s.onFrame(event.Frame)
	}
}

func (s *Session) onOpen() {
	s.appendEntry(transcript.System, nil, MessageConnected)
	discovery := &jsonrpc.Request{Jsonrpc: schema.Version, Id: schema.DiscoveryID, Method: schema.MethodToolsList}
	s.send(discovery)
}

func (s *Session) onClosed(event transport.Event) {
	if event.Err != nil {
		s.logger.Debug().Err(event.Err).Int("attempt", event.Attempt).Msg("control channel closed")
	}
	s.appendEntry(transcript.System, nil, MessageDisconnected)
}

func (s *Session) onFrame(frame []byte) {
	s.appendEntry(transcript.Received, frame, "")

	aResponse := &response{}
	if err := json.Unmarshal(frame, aResponse); err != nil {
		s.logger.Debug().Err(err).Msg("ignoring malformed frame")
		return
	}
	id, ok := conv.AsID(aResponse.Id)
	if !ok {
		s.logger.Debug().Msg("ignoring frame without request id")
		return
	}
	if id == schema.DiscoveryID {
		s.onDiscovery(aResponse)
		return
	}
	s.complete(id, aResponse)
}

func (s *Session) onDiscovery(aResponse *response) {
	if failure := aResponse.failure(); failure != nil {
		s.logger.Debug().Int("code", failure.Code).Str("message", failure.Message).Msg("discovery failed")
		return
	}
	tools, ok := schema.DecodeListToolsResult(aResponse.Result)
	if !ok {
		s.logger.Debug().Msg("discovery response without tools array")
		return
	}
	s.mux.Lock()
	s.tools = tools
	s.mux.Unlock()
	s.notify(&Change{Kind: ToolsReplaced, Tools: s.Tools()})
}

func (s *Session) complete(id string, aResponse *response) {
	s.mux.Lock()
	invocation, ok := s.invocations[id]
	if !ok || invocation.Status != Pending {
		s.mux.Unlock()
		s.logger.Debug().Str("id", id).Msg("ignoring response without pending request")
		return
	}
	invocation.CompletedAt = s.now()
	if failure := aResponse.failure(); failure != nil {
		invocation.Status = Failed
		invocation.Error = failure
	} else {
		invocation.Status = Succeeded
		invocation.Result = append(json.RawMessage{}, aResponse.Result...)
	}
	snapshot := invocation.clone()
	s.mux.Unlock()
	s.notify(&Change{Kind: InvocationCompleted, Invocation: &snapshot})
}

func (s *Session) invoke(command *invokeCommand) (string, bool) {
	if s.State() != transport.Open {
		s.logger.Debug().Str("tool", command.tool).Msg("invoke ignored, connection not open")
		return "", false
	}
	arguments := command.arguments
	if arguments == nil {
		arguments = s.filler(command.inputSchema)
	}
	s.lastID++
	id := strconv.Itoa(s.lastID)
	request, err := jsonrpc.NewRequest(schema.MethodToolsCall, schema.NewCallToolRequestParams(command.tool, arguments))
	if err != nil {
		s.logger.Warn().Err(err).Str("tool", command.tool).Msg("failed to build tools/call request")
		return "", false
	}
	request.Id = id
	request.Jsonrpc = schema.Version
	if !s.send(request) {
		return "", false
	}
	s.mux.Lock()
	s.invocations[id] = &Invocation{ID: id, Tool: command.tool, Arguments: arguments, Status: Pending, SentAt: s.now()}
	s.order = append(s.order, id)
	s.mux.Unlock()
	return id, true
}

// send writes the request and records it; unsent requests are not recorded.
func (s *Session) send(request *jsonrpc.Request) bool {
	frame, err := json.Marshal(request)
	if err != nil {
		s.logger.Warn().Err(err).Str("method", request.Method).Msg("failed to encode request")
		return false
	}
	if !s.transport.Send(frame) {
		s.logger.Debug().Str("method", request.Method).Msg("request dropped by transport")
		return false
	}
	s.appendEntry(transcript.Sent, frame, "")
	return true
}

func (s *Session) appendEntry(direction transcript.Direction, payload []byte, message string) {
	s.mux.Lock()
	entry := s.log.Append(direction, payload, message)
	s.mux.Unlock()
	s.notify(&Change{Kind: EntryAppended, Entry: &entry})
}

func (s *Session) notify(change *Change) {
	if s.listener != nil {
		s.listener(change)
	}
}

// New creates a session on top of a transport
func New(aTransport Transport, options ...Option) *Session {
	ret := &Session{
		transport:   aTransport,
		filler:      PlaceholderArguments,
		logger:      zerolog.Nop(),
		now:         time.Now,
		commands:    make(chan *invokeCommand),
		done:        make(chan struct{}),
		invocations: map[string]*Invocation{},
	}
	for _, opt := range options {
		opt(ret)
	}
	ret.log = transcript.New(transcript.WithClock(ret.now))
	return ret
}
