package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcpinspect/internal/mock"
	"github.com/viant/mcpinspect/schema"
	"github.com/viant/mcpinspect/transcript"
	"github.com/viant/mcpinspect/transport"
)

const waitTimeout = 5 * time.Second

type fakeTransport struct {
	events chan transport.Event
	mux    sync.Mutex
	open   bool
	sent   [][]byte
}

func (f *fakeTransport) Send(frame []byte) bool {
	f.mux.Lock()
	defer f.mux.Unlock()
	if !f.open {
		return false
	}
	f.sent = append(f.sent, append([]byte{}, frame...))
	return true
}

func (f *fakeTransport) Events() <-chan transport.Event {
	return f.events
}

func (f *fakeTransport) state(state transport.State) {
	f.mux.Lock()
	f.open = state == transport.Open
	f.mux.Unlock()
	f.events <- transport.Event{Kind: transport.StateChanged, State: state}
}

func (f *fakeTransport) frame(data string) {
	f.events <- transport.Event{Kind: transport.Frame, Frame: []byte(data)}
}

func (f *fakeTransport) requests(t *testing.T) []*jsonrpc.Request {
	f.mux.Lock()
	defer f.mux.Unlock()
	var result []*jsonrpc.Request
	for _, frame := range f.sent {
		request := &jsonrpc.Request{}
		require.NoError(t, json.Unmarshal(frame, request))
		result = append(result, request)
	}
	return result
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{events: make(chan transport.Event, 16)}
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

// start runs the session and returns a func that stops it.
func start(t *testing.T, aSession *Session) (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = aSession.Run(ctx) }()
	return ctx, func() {
		cancel()
		select {
		case <-aSession.Done():
		case <-time.After(waitTimeout):
			t.Errorf("session did not stop")
		}
	}
}

func awaitEntries(t *testing.T, aSession *Session, count int) []transcript.Entry {
	t.Helper()
	require.Eventually(t, func() bool { return len(aSession.Transcript()) >= count }, waitTimeout, 5*time.Millisecond)
	return aSession.Transcript()
}

// awaitTools waits until discovery has published count tools.
func awaitTools(t *testing.T, aSession *Session, count int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(aSession.Tools()) == count }, waitTimeout, 5*time.Millisecond)
}

func summary(entries []transcript.Entry) []string {
	var result []string
	for _, entry := range entries {
		if entry.Direction == transcript.System {
			result = append(result, "system:"+entry.Message)
			continue
		}
		result = append(result, string(entry.Direction)+":"+string(entry.Payload))
	}
	return result
}

// assertDiscovery checks a sent frame is the tools/list discovery request.
func assertDiscovery(t *testing.T, payload []byte) {
	t.Helper()
	request := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(payload, &request))
	assert.Equal(t, "2.0", request["jsonrpc"])
	assert.Equal(t, "init", request["id"])
	assert.Equal(t, "tools/list", request["method"])
}

const toolsResponse = `{"jsonrpc":"2.0","id":"init","result":{"tools":[{"name":"echo","description":"Echo","inputSchema":{"type":"object","properties":{"text":{"type":"string"}}}},{"name":"sum","inputSchema":{"type":"object","properties":{"a":{"type":"number"},"b":{"type":"number"}}}}]}}`

func TestSession_OpenSendsDiscovery(t *testing.T) {
	fake := newFakeTransport()
	aSession := New(fake, WithClock(fixedClock()))
	_, stop := start(t, aSession)
	defer stop()

	fake.state(transport.Connecting)
	fake.state(transport.Open)
	entries := awaitEntries(t, aSession, 2)

	assert.Equal(t, transcript.System, entries[0].Direction)
	assert.Equal(t, MessageConnected, entries[0].Message)
	assert.Equal(t, transcript.Sent, entries[1].Direction)
	assertDiscovery(t, entries[1].Payload)
	assert.Equal(t, transport.Open, aSession.State())

	requests := fake.requests(t)
	require.Len(t, requests, 1)
	assert.EqualValues(t, schema.DiscoveryID, requests[0].Id)
	assert.Equal(t, schema.MethodToolsList, requests[0].Method)
}

func TestSession_DiscoveryReplacesTools(t *testing.T) {
	var testCases = []struct {
		description   string
		frames        []string
		expectNames   []string
		expectReplace int
	}{
		{
			description:   "tools array replaces capability list",
			frames:        []string{toolsResponse},
			expectNames:   []string{"echo", "sum"},
			expectReplace: 1,
		},
		{
			description:   "second discovery replaces wholesale",
			frames:        []string{toolsResponse, `{"jsonrpc":"2.0","id":"init","result":{"tools":[{"name":"only"}]}}`},
			expectNames:   []string{"only"},
			expectReplace: 2,
		},
		{
			description:   "empty tools array clears capability list",
			frames:        []string{toolsResponse, `{"jsonrpc":"2.0","id":"init","result":{"tools":[]}}`},
			expectNames:   []string{},
			expectReplace: 2,
		},
		{
			description:   "discovery without tools array is ignored",
			frames:        []string{toolsResponse, `{"jsonrpc":"2.0","id":"init","result":{}}`},
			expectNames:   []string{"echo", "sum"},
			expectReplace: 1,
		},
		{
			description:   "discovery error is transcript only",
			frames:        []string{toolsResponse, `{"jsonrpc":"2.0","id":"init","error":{"code":-32601,"message":"nope"}}`},
			expectNames:   []string{"echo", "sum"},
			expectReplace: 1,
		},
		{
			description:   "odd items shape keeps every tool",
			frames:        []string{`{"jsonrpc":"2.0","id":"init","result":{"tools":[{"name":"echo"},{"name":"pair","inputSchema":{"properties":{"p":{"type":"array","items":[{"type":"string"}]}}}}]}}`},
			expectNames:   []string{"echo", "pair"},
			expectReplace: 1,
		},
		{
			description:   "union input schema type keeps every tool",
			frames:        []string{`{"jsonrpc":"2.0","id":"init","result":{"tools":[{"name":"echo","inputSchema":{"type":["object","null"]}},{"name":"sum"}]}}`},
			expectNames:   []string{"echo", "sum"},
			expectReplace: 1,
		},
		{
			description:   "numeric description keeps every tool",
			frames:        []string{`{"jsonrpc":"2.0","id":"init","result":{"tools":[{"name":"echo","description":7},{"name":"sum"}]}}`},
			expectNames:   []string{"echo", "sum"},
			expectReplace: 1,
		},
		{
			description:   "discovery without jsonrpc member",
			frames:        []string{`{"id":"init","result":{"tools":[{"name":"echo"},{"name":"pair","inputSchema":{"properties":{"p":{"type":"array","items":[{"type":"string"}]}}}}]}}`},
			expectNames:   []string{"echo", "pair"},
			expectReplace: 1,
		},
		{
			description:   "discovery error without jsonrpc member is transcript only",
			frames:        []string{toolsResponse, `{"id":"init","error":{"code":-32601,"message":"nope"}}`},
			expectNames:   []string{"echo", "sum"},
			expectReplace: 1,
		},
		{
			description:   "non discovery id never mutates tools",
			frames:        []string{`{"jsonrpc":"2.0","id":"7","result":{"tools":[{"name":"rogue"}]}}`},
			expectNames:   []string{},
			expectReplace: 0,
		},
		{
			description:   "malformed frame is recorded only",
			frames:        []string{`not json`},
			expectNames:   []string{},
			expectReplace: 0,
		},
	}

	for _, testCase := range testCases {
		fake := newFakeTransport()
		var replaced int
		var mux sync.Mutex
		aSession := New(fake, WithListener(func(change *Change) {
			if change.Kind == ToolsReplaced {
				mux.Lock()
				replaced++
				mux.Unlock()
			}
		}))
		_, stop := start(t, aSession)
		fake.state(transport.Open)
		for _, frame := range testCase.frames {
			fake.frame(frame)
		}
		entries := awaitEntries(t, aSession, 2+len(testCase.frames))
		assert.Len(t, entries, 2+len(testCase.frames), testCase.description)
		assert.Equal(t, transcript.Received, entries[len(entries)-1].Direction, testCase.description)
		stop()

		names := []string{}
		for _, tool := range aSession.Tools() {
			names = append(names, tool.Name)
		}
		assert.Equal(t, testCase.expectNames, names, testCase.description)
		mux.Lock()
		assert.Equal(t, testCase.expectReplace, replaced, testCase.description)
		mux.Unlock()
	}
}

func TestSession_TranscriptOrder(t *testing.T) {
	fake := newFakeTransport()
	aSession := New(fake)
	_, stop := start(t, aSession)
	defer stop()

	fake.state(transport.Connecting)
	fake.state(transport.Open)
	fake.frame(toolsResponse)
	fake.state(transport.Closed)
	fake.state(transport.Connecting)
	fake.state(transport.Open)
	fake.frame(`{"jsonrpc":"2.0","id":"init","result":{"tools":[]}}`)
	fake.state(transport.Closed)
	fake.state(transport.Exhausted)

	entries := awaitEntries(t, aSession, 9)
	stop()
	expected := []string{
		"system:" + MessageConnected,
		"sent:",
		"received:" + toolsResponse,
		"system:" + MessageDisconnected,
		"system:" + MessageConnected,
		"sent:",
		"received:" + `{"jsonrpc":"2.0","id":"init","result":{"tools":[]}}`,
		"system:" + MessageDisconnected,
		"system:" + MessageGaveUp,
	}
	actual := summary(entries)
	require.Len(t, actual, len(expected))
	for i := range expected {
		if entries[i].Direction == transcript.Sent {
			assert.Equal(t, expected[i], "sent:")
			assertDiscovery(t, entries[i].Payload)
			continue
		}
		assert.Equal(t, expected[i], actual[i])
	}
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Seq)
	}
	assert.Equal(t, transport.Exhausted, aSession.State())
	assert.Empty(t, aSession.Tools())
}

func TestSession_InvokeWhileClosed(t *testing.T) {
	fake := newFakeTransport()
	aSession := New(fake)
	ctx, stop := start(t, aSession)
	defer stop()

	id, ok := aSession.Invoke(ctx, "echo", nil)
	assert.False(t, ok)
	assert.Equal(t, "", id)
	assert.Empty(t, aSession.Transcript())
	assert.Empty(t, aSession.Invocations())
	assert.Empty(t, fake.requests(t))

	_, ok = aSession.InvokeTool(ctx, "missing")
	assert.False(t, ok)
}

func TestSession_InvokeAfterStop(t *testing.T) {
	fake := newFakeTransport()
	aSession := New(fake)
	ctx, stop := start(t, aSession)
	stop()
	_, ok := aSession.InvokeWith(ctx, "echo", nil)
	assert.False(t, ok)
}

func TestSession_InvokeCorrelation(t *testing.T) {
	fake := newFakeTransport()
	var completed []Invocation
	var mux sync.Mutex
	aSession := New(fake, WithClock(fixedClock()), WithListener(func(change *Change) {
		if change.Kind == InvocationCompleted {
			mux.Lock()
			completed = append(completed, *change.Invocation)
			mux.Unlock()
		}
	}))
	ctx, stop := start(t, aSession)
	defer stop()

	fake.state(transport.Open)
	fake.frame(toolsResponse)
	awaitTools(t, aSession, 2)

	first, ok := aSession.InvokeTool(ctx, "sum")
	require.True(t, ok)
	second, ok := aSession.InvokeTool(ctx, "echo")
	require.True(t, ok)
	third, ok := aSession.InvokeWith(ctx, "echo", map[string]interface{}{"text": "hi"})
	require.True(t, ok)
	assert.Equal(t, []string{"1", "2", "3"}, []string{first, second, third})

	requests := fake.requests(t)
	require.Len(t, requests, 4)
	params := &mock.CallParams{}
	require.NoError(t, json.Unmarshal(requests[1].Params, params))
	assert.Equal(t, "sum", params.Name)
	assert.Equal(t, map[string]interface{}{"a": float64(1), "b": float64(1)}, params.Arguments)
	require.NoError(t, json.Unmarshal(requests[2].Params, params))
	assert.Equal(t, map[string]interface{}{"text": "test string"}, params.Arguments)

	invocation, ok := aSession.Invocation("1")
	require.True(t, ok)
	assert.Equal(t, Pending, invocation.Status)

	fake.frame(`{"jsonrpc":"2.0","id":"1","result":{"content":[{"type":"text","text":"2"}]}}`)
	fake.frame(`{"jsonrpc":"2.0","id":2,"error":{"code":-32602,"message":"Unknown tool:echo"}}`)
	fake.frame(`{"jsonrpc":"2.0","id":"1","result":{}}`)
	awaitEntries(t, aSession, 3+3+3)

	invocations := aSession.Invocations()
	require.Len(t, invocations, 3)
	assert.Equal(t, Succeeded, invocations[0].Status)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"2"}]}`, string(invocations[0].Result))
	assert.Equal(t, Failed, invocations[1].Status)
	require.NotNil(t, invocations[1].Error)
	assert.Equal(t, "Unknown tool:echo", invocations[1].Error.Message)
	assert.Equal(t, Pending, invocations[2].Status)

	mux.Lock()
	defer mux.Unlock()
	require.Len(t, completed, 2, "duplicate response must not complete twice")
	assert.Equal(t, "1", completed[0].ID)
	assert.Equal(t, "2", completed[1].ID)
}

func TestSession_CompletesResponsesWithoutVersion(t *testing.T) {
	fake := newFakeTransport()
	aSession := New(fake)
	ctx, stop := start(t, aSession)
	defer stop()

	fake.state(transport.Open)
	fake.frame(`{"id":"init","result":{"tools":[{"name":"echo"}]}}`)
	awaitTools(t, aSession, 1)

	first, ok := aSession.InvokeTool(ctx, "echo")
	require.True(t, ok)
	second, ok := aSession.InvokeTool(ctx, "echo")
	require.True(t, ok)
	third, ok := aSession.InvokeTool(ctx, "echo")
	require.True(t, ok)

	fake.frame(`{"id":"` + first + `","result":{"content":[]}}`)
	fake.frame(`{"id":` + second + `,"error":{"code":-32005,"message":"Rate limited"}}`)
	fake.frame(`{"id":"` + third + `","error":"busy"}`)
	require.Eventually(t, func() bool {
		for _, invocation := range aSession.Invocations() {
			if invocation.Status == Pending {
				return false
			}
		}
		return true
	}, waitTimeout, 5*time.Millisecond)

	invocations := aSession.Invocations()
	require.Len(t, invocations, 3)
	assert.Equal(t, Succeeded, invocations[0].Status)
	assert.JSONEq(t, `{"content":[]}`, string(invocations[0].Result))
	assert.Equal(t, Failed, invocations[1].Status)
	require.NotNil(t, invocations[1].Error)
	assert.Equal(t, schema.RateLimited, invocations[1].Error.Code)
	assert.Equal(t, Failed, invocations[2].Status)
	require.NotNil(t, invocations[2].Error)
	assert.Equal(t, jsonrpc.InternalError, invocations[2].Error.Code)
}

func TestSession_InvokeDroppedByTransport(t *testing.T) {
	fake := newFakeTransport()
	aSession := New(fake)
	ctx, stop := start(t, aSession)
	defer stop()

	fake.state(transport.Open)
	awaitEntries(t, aSession, 2)
	fake.mux.Lock()
	fake.open = false
	fake.mux.Unlock()

	_, ok := aSession.InvokeWith(ctx, "echo", nil)
	assert.False(t, ok)
	assert.Len(t, aSession.Transcript(), 2)
	assert.Empty(t, aSession.Invocations())
}

func TestSession_WithFiller(t *testing.T) {
	fake := newFakeTransport()
	aSession := New(fake, WithFiller(func(*schema.InputSchema) map[string]interface{} {
		return map[string]interface{}{"custom": "x"}
	}))
	ctx, stop := start(t, aSession)
	defer stop()
	fake.state(transport.Open)
	awaitEntries(t, aSession, 2)

	id, ok := aSession.Invoke(ctx, "anything", &schema.InputSchema{})
	require.True(t, ok)
	invocation, ok := aSession.Invocation(id)
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"custom": "x"}, invocation.Arguments)
}

func TestPlaceholderArguments(t *testing.T) {
	var testCases = []struct {
		description string
		input       *schema.InputSchema
		expect      map[string]interface{}
	}{
		{description: "nil schema", input: nil, expect: map[string]interface{}{}},
		{
			description: "supported types",
			input: &schema.InputSchema{Properties: map[string]schema.Property{
				"s": {Type: schema.TypeString},
				"n": {Type: schema.TypeNumber},
				"b": {Type: schema.TypeBoolean},
			}},
			expect: map[string]interface{}{"s": "test string", "n": 1, "b": true},
		},
		{
			description: "unsupported types stay unset",
			input: &schema.InputSchema{Properties: map[string]schema.Property{
				"i": {Type: schema.TypeInteger},
				"o": {Type: schema.TypeObject},
				"a": {Type: schema.TypeArray},
				"u": {},
			}},
			expect: map[string]interface{}{},
		},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, PlaceholderArguments(testCase.input), testCase.description)
	}
}

func TestSession_WithToolServer(t *testing.T) {
	server := mock.NewToolServer(
		mock.WithToolsPerConnection(func(conn int) []schema.Tool {
			if conn == 1 {
				return []schema.Tool{{Name: "echo", InputSchema: &schema.InputSchema{Type: schema.TypeObject, Properties: map[string]schema.Property{"text": {Type: schema.TypeString}}}}}
			}
			return []schema.Tool{{Name: "other"}}
		}),
	)
	defer server.Close()

	manager := transport.New(server.URL("srv-1", "abc"), transport.WithPolicy(transport.Policy{MaxAttempts: 2, Interval: 10 * time.Millisecond}))
	toolsReady := make(chan []schema.Tool, 4)
	aSession := New(manager, WithListener(func(change *Change) {
		if change.Kind == ToolsReplaced {
			toolsReady <- change.Tools
		}
	}))
	ctx, stop := start(t, aSession)
	defer stop()
	manager.Connect(ctx)
	defer manager.Close()

	select {
	case tools := <-toolsReady:
		require.Len(t, tools, 1)
		assert.Equal(t, "echo", tools[0].Name)
	case <-time.After(waitTimeout):
		require.FailNow(t, "timed out waiting for discovery")
	}

	id, ok := aSession.InvokeTool(ctx, "echo")
	require.True(t, ok)
	require.Eventually(t, func() bool {
		invocation, _ := aSession.Invocation(id)
		return invocation.Status == Succeeded
	}, waitTimeout, 5*time.Millisecond)
	invocation, _ := aSession.Invocation(id)
	assert.Contains(t, string(invocation.Result), `test string`)

	server.DropAll()
	select {
	case tools := <-toolsReady:
		require.Len(t, tools, 1)
		assert.Equal(t, "other", tools[0].Name)
	case <-time.After(waitTimeout):
		require.FailNow(t, "timed out waiting for rediscovery")
	}
	assert.Equal(t, 2, server.Accepted())
	discoveries := 0
	for _, request := range server.Requests() {
		if request.Method == schema.MethodToolsList {
			discoveries++
		}
	}
	assert.Equal(t, 2, discoveries)
}
