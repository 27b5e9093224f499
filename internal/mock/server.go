package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcpinspect/schema"
)

// ControlPath is the route pattern of the per-resource control channel.
const ControlPath = "/api/v1/nodes/{id}/ws"

type (
	// ToolServer is an in-process MCP tool server speaking JSON-RPC over WebSocket.
	ToolServer struct {
		*httptest.Server
		upgrader websocket.Upgrader

		tools       func(conn int) []schema.Tool
		call        CallHandler
		acceptLimit int
		silent      bool

		mux       sync.Mutex
		accepted  int
		rejected  int
		live      map[int]*websocket.Conn
		requests  []*jsonrpc.Request
		resources []string
		tokens    []string
		writeMux  sync.Mutex
	}

	// CallHandler serves tools/call; conn is the 1-based connection index.
	CallHandler func(conn int, params *CallParams) (interface{}, *jsonrpc.Error)

	// CallParams are decoded tools/call parameters.
	CallParams struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
)

// URL returns the control channel URL for a resource and token.
func (s *ToolServer) URL(resourceID, token string) string {
	return "ws" + strings.TrimPrefix(s.Server.URL, "http") + strings.Replace(ControlPath, "{id}", resourceID, 1) + "?token=" + token
}

// HTTPURL returns the http base URL of the server.
func (s *ToolServer) HTTPURL() string {
	return s.Server.URL
}

// Accepted returns number of accepted websocket connections
func (s *ToolServer) Accepted() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.accepted
}

// Rejected returns number of refused handshakes
func (s *ToolServer) Rejected() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.rejected
}

// Requests returns all decoded requests in arrival order
func (s *ToolServer) Requests() []*jsonrpc.Request {
	s.mux.Lock()
	defer s.mux.Unlock()
	result := make([]*jsonrpc.Request, len(s.requests))
	copy(result, s.requests)
	return result
}

// Resources returns resource ids of accepted connections
func (s *ToolServer) Resources() []string {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]string{}, s.resources...)
}

// Tokens returns the token query values of accepted connections
func (s *ToolServer) Tokens() []string {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]string{}, s.tokens...)
}

// Live returns number of open connections
func (s *ToolServer) Live() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.live)
}

// DropAll closes every open connection without a close handshake.
func (s *ToolServer) DropAll() {
	s.mux.Lock()
	conns := make([]*websocket.Conn, 0, len(s.live))
	for _, conn := range s.live {
		conns = append(conns, conn)
	}
	s.mux.Unlock()
	for _, conn := range conns {
		_ = conn.Close()
	}
}

// Push writes a raw text frame to every open connection.
func (s *ToolServer) Push(frame []byte) {
	s.mux.Lock()
	conns := make([]*websocket.Conn, 0, len(s.live))
	for _, conn := range s.live {
		conns = append(conns, conn)
	}
	s.mux.Unlock()
	for _, conn := range conns {
		s.write(conn, frame)
	}
}

func (s *ToolServer) write(conn *websocket.Conn, frame []byte) {
	s.writeMux.Lock()
	defer s.writeMux.Unlock()
	_ = conn.WriteMessage(websocket.TextMessage, frame)
}

func (s *ToolServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mux.Lock()
	if s.acceptLimit > 0 && s.accepted >= s.acceptLimit {
		s.rejected++
		s.mux.Unlock()
		http.Error(w, "backend connection failed", http.StatusServiceUnavailable)
		return
	}
	s.mux.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mux.Lock()
	s.accepted++
	index := s.accepted
	s.live[index] = conn
	s.resources = append(s.resources, r.PathValue("id"))
	s.tokens = append(s.tokens, r.URL.Query().Get("token"))
	s.mux.Unlock()

	defer func() {
		s.mux.Lock()
		delete(s.live, index)
		s.mux.Unlock()
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		request := &jsonrpc.Request{}
		if err := json.Unmarshal(data, request); err != nil {
			continue
		}
		s.mux.Lock()
		s.requests = append(s.requests, request)
		s.mux.Unlock()
		if s.silent {
			continue
		}
		response := s.serve(index, request)
		payload, err := json.Marshal(response)
		if err != nil {
			continue
		}
		s.write(conn, payload)
	}
}

func (s *ToolServer) serve(conn int, request *jsonrpc.Request) *jsonrpc.Response {
	response := &jsonrpc.Response{Id: request.Id, Jsonrpc: jsonrpc.Version}
	switch request.Method {
	case schema.MethodToolsList:
		tools := s.tools(conn)
		if tools == nil {
			tools = []schema.Tool{}
		}
		response.Result, _ = json.Marshal(map[string]interface{}{"tools": tools})
	case schema.MethodToolsCall:
		params := &CallParams{}
		if err := json.Unmarshal(request.Params, params); err != nil {
			response.Error = jsonrpc.NewInvalidParamsError(fmt.Sprintf("failed to parse: %v", err), request.Params)
			return response
		}
		result, rpcErr := s.call(conn, params)
		if rpcErr != nil {
			response.Error = rpcErr
			return response
		}
		var err error
		if response.Result, err = json.Marshal(result); err != nil {
			response.Error = jsonrpc.NewInternalError(err.Error(), nil)
		}
	default:
		response.Error = jsonrpc.NewMethodNotFound(fmt.Sprintf("method: %v not found", request.Method), request.Params)
	}
	return response
}

// EchoCall returns the call arguments as text content, unknown tools yield an invalid params error.
func (s *ToolServer) EchoCall(conn int, params *CallParams) (interface{}, *jsonrpc.Error) {
	for _, tool := range s.tools(conn) {
		if tool.Name != params.Name {
			continue
		}
		text, _ := json.Marshal(params.Arguments)
		return map[string]interface{}{
			"content": []map[string]interface{}{{"type": "text", "text": string(text)}},
		}, nil
	}
	return nil, schema.NewUnknownTool(params.Name)
}

// NewToolServer starts a tool server
func NewToolServer(options ...Option) *ToolServer {
	ret := &ToolServer{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		live:     map[int]*websocket.Conn{},
		tools:    func(int) []schema.Tool { return nil },
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.call == nil {
		ret.call = ret.EchoCall
	}
	router := http.NewServeMux()
	router.HandleFunc(ControlPath, ret.handle)
	ret.Server = httptest.NewServer(router)
	return ret
}
