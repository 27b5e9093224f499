package mock

import "github.com/viant/mcpinspect/schema"

// Option represents tool server option
type Option func(s *ToolServer)

// WithTools sets the tools advertised on every connection
func WithTools(tools ...schema.Tool) Option {
	return func(s *ToolServer) {
		s.tools = func(int) []schema.Tool { return tools }
	}
}

// WithToolsPerConnection varies advertised tools by 1-based connection index
func WithToolsPerConnection(fn func(conn int) []schema.Tool) Option {
	return func(s *ToolServer) {
		s.tools = fn
	}
}

// WithCallHandler overrides tools/call handling
func WithCallHandler(handler CallHandler) Option {
	return func(s *ToolServer) {
		s.call = handler
	}
}

// WithAcceptLimit refuses handshakes once limit connections were accepted
func WithAcceptLimit(limit int) Option {
	return func(s *ToolServer) {
		s.acceptLimit = limit
	}
}

// WithSilent records requests without answering them
func WithSilent() Option {
	return func(s *ToolServer) {
		s.silent = true
	}
}

// NewTool creates a tool whose input schema is derived from the fields of input.
func NewTool(name, description string, input any) schema.Tool {
	inputSchema := &schema.InputSchema{}
	if err := inputSchema.Load(input); err != nil {
		panic(err)
	}
	return schema.Tool{Name: name, Description: description, InputSchema: inputSchema}
}
