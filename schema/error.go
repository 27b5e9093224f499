package schema

import "github.com/viant/jsonrpc"

const (
	// RateLimited is returned by the control channel proxy when a server exceeds its call budget.
	RateLimited = -32005
)

// NewUnknownTool creates an invalid params error for a tool name the server does not expose
func NewUnknownTool(toolName string) *jsonrpc.Error {
	return jsonrpc.NewError(jsonrpc.InvalidParams, "Unknown tool:"+toolName, nil)
}

// NewRateLimited creates a rate limit error
func NewRateLimited() *jsonrpc.Error {
	return jsonrpc.NewError(RateLimited, "Rate limit exceeded", nil)
}
