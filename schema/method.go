package schema

import (
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

const (
	// Version is the JSON-RPC protocol tag carried by every frame.
	Version = jsonrpc.Version

	// DiscoveryID is the reserved request id of the capability discovery call.
	DiscoveryID = "init"

	MethodToolsList = schema.MethodToolsList
	MethodToolsCall = schema.MethodToolsCall
)
