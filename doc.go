// Package mcpinspect drives a live JSON-RPC 2.0 session with a remote MCP tool
// server over a per-resource WebSocket control channel.
//
// The package glues the transport manager (connection lifecycle and reconnect
// budget), the RPC session (discovery, invocation, transcript) and the endpoint
// builder behind a single entry-point, the Inspector. An Inspector owns at most
// one live Connection; inspecting another resource tears the current one down
// first, so no frames or retries leak across resources.
//
// Options can be populated from CLI flags or a YAML, TOML or JSON file loaded
// through LoadOptions.
//
// Example:
//
//	inspector := mcpinspect.New(&mcpinspect.Options{APIBase: "https://api.example.com", Token: token})
//	conn, _ := inspector.Inspect(ctx, "srv-1")
//	<-conn.ToolsReady()
//	id, ok := conn.Invoke(ctx, "echo")
package mcpinspect
