// Package mock provides an in-process WebSocket JSON-RPC tool server and token
// helpers that let transport, session and inspector tests run without a real
// backend.
package mock
