// Package schema defines the wire vocabulary of the inspector control channel:
// the JSON-RPC version tag, the reserved discovery id, the tools/list and
// tools/call method names, and the capability (tool) model decoded from
// discovery responses.
//
// Decoding is lenient. Tools advertised without an input schema,
// or with JSON-schema type unions, are accepted so that a partially conforming
// server still yields a usable capability list.
package schema
