// Package endpoint builds the per-resource control channel URL:
//
//	<ws|wss>://<host>/api/v1/nodes/<id>/ws?token=<token>
//
// An http(s) API base location is rewritten to ws(s). Without one the scheme
// follows the page origin and the host defaults to localhost:8080.
package endpoint
