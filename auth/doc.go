// Package auth resolves the bearer token carried on the control channel URL.
//
// Token issuance happens elsewhere; the inspector only picks an existing token
// from, in order, an explicit value, the MCPINSPECT_TOKEN environment variable
// and a token store keyed by API base location.
package auth
