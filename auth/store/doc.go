// Package store defines token stores used by the bearer token resolution in the
// parent auth package.
//
// Tokens are keyed by the base location of the backend API. The in-memory store
// suits tests and short-lived sessions; FileStore persists tokens as JSON at any
// location supported by github.com/viant/afs.
package store
