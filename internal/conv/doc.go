// Package conv collects tiny helper functions that are not part of the public API
// but aid internal conversions.
//
// At the moment it only exposes `AsID` which normalizes a decoded JSON-RPC id
// to its string form.
package conv
