// Package example shows how to drive an inspector session programmatically.
package example
