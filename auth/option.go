package auth

import "github.com/viant/mcpinspect/auth/store"

// Option represents resolver option
type Option func(r *Resolver)

// WithStore sets token store
func WithStore(aStore store.Store) Option {
	return func(r *Resolver) {
		r.store = aStore
	}
}

// WithLookupEnv overrides environment lookup
func WithLookupEnv(lookup func(key string) (string, bool)) Option {
	return func(r *Resolver) {
		if lookup != nil {
			r.lookup = lookup
		}
	}
}
