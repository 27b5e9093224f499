package mcpinspect

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/viant/mcpinspect/auth/store"
	"github.com/viant/mcpinspect/session"
)

// InspectorOption represents inspector option
type InspectorOption func(i *Inspector)

// WithStore sets the token store consulted when no explicit token is given
func WithStore(aStore store.Store) InspectorOption {
	return func(i *Inspector) {
		i.store = aStore
	}
}

// WithListener sets the change listener
func WithListener(listener Listener) InspectorOption {
	return func(i *Inspector) {
		i.listener = listener
	}
}

// WithLogger sets logger
func WithLogger(logger zerolog.Logger) InspectorOption {
	return func(i *Inspector) {
		i.logger = logger
	}
}

// WithDialer sets websocket dialer
func WithDialer(dialer *websocket.Dialer) InspectorOption {
	return func(i *Inspector) {
		i.dialer = dialer
	}
}

// WithFiller sets the argument filler used by Connection.Invoke
func WithFiller(filler session.ArgumentFiller) InspectorOption {
	return func(i *Inspector) {
		i.filler = filler
	}
}

// WithClock overrides time source
func WithClock(now func() time.Time) InspectorOption {
	return func(i *Inspector) {
		if now != nil {
			i.now = now
		}
	}
}

// WithLookupEnv overrides environment lookup used for token resolution
func WithLookupEnv(lookup func(key string) (string, bool)) InspectorOption {
	return func(i *Inspector) {
		if lookup != nil {
			i.lookupEnv = lookup
		}
	}
}
