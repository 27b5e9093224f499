package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Option represents manager option
type Option func(m *Manager)

// WithPolicy sets reconnect policy
func WithPolicy(policy Policy) Option {
	return func(m *Manager) {
		m.policy = policy.normalize()
	}
}

// WithDialer sets websocket dialer
func WithDialer(dialer *websocket.Dialer) Option {
	return func(m *Manager) {
		if dialer != nil {
			m.dialer = dialer
		}
	}
}

// WithHeader sets handshake headers
func WithHeader(header http.Header) Option {
	return func(m *Manager) {
		m.header = header
	}
}

// WithWriteTimeout bounds a single frame write
func WithWriteTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		m.writeTimeout = timeout
	}
}

// WithEventBuffer sets the inbound event channel capacity
func WithEventBuffer(size int) Option {
	return func(m *Manager) {
		if size >= 0 {
			m.buffer = size
		}
	}
}

// WithLogger sets logger
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}
