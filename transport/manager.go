package transport

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var errClosedByUser = errors.New("transport: closed by user")

// Manager owns the WebSocket lifecycle of one control channel URL: it connects,
// reconnects within its policy budget and publishes state changes and inbound
// frames on a single ordered stream.
type Manager struct {
	url          string
	dialer       *websocket.Dialer
	header       http.Header
	policy       Policy
	writeTimeout time.Duration
	buffer       int
	logger       zerolog.Logger

	events chan Event
	done   chan struct{}

	mux        sync.Mutex
	conn       *websocket.Conn
	state      State
	attempts   int
	started    bool
	userClosed bool
	stop       context.CancelFunc

	writeMux sync.Mutex
}

// URL returns target URL
func (m *Manager) URL() string {
	return m.url
}

// Events returns the inbound stream; it is closed once the manager stops.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Done is closed when the manager stopped for good.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// State returns current state
func (m *Manager) State() State {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.state
}

// Attempts returns number of reconnect attempts made since the connection was last open
func (m *Manager) Attempts() int {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.attempts
}

// Connect starts connecting in the background. It is a no-op once the manager
// has been started. Cancelling ctx tears the manager down: pending retries are
// abandoned and undelivered events are discarded.
func (m *Manager) Connect(ctx context.Context) {
	m.mux.Lock()
	if m.started {
		m.mux.Unlock()
		return
	}
	m.started = true
	stopCtx, stop := context.WithCancel(ctx)
	m.stop = stop
	m.mux.Unlock()
	go m.run(ctx, stopCtx)
}

// Send writes frame as a text message. Frames are dropped, not queued, when the
// connection is not open; the return value reports whether the write happened.
func (m *Manager) Send(frame []byte) bool {
	m.mux.Lock()
	conn, state := m.conn, m.state
	m.mux.Unlock()
	if state != Open || conn == nil {
		m.logger.Debug().Str("state", state.String()).Msg("dropping frame, connection not open")
		return false
	}
	m.writeMux.Lock()
	defer m.writeMux.Unlock()
	if m.writeTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(m.writeTimeout))
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		m.logger.Warn().Err(err).Msg("failed to write frame")
		_ = conn.Close()
		return false
	}
	return true
}

// Close disconnects on user request; no reconnect follows.
func (m *Manager) Close() {
	m.mux.Lock()
	if m.userClosed {
		m.mux.Unlock()
		return
	}
	m.userClosed = true
	conn := m.conn
	if !m.started {
		m.started = true
		m.state = Closed
		m.mux.Unlock()
		close(m.events)
		close(m.done)
		return
	}
	if m.state == Open {
		m.state = Closing
	}
	stop := m.stop
	m.mux.Unlock()

	if conn != nil {
		m.writeMux.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		m.writeMux.Unlock()
	}
	stop()
}

func (m *Manager) run(ctx, stopCtx context.Context) {
	defer close(m.done)
	defer close(m.events)
	for {
		attempt := m.Attempts()
		m.transition(ctx, Connecting, attempt, nil)
		wasOpen, err := m.connect(ctx, stopCtx)
		if wasOpen {
			attempt = m.Attempts()
		}
		if ctx.Err() != nil {
			m.setState(Closed)
			return
		}
		if m.isUserClosed() {
			if wasOpen {
				m.transition(ctx, Closing, attempt, nil)
			}
			m.transition(ctx, Closed, attempt, errClosedByUser)
			return
		}
		m.logger.Debug().Err(err).Int("attempt", attempt).Msg("connection closed")
		m.transition(ctx, Closed, attempt, err)
		if !m.nextAttempt() {
			m.logger.Warn().Int("attempts", attempt).Str("url", m.url).Msg("reconnect budget exhausted")
			m.transition(ctx, Exhausted, attempt, err)
			return
		}
		if !m.wait(stopCtx) {
			return
		}
	}
}

// connect dials once and, on success, pumps frames until the socket fails.
func (m *Manager) connect(ctx, stopCtx context.Context) (bool, error) {
	conn, _, err := m.dialer.DialContext(stopCtx, m.url, m.header)
	if err != nil {
		return false, err
	}
	m.mux.Lock()
	if m.userClosed {
		m.mux.Unlock()
		_ = conn.Close()
		return false, errClosedByUser
	}
	m.conn = conn
	m.state = Open
	attempt := m.attempts
	m.attempts = 0 //budget applies per outage
	m.mux.Unlock()

	watched := make(chan struct{})
	go func() {
		select {
		case <-stopCtx.Done():
			_ = conn.Close()
		case <-watched:
		}
	}()
	defer func() {
		close(watched)
		m.mux.Lock()
		m.conn = nil
		m.mux.Unlock()
		_ = conn.Close()
	}()

	m.emit(ctx, Event{Kind: StateChanged, State: Open, Attempt: attempt})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		if !m.emit(ctx, Event{Kind: Frame, Frame: data}) {
			return true, ctx.Err()
		}
	}
}

func (m *Manager) nextAttempt() bool {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.attempts >= m.policy.MaxAttempts {
		return false
	}
	m.attempts++
	return true
}

func (m *Manager) wait(stopCtx context.Context) bool {
	timer := time.NewTimer(m.policy.Interval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-stopCtx.Done():
		return false
	}
}

func (m *Manager) isUserClosed() bool {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.userClosed
}

func (m *Manager) setState(state State) {
	m.mux.Lock()
	m.state = state
	m.mux.Unlock()
}

func (m *Manager) transition(ctx context.Context, state State, attempt int, err error) {
	m.setState(state)
	m.emit(ctx, Event{Kind: StateChanged, State: state, Attempt: attempt, Err: err})
}

// emit delivers an event in order; it gives up only when ctx is cancelled.
func (m *Manager) emit(ctx context.Context, event Event) bool {
	if ctx.Err() != nil {
		return false
	}
	event.At = time.Now()
	select {
	case m.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// New creates a manager for url
func New(url string, options ...Option) *Manager {
	ret := &Manager{
		url:    url,
		dialer: websocket.DefaultDialer,
		policy: DefaultPolicy(),
		buffer: 64,
		logger: zerolog.Nop(),
		done:   make(chan struct{}),
	}
	for _, opt := range options {
		opt(ret)
	}
	ret.events = make(chan Event, ret.buffer)
	return ret
}
