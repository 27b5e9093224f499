package mcpinspect

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/viant/mcpinspect/auth"
	"github.com/viant/mcpinspect/auth/store"
	"github.com/viant/mcpinspect/internal/collection"
	"github.com/viant/mcpinspect/session"
	"github.com/viant/mcpinspect/transport"
)

// Listener observes session changes of a connection. It runs on the session
// goroutine; it must not block or call back into the Inspector.
type Listener func(conn *Connection, change *session.Change)

// Inspector owns at most one live Connection.
type Inspector struct {
	options     *Options
	store       store.Store
	dialer      *websocket.Dialer
	filler      session.ArgumentFiller
	listener    Listener
	logger      zerolog.Logger
	now         func() time.Time
	lookupEnv   func(key string) (string, bool)
	connections *collection.SyncMap[string, *Connection]

	mux     sync.Mutex
	current *Connection
}

// Inspect tears down the current connection, then connects to resourceID. The
// returned connection lives until the next Inspect, Close, or ctx cancellation.
func (i *Inspector) Inspect(ctx context.Context, resourceID string) (*Connection, error) {
	i.mux.Lock()
	defer i.mux.Unlock()
	i.release()

	resolver := auth.New(auth.WithStore(i.store), auth.WithLookupEnv(i.lookupEnv))
	token, source := resolver.Resolve(i.options.Token, i.options.APIBase)
	if token != "" && auth.Expired(token, i.now()) {
		i.logger.Warn().Str("source", string(source)).Msg("bearer token has expired, server will likely reject the connection")
	}
	URL, err := i.options.Endpoint(resourceID, token)
	if err != nil {
		return nil, fmt.Errorf("failed to build endpoint for %v: %w", resourceID, err)
	}

	conn := &Connection{
		ID:         uuid.New().String(),
		ResourceID: resourceID,
		URL:        URL,
		done:       make(chan struct{}),
		toolsReady: make(chan struct{}),
	}
	logger := i.logger.With().Str("connection", conn.ID).Str("resource", resourceID).Logger()

	transportOptions := []transport.Option{
		transport.WithPolicy(i.options.Policy()),
		transport.WithLogger(logger.With().Str("component", "transport").Logger()),
	}
	if i.dialer != nil {
		transportOptions = append(transportOptions, transport.WithDialer(i.dialer))
	}
	if i.options.BearerHeader && token != "" {
		header := http.Header{}
		header.Set("Authorization", "Bearer "+token)
		transportOptions = append(transportOptions, transport.WithHeader(header))
	}
	conn.manager = transport.New(URL, transportOptions...)
	conn.session = session.New(conn.manager,
		session.WithFiller(i.filler),
		session.WithClock(i.now),
		session.WithLogger(logger.With().Str("component", "session").Logger()),
		session.WithListener(func(change *session.Change) {
			if change.Kind == session.ToolsReplaced {
				conn.markToolsReady()
			}
			if i.listener != nil {
				i.listener(conn, change)
			}
		}),
	)

	connCtx, cancel := context.WithCancel(ctx)
	conn.cancel = cancel
	conn.start(connCtx)
	i.current = conn
	i.connections.Put(conn.ID, conn)
	logger.Debug().Str("source", string(source)).Msg("inspecting resource")
	return conn, nil
}

// Current returns the live connection or nil
func (i *Inspector) Current() *Connection {
	i.mux.Lock()
	defer i.mux.Unlock()
	return i.current
}

// Lookup returns a live connection by id
func (i *Inspector) Lookup(id string) (*Connection, bool) {
	return i.connections.Get(id)
}

// Close tears down the live connection
func (i *Inspector) Close() {
	i.mux.Lock()
	defer i.mux.Unlock()
	i.release()
}

func (i *Inspector) release() {
	if i.current == nil {
		return
	}
	i.current.teardown()
	i.connections.Delete(i.current.ID)
	i.logger.Debug().Str("connection", i.current.ID).Str("resource", i.current.ResourceID).Msg("connection released")
	i.current = nil
}

func noEnv(string) (string, bool) {
	return "", false
}

// New creates an inspector. The environment is not consulted for tokens unless
// WithLookupEnv is given.
func New(options *Options, opts ...InspectorOption) *Inspector {
	if options == nil {
		options = &Options{}
	}
	options.Init()
	ret := &Inspector{
		options:     options,
		logger:      zerolog.Nop(),
		now:         time.Now,
		lookupEnv:   noEnv,
		connections: collection.NewSyncMap[string, *Connection](),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
