package store

import (
	"strings"
	"sync"

	"github.com/viant/afs/url"
	"golang.org/x/oauth2"
)

const defaultScheme = "https"

// Store is a pluggable persistence layer for bearer tokens.
type Store interface {
	AddToken(baseURL string, token *oauth2.Token) error
	LookupToken(baseURL string) (*oauth2.Token, bool)
}

// Key normalizes an API location to the store key: scheme and host, no path.
func Key(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return ""
	}
	base, _ := url.Base(baseURL, defaultScheme)
	return strings.TrimRight(base, "/")
}

type MemoryStoreOption func(*memoryStore)

// WithToken seeds the store with a token for a base URL
func WithToken(baseURL string, token *oauth2.Token) MemoryStoreOption {
	return func(m *memoryStore) {
		m.tokens[Key(baseURL)] = token
	}
}

type memoryStore struct {
	mu     sync.RWMutex
	tokens map[string]*oauth2.Token
}

func (m *memoryStore) LookupToken(baseURL string) (*oauth2.Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	token, ok := m.tokens[Key(baseURL)]
	return token, ok
}

func (m *memoryStore) AddToken(baseURL string, token *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[Key(baseURL)] = token
	return nil
}

func NewMemoryStore(options ...MemoryStoreOption) Store {
	ret := &memoryStore{tokens: map[string]*oauth2.Token{}}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
