package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/viant/afs"
	"golang.org/x/oauth2"
)

// FileStore persists tokens as a JSON document at an afs location, so that a
// token saved once survives CLI restarts.
type FileStore struct {
	mu     sync.RWMutex
	fs     afs.Service
	URL    string
	tokens map[string]*oauth2.Token
}

type fileSnapshot struct {
	Tokens map[string]*oauth2.Token `json:"tokens"`
}

func (f *FileStore) LookupToken(baseURL string) (*oauth2.Token, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	token, ok := f.tokens[Key(baseURL)]
	return token, ok
}

func (f *FileStore) AddToken(baseURL string, token *oauth2.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[Key(baseURL)] = token
	return f.save(context.Background())
}

func (f *FileStore) save(ctx context.Context) error {
	data, err := json.MarshalIndent(fileSnapshot{Tokens: f.tokens}, "", "  ")
	if err != nil {
		return err
	}
	if err = f.fs.Upload(ctx, f.URL, 0o600, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save tokens to %v: %w", f.URL, err)
	}
	return nil
}

func (f *FileStore) load(ctx context.Context) error {
	exists, err := f.fs.Exists(ctx, f.URL)
	if err != nil || !exists {
		return err
	}
	data, err := f.fs.DownloadWithURL(ctx, f.URL)
	if err != nil {
		return fmt.Errorf("failed to load tokens from %v: %w", f.URL, err)
	}
	var snap fileSnapshot
	if err = json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("invalid token store %v: %w", f.URL, err)
	}
	for k, v := range snap.Tokens {
		f.tokens[Key(k)] = v
	}
	return nil
}

// NewFileStore creates a store persisting tokens at URL, loading existing ones.
func NewFileStore(ctx context.Context, URL string) (*FileStore, error) {
	ret := &FileStore{
		fs:     afs.New(),
		URL:    URL,
		tokens: map[string]*oauth2.Token{},
	}
	if err := ret.load(ctx); err != nil {
		return nil, err
	}
	return ret, nil
}
