package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/mcpinspect/auth/store"
)

// EnvToken names the environment variable consulted for a bearer token.
const EnvToken = "MCPINSPECT_TOKEN"

// Source identifies where a resolved token came from.
type Source string

const (
	SourceNone     Source = ""
	SourceExplicit Source = "explicit"
	SourceEnv      Source = "env"
	SourceStore    Source = "store"
)

// ErrNoExpiry is returned for tokens that are not JWTs carrying an exp claim.
var ErrNoExpiry = errors.New("auth: token has no expiry")

// Resolver picks a bearer token for an API base location.
type Resolver struct {
	store  store.Store
	lookup func(key string) (string, bool)
}

// Resolve returns the first non-empty token of explicit, environment and store.
// An empty token with SourceNone is valid: the channel URL then carries token=.
func (r *Resolver) Resolve(explicit, baseURL string) (string, Source) {
	if token := strings.TrimSpace(explicit); token != "" {
		return token, SourceExplicit
	}
	if value, ok := r.lookup(EnvToken); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value), SourceEnv
	}
	if r.store != nil && baseURL != "" {
		if token, ok := r.store.LookupToken(baseURL); ok && token != nil && token.AccessToken != "" {
			return token.AccessToken, SourceStore
		}
	}
	return "", SourceNone
}

// Expiry returns the exp claim of a JWT without verifying its signature.
func Expiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// Expired reports whether a JWT's exp claim is before now; opaque tokens are never expired.
func Expired(token string, now time.Time) bool {
	expiry, err := Expiry(token)
	if err != nil {
		return false
	}
	return expiry.Before(now)
}

// New creates a resolver
func New(options ...Option) *Resolver {
	ret := &Resolver{lookup: os.LookupEnv}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
