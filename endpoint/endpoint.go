package endpoint

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	// DefaultPath is the control channel route template; {id} is the resource id.
	DefaultPath = "/api/v1/nodes/{id}/ws"
	// DefaultHost is used when no API base location is configured.
	DefaultHost = "localhost:8080"

	idPlaceholder = "{id}"
)

// ErrResourceID is returned when no resource id was supplied.
var ErrResourceID = errors.New("endpoint: resource id was empty")

// Config describes where the control channel lives.
type Config struct {
	// Origin is the location the inspector is served from, only its scheme is used.
	Origin string
	// APIBase is the backend API base location, e.g. https://api.example.com.
	APIBase string
	// Path overrides DefaultPath.
	Path string
	// ResourceID identifies the inspected resource.
	ResourceID string
	// Token is the bearer token, carried as the token query parameter even when empty.
	Token string
}

// Build returns the control channel URL for the config.
func Build(config Config) (string, error) {
	if strings.TrimSpace(config.ResourceID) == "" {
		return "", ErrResourceID
	}
	base, query, err := baseURL(config)
	if err != nil {
		return "", err
	}
	path := config.Path
	if path == "" {
		path = DefaultPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	path = strings.ReplaceAll(path, idPlaceholder, url.PathEscape(config.ResourceID))
	token := "token=" + url.QueryEscape(config.Token)
	if query != "" {
		return base + path + "?" + query + "&" + token, nil
	}
	return base + path + "?" + token, nil
}

// baseURL returns the socket base and any query carried by the API base.
func baseURL(config Config) (string, string, error) {
	if config.APIBase == "" {
		return originScheme(config.Origin) + "://" + DefaultHost, "", nil
	}
	location, err := url.Parse(strings.TrimSpace(config.APIBase))
	if err != nil {
		return "", "", fmt.Errorf("endpoint: invalid API base %v: %w", config.APIBase, err)
	}
	switch location.Scheme {
	case "http":
		location.Scheme = "ws"
	case "https":
		location.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", "", fmt.Errorf("endpoint: unsupported API base scheme %q in %v", location.Scheme, config.APIBase)
	}
	if location.Host == "" {
		return "", "", fmt.Errorf("endpoint: API base %v has no host", config.APIBase)
	}
	return location.Scheme + "://" + location.Host + strings.TrimRight(location.Path, "/"), location.RawQuery, nil
}

func originScheme(origin string) string {
	location, err := url.Parse(origin)
	if err == nil && location.Scheme == "https" {
		return "wss"
	}
	return "ws"
}
