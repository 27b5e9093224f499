package mcpinspect

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/viant/afs"
	"github.com/viant/mcpinspect/endpoint"
	"github.com/viant/mcpinspect/transport"
	"gopkg.in/yaml.v3"
)

// Options defines options for inspecting a resource control channel.
type Options struct {
	APIBase       string `yaml:"apiBase,omitempty" json:"apiBase,omitempty" toml:"apiBase" short:"a" long:"api" description:"backend API base location, e.g. https://api.example.com"`
	Origin        string `yaml:"origin,omitempty" json:"origin,omitempty" toml:"origin" long:"origin" description:"inspector origin, selects wss when https and no API base is set"`
	Path          string `yaml:"path,omitempty" json:"path,omitempty" toml:"path" long:"path" description:"control channel path template, {id} is replaced with the resource id"`
	Token         string `yaml:"token,omitempty" json:"token,omitempty" toml:"token" short:"t" long:"token" description:"bearer token"`
	TokenStoreURL string `yaml:"tokenStoreURL,omitempty" json:"tokenStoreURL,omitempty" toml:"tokenStoreURL" long:"token-store" description:"token store location"`
	BearerHeader  bool   `yaml:"bearerHeader,omitempty" json:"bearerHeader,omitempty" toml:"bearerHeader" long:"bearer-header" description:"also send the token as Authorization header"`
	MaxAttempts   *int   `yaml:"maxAttempts,omitempty" json:"maxAttempts,omitempty" toml:"maxAttempts" long:"max-attempts" description:"reconnect attempts before giving up"`
	IntervalMs    int    `yaml:"intervalMs,omitempty" json:"intervalMs,omitempty" toml:"intervalMs" long:"interval" description:"reconnect interval in milliseconds"`
	LogLevel      string `yaml:"logLevel,omitempty" json:"logLevel,omitempty" toml:"logLevel" long:"log-level" description:"log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"disabled"`
}

// Init sets defaults
func (o *Options) Init() {
	if o.Path == "" {
		o.Path = endpoint.DefaultPath
	}
	if o.MaxAttempts == nil {
		maxAttempts := transport.DefaultMaxAttempts
		o.MaxAttempts = &maxAttempts
	}
	if o.IntervalMs <= 0 {
		o.IntervalMs = int(transport.DefaultInterval / time.Millisecond)
	}
	if o.LogLevel == "" {
		o.LogLevel = "info"
	}
}

// Policy returns the reconnect policy
func (o *Options) Policy() transport.Policy {
	o.Init()
	return transport.Policy{MaxAttempts: *o.MaxAttempts, Interval: time.Duration(o.IntervalMs) * time.Millisecond}
}

// Endpoint returns the control channel URL for a resource and token
func (o *Options) Endpoint(resourceID, token string) (string, error) {
	return endpoint.Build(endpoint.Config{
		Origin:     o.Origin,
		APIBase:    o.APIBase,
		Path:       o.Path,
		ResourceID: resourceID,
		Token:      token,
	})
}

// Merge copies fields set on overrides over o
func (o *Options) Merge(overrides *Options) {
	if overrides == nil {
		return
	}
	if overrides.APIBase != "" {
		o.APIBase = overrides.APIBase
	}
	if overrides.Origin != "" {
		o.Origin = overrides.Origin
	}
	if overrides.Path != "" {
		o.Path = overrides.Path
	}
	if overrides.Token != "" {
		o.Token = overrides.Token
	}
	if overrides.TokenStoreURL != "" {
		o.TokenStoreURL = overrides.TokenStoreURL
	}
	if overrides.BearerHeader {
		o.BearerHeader = true
	}
	if overrides.MaxAttempts != nil {
		maxAttempts := *overrides.MaxAttempts
		o.MaxAttempts = &maxAttempts
	}
	if overrides.IntervalMs > 0 {
		o.IntervalMs = overrides.IntervalMs
	}
	if overrides.LogLevel != "" {
		o.LogLevel = overrides.LogLevel
	}
}

// LoadOptions loads options from a YAML, TOML or JSON document at URL
func LoadOptions(ctx context.Context, URL string) (*Options, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load options %v: %w", URL, err)
	}
	options := &Options{}
	switch strings.ToLower(path.Ext(URL)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, options)
	case ".toml":
		err = toml.Unmarshal(data, options)
	default:
		err = json.Unmarshal(data, options)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid options %v: %w", URL, err)
	}
	options.Init()
	return options, nil
}
