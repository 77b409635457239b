// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config holds the process-wide settings of the REST client:
// the log sink, the process-wide proxy, default timeouts and redirect
// budget, the default User-Agent, credential lookup, the platform
// cipher policy and rate limiting.
//
// Settings are read from RESTCLIENT_* environment variables by Load,
// or taken from Default, and passed to the client explicitly.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rest-client/rest-client-sub000/transport"
)

// Prefix is the environment variable prefix read by Load.
const Prefix = "restclient"

// DefaultUserAgent is sent when no User-Agent header is given.
const DefaultUserAgent = "rest-client/2.1 (Go)"

// Config is the process-wide configuration of a client.
type Config struct {
	// Log is the log sink: "stdout", "stderr", a file path, or empty
	// for no logging. RESTCLIENT_LOG.
	Log string
	// Proxy is the process-wide proxy URL. RESTCLIENT_PROXY.
	Proxy string
	// Direct disables proxies, including those from the standard proxy
	// environment variables, unless a request names one.
	// RESTCLIENT_DIRECT.
	Direct bool
	// OpenTimeout is the default open timeout. Zero disables it.
	// RESTCLIENT_OPEN_TIMEOUT.
	OpenTimeout time.Duration `split_words:"true" default:"30s"`
	// ReadTimeout is the default read timeout. Zero disables it.
	// RESTCLIENT_READ_TIMEOUT.
	ReadTimeout time.Duration `split_words:"true" default:"60s"`
	// MaxRedirects is the default redirect budget.
	// RESTCLIENT_MAX_REDIRECTS.
	MaxRedirects int `split_words:"true" default:"10"`
	// UserAgent is the default User-Agent header.
	// RESTCLIENT_USER_AGENT.
	UserAgent string `split_words:"true" default:"rest-client/2.1 (Go)"`
	// Netrc overrides the path of the netrc file. RESTCLIENT_NETRC.
	Netrc string
	// DisableNetrc turns off netrc credential lookup.
	// RESTCLIENT_DISABLE_NETRC.
	DisableNetrc bool `split_words:"true"`
	// DefaultCiphers is the platform default cipher list, by suite
	// name. Empty means the crypto/tls default.
	// RESTCLIENT_DEFAULT_CIPHERS.
	DefaultCiphers []string `split_words:"true"`
	// RateLimit caps wire exchanges per second. Zero means no limit.
	// RESTCLIENT_RATE_LIMIT.
	RateLimit float64 `split_words:"true"`
	// RateBurst is the burst allowed by RateLimit.
	// RESTCLIENT_RATE_BURST.
	RateBurst int `split_words:"true" default:"1"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("restclient/config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads the configuration from the environment, or
// returns Default if it is invalid.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns the default configuration without consulting the
// environment.
func Default() *Config {
	return &Config{
		OpenTimeout:  30 * time.Second,
		ReadTimeout:  60 * time.Second,
		MaxRedirects: 10,
		UserAgent:    DefaultUserAgent,
		RateBurst:    1,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.MaxRedirects < 0:
		return fmt.Errorf("restclient/config: max redirects must be non-negative, got %d", c.MaxRedirects)
	case c.OpenTimeout < 0:
		return fmt.Errorf("restclient/config: open timeout must be non-negative, got %s", c.OpenTimeout)
	case c.ReadTimeout < 0:
		return fmt.Errorf("restclient/config: read timeout must be non-negative, got %s", c.ReadTimeout)
	case c.RateLimit < 0:
		return fmt.Errorf("restclient/config: rate limit must be non-negative, got %g", c.RateLimit)
	}
	if _, err := transport.ParseCiphers(c.DefaultCiphers); err != nil {
		return fmt.Errorf("restclient/config: %w", err)
	}
	return nil
}

// ProxySetting returns the process-wide level of the proxy precedence
// chain: "no proxy" if Direct is set, the Proxy URL if one is given,
// and otherwise nil so that the environment decides.
func (c *Config) ProxySetting() transport.ProxySetting {
	switch {
	case c.Direct:
		return transport.Direct()
	case c.Proxy != "":
		return transport.Via(c.Proxy)
	default:
		return nil
	}
}

// Ciphers returns DefaultCiphers as suite IDs. Invalid names are
// rejected by Validate, so they are ignored here.
func (c *Config) Ciphers() []uint16 {
	ids, _ := transport.ParseCiphers(c.DefaultCiphers)
	return ids
}
