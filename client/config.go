// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package client

import (
	"strings"
	"time"
)

// Config holds configuration for the search client.
type Config struct {
	// Endpoint is the upstream search service URL.
	Endpoint string

	// APIKey is the static per-process credential sent on every request.
	// A missing key is not a construction error: searches fail fast with
	// an explanatory error before any network call is attempted.
	APIKey string

	// CacheEnabled toggles the result cache.
	// Default: true
	CacheEnabled bool

	// CacheTTL bounds the staleness of served cache entries.
	// Default: 5 minutes
	CacheTTL time.Duration

	// MaxRequestsPerSecond is the shared token-bucket capacity for
	// outbound calls. Values below 1 are raised to 1.
	// Default: 10
	MaxRequestsPerSecond int

	// MaxRetries is the number of retries after the initial attempt for
	// transient (429/503) upstream responses.
	// Default: 3
	MaxRetries int

	// RetryBaseDelay is the base for exponential backoff between retries.
	// Default: 500ms
	RetryBaseDelay time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEndpoint sets the upstream service URL.
func WithEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.Endpoint = endpoint
	}
}

// WithAPIKey sets the upstream credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithCache toggles the result cache and sets its TTL.
func WithCache(enabled bool, ttl time.Duration) ConfigOption {
	return func(c *Config) {
		c.CacheEnabled = enabled
		if ttl > 0 {
			c.CacheTTL = ttl
		}
	}
}

// WithMaxRequestsPerSecond sets the outbound rate limit.
func WithMaxRequestsPerSecond(rps int) ConfigOption {
	return func(c *Config) {
		c.MaxRequestsPerSecond = rps
	}
}

// WithRetry sets the retry bound and backoff base delay.
func WithRetry(maxRetries int, baseDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
		if baseDelay > 0 {
			c.RetryBaseDelay = baseDelay
		}
	}
}

// DefaultConfig returns a Config with sensible defaults for a
// customer-facing site: short TTL, modest rate limit, few retries.
func DefaultConfig() *Config {
	return &Config{
		CacheEnabled:         true,
		CacheTTL:             5 * time.Minute,
		MaxRequestsPerSecond: 10,
		MaxRetries:           3,
		RetryBaseDelay:       500 * time.Millisecond,
	}
}

// NewConfig creates a Config with default values and applies the provided
// options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks and normalizes the configuration.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}
	c.Endpoint = strings.TrimRight(strings.TrimSpace(c.Endpoint), "/")
	if c.Endpoint == "" {
		return ErrMissingEndpoint
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.MaxRequestsPerSecond < 1 {
		c.MaxRequestsPerSecond = 1
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = 500 * time.Millisecond
	}
	return nil
}
