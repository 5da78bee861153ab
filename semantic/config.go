// Copyright 2025 RnD Map contributors
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


package semantic

import (
	"errors"
	"strings"
	"time"
)

// DefaultBaseURL is the local development server the semantic service runs
// on when no deployment is configured.
const DefaultBaseURL = "http://localhost:8000"

// ServiceURLOverride is a build-time override for the service base URL,
// intended for deployment builds:
//
//	go build -ldflags "-X .../semantic.ServiceURLOverride=https://api.example.org"
var ServiceURLOverride string

// Config holds configuration for the semantic search client.
type Config struct {
	// BaseURL is the base URL of the semantic search API, without the
	// /ai-search path. Example: "http://localhost:8000"
	BaseURL string

	// TopK is how many results one query asks the service for.
	// Default: 10
	TopK int

	// UseRewrite asks the service to rewrite the query into technical
	// terminology before embedding it.
	UseRewrite bool

	// UseRerank asks the service to rerank retrieved candidates.
	UseRerank bool

	// Timeout caps one remote call end to end; the request is aborted when
	// it fires, not merely ignored. Default: 60s
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBaseURL sets the service base URL.
func WithBaseURL(baseURL string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// WithTopK sets how many results one query asks for.
func WithTopK(topK int) ConfigOption {
	return func(c *Config) {
		c.TopK = topK
	}
}

// WithRewrite toggles server-side query rewriting.
func WithRewrite(enabled bool) ConfigOption {
	return func(c *Config) {
		c.UseRewrite = enabled
	}
}

// WithRerank toggles server-side candidate reranking.
func WithRerank(enabled bool) ConfigOption {
	return func(c *Config) {
		c.UseRerank = enabled
	}
}

// WithRequestTimeout sets the per-call ceiling.
func WithRequestTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// DefaultConfig returns a Config with defaults for a local service. The
// build-time override wins over the development fallback when set.
func DefaultConfig() *Config {
	baseURL := DefaultBaseURL
	if ServiceURLOverride != "" {
		baseURL = ServiceURLOverride
	}
	return &Config{
		BaseURL:    baseURL,
		TopK:       10,
		UseRewrite: true,
		UseRerank:  true,
		Timeout:    60 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBaseURL("https://api.example.org"),
//	    WithTopK(20),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize brings the configuration into canonical form. A bare hostname
// without a scheme is coerced to HTTPS, except localhost which stays plain
// HTTP, and a trailing slash is dropped so path joining stays predictable.
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.BaseURL == "" || strings.Contains(c.BaseURL, "://") {
		return
	}
	if strings.HasPrefix(c.BaseURL, "localhost") || strings.HasPrefix(c.BaseURL, "127.0.0.1") {
		c.BaseURL = "http://" + c.BaseURL
		return
	}
	c.BaseURL = "https://" + c.BaseURL
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.BaseURL == "" {
		return errors.New("semantic config: BaseURL is required")
	}
	if c.TopK < 1 {
		return errors.New("semantic config: TopK must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("semantic config: Timeout must be positive")
	}
	return nil
}
