// Copyright 2026 Poiesic Systems
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


package opensearch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/poiesic/rankfuse/backend"
	"github.com/poiesic/rankfuse/core"
)

// Config holds connection settings for an OpenSearch cluster.
type Config struct {
	// Addresses lists the cluster node URLs.
	// Example: []string{"http://localhost:9200"}
	Addresses []string

	// Username and Password for basic auth. Empty means no auth, which
	// matches a cluster running with security disabled.
	Username string
	Password string

	// InsecureSkipTLS disables certificate verification. Intended for
	// local clusters with self-signed certificates.
	InsecureSkipTLS bool

	// RequestTimeout bounds every individual request to the cluster.
	RequestTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithAddresses sets the cluster node URLs.
func WithAddresses(addresses ...string) ConfigOption {
	return func(c *Config) {
		c.Addresses = addresses
	}
}

// WithBasicAuth sets basic auth credentials.
func WithBasicAuth(username, password string) ConfigOption {
	return func(c *Config) {
		c.Username = username
		c.Password = password
	}
}

// WithInsecureTLS disables TLS certificate verification.
func WithInsecureTLS() ConfigOption {
	return func(c *Config) {
		c.InsecureSkipTLS = true
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

// DefaultConfig returns a Config for a local unsecured cluster.
func DefaultConfig() *Config {
	return &Config{
		Addresses:      []string{"http://localhost:9200"},
		RequestTimeout: 30 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if len(c.Addresses) == 0 {
		return fmt.Errorf("%w: opensearch config: at least one address is required", core.ErrMalformedConfig)
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	return nil
}

// Client implements backend.Backend against an OpenSearch cluster.
// It is safe for concurrent use once constructed.
type Client struct {
	client  *opensearchgo.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Statically ensure Client satisfies the full backend surface.
var _ backend.Backend = (*Client)(nil)

// NewClient connects to the cluster described by config.
// The connection itself is lazy; failures surface on the first request.
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var transport http.RoundTripper
	if config.InsecureSkipTLS {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	client, err := opensearchgo.NewClient(opensearchgo.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
	}

	return &Client{
		client:  client,
		timeout: config.RequestTimeout,
		logger:  slog.Default().With("component", "opensearch-client"),
	}, nil
}

// requestContext bounds one request to the cluster with the configured
// RequestTimeout. The caller's deadline still applies when it is shorter.
func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Ping verifies the cluster is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	response, err := opensearchapi.PingRequest{}.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrBackendUnavailable, err)
	}
	defer response.Body.Close()

	if response.IsError() {
		return fmt.Errorf("%w: ping returned status %d", core.ErrBackendUnavailable, response.StatusCode)
	}
	return nil
}

// classifyResponse maps an OpenSearch error response to the error taxonomy.
// 404 on an index operation means the index is missing, which callers treat
// as a benign empty result. Everything else is a backend failure.
func classifyResponse(response *opensearchapi.Response, operation string) error {
	if !response.IsError() {
		return nil
	}

	payload, _ := io.ReadAll(io.LimitReader(response.Body, 512))
	if response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s: %s", core.ErrIndexNotFound, operation, string(payload))
	}
	return fmt.Errorf("%w: %s: status %d: %s", core.ErrBackendUnavailable, operation, response.StatusCode, string(payload))
}
