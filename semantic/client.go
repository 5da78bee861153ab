package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// maxResponseBytes caps how much of a response body gets read. The service
// returns at most a few dozen results, so anything larger is a fault.
const maxResponseBytes = 4 << 20

// Client calls the semantic search service over HTTP.
type Client struct {
	baseURL    string
	topK       int
	useRewrite bool
	useRerank  bool
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client beyond its Config.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClientLogger sets the logger used for request diagnostics.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a semantic search client from the configuration.
//
// Returns the Searcher interface so callers stay decoupled from the HTTP
// implementation; tests inject mock.Searcher the same way.
func NewClient(cfg *Config, opts ...ClientOption) (Searcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:    cfg.BaseURL,
		topK:       cfg.TopK,
		useRewrite: cfg.UseRewrite,
		useRerank:  cfg.UseRerank,
		// Backstop only; the orchestrator aborts via context well before a
		// stuck transport would give up on its own.
		httpClient: &http.Client{Timeout: 2 * cfg.Timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Search implements Searcher against the POST /ai-search endpoint.
func (c *Client) Search(ctx context.Context, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	body, err := json.Marshal(Request{
		Query:      query,
		TopK:       c.topK,
		UseRewrite: c.useRewrite,
		UseRerank:  c.useRerank,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ai-search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("semantic search rejected",
			"status", resp.StatusCode,
			"body_bytes", len(respBody))
		return nil, fmt.Errorf("%w: HTTP %d", ErrBadStatus, resp.StatusCode)
	}
	if len(respBody) == 0 {
		return nil, ErrEmptyResponse
	}

	var decoded Response
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmptyResponse, err)
	}

	c.logger.Debug("semantic search answered",
		"query", query,
		"results", len(decoded.Results),
		"rewritten", decoded.RewrittenQuery != "")
	return &decoded, nil
}
