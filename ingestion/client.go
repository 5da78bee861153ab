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


package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
)

// Published dataset resources, relative to the base URL.
const (
	indexPath     = "/data/moscow_rd_centers.json"
	textIndexPath = "/data/search_index.json"
	detailPathFmt = "/data/centers/%s.json"
)

// maxPayloadBytes caps one resource read. The index is the largest file and
// stays in the tens of megabytes.
const maxPayloadBytes = 256 << 20

// DatasetClient fetches the published dataset files over HTTP.
type DatasetClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ DataSource = (*DatasetClient)(nil)

// ClientOption configures a DatasetClient.
type ClientOption func(*DatasetClient)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *DatasetClient) {
		c.httpClient = httpClient
	}
}

// WithClientLogger sets the logger used for fetch diagnostics.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *DatasetClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewDatasetClient creates a client for the dataset published at baseURL.
func NewDatasetClient(baseURL string, opts ...ClientOption) (*DatasetClient, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	c := &DatasetClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// indexPayload is the envelope of the organization index file. Aggregate
// fields beyond the centers list are ignored.
type indexPayload struct {
	TotalCenters int                  `json:"total_centers"`
	Centers      []*core.Organization `json:"centers"`
}

// FetchIndex implements DataSource. The returned digest covers the raw
// bytes, so any change to the published file, reordering included, reads as
// a new dataset.
func (c *DatasetClient) FetchIndex(ctx context.Context) ([]*core.Organization, uint64, error) {
	raw, err := c.get(ctx, indexPath)
	if err != nil {
		return nil, 0, err
	}
	digest := core.DigestOf(raw)

	var payload indexPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, 0, fmt.Errorf("%w: index: %w", ErrBadPayload, err)
	}
	if len(payload.Centers) == 0 {
		return nil, 0, ErrEmptyDataset
	}

	c.logger.Debug("fetched organization index",
		"organizations", len(payload.Centers),
		"bytes", len(raw),
		"digest", digest)
	return payload.Centers, digest, nil
}

// FetchTextIndex implements DataSource.
func (c *DatasetClient) FetchTextIndex(ctx context.Context) (map[string]*core.TextEntry, error) {
	raw, err := c.get(ctx, textIndexPath)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]*core.TextEntry)
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: text index: %w", ErrBadPayload, err)
	}

	c.logger.Debug("fetched text index", "entries", len(entries), "bytes", len(raw))
	return entries, nil
}

// FetchDetail implements DataSource.
func (c *DatasetClient) FetchDetail(ctx context.Context, ogrn string) (*core.OrganizationDetail, error) {
	raw, err := c.get(ctx, fmt.Sprintf(detailPathFmt, ogrn))
	if err != nil {
		return nil, err
	}

	detail := &core.OrganizationDetail{}
	if err := json.Unmarshal(raw, detail); err != nil {
		return nil, fmt.Errorf("%w: detail %s: %w", ErrBadPayload, ogrn, err)
	}
	return detail, nil
}

func (c *DatasetClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: HTTP %d", ErrFetchFailed, path, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return raw, nil
}
