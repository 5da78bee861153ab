package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/semantic"
)

// MockSearcher is a test double for semantic.Searcher.
// It allows custom behavior injection via function fields.
type MockSearcher struct {
	// SearchFunc is called by Search if set.
	// If nil, uses default deterministic behavior.
	SearchFunc func(ctx context.Context, query string) (*semantic.Response, error)

	mu        sync.Mutex
	callCount int
	queries   []string
}

// NewMockSearcher creates a mock searcher with default deterministic
// behavior. Returns the concrete type so tests can reach SearchFunc,
// CallCount, and Queries.
func NewMockSearcher() *MockSearcher {
	return &MockSearcher{}
}

// Search answers with one deterministic result derived from the query, or
// delegates to SearchFunc when set. The orchestrator calls Search from a
// goroutine, so bookkeeping is locked.
func (m *MockSearcher) Search(ctx context.Context, query string) (*semantic.Response, error) {
	m.mu.Lock()
	m.callCount++
	m.queries = append(m.queries, query)
	fn := m.SearchFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query)
	}

	return &semantic.Response{
		Results: []core.SemanticResult{
			{
				ProjectID:  fmt.Sprintf("mock-%d", len(query)),
				CenterID:   "1020000000001",
				CenterName: "Мок-центр",
				Title:      query,
				Year:       "2024",
				Score:      0.5,
			},
		},
	}, nil
}

// CallCount returns the number of times Search was called.
func (m *MockSearcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Queries returns every query Search received, in call order.
func (m *MockSearcher) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queries))
	copy(out, m.queries)
	return out
}

// Reset clears the call bookkeeping and the custom function.
func (m *MockSearcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.queries = nil
	m.SearchFunc = nil
}
