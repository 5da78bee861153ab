// Package mock provides a test double for the semantic search service.
//
// MockSearcher implements semantic.Searcher without a live service. Tests
// can inject custom behavior through its SearchFunc field and assert call
// counts afterwards.
//
// # Usage in Tests
//
//	searcher := mock.NewMockSearcher()
//	searcher.SearchFunc = func(ctx context.Context, query string) (*semantic.Response, error) {
//	    return &semantic.Response{Results: fixtures}, nil
//	}
//
//	orch, err := semantic.NewOrchestrator(searcher)
//	...
//	count := searcher.CallCount()
//
// The default behavior, with no SearchFunc set, answers every query with a
// single deterministic result derived from the query text.
package mock
