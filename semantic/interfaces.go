package semantic

import "context"

// Searcher performs one remote semantic search.
// Implementations must be thread-safe for concurrent use.
type Searcher interface {
	// Search sends the query to the remote service and returns its decoded
	// answer. The context bounds the whole call; cancellation aborts the
	// underlying request. A non-success status, an empty body, or an
	// undecodable body is an error, never a silent empty result.
	Search(ctx context.Context, query string) (*Response, error)
}
