package semantic

import "errors"

var (
	// ErrSearcherRequired is returned when an orchestrator is built without
	// a searcher.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrEmptyQuery is returned when a search is invoked with a blank query.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrRequestFailed is returned when the remote call could not complete.
	ErrRequestFailed = errors.New("semantic search request failed")

	// ErrBadStatus is returned when the service answers with a non-success
	// HTTP status.
	ErrBadStatus = errors.New("semantic search returned non-success status")

	// ErrEmptyResponse is returned when the service answers with an empty or
	// undecodable body.
	ErrEmptyResponse = errors.New("semantic search returned an empty response")
)
