package ingestion

import "errors"

var (
	// ErrSourceRequired is returned when a loader is built without a data
	// source.
	ErrSourceRequired = errors.New("data source required")

	// ErrOrganizationRepositoryRequired is returned when an organization
	// repository is not provided.
	ErrOrganizationRepositoryRequired = errors.New("organization repository required")

	// ErrDetailRepositoryRequired is returned when a detail repository is
	// not provided.
	ErrDetailRepositoryRequired = errors.New("detail repository required")

	// ErrTextIndexRepositoryRequired is returned when a text index
	// repository is not provided.
	ErrTextIndexRepositoryRequired = errors.New("text index repository required")

	// ErrSnapshotRepositoryRequired is returned when a snapshot repository
	// is not provided.
	ErrSnapshotRepositoryRequired = errors.New("snapshot repository required")

	// ErrBaseURLRequired is returned when a dataset client is built without
	// a base URL.
	ErrBaseURLRequired = errors.New("base URL required")

	// ErrInvalidRateLimit is returned for a non-positive prefetch rate or
	// burst.
	ErrInvalidRateLimit = errors.New("rate limit must be positive")

	// ErrFetchFailed is returned when a dataset resource could not be
	// retrieved.
	ErrFetchFailed = errors.New("dataset fetch failed")

	// ErrBadPayload is returned when a dataset resource does not decode.
	ErrBadPayload = errors.New("dataset payload malformed")

	// ErrEmptyDataset is returned when the fetched index contains no
	// organizations at all.
	ErrEmptyDataset = errors.New("dataset index is empty")
)
