package storage

import (
	"context"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// OrganizationRepository manages the summary records of the map index.
type OrganizationRepository interface {
	Repository
	// PutOrganizations stores summary records. Records are stored in the
	// order given; repeated puts of the same OGRN overwrite the record but
	// keep its original position.
	PutOrganizations(ctx context.Context, orgs ...*core.Organization) error

	// GetOrganization retrieves a single summary record by OGRN.
	// Returns ErrNotFound if the record doesn't exist.
	GetOrganization(ctx context.Context, ogrn string) (*core.Organization, error)

	// ListOrganizations returns all summary records in dataset order.
	ListOrganizations(ctx context.Context) ([]*core.Organization, error)

	// CountOrganizations returns the number of stored summary records.
	CountOrganizations(ctx context.Context) (int, error)
}

// DetailRepository caches full per-organization records fetched on demand.
// The cache is append-only within one dataset snapshot: details are added as
// organizations are opened and never evicted until the snapshot changes.
type DetailRepository interface {
	Repository
	// PutDetail stores a full per-organization record.
	PutDetail(ctx context.Context, detail *core.OrganizationDetail) error

	// GetDetail retrieves a cached record by OGRN.
	// Returns ErrNotFound on a cache miss.
	GetDetail(ctx context.Context, ogrn string) (*core.OrganizationDetail, error)

	// HasDetail reports whether a record is cached, without decoding it.
	HasDetail(ctx context.Context, ogrn string) (bool, error)

	// ListDetails returns all cached records in OGRN order.
	ListDetails(ctx context.Context) ([]*core.OrganizationDetail, error)
}

// TextIndexRepository stores the flattened searchable text per organization.
type TextIndexRepository interface {
	Repository
	// PutEntries stores text entries keyed by OGRN.
	PutEntries(ctx context.Context, entries map[string]*core.TextEntry) error

	// GetEntry retrieves the text entry for one organization.
	// Returns ErrNotFound if the organization has no entry.
	GetEntry(ctx context.Context, ogrn string) (*core.TextEntry, error)

	// ListEntries returns the whole text index keyed by OGRN.
	ListEntries(ctx context.Context) (map[string]*core.TextEntry, error)
}

// SnapshotRepository pins the dataset revision the cached data was built
// from. When the stored digest no longer matches the fetched dataset, the
// cache is stale and must be reset before reuse.
type SnapshotRepository interface {
	Repository
	// PutSnapshot records the digest of the active dataset snapshot.
	PutSnapshot(ctx context.Context, digest uint64) error

	// GetSnapshot returns the stored digest.
	// Returns ErrNotFound if no snapshot has been recorded.
	GetSnapshot(ctx context.Context) (uint64, error)

	// Reset drops all cached data so a new snapshot can be loaded cleanly.
	Reset(ctx context.Context) error
}
