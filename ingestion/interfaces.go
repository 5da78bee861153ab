package ingestion

import (
	"context"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
)

// DataSource retrieves the published dataset resources.
// Implementations must be thread-safe for concurrent use.
type DataSource interface {
	// FetchIndex retrieves every organization summary in dataset order,
	// together with a digest of the raw payload used for change detection.
	FetchIndex(ctx context.Context) ([]*core.Organization, uint64, error)

	// FetchTextIndex retrieves the flattened project and IP texts keyed by
	// OGRN.
	FetchTextIndex(ctx context.Context) (map[string]*core.TextEntry, error)

	// FetchDetail retrieves one organization's full detail record.
	FetchDetail(ctx context.Context, ogrn string) (*core.OrganizationDetail, error)
}
