package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/storage"
)

// Warm-up defaults. The dataset host serves static files, so a modest rate
// keeps prefetching polite without delaying the first selections much.
const (
	defaultWarmRate  rate.Limit = 8
	defaultWarmBurst            = 4
)

// Loader moves the published dataset into the session store and keeps the
// store consistent with the upstream snapshot. It is safe for concurrent
// use once constructed.
type Loader struct {
	source        DataSource
	organizations storage.OrganizationRepository
	details       storage.DetailRepository
	texts         storage.TextIndexRepository
	snapshots     storage.SnapshotRepository
	pool          *ants.Pool
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithPoolSize sets the worker pool size used for detail prefetching.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}

		if l.pool != nil {
			l.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		l.pool = pool
		return nil
	}
}

// WithRateLimit caps the request rate of detail prefetching.
func WithRateLimit(rps float64, burst int) Option {
	return func(l *Loader) error {
		if rps <= 0 || burst < 1 {
			return ErrInvalidRateLimit
		}
		l.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a loader that fills the given repositories from source.
func NewLoader(
	source DataSource,
	organizations storage.OrganizationRepository,
	details storage.DetailRepository,
	texts storage.TextIndexRepository,
	snapshots storage.SnapshotRepository,
	opts ...Option,
) (*Loader, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if organizations == nil {
		return nil, ErrOrganizationRepositoryRequired
	}
	if details == nil {
		return nil, ErrDetailRepositoryRequired
	}
	if texts == nil {
		return nil, ErrTextIndexRepositoryRequired
	}
	if snapshots == nil {
		return nil, ErrSnapshotRepositoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	l := &Loader{
		source:        source,
		organizations: organizations,
		details:       details,
		texts:         texts,
		snapshots:     snapshots,
		pool:          pool,
		limiter:       rate.NewLimiter(defaultWarmRate, defaultWarmBurst),
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(l); optErr != nil {
			l.Release()
			return nil, optErr
		}
	}

	return l, nil
}

// LoadResult is the outcome of one dataset load.
type LoadResult struct {
	// Organizations holds the valid summary records in dataset order.
	Organizations []*core.Organization

	// Entries holds the lowercased searchable texts keyed by OGRN.
	Entries map[string]*core.TextEntry

	// Digest identifies the loaded dataset revision.
	Digest uint64

	// Refreshed reports whether the store was rewritten. It is false when
	// the upstream snapshot matched the cached one.
	Refreshed bool

	// Dropped counts index records that failed validation.
	Dropped int
}

// Load fetches the organization index and the text index, validates them
// and reconciles the session store with the fetched snapshot. When the
// upstream digest matches the stored one the store is left untouched, which
// preserves every detail record cached so far. A digest change resets the
// store before the new snapshot is written.
func (l *Loader) Load(ctx context.Context) (*LoadResult, error) {
	var (
		orgs    []*core.Organization
		digest  uint64
		entries map[string]*core.TextEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orgs, digest, err = l.source.FetchIndex(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = l.source.FetchTextIndex(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	valid := make([]*core.Organization, 0, len(orgs))
	dropped := 0
	for _, org := range orgs {
		if err := core.ValidateOrganization(org); err != nil {
			dropped++
			l.logger.Warn("dropping invalid organization", "err", err)
			continue
		}
		valid = append(valid, org)
	}
	if len(valid) == 0 {
		return nil, ErrEmptyDataset
	}

	result := &LoadResult{
		Organizations: valid,
		Entries:       lowercaseEntries(entries),
		Digest:        digest,
		Dropped:       dropped,
	}

	stored, err := l.snapshots.GetSnapshot(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// Empty store, first load.
	case err != nil:
		return nil, err
	case stored == digest:
		l.logger.Debug("dataset unchanged", "digest", digest)
		return result, nil
	default:
		l.logger.Info("dataset changed, resetting store",
			"stored", stored, "fetched", digest)
		if resetErr := l.snapshots.Reset(ctx); resetErr != nil {
			return nil, resetErr
		}
	}

	if err := l.organizations.PutOrganizations(ctx, valid...); err != nil {
		return nil, err
	}
	if err := l.texts.PutEntries(ctx, result.Entries); err != nil {
		return nil, err
	}
	if err := l.snapshots.PutSnapshot(ctx, digest); err != nil {
		return nil, err
	}
	result.Refreshed = true

	l.logger.Info("dataset loaded",
		"organizations", len(valid),
		"dropped", dropped,
		"digest", digest)
	return result, nil
}

// LoadCached rebuilds a LoadResult from the session store without touching
// the network. It returns storage.ErrNotFound when no snapshot has been
// loaded into this store yet.
func (l *Loader) LoadCached(ctx context.Context) (*LoadResult, error) {
	digest, err := l.snapshots.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	orgs, err := l.organizations.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		return nil, storage.ErrNotFound
	}

	entries, err := l.texts.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("serving cached dataset",
		"organizations", len(orgs), "digest", digest)
	return &LoadResult{
		Organizations: orgs,
		Entries:       entries,
		Digest:        digest,
	}, nil
}

// GetDetail returns the full record for one organization, preferring the
// session store and falling back to the source. Fetched records are cached;
// a cache write failure is logged, the record is still returned.
func (l *Loader) GetDetail(ctx context.Context, ogrn string) (*core.OrganizationDetail, error) {
	detail, err := l.details.GetDetail(ctx, ogrn)
	if err == nil {
		return detail, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	detail, err = l.source.FetchDetail(ctx, ogrn)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateDetail(detail); err != nil {
		return nil, err
	}

	if err := l.details.PutDetail(ctx, detail); err != nil {
		l.logger.Warn("caching detail failed", "ogrn", ogrn, "err", err)
	}
	return detail, nil
}

// WarmStats summarizes one warm-up run.
type WarmStats struct {
	Fetched int // records fetched and cached
	Skipped int // records already cached
	Failed  int // records that could not be fetched or stored
}

// WarmDetails prefetches detail records so that later selections are served
// from the store. OGRNs already cached are skipped. Individual failures are
// logged and counted but do not fail the warm-up; cancelling the context
// stops it after the in-flight fetches finish.
func (l *Loader) WarmDetails(ctx context.Context, ogrns []string) (*WarmStats, error) {
	var (
		wg      sync.WaitGroup
		fetched atomic.Int64
		failed  atomic.Int64
		skipped int
	)

	for _, ogrn := range ogrns {
		if ctx.Err() != nil {
			break
		}

		has, err := l.details.HasDetail(ctx, ogrn)
		if err != nil {
			failed.Add(1)
			l.logger.Warn("detail cache check failed", "ogrn", ogrn, "err", err)
			continue
		}
		if has {
			skipped++
			continue
		}

		wg.Add(1)
		if err := l.pool.Submit(func() {
			defer wg.Done()
			if err := l.warmOne(ctx, ogrn); err != nil {
				failed.Add(1)
				l.logger.Warn("detail prefetch failed", "ogrn", ogrn, "err", err)
				return
			}
			fetched.Add(1)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}

	wg.Wait()

	stats := &WarmStats{
		Fetched: int(fetched.Load()),
		Skipped: skipped,
		Failed:  int(failed.Load()),
	}
	l.logger.Info("detail warm-up finished",
		"fetched", stats.Fetched,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
	return stats, ctx.Err()
}

func (l *Loader) warmOne(ctx context.Context, ogrn string) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}

	detail, err := l.source.FetchDetail(ctx, ogrn)
	if err != nil {
		return err
	}
	if err := core.ValidateDetail(detail); err != nil {
		return err
	}
	return l.details.PutDetail(ctx, detail)
}

// Release releases the worker pool.
// The loader should not be used after calling Release.
func (l *Loader) Release() {
	if l.pool != nil {
		l.pool.Release()
	}
}

// lowercaseEntries folds every searchable text once at load time so query
// matching never case-folds per keystroke.
func lowercaseEntries(entries map[string]*core.TextEntry) map[string]*core.TextEntry {
	lowered := make(map[string]*core.TextEntry, len(entries))
	for ogrn, entry := range entries {
		if entry == nil {
			continue
		}
		le := &core.TextEntry{
			Projects: make([]string, len(entry.Projects)),
			RIDs:     make([]string, len(entry.RIDs)),
		}
		for i, text := range entry.Projects {
			le.Projects[i] = strings.ToLower(text)
		}
		for i, text := range entry.RIDs {
			le.RIDs[i] = strings.ToLower(text)
		}
		lowered[ogrn] = le
	}
	return lowered
}
