package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/storage"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/storage/badger"
)

// fakeSource implements DataSource for testing. Unset funcs serve a small
// two-organization dataset.
type fakeSource struct {
	indexFunc  func(ctx context.Context) ([]*core.Organization, uint64, error)
	textFunc   func(ctx context.Context) (map[string]*core.TextEntry, error)
	detailFunc func(ctx context.Context, ogrn string) (*core.OrganizationDetail, error)

	mu          sync.Mutex
	detailCalls []string
}

func testOrganizations() []*core.Organization {
	return []*core.Organization{
		{OGRN: "1027700012345", Name: "Федеральный исследовательский центр химической физики", ShortName: "ФИЦ ХФ", ProjectCount: 4, RIDCount: 3, TotalFunding: 900000.5},
		{OGRN: "1037700054321", Name: "Институт прикладной математики", ShortName: "ИПМ", ProjectCount: 3, RIDCount: 2, TotalFunding: 334567.3},
	}
}

func testEntries() map[string]*core.TextEntry {
	return map[string]*core.TextEntry{
		"1027700012345": {
			Projects: []string{"Разработка КАТАЛИЗАТОРОВ окисления метана"},
			RIDs:     []string{"База Данных кинетических констант"},
		},
		"1037700054321": {
			Projects: []string{"Численное моделирование траекторий"},
		},
	}
}

func (s *fakeSource) FetchIndex(ctx context.Context) ([]*core.Organization, uint64, error) {
	if s.indexFunc != nil {
		return s.indexFunc(ctx)
	}
	return testOrganizations(), 42, nil
}

func (s *fakeSource) FetchTextIndex(ctx context.Context) (map[string]*core.TextEntry, error) {
	if s.textFunc != nil {
		return s.textFunc(ctx)
	}
	return testEntries(), nil
}

func (s *fakeSource) FetchDetail(ctx context.Context, ogrn string) (*core.OrganizationDetail, error) {
	s.mu.Lock()
	s.detailCalls = append(s.detailCalls, ogrn)
	s.mu.Unlock()

	if s.detailFunc != nil {
		return s.detailFunc(ctx, ogrn)
	}
	return &core.OrganizationDetail{
		Organization: core.Organization{OGRN: ogrn, Name: "Организация " + ogrn},
		Projects:     []core.Project{{RegistrationNumber: "АААА-А21-000000000001-0", Name: "Проект"}},
	}, nil
}

func (s *fakeSource) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.detailCalls)
}

func newTestLoader(t *testing.T, source DataSource, opts ...Option) (*Loader, storage.DetailRepository) {
	t.Helper()

	orgs, details, texts, snapshots, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	loader, err := NewLoader(source, orgs, details, texts, snapshots, opts...)
	require.NoError(t, err)
	t.Cleanup(loader.Release)

	return loader, details
}

func TestNewLoader(t *testing.T) {
	orgs, details, texts, snapshots, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	tests := []struct {
		name    string
		build   func() (*Loader, error)
		wantErr error
	}{
		{
			name:    "nil source",
			build:   func() (*Loader, error) { return NewLoader(nil, orgs, details, texts, snapshots) },
			wantErr: ErrSourceRequired,
		},
		{
			name:    "nil organization repository",
			build:   func() (*Loader, error) { return NewLoader(&fakeSource{}, nil, details, texts, snapshots) },
			wantErr: ErrOrganizationRepositoryRequired,
		},
		{
			name:    "nil detail repository",
			build:   func() (*Loader, error) { return NewLoader(&fakeSource{}, orgs, nil, texts, snapshots) },
			wantErr: ErrDetailRepositoryRequired,
		},
		{
			name:    "nil text index repository",
			build:   func() (*Loader, error) { return NewLoader(&fakeSource{}, orgs, details, nil, snapshots) },
			wantErr: ErrTextIndexRepositoryRequired,
		},
		{
			name:    "nil snapshot repository",
			build:   func() (*Loader, error) { return NewLoader(&fakeSource{}, orgs, details, texts, nil) },
			wantErr: ErrSnapshotRepositoryRequired,
		},
		{
			name: "bad rate limit",
			build: func() (*Loader, error) {
				return NewLoader(&fakeSource{}, orgs, details, texts, snapshots, WithRateLimit(0, 1))
			},
			wantErr: ErrInvalidRateLimit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("valid", func(t *testing.T) {
		loader, err := NewLoader(&fakeSource{}, orgs, details, texts, snapshots,
			WithPoolSize(2), WithRateLimit(100, 10), WithLogger(nil))
		require.NoError(t, err)
		loader.Release()
	})
}

func TestLoadFresh(t *testing.T) {
	loader, _ := newTestLoader(t, &fakeSource{})
	ctx := context.Background()

	result, err := loader.Load(ctx)
	require.NoError(t, err)

	assert.True(t, result.Refreshed)
	assert.Equal(t, uint64(42), result.Digest)
	assert.Zero(t, result.Dropped)
	require.Len(t, result.Organizations, 2)
	assert.Equal(t, "1027700012345", result.Organizations[0].OGRN)

	entry := result.Entries["1027700012345"]
	require.NotNil(t, entry)
	assert.Equal(t, "разработка катализаторов окисления метана", entry.Projects[0])
	assert.Equal(t, "база данных кинетических констант", entry.RIDs[0])

	stored, err := loader.organizations.ListOrganizations(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	entries, err := loader.texts.ListEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, "разработка катализаторов окисления метана", entries["1027700012345"].Projects[0])

	digest, err := loader.snapshots.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), digest)
}

func TestLoadUnchangedKeepsCachedDetails(t *testing.T) {
	source := &fakeSource{}
	loader, details := newTestLoader(t, source)
	ctx := context.Background()

	_, err := loader.Load(ctx)
	require.NoError(t, err)

	_, err = loader.GetDetail(ctx, "1027700012345")
	require.NoError(t, err)
	require.Equal(t, 1, source.calls())

	result, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.False(t, result.Refreshed, "matching digest must not rewrite the store")

	has, err := details.HasDetail(ctx, "1027700012345")
	require.NoError(t, err)
	assert.True(t, has, "cached details survive an unchanged reload")
}

func TestLoadChangedResetsStore(t *testing.T) {
	digest := uint64(42)
	source := &fakeSource{}
	source.indexFunc = func(ctx context.Context) ([]*core.Organization, uint64, error) {
		return testOrganizations(), digest, nil
	}
	loader, details := newTestLoader(t, source)
	ctx := context.Background()

	_, err := loader.Load(ctx)
	require.NoError(t, err)
	_, err = loader.GetDetail(ctx, "1027700012345")
	require.NoError(t, err)

	digest = 43
	result, err := loader.Load(ctx)
	require.NoError(t, err)
	assert.True(t, result.Refreshed)
	assert.Equal(t, uint64(43), result.Digest)

	has, err := details.HasDetail(ctx, "1027700012345")
	require.NoError(t, err)
	assert.False(t, has, "a new snapshot invalidates cached details")

	stored, err := loader.snapshots.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(43), stored)
}

func TestLoadDropsInvalidOrganizations(t *testing.T) {
	source := &fakeSource{}
	source.indexFunc = func(ctx context.Context) ([]*core.Organization, uint64, error) {
		orgs := testOrganizations()
		orgs = append(orgs, &core.Organization{Name: "Без ОГРН"})
		return orgs, 7, nil
	}
	loader, _ := newTestLoader(t, source)

	result, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Dropped)
	assert.Len(t, result.Organizations, 2)
}

func TestLoadAllInvalid(t *testing.T) {
	source := &fakeSource{}
	source.indexFunc = func(ctx context.Context) ([]*core.Organization, uint64, error) {
		return []*core.Organization{{Name: "Без ОГРН"}}, 7, nil
	}
	loader, _ := newTestLoader(t, source)

	_, err := loader.Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestLoadFetchError(t *testing.T) {
	source := &fakeSource{}
	source.textFunc = func(ctx context.Context) (map[string]*core.TextEntry, error) {
		return nil, fmt.Errorf("%w: text index: HTTP 503", ErrFetchFailed)
	}
	loader, _ := newTestLoader(t, source)

	_, err := loader.Load(context.Background())
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestLoadCached(t *testing.T) {
	loader, _ := newTestLoader(t, &fakeSource{})
	ctx := context.Background()

	_, err := loader.LoadCached(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound, "empty store has nothing to serve")

	_, err = loader.Load(ctx)
	require.NoError(t, err)

	cached, err := loader.LoadCached(ctx)
	require.NoError(t, err)
	assert.False(t, cached.Refreshed)
	assert.Equal(t, uint64(42), cached.Digest)
	require.Len(t, cached.Organizations, 2)
	assert.Equal(t, "Институт прикладной математики", cached.Organizations[1].Name)
	require.NotNil(t, cached.Entries["1037700054321"])
	assert.Equal(t, "численное моделирование траекторий", cached.Entries["1037700054321"].Projects[0])
}

func TestGetDetail(t *testing.T) {
	t.Run("fetches and caches on miss", func(t *testing.T) {
		source := &fakeSource{}
		loader, _ := newTestLoader(t, source)
		ctx := context.Background()

		detail, err := loader.GetDetail(ctx, "1027700012345")
		require.NoError(t, err)
		assert.Equal(t, "1027700012345", detail.OGRN)
		assert.Equal(t, 1, source.calls())

		again, err := loader.GetDetail(ctx, "1027700012345")
		require.NoError(t, err)
		assert.Equal(t, detail.OGRN, again.OGRN)
		assert.Equal(t, 1, source.calls(), "second read must come from the store")
	})

	t.Run("prefers stored record", func(t *testing.T) {
		source := &fakeSource{}
		loader, details := newTestLoader(t, source)
		ctx := context.Background()

		stored := &core.OrganizationDetail{
			Organization: core.Organization{OGRN: "1037700054321", Name: "Институт прикладной математики"},
		}
		require.NoError(t, details.PutDetail(ctx, stored))

		detail, err := loader.GetDetail(ctx, "1037700054321")
		require.NoError(t, err)
		assert.Equal(t, "Институт прикладной математики", detail.Name)
		assert.Zero(t, source.calls())
	})

	t.Run("propagates fetch error", func(t *testing.T) {
		source := &fakeSource{}
		source.detailFunc = func(ctx context.Context, ogrn string) (*core.OrganizationDetail, error) {
			return nil, fmt.Errorf("%w: %s: HTTP 404", ErrFetchFailed, ogrn)
		}
		loader, _ := newTestLoader(t, source)

		_, err := loader.GetDetail(context.Background(), "1020000000000")
		assert.ErrorIs(t, err, ErrFetchFailed)
	})

	t.Run("rejects invalid record", func(t *testing.T) {
		source := &fakeSource{}
		source.detailFunc = func(ctx context.Context, ogrn string) (*core.OrganizationDetail, error) {
			return &core.OrganizationDetail{}, nil
		}
		loader, _ := newTestLoader(t, source)

		_, err := loader.GetDetail(context.Background(), "1020000000000")
		assert.ErrorIs(t, err, core.ErrInvalidDetail)
	})
}

func TestWarmDetails(t *testing.T) {
	source := &fakeSource{}
	loader, details := newTestLoader(t, source, WithRateLimit(1000, 100))
	ctx := context.Background()

	_, err := loader.GetDetail(ctx, "1027700012345")
	require.NoError(t, err)

	stats, err := loader.WarmDetails(ctx, []string{"1027700012345", "1037700054321", "1047700067890"})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Fetched)
	assert.Equal(t, 1, stats.Skipped)
	assert.Zero(t, stats.Failed)

	for _, ogrn := range []string{"1037700054321", "1047700067890"} {
		has, hasErr := details.HasDetail(ctx, ogrn)
		require.NoError(t, hasErr)
		assert.True(t, has, "ogrn %s must be cached after warm-up", ogrn)
	}
}

func TestWarmDetailsCountsFailures(t *testing.T) {
	source := &fakeSource{}
	source.detailFunc = func(ctx context.Context, ogrn string) (*core.OrganizationDetail, error) {
		if ogrn == "1037700054321" {
			return nil, errors.New("connection reset")
		}
		return &core.OrganizationDetail{
			Organization: core.Organization{OGRN: ogrn, Name: "Организация " + ogrn},
		}, nil
	}
	loader, _ := newTestLoader(t, source, WithRateLimit(1000, 100))

	stats, err := loader.WarmDetails(context.Background(), []string{"1027700012345", "1037700054321"})
	require.NoError(t, err, "individual failures must not fail the warm-up")
	assert.Equal(t, 1, stats.Fetched)
	assert.Equal(t, 1, stats.Failed)
}

func TestWarmDetailsCancelled(t *testing.T) {
	loader, _ := newTestLoader(t, &fakeSource{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := loader.WarmDetails(ctx, []string{"1027700012345"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Fetched)
}
