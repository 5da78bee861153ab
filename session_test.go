package rndmap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/ingestion"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/semantic"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/semantic/mock"
)

const (
	ogrnInformatics = "1027739000001"
	ogrnRobotics    = "1027739000002"
	ogrnQuantum     = "1027739000003"

	pinnedProject = "АААА-А21-121011990096-1"
	activeProject = "АААА-А23-123052600012-2"
)

// localSource serves a fixed three-organization dataset without the
// network. The fail flag makes every fetch error, for cache fallback tests.
type localSource struct {
	fail atomic.Bool
}

func sessionOrganizations() []*core.Organization {
	return []*core.Organization{
		{
			OGRN:         ogrnInformatics,
			Name:         "Федеральный исследовательский центр Информатика и управление",
			ShortName:    "ФИЦ ИУ",
			TopKeywords:  []core.Keyword{{Keyword: "роботизация", Count: 8}},
			TotalFunding: 2_000_000,
		},
		{
			OGRN:         ogrnRobotics,
			Name:         "Московский институт робототехники",
			ShortName:    "РобоТех",
			TotalFunding: 500_000,
		},
		{
			OGRN:         ogrnQuantum,
			Name:         "Центр квантовых технологий",
			TotalFunding: 50_000,
		},
	}
}

func (s *localSource) FetchIndex(ctx context.Context) ([]*core.Organization, uint64, error) {
	if s.fail.Load() {
		return nil, 0, ingestion.ErrFetchFailed
	}
	return sessionOrganizations(), 77, nil
}

func (s *localSource) FetchTextIndex(ctx context.Context) (map[string]*core.TextEntry, error) {
	if s.fail.Load() {
		return nil, ingestion.ErrFetchFailed
	}
	return map[string]*core.TextEntry{
		ogrnRobotics: {Projects: []string{"Разработка автономных РОБОТОВ для склада"}},
		ogrnQuantum:  {Projects: []string{"квантовая криптография в городских сетях"}},
	}, nil
}

func (s *localSource) FetchDetail(ctx context.Context, ogrn string) (*core.OrganizationDetail, error) {
	if s.fail.Load() {
		return nil, ingestion.ErrFetchFailed
	}
	detail := &core.OrganizationDetail{}
	for _, org := range sessionOrganizations() {
		if org.OGRN == ogrn {
			detail.Organization = *org
		}
	}
	if detail.OGRN == "" {
		return nil, ingestion.ErrFetchFailed
	}
	if ogrn == ogrnRobotics {
		detail.Projects = []core.Project{
			{
				RegistrationNumber: pinnedProject,
				Name:               "Автономные роботы",
				Status:             "Завершен",
				StageStartDate:     "15.03.2021",
			},
			{
				RegistrationNumber: activeProject,
				Name:               "Машинное зрение для манипуляторов",
				Status:             core.ActiveStatus,
				StageStartDate:     "01.02.2023",
			},
		}
	}
	return detail, nil
}

func newTestSession(t *testing.T, opts ...SessionOption) (*Session, *mock.MockSearcher, *localSource) {
	t.Helper()

	source := &localSource{}
	searcher := mock.NewMockSearcher()
	base := []SessionOption{
		WithDataSource(source),
		WithSemanticSearcher(searcher),
		WithDebounce(0),
	}
	session, err := NewSession(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	require.NoError(t, session.Load(context.Background()))
	return session, searcher, source
}

func TestNewSession(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		session, err := NewSession(WithDataSource(&localSource{}), WithSemanticSearcher(mock.NewMockSearcher()))
		require.NoError(t, err)
		require.NotNil(t, session)
		defer session.Close()

		assert.NotNil(t, session.backend)
		assert.NotNil(t, session.loader)
		assert.NotNil(t, session.scorer)
		assert.NotNil(t, session.orch)
		assert.NotNil(t, session.debouncer)
		assert.Equal(t, ModeLocal, session.Mode())
		assert.Equal(t, core.ScopeAll, session.Scope())
		assert.Equal(t, core.TierAll, session.FundingTier())
	})

	t.Run("error with invalid cache path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0o644))

		session, err := NewSession(WithCachePath(tmpFile))
		assert.Error(t, err)
		assert.Nil(t, session)
	})

	t.Run("on-disk cache", func(t *testing.T) {
		session, err := NewSession(
			WithCachePath(filepath.Join(t.TempDir(), "cache")),
			WithDataSource(&localSource{}),
			WithSemanticSearcher(mock.NewMockSearcher()),
		)
		require.NoError(t, err)
		require.NoError(t, session.Load(context.Background()))
		assert.NoError(t, session.Close())
	})
}

func TestSession_LoadAndRank(t *testing.T) {
	session, _, _ := newTestSession(t)

	ranking := session.Ranking()
	require.NotNil(t, ranking)
	require.Len(t, ranking.Organizations, 3, "empty query passes the dataset through")
	assert.Equal(t, ogrnInformatics, ranking.Organizations[0].OGRN)
	assert.Nil(t, session.Highlights(), "no highlights without a query")

	session.CommitQuery("робот")

	ranking = session.Ranking()
	require.Len(t, ranking.Organizations, 2)
	assert.Equal(t, ogrnRobotics, ranking.Organizations[0].OGRN, "name containment outranks keyword fallback")
	assert.Equal(t, ogrnInformatics, ranking.Organizations[1].OGRN)

	assert.GreaterOrEqual(t, ranking.Scores[ogrnRobotics], 100.0)
	assert.InDelta(t, 5.8, ranking.Scores[ogrnInformatics], 0.001)
	assert.Equal(t, core.MatchIdentity, ranking.Reasons[ogrnRobotics].Kind)
	assert.Equal(t, core.MatchKeyword, ranking.Reasons[ogrnInformatics].Kind)

	assert.Equal(t, []string{ogrnRobotics, ogrnInformatics}, session.Highlights())
}

func TestSession_DebouncedQuery(t *testing.T) {
	session, _, _ := newTestSession(t, WithDebounce(40*time.Millisecond))

	session.SetQueryInput("кв")
	session.SetQueryInput("квантовая")

	assert.Empty(t, session.Query(), "edits commit only after the quiet period")
	assert.True(t, session.debouncer.Pending())

	require.Eventually(t, func() bool {
		return session.Query() == "квантовая"
	}, time.Second, 5*time.Millisecond)

	ranking := session.Ranking()
	require.Len(t, ranking.Organizations, 1)
	assert.Equal(t, ogrnQuantum, ranking.Organizations[0].OGRN)
}

func TestSession_CommitQuerySupersedesPending(t *testing.T) {
	session, _, _ := newTestSession(t, WithDebounce(60*time.Millisecond))

	session.SetQueryInput("робот")
	session.CommitQuery("квантовая")

	assert.Equal(t, "квантовая", session.Query())
	assert.False(t, session.debouncer.Pending())

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, "квантовая", session.Query(), "the superseded edit must never commit")
}

func TestSession_ToggleScope(t *testing.T) {
	session, _, _ := newTestSession(t)
	session.CommitQuery("робот")

	assert.Equal(t, core.ScopeProjects, session.ToggleScope(core.ScopeProjects))
	assert.Equal(t, core.ScopeAll, session.ToggleScope(core.ScopeProjects), "retoggling turns the scope off")

	assert.Equal(t, core.ScopeProjects, session.ToggleScope(core.ScopeProjects))
	assert.Equal(t, core.ScopeIP, session.ToggleScope(core.ScopeIP), "a different scope replaces, not toggles")
	session.ToggleScope(core.ScopeIP)

	session.ToggleScope(core.ScopeOrganizations)
	ranking := session.Ranking()
	require.Len(t, ranking.Organizations, 1, "identity scope silences keyword fallback")
	assert.Equal(t, ogrnRobotics, ranking.Organizations[0].OGRN)
	assert.InDelta(t, 120.0, ranking.Scores[ogrnRobotics], 0.001)
}

func TestSession_FundingTier(t *testing.T) {
	session, _, _ := newTestSession(t)

	session.SetFundingTier(core.TierLarge)
	ranking := session.Ranking()
	require.Len(t, ranking.Organizations, 1)
	assert.Equal(t, ogrnInformatics, ranking.Organizations[0].OGRN)

	session.CommitQuery("робот")
	session.SetFundingTier(core.TierMedium)
	ranking = session.Ranking()
	require.Len(t, ranking.Organizations, 1, "out-of-tier organizations are excluded regardless of score")
	assert.Equal(t, ogrnRobotics, ranking.Organizations[0].OGRN)

	session.SetFundingTier(core.TierAll)
	assert.Len(t, session.Ranking().Organizations, 2)
}

func TestSession_SelectOrganization(t *testing.T) {
	session, _, _ := newTestSession(t)
	ctx := context.Background()

	session.CommitQuery("машинное зрение")
	detail, err := session.SelectOrganization(ctx, ogrnRobotics)
	require.NoError(t, err)
	assert.Equal(t, ogrnRobotics, detail.OGRN)

	require.NotNil(t, session.Selected())
	view := session.DetailView()
	require.NotNil(t, view)
	require.Len(t, view.Projects, 2)
	assert.Equal(t, activeProject, view.Projects[0].RegistrationNumber, "query relevance ranks the matching project first")
	assert.Empty(t, session.Pinned())
	assert.Equal(t, ModeLocal, session.Mode())

	session.ClearSelection()
	assert.Nil(t, session.Selected())
	assert.Nil(t, session.DetailView())
}

func TestSession_SelectUnknownOrganization(t *testing.T) {
	session, _, _ := newTestSession(t)

	_, err := session.SelectOrganization(context.Background(), "1029999999999")
	assert.ErrorIs(t, err, ingestion.ErrFetchFailed)
	assert.Nil(t, session.Selected())
}

func TestSession_SemanticFlow(t *testing.T) {
	session, searcher, _ := newTestSession(t)
	ctx := context.Background()

	searcher.SearchFunc = func(ctx context.Context, query string) (*semantic.Response, error) {
		return &semantic.Response{
			Results: []core.SemanticResult{
				{
					ProjectID:  pinnedProject,
					CenterID:   ogrnRobotics,
					CenterName: "Московский институт робототехники",
					Title:      "Автономные роботы",
					Year:       "2021",
					Score:      0.91,
				},
				{
					ProjectID:  "АААА-А22-000000000000-9",
					CenterID:   ogrnQuantum,
					CenterName: "Центр квантовых технологий",
					Title:      "Квантовая криптография",
					Year:       "2022",
					Score:      0.47,
				},
			},
			RewrittenQuery: "автономные роботы со зрением",
		}, nil
	}

	_, err := session.SelectOrganization(ctx, ogrnRobotics)
	require.NoError(t, err)

	session.InvokeSemanticSearch("роботы со зрением")
	assert.Equal(t, ModeSemantic, session.Mode())
	assert.Nil(t, session.Selected(), "invoking semantic search clears the selection")

	require.Eventually(t, func() bool {
		return session.SemanticState() == semantic.StateSuccess
	}, time.Second, 5*time.Millisecond)

	results := session.SemanticResults()
	require.Len(t, results, 2)
	assert.Equal(t, "автономные роботы со зрением", session.RewrittenQuery())
	assert.Equal(t, 1, searcher.CallCount())
	assert.Equal(t, []string{"роботы со зрением"}, searcher.Queries())

	detail, err := session.SelectSemanticResult(ctx, results[0])
	require.NoError(t, err)
	assert.Equal(t, ogrnRobotics, detail.OGRN)
	assert.Equal(t, ModeLocal, session.Mode())
	assert.Equal(t, pinnedProject, session.Pinned())

	view := session.DetailView()
	require.NotNil(t, view)
	require.Len(t, view.Projects, 2)
	assert.Equal(t, pinnedProject, view.Projects[0].RegistrationNumber,
		"the pinned project leads even against an active, newer one")

	session.ReturnToSearchResults()
	assert.Equal(t, ModeSemantic, session.Mode())
	assert.Nil(t, session.Selected())
	assert.Len(t, session.SemanticResults(), 2, "the result list is retained across the round trip")
	assert.Equal(t, 1, searcher.CallCount(), "returning must not re-invoke the remote call")
}

func TestSession_SemanticError(t *testing.T) {
	session, searcher, _ := newTestSession(t)

	searcher.SearchFunc = func(ctx context.Context, query string) (*semantic.Response, error) {
		return nil, errors.New("ai-search unavailable")
	}

	session.InvokeSemanticSearch("энергетика")
	require.Eventually(t, func() bool {
		return session.SemanticState() == semantic.StateError
	}, time.Second, 5*time.Millisecond)

	results := session.SemanticResults()
	assert.NotNil(t, results, "the error state carries an explicit empty list")
	assert.Empty(t, results)
	assert.Error(t, session.SemanticErr())
}

func TestSession_LoadFallsBackToCache(t *testing.T) {
	session, _, source := newTestSession(t)

	source.fail.Store(true)
	require.NoError(t, session.Load(context.Background()), "a cached snapshot covers fetch failures")
	assert.Len(t, session.Organizations(), 3)
}

func TestSession_LoadFailsWithoutCache(t *testing.T) {
	source := &localSource{}
	source.fail.Store(true)
	session, err := NewSession(WithDataSource(source), WithSemanticSearcher(mock.NewMockSearcher()))
	require.NoError(t, err)
	defer session.Close()

	err = session.Load(context.Background())
	assert.ErrorIs(t, err, ingestion.ErrFetchFailed)
}

func TestSession_Close(t *testing.T) {
	session, err := NewSession(WithDataSource(&localSource{}), WithSemanticSearcher(mock.NewMockSearcher()))
	require.NoError(t, err)
	require.NoError(t, session.Load(context.Background()))

	assert.NoError(t, session.Close())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "local", ModeLocal.String())
	assert.Equal(t, "semantic", ModeSemantic.String())
}
