package reindex

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/storage"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/storage/badger"
)

func setupTestRepos(t *testing.T) (storage.DetailRepository, storage.TextIndexRepository) {
	t.Helper()

	_, details, texts, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	return details, texts
}

func TestEntryOf(t *testing.T) {
	detail := &core.OrganizationDetail{
		Organization: core.Organization{OGRN: "1027700012345", Name: "ФИЦ Химической Физики"},
		Projects: []core.Project{
			{
				Name:     "Разработка КАТАЛИЗАТОРОВ  окисления",
				Abstract: "Получение универсальных катализаторов\nдля промышленности",
			},
			{Name: "Кинетика горения", Abstract: ""},
		},
		RIDs: []core.IPAsset{
			{Name: "База данных кинетических констант", Abstract: "Справочные данные"},
		},
	}

	entry := EntryOf(detail)

	require.Len(t, entry.Projects, 2)
	assert.Equal(t, "разработка катализаторов окисления получение универсальных катализаторов для промышленности", entry.Projects[0])
	assert.Equal(t, "кинетика горения", entry.Projects[1])

	require.Len(t, entry.RIDs, 1)
	assert.Equal(t, "база данных кинетических констант справочные данные", entry.RIDs[0])
}

func TestEntryOf_NoRecords(t *testing.T) {
	detail := &core.OrganizationDetail{
		Organization: core.Organization{OGRN: "1027700012345", Name: "НИИ"},
	}

	entry := EntryOf(detail)

	assert.Empty(t, entry.Projects)
	assert.Empty(t, entry.RIDs)
}

func TestIndexer_Run(t *testing.T) {
	details, texts := setupTestRepos(t)
	ctx := context.Background()

	seeded := []*core.OrganizationDetail{
		{
			Organization: core.Organization{OGRN: "1027700012345", Name: "ФИЦ ХФ"},
			Projects: []core.Project{
				{Name: "Разработка катализаторов", Abstract: "Окисление метана"},
				{Name: "Кинетика горения"},
			},
			RIDs: []core.IPAsset{{Name: "База данных констант"}},
		},
		{
			Organization: core.Organization{OGRN: "1037700054321", Name: "ИПМ"},
			Projects:     []core.Project{{Name: "Численные методы", Abstract: "Газовая динамика"}},
		},
		{
			Organization: core.Organization{OGRN: "1047700099999", Name: "ЦНИИ"},
			RIDs: []core.IPAsset{
				{Name: "Программа моделирования"},
				{Name: "Патент на способ измерения"},
			},
		},
	}
	for _, detail := range seeded {
		require.NoError(t, details.PutDetail(ctx, detail))
	}

	var buf bytes.Buffer
	config := &Config{BatchSize: 2, ReportInterval: 2}

	stats, err := NewIndexer(details, texts, config, &buf).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Organizations)
	assert.Equal(t, 3, stats.Projects)
	assert.Equal(t, 3, stats.RIDs)

	entry, err := texts.GetEntry(ctx, "1027700012345")
	require.NoError(t, err)
	assert.Equal(t, []string{"разработка катализаторов окисление метана", "кинетика горения"}, entry.Projects)
	assert.Equal(t, []string{"база данных констант"}, entry.RIDs)

	entry, err = texts.GetEntry(ctx, "1047700099999")
	require.NoError(t, err)
	assert.Empty(t, entry.Projects)
	assert.Len(t, entry.RIDs, 2)

	output := buf.String()
	assert.Contains(t, output, "3/3", "should show completion")
	assert.Contains(t, output, "Rebuild complete", "should print the summary line")
}

func TestIndexer_OverwritesStaleEntries(t *testing.T) {
	details, texts := setupTestRepos(t)
	ctx := context.Background()

	require.NoError(t, details.PutDetail(ctx, &core.OrganizationDetail{
		Organization: core.Organization{OGRN: "1027700012345", Name: "ФИЦ ХФ"},
		Projects:     []core.Project{{Name: "Новый проект"}},
	}))
	require.NoError(t, texts.PutEntries(ctx, map[string]*core.TextEntry{
		"1027700012345": {Projects: []string{"устаревший текст"}},
	}))

	var buf bytes.Buffer
	_, err := NewIndexer(details, texts, nil, &buf).Run(ctx)
	require.NoError(t, err)

	entry, err := texts.GetEntry(ctx, "1027700012345")
	require.NoError(t, err)
	assert.Equal(t, []string{"новый проект"}, entry.Projects)
}

func TestIndexer_EmptyCache(t *testing.T) {
	details, texts := setupTestRepos(t)

	var buf bytes.Buffer
	stats, err := NewIndexer(details, texts, DefaultConfig(), &buf).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.Organizations)
	assert.Contains(t, buf.String(), "0 organizations", "should report the empty cache")
}

func TestIndexer_ContextCancellation(t *testing.T) {
	details, texts := setupTestRepos(t)

	require.NoError(t, details.PutDetail(context.Background(), &core.OrganizationDetail{
		Organization: core.Organization{OGRN: "1027700012345", Name: "ФИЦ ХФ"},
		Projects:     []core.Project{{Name: "Проект"}},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	stats, err := NewIndexer(details, texts, nil, &buf).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Organizations)
}

func TestNewIndexer_NormalizesConfig(t *testing.T) {
	details, texts := setupTestRepos(t)

	indexer := NewIndexer(details, texts, &Config{BatchSize: -5, ReportInterval: 0}, &bytes.Buffer{})

	assert.Equal(t, DefaultBatchSize, indexer.config.BatchSize)
	assert.Equal(t, DefaultReportInterval, indexer.config.ReportInterval)
}
