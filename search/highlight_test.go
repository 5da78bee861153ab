package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
)

func TestHighlights(t *testing.T) {
	t.Run("nil ranking", func(t *testing.T) {
		assert.Nil(t, Highlights(nil, "физика"))
	})

	t.Run("empty query", func(t *testing.T) {
		ranking := &Ranking{Organizations: []*core.Organization{org("1", "Институт физики", "")}}
		assert.Nil(t, Highlights(ranking, ""))
		assert.Nil(t, Highlights(ranking, "   \t"))
	})

	t.Run("no results", func(t *testing.T) {
		assert.Nil(t, Highlights(&Ranking{}, "физика"))
	})

	t.Run("fewer than the cap", func(t *testing.T) {
		ranking := &Ranking{Organizations: []*core.Organization{
			org("1", "Институт физики", ""),
			org("2", "Центр физики плазмы", ""),
		}}
		assert.Equal(t, []string{"1", "2"}, Highlights(ranking, "физика"))
	})

	t.Run("caps at ten in ranking order", func(t *testing.T) {
		orgs := make([]*core.Organization, 0, 14)
		for i := 0; i < 14; i++ {
			orgs = append(orgs, org(fmt.Sprintf("%02d", i), "Институт физики", ""))
		}
		ranking := &Ranking{Organizations: orgs}

		got := Highlights(ranking, "физика")
		require.Len(t, got, 10)
		assert.Equal(t, "00", got[0])
		assert.Equal(t, "09", got[9])
	})
}
