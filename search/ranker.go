package search

import (
	"sort"
	"strings"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
)

// Per-token weights for ordering records inside one organization. Name hits
// dominate abstract hits.
const (
	recordNameWeight     = 50.0
	recordAbstractWeight = 10.0
)

// DetailRanking orders the projects and IP assets of one organization for
// display and lists which of them match the active query.
type DetailRanking struct {
	Projects []core.Project
	RIDs     []core.IPAsset

	// Matched holds names and registration numbers of records containing at
	// least one query token in their name or abstract. Empty when the query
	// is empty.
	Matched map[string]bool
}

// RankDetail orders the records of one organization. The order is, in
// falling priority: the pinned record, query relevance, in-progress status
// (projects only), recency. Records that tie on all of these keep their
// dataset order.
//
// pinned names one record by registration number or name and forces it to
// the top regardless of relevance; selecting a semantic hit uses this to
// surface the exact project the service pointed at.
func RankDetail(detail *core.OrganizationDetail, query string, pinned string) *DetailRanking {
	ranking := &DetailRanking{Matched: map[string]bool{}}
	if detail == nil {
		return ranking
	}

	tokens := tokenize(normalizeQuery(query))

	ranking.Projects = rankProjects(detail.Projects, tokens, pinned)
	ranking.RIDs = rankAssets(detail.RIDs, tokens, pinned)

	for _, p := range ranking.Projects {
		if recordMatches(p.Name, p.Abstract, tokens) {
			markMatched(ranking.Matched, p.Name, p.RegistrationNumber)
		}
	}
	for _, a := range ranking.RIDs {
		if recordMatches(a.Name, a.Abstract, tokens) {
			markMatched(ranking.Matched, a.Name, a.RegistrationNumber)
		}
	}

	return ranking
}

func rankProjects(projects []core.Project, tokens []string, pinned string) []core.Project {
	if len(projects) == 0 {
		return nil
	}

	type key struct {
		pinned    bool
		relevance float64
		active    bool
		year      int
	}
	keys := make([]key, len(projects))
	for i, p := range projects {
		keys[i] = key{
			pinned:    isPinned(p.RegistrationNumber, p.Name, pinned),
			relevance: recordRelevance(p.Name, p.Abstract, tokens),
			active:    core.IsActiveStatus(p.Status),
			year:      core.YearOf(p.StageStartDate),
		}
	}

	idx := make([]int, len(projects))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if ka.pinned != kb.pinned {
			return ka.pinned
		}
		if ka.relevance != kb.relevance {
			return ka.relevance > kb.relevance
		}
		if ka.active != kb.active {
			return ka.active
		}
		if ka.year != kb.year {
			return ka.year > kb.year
		}
		return false
	})

	ordered := make([]core.Project, len(projects))
	for i, j := range idx {
		ordered[i] = projects[j]
	}
	return ordered
}

func rankAssets(assets []core.IPAsset, tokens []string, pinned string) []core.IPAsset {
	if len(assets) == 0 {
		return nil
	}

	type key struct {
		pinned    bool
		relevance float64
		year      int
	}
	keys := make([]key, len(assets))
	for i, a := range assets {
		keys[i] = key{
			pinned:    isPinned(a.RegistrationNumber, a.Name, pinned),
			relevance: recordRelevance(a.Name, a.Abstract, tokens),
			year:      core.YearOf(a.CreatedDate),
		}
	}

	idx := make([]int, len(assets))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if ka.pinned != kb.pinned {
			return ka.pinned
		}
		if ka.relevance != kb.relevance {
			return ka.relevance > kb.relevance
		}
		if ka.year != kb.year {
			return ka.year > kb.year
		}
		return false
	})

	ordered := make([]core.IPAsset, len(assets))
	for i, j := range idx {
		ordered[i] = assets[j]
	}
	return ordered
}

func isPinned(registrationNumber, name, pinned string) bool {
	return pinned != "" && (registrationNumber == pinned || name == pinned)
}

// recordRelevance sums per-token weights over one record's name and abstract.
func recordRelevance(name, abstract string, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	lowerName := strings.ToLower(name)
	lowerAbstract := strings.ToLower(abstract)
	var score float64
	for _, token := range tokens {
		if strings.Contains(lowerName, token) {
			score += recordNameWeight
		}
		if strings.Contains(lowerAbstract, token) {
			score += recordAbstractWeight
		}
	}
	return score
}

func recordMatches(name, abstract string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	lowerName := strings.ToLower(name)
	lowerAbstract := strings.ToLower(abstract)
	for _, token := range tokens {
		if strings.Contains(lowerName, token) || strings.Contains(lowerAbstract, token) {
			return true
		}
	}
	return false
}

func markMatched(set map[string]bool, name, registrationNumber string) {
	if name != "" {
		set[name] = true
	}
	if registrationNumber != "" {
		set[registrationNumber] = true
	}
}
