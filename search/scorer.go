package search

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
)

// DefaultLimit caps how many organizations a ranking returns.
const DefaultLimit = 50

// Scoring weights. Identity hits on the short name outweigh hits on the full
// legal name, and any accurate content hit outweighs both.
const (
	weightExactName    = 100.0
	weightNameContains = 50.0
	weightShortToken   = 20.0
	weightNameToken    = 15.0
	weightOKOGUToken   = 10.0
	weightContent      = 30.0
	weightKeyword      = 5.0
	weightKeywordUse   = 0.1
	weightDomain       = 5.0
	weightCoherence    = 10.0
)

// TextIndex supplies the flattened project and IP texts per organization.
// A nil TextIndex behaves as an index with no entries.
type TextIndex interface {
	Entry(ogrn string) (*core.TextEntry, bool)
}

// MapIndex is a TextIndex backed by a plain map, as loaded from the dataset.
type MapIndex map[string]*core.TextEntry

var _ TextIndex = (MapIndex)(nil)

// Entry implements TextIndex.
func (m MapIndex) Entry(ogrn string) (*core.TextEntry, bool) {
	entry, ok := m[ogrn]
	return entry, ok
}

// Ranking is the outcome of scoring organizations against a query.
// Scores and Reasons are keyed by OGRN and cover exactly the returned
// organizations. Both are nil for the empty-query pass-through, which keeps
// the full candidate list in dataset order.
type Ranking struct {
	Organizations []*core.Organization
	Scores        map[string]float64
	Reasons       map[string]core.MatchReason
}

// Scorer ranks organizations against free-text queries using weighted
// substring matching over identity fields and indexed record texts.
type Scorer struct {
	limit  int
	logger *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer) error

// WithLimit sets how many organizations a ranking returns at most.
// Default is DefaultLimit.
func WithLimit(limit int) Option {
	return func(s *Scorer) error {
		if limit <= 0 {
			return ErrInvalidLimit
		}
		s.limit = limit
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewScorer creates a new scorer.
func NewScorer(opts ...Option) (*Scorer, error) {
	s := &Scorer{
		limit:  DefaultLimit,
		logger: slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Rank scores organizations against the query and returns the strongest
// matches in descending score order. Organizations that earn no score are
// left out entirely.
func (s *Scorer) Rank(orgs []*core.Organization, query string, scope core.SearchScope, index TextIndex) *Ranking {
	return s.RankWithMonitor(orgs, query, scope, index, nil)
}

// RankWithMonitor ranks with monitoring. The monitor receives a callback for
// every organization that earns a positive score.
func (s *Scorer) RankWithMonitor(orgs []*core.Organization, query string, scope core.SearchScope, index TextIndex, monitor SearchMonitor) *Ranking {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	normalized := normalizeQuery(query)
	if normalized == "" {
		// An empty query is a browse, not a search: every candidate stays,
		// in dataset order, with no scores or reasons attached.
		monitor.Finish(orgs)
		return &Ranking{Organizations: orgs}
	}

	tokens := tokenize(normalized)
	monitor.TokensExtracted(tokens)

	type scoredOrg struct {
		org    *core.Organization
		score  float64
		reason core.MatchReason
	}
	matches := make([]scoredOrg, 0, len(orgs))

	for _, org := range orgs {
		score, reason := s.scoreOrganization(org, normalized, tokens, scope, index)
		if score <= 0 {
			continue
		}
		monitor.OrganizationScored(org.OGRN, score, reason)
		matches = append(matches, scoredOrg{org: org, score: score, reason: reason})
	}

	// Stable sort keeps dataset order between equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > s.limit {
		matches = matches[:s.limit]
	}

	ranking := &Ranking{
		Organizations: make([]*core.Organization, 0, len(matches)),
		Scores:        make(map[string]float64, len(matches)),
		Reasons:       make(map[string]core.MatchReason, len(matches)),
	}
	for _, m := range matches {
		ranking.Organizations = append(ranking.Organizations, m.org)
		ranking.Scores[m.org.OGRN] = m.score
		ranking.Reasons[m.org.OGRN] = m.reason
	}

	s.logger.Debug("ranked organizations",
		"query", query,
		"scope", scope.String(),
		"candidates", len(orgs),
		"returned", len(ranking.Organizations))
	monitor.Finish(ranking.Organizations)

	return ranking
}

func (s *Scorer) scoreOrganization(org *core.Organization, normalized string, tokens []string, scope core.SearchScope, index TextIndex) (float64, core.MatchReason) {
	var score float64
	var reason core.MatchReason

	name := strings.ToLower(org.Name)
	shortName := strings.ToLower(org.ShortName)
	okogu := strings.ToLower(org.OKOGU)

	if scope.AllowsIdentity() {
		if normalized == name || (shortName != "" && normalized == shortName) {
			score += weightExactName
			reason = reason.Merge(core.MatchReason{Kind: core.MatchIdentity, Detail: "exact name match"})
		} else {
			// The whole query as a substring of either name is a strong
			// signal on its own, before tokens are considered one by one.
			if strings.Contains(name, normalized) {
				score += weightNameContains
				reason = reason.Merge(core.MatchReason{Kind: core.MatchIdentity, Detail: "name contains query"})
			}
			if shortName != "" && strings.Contains(shortName, normalized) {
				score += weightNameContains
				reason = reason.Merge(core.MatchReason{Kind: core.MatchIdentity, Detail: "name contains query"})
			}
		}
	}

	// Accurate content counts come from the text index when an entry exists
	// for this organization. Counts stay zero for record kinds the scope
	// shuts out.
	contentAllowed := scope.AllowsProjects() || scope.AllowsIP()
	var projectHits, ipHits int
	if contentAllowed && len(tokens) > 0 && index != nil {
		if entry, ok := index.Entry(org.OGRN); ok {
			if scope.AllowsProjects() {
				projectHits = countMatching(entry.Projects, tokens)
			}
			if scope.AllowsIP() {
				ipHits = countMatching(entry.RIDs, tokens)
			}
		}
	}
	contentHit := projectHits > 0 || ipHits > 0

	matched := make([]bool, len(tokens))
	for i, token := range tokens {
		if scope.AllowsIdentity() {
			if shortName != "" && strings.Contains(shortName, token) {
				score += weightShortToken
				matched[i] = true
				reason = reason.Merge(core.MatchReason{Kind: core.MatchIdentity})
			} else if strings.Contains(name, token) {
				score += weightNameToken
				matched[i] = true
				reason = reason.Merge(core.MatchReason{Kind: core.MatchIdentity})
			}
			if okogu != "" && strings.Contains(okogu, token) {
				score += weightOKOGUToken
				matched[i] = true
				reason = reason.Merge(core.MatchReason{Kind: core.MatchIdentity})
			}
		}
		if contentHit {
			score += weightContent
			matched[i] = true
		}
	}

	if projectHits > 0 {
		reason = reason.Merge(core.MatchReason{Kind: core.MatchProject, Count: projectHits})
	}
	if ipHits > 0 {
		reason = reason.Merge(core.MatchReason{Kind: core.MatchIP, Count: ipHits})
	}

	if contentAllowed && !contentHit {
		score, reason = applyFallback(org, tokens, matched, score, reason)
	}

	tokenMatches := 0
	for _, m := range matched {
		if m {
			tokenMatches++
		}
	}
	if tokenMatches > 1 {
		score += float64(tokenMatches) * weightCoherence
	}

	return score, reason
}

// applyFallback scores against the aggregated keywords and scientific
// domains of the summary record. These stand in for record texts until the
// index entry for the organization is available, and catch matches the
// flattened texts miss.
func applyFallback(org *core.Organization, tokens []string, matched []bool, score float64, reason core.MatchReason) (float64, core.MatchReason) {
	for i, token := range tokens {
		found := false
		for _, kw := range org.TopKeywords {
			if strings.Contains(strings.ToLower(kw.Keyword), token) {
				score += weightKeyword + weightKeywordUse*float64(kw.Count)
				reason = reason.Merge(core.MatchReason{Kind: core.MatchKeyword, Detail: kw.Keyword})
				matched[i] = true
				found = true
				break
			}
		}
		if found {
			break
		}
	}

	for i, token := range tokens {
		found := false
		for _, domain := range org.ScientificDomains {
			if domain.Name != "" && strings.Contains(strings.ToLower(domain.Name), token) {
				score += weightDomain
				reason = reason.Merge(core.MatchReason{Kind: core.MatchDomain, Detail: domain.Name})
				matched[i] = true
				found = true
				break
			}
		}
		if found {
			break
		}
	}

	return score, reason
}
