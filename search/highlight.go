package search

// highlightLimit caps how many organizations get map markers emphasized at
// once. Ten keeps the map readable on dense districts.
const highlightLimit = 10

// Highlights returns the OGRNs of the best ranked organizations, in ranking
// order. An empty or whitespace-only query highlights nothing: browsing the
// full dataset is not a search.
func Highlights(ranking *Ranking, query string) []string {
	if ranking == nil || normalizeQuery(query) == "" {
		return nil
	}

	limit := highlightLimit
	if len(ranking.Organizations) < limit {
		limit = len(ranking.Organizations)
	}
	if limit == 0 {
		return nil
	}

	ogrns := make([]string, 0, limit)
	for _, org := range ranking.Organizations[:limit] {
		ogrns = append(ogrns, org.OGRN)
	}
	return ogrns
}
