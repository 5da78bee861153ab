package search

import (
	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
)

// SearchMonitor provides hooks to observe the scoring process.
// Implement this interface to trace how organizations earn their scores.
type SearchMonitor interface {
	Start(query string)
	TokensExtracted(tokens []string)
	OrganizationScored(ogrn string, score float64, reason core.MatchReason)
	Finish(ranked []*core.Organization)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                             {}
func (n *noopMonitor) TokensExtracted(_ []string)                                 {}
func (n *noopMonitor) OrganizationScored(_ string, _ float64, _ core.MatchReason) {}
func (n *noopMonitor) Finish(_ []*core.Organization)                              {}
