package records

import "sort"

// DefaultSourcePriority orders source IDs from most to least trusted.
// Regulator registries outrank government facility lists, which outrank
// crowd-mapped and commercial place data. Index 0 is the highest
// priority; unknown sources rank below every listed one.
var DefaultSourcePriority = []string{
	"src-pcn-premises",
	"src-nafdac-retail",
	"src-nhia-facility",
	"src-state-moh",
	"src-crowdsource-field",
	"src-google-places",
	"src-grid3-health",
	"src-osm-pharmacy",
	"src-flutterwave-agent",
}

// SourceRanker resolves source IDs to a trust rank (lower = more trusted).
type SourceRanker struct {
	rank map[string]int
	size int
}

// NewSourceRanker builds a ranker from a priority-ordered source list.
// A nil or empty list falls back to DefaultSourcePriority.
func NewSourceRanker(priority []string) *SourceRanker {
	if len(priority) == 0 {
		priority = DefaultSourcePriority
	}
	rank := make(map[string]int, len(priority))
	for i, src := range priority {
		rank[src] = i
	}
	return &SourceRanker{rank: rank, size: len(priority)}
}

// Rank returns the trust rank for a source ID. Sources not in the
// priority list all share the lowest rank.
func (sr *SourceRanker) Rank(sourceID string) int {
	if r, ok := sr.rank[sourceID]; ok {
		return r
	}
	return sr.size
}

// SortByPriority orders records best-source-first, breaking ties by
// record ID so survivor selection is deterministic across runs.
func (sr *SourceRanker) SortByPriority(recs []CanonicalRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		ri, rj := sr.Rank(recs[i].SourceID), sr.Rank(recs[j].SourceID)
		if ri != rj {
			return ri < rj
		}
		return recs[i].ID < recs[j].ID
	})
}
