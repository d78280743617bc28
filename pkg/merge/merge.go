// Package merge resolves scored pairs into a reduced registry. Pairs
// decided as automatic merges are unioned transitively, each resulting
// group is folded into a single survivor record ranked by source
// priority, and review-decision pairs are set aside for human
// adjudication rather than merged.
package merge

import (
	"sort"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/errors"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/records"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/score"
)

// Summary is the run-level accounting emitted alongside the registry.
type Summary struct {
	RunID       string   `json:"run_id"`
	GeneratedAt utc.Time `json:"generated_at"`

	InputRecords int `json:"input_records"`
	ScoredPairs  int `json:"scored_pairs"`

	AutoMergePairs int `json:"auto_merge_pairs"`
	ReviewPairs    int `json:"review_pairs"`
	NoMatchPairs   int `json:"no_match_pairs"`

	MergeGroups     int `json:"merge_groups"`
	RecordsAbsorbed int `json:"records_absorbed"`
	FinalRecords    int `json:"final_records"`

	BySource map[string]int `json:"by_source"`
	ByState  map[string]int `json:"by_state"`
}

// Outcome is everything a resolution run produces.
type Outcome struct {
	// Registry is the reduced record set: synthesized survivors plus
	// every record that was never absorbed, sorted by id.
	Registry []records.CanonicalRecord `json:"registry"`

	// AutoMerges is the audit trail of pairs merged automatically,
	// sorted by confidence descending.
	AutoMerges []score.MatchResult `json:"auto_merges"`

	// ReviewQueue holds pairs needing human adjudication, sorted by
	// confidence descending.
	ReviewQueue []score.MatchResult `json:"review_queue"`

	Summary Summary `json:"summary"`
}

// Resolver folds scored pairs into survivor records.
type Resolver struct {
	ranker *records.SourceRanker
	logger zerolog.Logger
}

// NewResolver returns a Resolver ranking survivor candidates with the
// given ranker. A nil ranker uses the default source priority.
func NewResolver(ranker *records.SourceRanker, logger zerolog.Logger) *Resolver {
	if ranker == nil {
		ranker = records.NewSourceRanker(nil)
	}
	return &Resolver{ranker: ranker, logger: logger}
}

// Resolve builds the reduced registry from the input snapshot and the
// scored pairs. The input records are never mutated.
func (r *Resolver) Resolve(recs []records.CanonicalRecord, results []score.MatchResult) (*Outcome, error) {
	if len(recs) == 0 {
		return nil, errors.ErrNoRecords
	}

	byID := make(map[string]*records.CanonicalRecord, len(recs))
	for i := range recs {
		byID[recs[i].ID] = &recs[i]
	}

	outcome := &Outcome{
		Summary: Summary{
			RunID:        uuid.NewString(),
			GeneratedAt:  utc.Now(),
			InputRecords: len(recs),
			ScoredPairs:  len(results),
		},
	}

	uf := newUnionFind()
	for _, res := range results {
		switch res.Decision {
		case score.DecisionAutoMerge:
			if byID[res.RecordAID] == nil || byID[res.RecordBID] == nil {
				r.logger.Warn().
					Str("record_a_id", res.RecordAID).
					Str("record_b_id", res.RecordBID).
					Msg("auto-merge pair references unknown record, skipping")
				continue
			}
			outcome.AutoMerges = append(outcome.AutoMerges, res)
			uf.union(res.RecordAID, res.RecordBID)
		case score.DecisionReview:
			outcome.ReviewQueue = append(outcome.ReviewQueue, res)
		default:
			outcome.Summary.NoMatchPairs++
		}
	}
	sortByConfidence(outcome.AutoMerges)
	sortByConfidence(outcome.ReviewQueue)
	outcome.Summary.AutoMergePairs = len(outcome.AutoMerges)
	outcome.Summary.ReviewPairs = len(outcome.ReviewQueue)

	absorbed := make(map[string]bool)
	var survivors []records.CanonicalRecord

	for _, members := range sortedGroups(uf) {
		group := make([]records.CanonicalRecord, 0, len(members))
		for _, id := range members {
			group = append(group, *byID[id])
		}
		survivor, err := r.synthesize(group)
		if err != nil {
			return nil, err
		}
		survivors = append(survivors, survivor)
		for _, id := range members {
			if id != survivor.ID {
				absorbed[id] = true
			}
		}
		outcome.Summary.MergeGroups++

		r.logger.Debug().
			Str("survivor_id", survivor.ID).
			Int("group_size", len(members)).
			Msg("merge group resolved")
	}

	outcome.Registry = append(outcome.Registry, survivors...)
	for _, rec := range recs {
		if !absorbed[rec.ID] && !hasSurvivor(survivors, rec.ID) {
			outcome.Registry = append(outcome.Registry, rec.Clone())
		}
	}
	sort.Slice(outcome.Registry, func(i, j int) bool {
		return outcome.Registry[i].ID < outcome.Registry[j].ID
	})

	outcome.Summary.RecordsAbsorbed = len(absorbed)
	outcome.Summary.FinalRecords = len(outcome.Registry)
	outcome.Summary.BySource = countBySource(outcome.Registry)
	outcome.Summary.ByState = countByState(outcome.Registry)

	return outcome, nil
}

// synthesize folds a merge group into one survivor. Members are ranked
// by source priority; the highest-priority member keeps its identity and
// absorbed members only fill fields the survivor left blank.
func (r *Resolver) synthesize(group []records.CanonicalRecord) (records.CanonicalRecord, error) {
	if len(group) < 2 {
		return records.CanonicalRecord{}, errors.NewMergeError("", nil,
			errors.New("merge group needs at least two members"))
	}

	r.ranker.SortByPriority(group)

	survivor := group[0].Clone()
	sources := map[string]bool{survivor.SourceID: true}

	for _, member := range group[1:] {
		fillBlankFields(&survivor, &member)
		survivor.MergedFrom = append(survivor.MergedFrom, member.ID)
		sources[member.SourceID] = true
	}

	sort.Strings(survivor.MergedFrom)
	survivor.MergeSources = sortedKeys(sources)
	survivor.UpdatedAt = utc.Now()
	return survivor, nil
}

// fillBlankFields copies values from donor into blank survivor fields.
// Populated survivor fields are never overwritten, even when the donor
// disagrees.
func fillBlankFields(survivor, donor *records.CanonicalRecord) {
	fill := func(dst *string, src string) {
		if records.Blank(*dst) && !records.Blank(src) {
			*dst = src
		}
	}

	fill(&survivor.FacilityName, donor.FacilityName)
	fill(&survivor.AddressLine, donor.AddressLine)
	fill(&survivor.Ward, donor.Ward)
	fill(&survivor.LGA, donor.LGA)
	fill(&survivor.State, donor.State)
	fill(&survivor.Phone, donor.Phone)
	fill(&survivor.Email, donor.Email)
	fill(&survivor.ContactPerson, donor.ContactPerson)
	fill(&survivor.OperationalStatus, donor.OperationalStatus)

	if !survivor.HasCoordinates() && donor.HasCoordinates() {
		lat := *donor.Latitude
		lon := *donor.Longitude
		survivor.Latitude = &lat
		survivor.Longitude = &lon
	}

	// Identifier maps are unioned; the survivor was ranked higher, so on
	// conflict its value stands.
	if len(donor.ExternalIdentifiers) > 0 {
		if survivor.ExternalIdentifiers == nil {
			survivor.ExternalIdentifiers = make(map[string]string, len(donor.ExternalIdentifiers))
		}
		for idType, value := range donor.ExternalIdentifiers {
			if _, ok := survivor.ExternalIdentifiers[idType]; !ok {
				survivor.ExternalIdentifiers[idType] = value
			}
		}
	}
}

// sortedGroups returns merge groups ordered by root id so resolution
// output is deterministic.
func sortedGroups(uf *unionFind) [][]string {
	byRoot := uf.groups()
	roots := make([]string, 0, len(byRoot))
	for root := range byRoot {
		roots = append(roots, root)
	}
	sort.Strings(roots)

	groups := make([][]string, 0, len(roots))
	for _, root := range roots {
		members := byRoot[root]
		sort.Strings(members)
		groups = append(groups, members)
	}
	return groups
}

func sortByConfidence(results []score.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MatchConfidence != results[j].MatchConfidence {
			return results[i].MatchConfidence > results[j].MatchConfidence
		}
		if results[i].RecordAID != results[j].RecordAID {
			return results[i].RecordAID < results[j].RecordAID
		}
		return results[i].RecordBID < results[j].RecordBID
	})
}

func hasSurvivor(survivors []records.CanonicalRecord, id string) bool {
	for _, s := range survivors {
		if s.ID == id {
			return true
		}
	}
	return false
}

func countBySource(recs []records.CanonicalRecord) map[string]int {
	counts := make(map[string]int)
	for _, rec := range recs {
		for _, src := range rec.Sources() {
			counts[src]++
		}
	}
	return counts
}

func countByState(recs []records.CanonicalRecord) map[string]int {
	counts := make(map[string]int)
	for _, rec := range recs {
		state := rec.StateKey()
		if state == "" || state == records.Unknown {
			state = "unknown"
		}
		counts[state]++
	}
	return counts
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
