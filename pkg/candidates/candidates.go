// Package candidates generates the unordered record pairs worth scoring
// from a full registry snapshot. Blocking is two-level: records are
// partitioned by state, and within a state only cross-source pairs
// within a geographic search radius are emitted. Same-source duplicates
// are assumed resolved upstream.
package candidates

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/geo"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/records"
)

// UnknownState buckets records whose state field is blank. They are
// still compared against each other, just never against records with a
// known state.
const UnknownState = "Unknown"

// Pair is an unordered candidate pair, normalized so AID < BID.
type Pair struct {
	AID string `json:"record_a_id"`
	BID string `json:"record_b_id"`

	// DistanceKM is the great-circle distance found during candidate
	// search, carried along so the scorer's audit trail is cheap.
	DistanceKM float64 `json:"distance_km"`

	State string `json:"state"`
}

// NewPair builds an order-normalized pair.
func NewPair(idA, idB string, distanceKM float64, state string) Pair {
	if idB < idA {
		idA, idB = idB, idA
	}
	return Pair{AID: idA, BID: idB, DistanceKM: distanceKM, State: state}
}

// Key is the order-independent dedupe key for the pair.
func (p Pair) Key() string {
	return p.AID + "|" + p.BID
}

// Generator finds candidate pairs using a spatial pre-filter.
type Generator struct {
	searchRadiusKM float64
	workers        int
}

// NewGenerator returns a Generator searching within radiusKM. workers
// bounds the state-level fan-out; values below 1 mean one state at a
// time.
func NewGenerator(radiusKM float64, workers int) *Generator {
	if workers < 1 {
		workers = 1
	}
	return &Generator{searchRadiusKM: radiusKM, workers: workers}
}

// Generate partitions the records by state and emits deduplicated
// cross-source pairs within the search radius. States are processed
// concurrently; the returned slice is sorted for deterministic output.
func (g *Generator) Generate(ctx context.Context, recs []records.CanonicalRecord) ([]Pair, error) {
	byState := groupByState(recs)

	states := make([]string, 0, len(byState))
	for state := range byState {
		states = append(states, state)
	}
	sort.Strings(states)

	var (
		mu    sync.Mutex
		pairs []Pair
	)

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.workers)

	for _, state := range states {
		state := state
		stateRecs := byState[state]
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			statePairs := g.statePairs(state, stateRecs)
			if len(statePairs) == 0 {
				return nil
			}
			mu.Lock()
			pairs = append(pairs, statePairs...)
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].AID != pairs[j].AID {
			return pairs[i].AID < pairs[j].AID
		}
		return pairs[i].BID < pairs[j].BID
	})
	return pairs, nil
}

// statePairs emits the deduplicated cross-source pairs for one state.
func (g *Generator) statePairs(state string, recs []records.CanonicalRecord) []Pair {
	bySource := groupBySource(recs)
	if len(bySource) < 2 {
		return nil
	}

	sources := make([]string, 0, len(bySource))
	for src := range bySource {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	seen := make(map[string]bool)
	var pairs []Pair

	for i, srcA := range sources {
		for _, srcB := range sources[i+1:] {
			for _, p := range g.sourcePairs(state, bySource[srcA], bySource[srcB]) {
				if seen[p.Key()] {
					continue
				}
				seen[p.Key()] = true
				pairs = append(pairs, p)
			}
		}
	}
	return pairs
}

// sourcePairs runs the spatial pre-filter of every record in recsA
// against the coordinates of recsB.
func (g *Generator) sourcePairs(state string, recsA, recsB []records.CanonicalRecord) []Pair {
	coordsB := make([]geo.Coordinate, 0, len(recsB))
	indexB := make([]int, 0, len(recsB))
	for i, r := range recsB {
		if !r.HasCoordinates() {
			continue
		}
		coordsB = append(coordsB, geo.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude})
		indexB = append(indexB, i)
	}
	if len(coordsB) == 0 {
		return nil
	}

	var pairs []Pair
	for _, anchor := range recsA {
		if !anchor.HasCoordinates() {
			continue
		}
		target := geo.Coordinate{Latitude: *anchor.Latitude, Longitude: *anchor.Longitude}
		for _, n := range geo.Nearby(target, coordsB, g.searchRadiusKM) {
			other := recsB[indexB[n.Index]]
			pairs = append(pairs, NewPair(anchor.ID, other.ID, n.DistanceKM, state))
		}
	}
	return pairs
}

func groupByState(recs []records.CanonicalRecord) map[string][]records.CanonicalRecord {
	byState := make(map[string][]records.CanonicalRecord)
	for _, r := range recs {
		state := r.StateKey()
		if state == "" || state == records.Unknown {
			state = UnknownState
		}
		byState[state] = append(byState[state], r)
	}
	return byState
}

func groupBySource(recs []records.CanonicalRecord) map[string][]records.CanonicalRecord {
	bySource := make(map[string][]records.CanonicalRecord)
	for _, r := range recs {
		bySource[r.SourceID] = append(bySource[r.SourceID], r)
	}
	return bySource
}
