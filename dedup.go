// Package dedup resolves duplicate pharmacy records across data sources.
// It wires the full pipeline: candidate generation (state blocking plus
// a geographic pre-filter), multi-signal pair scoring, and transitive
// merge resolution into a reduced registry with audit reports.
//
// Typical use:
//
//	pipe, err := dedup.New(dedup.WithLogger(logger))
//	if err != nil { ... }
//	result, err := pipe.Run(ctx, recs)
package dedup

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/candidates"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/errors"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/merge"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/records"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/score"
)

// Pipeline runs the deduplication engine over a registry snapshot.
type Pipeline interface {
	// Run generates candidates, scores them, and resolves merges. The
	// input records are never mutated.
	Run(ctx context.Context, recs []records.CanonicalRecord) (*Result, error)

	// Score compares a single record pair under the pipeline's
	// configuration, for ad hoc inspection.
	Score(a, b *records.CanonicalRecord) score.MatchResult

	// Config returns the validated matching configuration in use.
	Config() score.Config
}

// Result is the complete output of one pipeline run.
type Result struct {
	// Outcome holds the reduced registry, audit lists, and summary.
	Outcome *merge.Outcome

	// Matches lists every scored pair, sorted by confidence descending.
	Matches []score.MatchResult

	// CandidatePairs is the number of pairs the blocking stage emitted.
	CandidatePairs int
}

type pipeline struct {
	settings *settings
}

// New constructs a Pipeline, validating the effective configuration.
func New(opts ...Option) (Pipeline, error) {
	s := defaultSettings()
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	return &pipeline{settings: s}, nil
}

func (p *pipeline) Config() score.Config {
	return p.settings.cfg
}

func (p *pipeline) Score(a, b *records.CanonicalRecord) score.MatchResult {
	return score.ComputeMatch(a, b, p.settings.cfg)
}

func (p *pipeline) Run(ctx context.Context, recs []records.CanonicalRecord) (*Result, error) {
	if len(recs) == 0 {
		return nil, errors.ErrNoRecords
	}
	logger := p.settings.logger

	recs = records.DedupeByID(recs)
	byID := make(map[string]*records.CanonicalRecord, len(recs))
	for i := range recs {
		byID[recs[i].ID] = &recs[i]
	}

	gen := candidates.NewGenerator(p.settings.cfg.CandidateSearchRadiusKM, p.settings.workers)
	pairs, err := gen.Generate(ctx, recs)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("records", len(recs)).
		Int("candidate_pairs", len(pairs)).
		Msg("candidate generation complete")

	matches, err := p.scorePairs(ctx, byID, pairs)
	if err != nil {
		return nil, err
	}
	sortByConfidence(matches)

	ranker := records.NewSourceRanker(p.settings.priority)
	resolver := merge.NewResolver(ranker, logger)
	outcome, err := resolver.Resolve(recs, matches)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("input_records", outcome.Summary.InputRecords).
		Int("final_records", outcome.Summary.FinalRecords).
		Int("auto_merge_pairs", outcome.Summary.AutoMergePairs).
		Int("review_pairs", outcome.Summary.ReviewPairs).
		Msg("deduplication complete")

	return &Result{
		Outcome:        outcome,
		Matches:        matches,
		CandidatePairs: len(pairs),
	}, nil
}

// scorePairs fans pair scoring out across the worker pool. One pair's
// failure is isolated: a panic while scoring is logged and the pair
// skipped, never allowed to abort the run.
func (p *pipeline) scorePairs(ctx context.Context, byID map[string]*records.CanonicalRecord, pairs []candidates.Pair) ([]score.MatchResult, error) {
	results := make([]*score.MatchResult, len(pairs))

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(p.settings.workers)

	// Each goroutine writes a distinct slice element, so no lock is
	// needed around results.
	for i, pair := range pairs {
		i, pair := i, pair
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a := byID[pair.AID]
			b := byID[pair.BID]
			if a == nil || b == nil {
				return nil
			}
			if res, ok := p.scorePair(a, b); ok {
				results[i] = res
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	matches := make([]score.MatchResult, 0, len(results))
	for _, res := range results {
		if res != nil {
			matches = append(matches, *res)
		}
	}
	return matches, nil
}

// scorePair scores one pair, converting a panic into a skipped pair.
func (p *pipeline) scorePair(a, b *records.CanonicalRecord) (res *score.MatchResult, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.settings.logger.Error().
				Str("record_a_id", a.ID).
				Str("record_b_id", b.ID).
				Interface("panic", r).
				Msg("pair scoring panicked, skipping pair")
			res, ok = nil, false
		}
	}()

	m := score.ComputeMatch(a, b, p.settings.cfg)
	return &m, true
}

func sortByConfidence(matches []score.MatchResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MatchConfidence != matches[j].MatchConfidence {
			return matches[i].MatchConfidence > matches[j].MatchConfidence
		}
		if matches[i].RecordAID != matches[j].RecordAID {
			return matches[i].RecordAID < matches[j].RecordAID
		}
		return matches[i].RecordBID < matches[j].RecordBID
	})
}
