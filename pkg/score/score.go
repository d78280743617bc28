// Package score computes the composite match confidence between two
// pharmacy records and classifies each pair as an automatic merge, a
// human-review candidate, or a non-match. Signals that cannot be
// computed (missing coordinates, absent phone numbers, disjoint
// identifier sets) are excluded and their weight redistributed across
// the signals that are present, so sparse records are scored on the
// evidence they actually carry.
package score

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/extid"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/geo"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/namesim"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/phone"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/records"
)

// Decision is the outcome class for a scored pair.
type Decision string

// Pair decisions, ordered by confidence.
const (
	DecisionAutoMerge Decision = "auto_merge"
	DecisionReview    Decision = "review"
	DecisionNoMatch   Decision = "no_match"
)

// Signal names reported in MatchResult.SignalsUsed.
const (
	SignalName       = "name"
	SignalGeo        = "geo"
	SignalPhone      = "phone"
	SignalExternalID = "external_id"
)

// Override reasons reported in MatchResult.OverrideReason.
const (
	ReasonDifferentState   = "different_state_blocked"
	ReasonConflictingIDs   = "conflicting_external_ids"
	ReasonPhoneAndHighName = "phone_exact_match_with_high_name"
)

// MatchResult is the full audit record for one pair comparison.
type MatchResult struct {
	RecordAID string `json:"record_a_id"`
	RecordBID string `json:"record_b_id"`

	NameScore       float64  `json:"name_score"`
	GeoScore        *float64 `json:"geo_score"`
	GeoDistanceKM   *float64 `json:"geo_distance_km"`
	PhoneScore      *float64 `json:"phone_score"`
	ExternalIDScore *float64 `json:"external_id_score"`

	LGABoostApplied bool     `json:"lga_boost_applied"`
	MatchConfidence float64  `json:"match_confidence"`
	Decision        Decision `json:"decision"`
	SignalsUsed     []string `json:"signals_used"`
	OverrideReason  string   `json:"override_reason,omitempty"`
}

// ComputeMatch scores a pair of records under the given configuration.
// Pair order does not affect the outcome beyond which record is reported
// as A and which as B.
func ComputeMatch(a, b *records.CanonicalRecord, cfg Config) MatchResult {
	result := MatchResult{
		RecordAID: a.ID,
		RecordBID: b.ID,
		Decision:  DecisionNoMatch,
	}

	// A missing state is indeterminate, not a mismatch: only two
	// populated, differing states block the pair.
	if cfg.SameStateRequired && differentStates(a, b) {
		result.OverrideReason = ReasonDifferentState
		return result
	}

	result.NameScore = namesim.Similarity(a.FacilityName, b.FacilityName)

	prox := geo.Compute(a.Latitude, a.Longitude, b.Latitude, b.Longitude,
		cfg.MatchRadiusKM, cfg.DecayRadiusKM)
	result.GeoScore = prox.Score
	result.GeoDistanceKM = prox.DistanceKM

	result.PhoneScore = phone.MatchScore(a.Phone, b.Phone)
	result.ExternalIDScore = extid.OverlapScore(a.ExternalIdentifiers, b.ExternalIdentifiers)

	// Conflicting regulator identifiers beat every positive signal: two
	// facilities with different registration numbers are different
	// facilities no matter how alike they look.
	if result.ExternalIDScore != nil && *result.ExternalIDScore == 0.0 {
		result.OverrideReason = ReasonConflictingIDs
		result.SignalsUsed = []string{SignalExternalID}
		return result
	}

	if matched := regulatorMatch(a, b, cfg); len(matched) > 0 {
		result.OverrideReason = "regulator_id_match:" + strings.Join(matched, ",")
		result.MatchConfidence = 1.0
		result.Decision = DecisionAutoMerge
		result.SignalsUsed = []string{SignalName, SignalExternalID}
		return result
	}

	// An exact phone match with a close name is decisive on its own: the
	// pair auto-merges even when the boosted confidence sits below the
	// auto-merge threshold.
	if result.PhoneScore != nil && *result.PhoneScore == 1.0 && result.NameScore >= 0.80 {
		result.OverrideReason = ReasonPhoneAndHighName
		result.MatchConfidence = round4(math.Min(1.0, 0.5+0.5*result.NameScore))
		result.Decision = DecisionAutoMerge
		result.SignalsUsed = []string{SignalName, SignalPhone}
		return result
	}

	confidence, signals := composite(&result, cfg.Weights)
	result.SignalsUsed = signals

	if sameLGA(a, b) && cfg.SameLGABoost > 0 {
		confidence = math.Min(1.0, confidence+cfg.SameLGABoost)
		result.LGABoostApplied = true
	}

	result.MatchConfidence = round4(confidence)
	result.Decision = classify(result.MatchConfidence, cfg.Thresholds)
	return result
}

// composite blends the present signals, renormalizing weights so that
// absent signals neither help nor hurt.
func composite(r *MatchResult, w Weights) (float64, []string) {
	type signal struct {
		name   string
		weight float64
		value  float64
	}

	present := []signal{{SignalName, w.Name, r.NameScore}}
	if r.GeoScore != nil {
		present = append(present, signal{SignalGeo, w.Geo, *r.GeoScore})
	}
	if r.PhoneScore != nil {
		present = append(present, signal{SignalPhone, w.Phone, *r.PhoneScore})
	}
	if r.ExternalIDScore != nil {
		present = append(present, signal{SignalExternalID, w.ExternalID, *r.ExternalIDScore})
	}

	var weightSum, weighted float64
	names := make([]string, 0, len(present))
	for _, s := range present {
		weightSum += s.weight
		weighted += s.weight * s.value
		names = append(names, s.name)
	}
	sort.Strings(names)

	if weightSum == 0 {
		return 0.0, names
	}
	return weighted / weightSum, names
}

// regulatorMatch returns the sorted regulator identifier types on which
// both records carry the same value.
func regulatorMatch(a, b *records.CanonicalRecord, cfg Config) []string {
	matched := extid.MatchingTypes(a.ExternalIdentifiers, b.ExternalIdentifiers, cfg.regulatorTypeSet())
	sort.Strings(matched)
	return matched
}

func differentStates(a, b *records.CanonicalRecord) bool {
	keyA := a.StateKey()
	keyB := b.StateKey()
	if keyA == "" || keyB == "" || keyA == records.Unknown || keyB == records.Unknown {
		return false
	}
	return keyA != keyB
}

func sameLGA(a, b *records.CanonicalRecord) bool {
	keyA := a.LGAKey()
	keyB := b.LGAKey()
	return keyA != "" && keyA != records.Unknown && keyA == keyB
}

func classify(confidence float64, t Thresholds) Decision {
	switch {
	case confidence >= t.AutoMerge:
		return DecisionAutoMerge
	case confidence >= t.ReviewLower:
		return DecisionReview
	default:
		return DecisionNoMatch
	}
}

// String implements fmt.Stringer for log output.
func (r MatchResult) String() string {
	return fmt.Sprintf("%s vs %s: %.4f (%s)", r.RecordAID, r.RecordBID, r.MatchConfidence, r.Decision)
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
