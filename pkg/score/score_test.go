package score

import (
	"math"
	"testing"

	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/records"
)

type recOpt func(*records.CanonicalRecord)

func rec(id string, opts ...recOpt) *records.CanonicalRecord {
	lat := 6.4500
	lon := 3.4200
	r := &records.CanonicalRecord{
		ID:           id,
		FacilityName: "Greenlife Pharmacy",
		State:        "Lagos",
		Latitude:     &lat,
		Longitude:    &lon,
		SourceID:     "src-test",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func withName(name string) recOpt {
	return func(r *records.CanonicalRecord) { r.FacilityName = name }
}

func withState(state string) recOpt {
	return func(r *records.CanonicalRecord) { r.State = state }
}

func withLGA(lga string) recOpt {
	return func(r *records.CanonicalRecord) { r.LGA = lga }
}

func withPhone(phone string) recOpt {
	return func(r *records.CanonicalRecord) { r.Phone = phone }
}

func withIDs(ids map[string]string) recOpt {
	return func(r *records.CanonicalRecord) { r.ExternalIdentifiers = ids }
}

func withoutCoords() recOpt {
	return func(r *records.CanonicalRecord) {
		r.Latitude = nil
		r.Longitude = nil
	}
}

func TestComputeMatchSymmetric(t *testing.T) {
	a := rec("A", withName("Greenlife Pharmacy"), withPhone("08031234567"))
	b := rec("B", withName("Greenlife Chemist"), withPhone("0803 123 4567"))
	cfg := DefaultConfig()

	ab := ComputeMatch(a, b, cfg)
	ba := ComputeMatch(b, a, cfg)
	if ab.MatchConfidence != ba.MatchConfidence {
		t.Errorf("confidence not symmetric: %v vs %v", ab.MatchConfidence, ba.MatchConfidence)
	}
	if ab.Decision != ba.Decision {
		t.Errorf("decision not symmetric: %v vs %v", ab.Decision, ba.Decision)
	}
}

func TestDifferentStatesBlocked(t *testing.T) {
	a := rec("A", withState("Lagos"))
	b := rec("B", withState("Kano"))

	result := ComputeMatch(a, b, DefaultConfig())
	if result.Decision != DecisionNoMatch {
		t.Errorf("decision = %v, want no_match", result.Decision)
	}
	if result.MatchConfidence != 0.0 {
		t.Errorf("confidence = %v, want 0.0", result.MatchConfidence)
	}
	if result.OverrideReason != ReasonDifferentState {
		t.Errorf("override reason = %q, want %q", result.OverrideReason, ReasonDifferentState)
	}
}

func TestMissingStateNotBlocked(t *testing.T) {
	a := rec("A", withState(""))
	b := rec("B", withState("Lagos"))

	result := ComputeMatch(a, b, DefaultConfig())
	if result.OverrideReason == ReasonDifferentState {
		t.Error("a record without a state must not be state-blocked")
	}
}

func TestStateBlockingDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SameStateRequired = false

	a := rec("A", withState("Lagos"))
	b := rec("B", withState("Kano"))

	result := ComputeMatch(a, b, cfg)
	if result.MatchConfidence == 0.0 {
		t.Error("with blocking disabled, identical records in different states must still score")
	}
}

func TestIdenticalRecordsAutoMerge(t *testing.T) {
	a := rec("A", withPhone("08031234567"))
	b := rec("B", withPhone("08031234567"))
	cfg := DefaultConfig()

	result := ComputeMatch(a, b, cfg)
	if result.MatchConfidence < cfg.Thresholds.AutoMerge {
		t.Errorf("confidence = %v, want >= %v", result.MatchConfidence, cfg.Thresholds.AutoMerge)
	}
	if result.Decision != DecisionAutoMerge {
		t.Errorf("decision = %v, want auto_merge", result.Decision)
	}
}

func TestConflictingIdentifiersForceNoMatch(t *testing.T) {
	a := rec("A", withIDs(map[string]string{"pcn_registration": "PCN-001"}))
	b := rec("B", withIDs(map[string]string{"pcn_registration": "PCN-999"}))

	result := ComputeMatch(a, b, DefaultConfig())
	if result.Decision != DecisionNoMatch {
		t.Errorf("decision = %v, want no_match despite identical name and location", result.Decision)
	}
	if result.OverrideReason != ReasonConflictingIDs {
		t.Errorf("override reason = %q, want %q", result.OverrideReason, ReasonConflictingIDs)
	}
	if result.MatchConfidence != 0.0 {
		t.Errorf("confidence = %v, want 0.0", result.MatchConfidence)
	}
}

func TestConflictBeatsMatchingType(t *testing.T) {
	// One matching and one conflicting shared type: the conflict wins.
	a := rec("A", withIDs(map[string]string{
		"pcn_registration": "PCN-001",
		"nafdac_license":   "NAF-77",
	}))
	b := rec("B", withIDs(map[string]string{
		"pcn_registration": "PCN-001",
		"nafdac_license":   "NAF-99",
	}))

	result := ComputeMatch(a, b, DefaultConfig())
	if result.Decision != DecisionNoMatch || result.OverrideReason != ReasonConflictingIDs {
		t.Errorf("got decision=%v reason=%q, want conflicting-ids no_match",
			result.Decision, result.OverrideReason)
	}
}

func TestRegulatorIdentifierForcesAutoMerge(t *testing.T) {
	a := rec("A", withName("Alpha Ventures"),
		withIDs(map[string]string{"pcn_registration": "PCN-001"}))
	b := rec("B", withName("Completely Different Outlet"),
		withIDs(map[string]string{"pcn_registration": "PCN-001"}))

	result := ComputeMatch(a, b, DefaultConfig())
	if result.Decision != DecisionAutoMerge {
		t.Errorf("decision = %v, want auto_merge on regulator id match", result.Decision)
	}
	if result.MatchConfidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", result.MatchConfidence)
	}
	if result.OverrideReason != "regulator_id_match:pcn_registration" {
		t.Errorf("override reason = %q", result.OverrideReason)
	}
}

func TestNonRegulatorIdentifierDoesNotOverride(t *testing.T) {
	a := rec("A", withName("Alpha Ventures"),
		withIDs(map[string]string{"osm_node": "123456"}))
	b := rec("B", withName("Completely Different Outlet"),
		withIDs(map[string]string{"osm_node": "123456"}))

	result := ComputeMatch(a, b, DefaultConfig())
	if result.MatchConfidence == 1.0 {
		t.Error("a non-regulator identifier match must not force confidence 1.0")
	}
}

func TestPhonePlusHighNameOverride(t *testing.T) {
	a := rec("A", withName("Greenlife Pharmacy"), withPhone("08031234567"))
	b := rec("B", withName("Greenlife Chemist"), withPhone("+234-803-123-4567"))

	result := ComputeMatch(a, b, DefaultConfig())
	if result.OverrideReason != ReasonPhoneAndHighName {
		t.Fatalf("override reason = %q, want %q", result.OverrideReason, ReasonPhoneAndHighName)
	}
	if result.Decision != DecisionAutoMerge {
		t.Errorf("decision = %v, want auto_merge", result.Decision)
	}
	// Both names normalize to "greenlife", so confidence = 0.5 + 0.5*1.0.
	if result.MatchConfidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", result.MatchConfidence)
	}
}

func TestPhoneOverrideForcesAutoMergeBelowThreshold(t *testing.T) {
	// A one-letter misspelling keeps the name score in [0.80, 0.95) so
	// the boosted confidence lands under the auto-merge threshold; the
	// override must still force an auto-merge rather than reclassify.
	a := rec("A", withName("Greenlife Pharmacy"), withPhone("08031234567"))
	b := rec("B", withName("Greenlyfe Pharmacy"), withPhone("08031234567"))

	cfg := DefaultConfig()
	result := ComputeMatch(a, b, cfg)
	if result.OverrideReason != ReasonPhoneAndHighName {
		t.Fatalf("override reason = %q, want %q", result.OverrideReason, ReasonPhoneAndHighName)
	}
	if result.NameScore < 0.80 || result.NameScore >= 0.90 {
		t.Fatalf("name score = %v, want a value in [0.80, 0.90)", result.NameScore)
	}
	if result.MatchConfidence >= cfg.Thresholds.AutoMerge {
		t.Fatalf("confidence = %v, want below the %v threshold",
			result.MatchConfidence, cfg.Thresholds.AutoMerge)
	}
	if result.Decision != DecisionAutoMerge {
		t.Errorf("decision = %v, want auto_merge", result.Decision)
	}
}

func TestPhoneMatchLowNameNoOverride(t *testing.T) {
	a := rec("A", withName("Alpha Pharmacy"), withPhone("08031234567"))
	b := rec("B", withName("Zenith Chemist"), withPhone("08031234567"))

	result := ComputeMatch(a, b, DefaultConfig())
	if result.OverrideReason == ReasonPhoneAndHighName {
		t.Error("phone override must require name similarity >= 0.80")
	}
}

func TestMissingGeoRedistributesWeights(t *testing.T) {
	a := rec("A", withoutCoords())
	b := rec("B")

	result := ComputeMatch(a, b, DefaultConfig())
	if result.GeoScore != nil {
		t.Error("geo score must be indeterminate when coordinates are missing")
	}
	for _, s := range result.SignalsUsed {
		if s == SignalGeo {
			t.Error("geo must not appear in signals_used when indeterminate")
		}
	}
	// Name is the only present signal, so confidence equals the name score.
	if math.Abs(result.MatchConfidence-result.NameScore) > 1e-9 {
		t.Errorf("confidence = %v, want name score %v", result.MatchConfidence, result.NameScore)
	}
}

func TestLGABoost(t *testing.T) {
	cfg := DefaultConfig()

	// Names close but not identical so no override path fires.
	base := ComputeMatch(
		rec("A", withName("Goodwill Pharmacy Ikeja")),
		rec("B", withName("Goodwill Pharmacy")),
		cfg)
	boosted := ComputeMatch(
		rec("A", withName("Goodwill Pharmacy Ikeja"), withLGA("Ikeja")),
		rec("B", withName("Goodwill Pharmacy"), withLGA("ikeja")),
		cfg)

	if !boosted.LGABoostApplied {
		t.Fatal("boost flag not set for matching LGAs")
	}
	if base.LGABoostApplied {
		t.Fatal("boost flag set without matching LGAs")
	}
	diff := boosted.MatchConfidence - base.MatchConfidence
	if math.Abs(diff-cfg.SameLGABoost) > 5e-4 {
		t.Errorf("boost delta = %v, want %v", diff, cfg.SameLGABoost)
	}
}

func TestLGABoostCappedAtOne(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SameLGABoost = 0.5

	result := ComputeMatch(
		rec("A", withLGA("Ikeja")),
		rec("B", withLGA("Ikeja")),
		cfg)
	if result.MatchConfidence > 1.0 {
		t.Errorf("confidence = %v, must be capped at 1.0", result.MatchConfidence)
	}
}

func TestUnknownLGANotBoosted(t *testing.T) {
	result := ComputeMatch(
		rec("A", withLGA("unknown")),
		rec("B", withLGA("unknown")),
		DefaultConfig())
	if result.LGABoostApplied {
		t.Error("the unknown sentinel must not trigger the LGA boost")
	}
}

func TestSignalsUsedComplete(t *testing.T) {
	a := rec("A", withPhone("08031234567"),
		withIDs(map[string]string{"osm_node": "1"}))
	b := rec("B", withPhone("08031234567"),
		withIDs(map[string]string{"osm_node": "1"}))

	result := ComputeMatch(a, b, DefaultConfig())
	want := map[string]bool{
		SignalName: true, SignalGeo: true, SignalPhone: true, SignalExternalID: true,
	}
	// Phone override fires here (identical names), so only check when the
	// composite path ran.
	if result.OverrideReason == "" {
		if len(result.SignalsUsed) != len(want) {
			t.Errorf("signals_used = %v, want all four", result.SignalsUsed)
		}
	}
}

func TestThresholdBoundaries(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		confidence float64
		want       Decision
	}{
		{0.95, DecisionAutoMerge},
		{0.9499, DecisionReview},
		{0.70, DecisionReview},
		{0.6999, DecisionNoMatch},
		{0.0, DecisionNoMatch},
	}
	for _, tt := range tests {
		if got := classify(tt.confidence, cfg.Thresholds); got != tt.want {
			t.Errorf("classify(%v) = %v, want %v", tt.confidence, got, tt.want)
		}
	}
}
