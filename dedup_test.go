package dedup

import (
	"context"
	"testing"

	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/records"
	"github.com/bfat-ux/nigeria-pharmacy-registry-sub000/pkg/score"
)

func ptr(f float64) *float64 { return &f }

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := score.DefaultConfig()
	cfg.Thresholds.AutoMerge = 0.5
	cfg.Thresholds.ReviewLower = 0.9

	if _, err := New(WithConfig(cfg)); err == nil {
		t.Fatal("New must reject inverted thresholds")
	}
}

func TestRunNoRecords(t *testing.T) {
	pipe, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := pipe.Run(context.Background(), nil); err == nil {
		t.Fatal("Run must fail with no input records")
	}
}

// Two registrations of the same Lagos pharmacy from different sources:
// the names share the "greenlife" root after facility words are
// stripped, the phones normalize identically, and the locations are
// about a hundred metres apart. The pair must resolve to one survivor
// through the phone-plus-name override.
func TestEndToEndGreenlife(t *testing.T) {
	recs := []records.CanonicalRecord{
		{
			ID:           "pcn-0001",
			FacilityName: "Greenlife Pharmacy Ltd",
			State:        "Lagos",
			LGA:          "Eti-Osa",
			Latitude:     ptr(6.4500),
			Longitude:    ptr(3.4200),
			Phone:        "08031234567",
			SourceID:     "src-pcn-premises",
		},
		{
			ID:           "field-9001",
			FacilityName: "Greenlife Chemist",
			State:        "Lagos",
			Latitude:     ptr(6.4505),
			Longitude:    ptr(3.4195),
			Phone:        "+2348031234567",
			SourceID:     "src-crowdsource-field",
		},
	}

	pipe, err := New(WithWorkers(2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := pipe.Run(context.Background(), recs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.CandidatePairs != 1 {
		t.Fatalf("candidate pairs = %d, want 1", result.CandidatePairs)
	}
	if len(result.Matches) != 1 {
		t.Fatalf("scored pairs = %d, want 1", len(result.Matches))
	}
	match := result.Matches[0]
	if match.Decision != score.DecisionAutoMerge {
		t.Fatalf("decision = %v (reason %q), want auto_merge", match.Decision, match.OverrideReason)
	}
	if match.OverrideReason != "phone_exact_match_with_high_name" {
		t.Errorf("override reason = %q, want the phone+name path", match.OverrideReason)
	}

	registry := result.Outcome.Registry
	if len(registry) != 1 {
		t.Fatalf("registry has %d records, want a single survivor", len(registry))
	}
	survivor := registry[0]
	if survivor.ID != "pcn-0001" {
		t.Errorf("survivor id = %q, want the regulator-source record", survivor.ID)
	}
	if !survivor.IsSurvivor() {
		t.Error("survivor must carry merge provenance")
	}
	if len(survivor.MergeSources) != 2 {
		t.Errorf("merge sources = %v, want both sources", survivor.MergeSources)
	}
}

func TestRunKeepsDistinctRecords(t *testing.T) {
	recs := []records.CanonicalRecord{
		{
			ID:           "pcn-0001",
			FacilityName: "Alpha Pharmacy",
			State:        "Lagos",
			Latitude:     ptr(6.4500),
			Longitude:    ptr(3.4200),
			Phone:        "08031234567",
			SourceID:     "src-pcn-premises",
		},
		{
			ID:           "field-9001",
			FacilityName: "Zenith Chemist",
			State:        "Lagos",
			Latitude:     ptr(6.4510),
			Longitude:    ptr(3.4210),
			Phone:        "08099999999",
			SourceID:     "src-crowdsource-field",
		},
	}

	pipe, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := pipe.Run(context.Background(), recs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Outcome.Registry) != 2 {
		t.Errorf("registry has %d records, want both kept", len(result.Outcome.Registry))
	}
	if result.Outcome.Summary.RecordsAbsorbed != 0 {
		t.Errorf("records absorbed = %d, want 0", result.Outcome.Summary.RecordsAbsorbed)
	}
}

func TestScoreSingle(t *testing.T) {
	pipe, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a := &records.CanonicalRecord{
		ID: "A", FacilityName: "Greenlife Pharmacy", State: "Lagos", SourceID: "src-test",
	}
	b := &records.CanonicalRecord{
		ID: "B", FacilityName: "Greenlife Chemist", State: "Kano", SourceID: "src-test",
	}

	result := pipe.Score(a, b)
	if result.Decision != score.DecisionNoMatch {
		t.Errorf("cross-state pair decision = %v, want no_match", result.Decision)
	}
}
