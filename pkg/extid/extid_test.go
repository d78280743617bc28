package extid

import "testing"

func TestOverlapScore(t *testing.T) {
	tests := []struct {
		name string
		a, b map[string]string
		want *float64
	}{
		{
			name: "both empty",
			a:    nil,
			b:    nil,
			want: nil,
		},
		{
			name: "one empty",
			a:    map[string]string{"pcn_registration": "PCN-001"},
			b:    nil,
			want: nil,
		},
		{
			name: "no shared types",
			a:    map[string]string{"pcn_registration": "PCN-001"},
			b:    map[string]string{"nafdac_license": "NAF-77"},
			want: nil,
		},
		{
			name: "shared type matches",
			a:    map[string]string{"pcn_registration": "PCN-001"},
			b:    map[string]string{"pcn_registration": "PCN-001", "nafdac_license": "NAF-77"},
			want: ptr(1.0),
		},
		{
			name: "match is case and whitespace insensitive",
			a:    map[string]string{"pcn_registration": " pcn-001 "},
			b:    map[string]string{"pcn_registration": "PCN-001"},
			want: ptr(1.0),
		},
		{
			name: "shared type conflicts",
			a:    map[string]string{"pcn_registration": "PCN-001"},
			b:    map[string]string{"pcn_registration": "PCN-999"},
			want: ptr(0.0),
		},
		{
			name: "one conflict dominates a match",
			a: map[string]string{
				"pcn_registration": "PCN-001",
				"nafdac_license":   "NAF-77",
			},
			b: map[string]string{
				"pcn_registration": "PCN-001",
				"nafdac_license":   "NAF-99",
			},
			want: ptr(0.0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverlapScore(tt.a, tt.b)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("OverlapScore = %v, want indeterminate", *got)
			case tt.want != nil && got == nil:
				t.Errorf("OverlapScore = indeterminate, want %v", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("OverlapScore = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestOverlapScoreSymmetric(t *testing.T) {
	a := map[string]string{"pcn_registration": "PCN-001", "nhia_facility": "NHIA-5"}
	b := map[string]string{"pcn_registration": "PCN-001"}

	ab := OverlapScore(a, b)
	ba := OverlapScore(b, a)
	if ab == nil || ba == nil || *ab != *ba {
		t.Errorf("OverlapScore not symmetric: %v vs %v", ab, ba)
	}
}

func TestMatchingTypes(t *testing.T) {
	regulator := map[string]bool{
		"pcn_registration": true,
		"nafdac_license":   true,
	}
	a := map[string]string{
		"pcn_registration": "PCN-001",
		"nafdac_license":   "NAF-77",
		"osm_node":         "123456",
	}
	b := map[string]string{
		"pcn_registration": "pcn-001",
		"nafdac_license":   "NAF-99",
		"osm_node":         "123456",
	}

	got := MatchingTypes(a, b, regulator)
	if len(got) != 1 || got[0] != "pcn_registration" {
		t.Errorf("MatchingTypes = %v, want [pcn_registration]", got)
	}
}

func ptr(f float64) *float64 { return &f }
