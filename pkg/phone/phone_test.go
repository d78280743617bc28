package phone

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"international with plus", "+2348031234567", "8031234567"},
		{"international with separators", "+234-803-123-4567", "8031234567"},
		{"international without plus", "2348031234567", "8031234567"},
		{"local with leading zero", "08031234567", "8031234567"},
		{"local with spaces", "0803 123 4567", "8031234567"},
		{"already ten digits", "8031234567", "8031234567"},
		{"unrecognized length kept as digits", "12345", "12345"},
		{"empty", "", ""},
		{"no digits", "n/a", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want *float64
	}{
		{"equal after normalization", "08031234567", "+234-803-123-4567", ptr(1.0)},
		{"different numbers", "08031234567", "08099999999", ptr(0.0)},
		{"a absent", "", "08031234567", nil},
		{"b absent", "08031234567", "  ", nil},
		{"both absent", "", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchScore(tt.a, tt.b)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("MatchScore(%q, %q) = %v, want indeterminate", tt.a, tt.b, *got)
			case tt.want != nil && got == nil:
				t.Errorf("MatchScore(%q, %q) = indeterminate, want %v", tt.a, tt.b, *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("MatchScore(%q, %q) = %v, want %v", tt.a, tt.b, *got, *tt.want)
			}
		})
	}
}

func ptr(f float64) *float64 { return &f }
