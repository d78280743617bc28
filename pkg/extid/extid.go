// Package extid compares external identifier maps (regulator license and
// registration numbers keyed by identifier type). A shared identifier
// type with conflicting values is the strongest available negative
// evidence: one conflict forces the score to zero regardless of matches
// on other shared types.
package extid

import "strings"

// OverlapScore compares two identifier maps.
//
//	1.0: at least one shared type, and every shared type's values match
//	0.0: any shared type has conflicting values
//	nil: no shared identifier types (indeterminate)
//
// Values are compared case-insensitively with surrounding whitespace
// ignored.
func OverlapScore(idsA, idsB map[string]string) *float64 {
	if len(idsA) == 0 || len(idsB) == 0 {
		return nil
	}

	shared := false
	for idType, valA := range idsA {
		valB, ok := idsB[idType]
		if !ok {
			continue
		}
		shared = true
		if !equalValue(valA, valB) {
			score := 0.0
			return &score
		}
	}

	if !shared {
		return nil
	}
	score := 1.0
	return &score
}

// MatchingTypes returns the shared identifier types whose values match,
// restricted to the given type set. Used by the regulator-ID override to
// report which registrations drove an auto-merge.
func MatchingTypes(idsA, idsB map[string]string, types map[string]bool) []string {
	var matched []string
	for idType, valA := range idsA {
		if !types[idType] {
			continue
		}
		valB, ok := idsB[idType]
		if !ok {
			continue
		}
		if equalValue(valA, valB) {
			matched = append(matched, idType)
		}
	}
	return matched
}

func equalValue(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
