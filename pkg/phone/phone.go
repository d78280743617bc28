// Package phone canonicalizes Nigerian phone numbers to a 10-digit local
// form and compares them. Normalization is best effort and never fails:
// numbers that don't match a recognized national pattern fall back to
// their stripped-digit form unmodified.
package phone

import (
	"regexp"
	"strings"
)

var nonDigitPattern = regexp.MustCompile(`[^0-9]`)

// Normalize canonicalizes a Nigerian phone number.
//
//	"+234 803 123 4567" → "8031234567"
//	"08031234567"       → "8031234567"
//	"234-803-123-4567"  → "8031234567"
//
// Returns "" when the input has no digits at all (absent).
func Normalize(raw string) string {
	digits := nonDigitPattern.ReplaceAllString(raw, "")
	if digits == "" {
		return ""
	}

	switch {
	case len(digits) == 13 && strings.HasPrefix(digits, "234"):
		return digits[3:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return digits[1:]
	default:
		// Unrecognized pattern: keep stripped digits as-is. A 10-digit
		// local number passes through here unchanged.
		return digits
	}
}

// MatchScore compares two phone numbers.
//
//	1.0: normalized numbers match exactly
//	0.0: normalized numbers differ
//	nil: one or both numbers absent (indeterminate)
func MatchScore(a, b string) *float64 {
	normA := Normalize(a)
	normB := Normalize(b)

	if normA == "" || normB == "" {
		return nil
	}

	score := 0.0
	if normA == normB {
		score = 1.0
	}
	return &score
}
