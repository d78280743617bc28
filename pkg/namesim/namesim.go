// Package namesim computes fuzzy similarity between pharmacy facility
// names. Names are normalized to strip the naming noise common to
// Nigerian pharmacy records (legal suffixes, facility-type words,
// abbreviations, accents) and then scored with a blend of edit-distance,
// token-sort, and token-set metrics.
package namesim

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Metric weights for the blended similarity score.
const (
	levenshteinWeight = 0.35
	tokenSortWeight   = 0.40
	tokenSetWeight    = 0.25
)

// abbreviations expands common whole-token abbreviations before noise
// stripping so that "St. Mary Pharmacy" and "Saint Mary Chemist" meet.
var abbreviations = map[string]string{
	"st":    "saint",
	"st.":   "saint",
	"mt":    "mount",
	"mt.":   "mount",
	"dr":    "doctor",
	"dr.":   "doctor",
	"prof":  "professor",
	"prof.": "professor",
	"govt":  "government",
	"gen":   "general",
	"hosp":  "hospital",
	"natl":  "national",
	"fed":   "federal",
	"univ":  "university",
}

// noisePattern strips business suffixes and facility-type words that
// carry no identity signal. Whole tokens only.
var noisePattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join([]string{
	// Business suffixes and legal forms
	`ltd\.?`,
	`limited`,
	`plc`,
	`nig(?:eria)?\.?`,
	`int(?:'?l|ernational)?`,
	`&\s*sons?`,
	`&\s*daughters?`,
	`ent(?:erprise)?s?\.?`,
	`company`,
	`co\.?`,
	`inc\.?`,
	`corp(?:oration)?\.?`,
	`group`,
	`global`,
	`associates?`,
	`ventures?`,
	`and`,
	// Facility-type words
	`pharmacy`,
	`pharmacies`,
	`chemists?`,
	`drug\s*stores?`,
	`medical\s*stores?`,
	`patent\s*(?:medicine)?\s*(?:store|vendor|shop)`,
	`ppmv`,
	`pharmaceuticals?`,
	`pharmaceutics?`,
	`medicals?`,
	`stores?`,
	`shop`,
	`outlet`,
	`clinic`,
	`hospital`,
}, "|") + `)\b`)

var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9\s]`)

// accentStripper decomposes Unicode and drops combining marks, so
// "Pharmacie Béninoise" compares equal to its ASCII spelling.
var accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Result carries the normalized forms and per-metric breakdown of a name
// comparison, for audit output.
type Result struct {
	NormalizedA string  `json:"name_a_normalized"`
	NormalizedB string  `json:"name_b_normalized"`
	Levenshtein float64 `json:"levenshtein"`
	TokenSort   float64 `json:"token_sort"`
	TokenSet    float64 `json:"token_set"`
	Composite   float64 `json:"composite"`
}

// Normalize cleans a facility name for comparison.
//
// Steps, in order: Unicode decompose and strip combining marks,
// lowercase, expand whole-token abbreviations, strip business suffixes
// and facility-type words, drop remaining non-alphanumerics, collapse
// whitespace.
func Normalize(name string) string {
	if name == "" {
		return ""
	}

	text, _, err := transform.String(accentStripper, name)
	if err != nil {
		// Transform failures degrade to the raw input, never an error.
		text = name
	}

	text = strings.ToLower(strings.TrimSpace(text))

	tokens := strings.Fields(text)
	for i, tok := range tokens {
		if expanded, ok := abbreviations[tok]; ok {
			tokens[i] = expanded
		}
	}
	text = strings.Join(tokens, " ")

	text = noisePattern.ReplaceAllString(text, " ")
	text = nonAlnumPattern.ReplaceAllString(text, " ")

	return strings.Join(strings.Fields(text), " ")
}

// Compute normalizes both names and returns the full similarity
// breakdown. All scores are bounded in [0, 1].
func Compute(nameA, nameB string) Result {
	normA := Normalize(nameA)
	normB := Normalize(nameB)

	lev := levenshteinSimilarity(normA, normB)
	tsort := tokenSortSimilarity(normA, normB)
	tset := tokenSetSimilarity(normA, normB)

	composite := levenshteinWeight*lev + tokenSortWeight*tsort + tokenSetWeight*tset

	return Result{
		NormalizedA: normA,
		NormalizedB: normB,
		Levenshtein: round4(lev),
		TokenSort:   round4(tsort),
		TokenSet:    round4(tset),
		Composite:   round4(composite),
	}
}

// Similarity returns only the blended similarity score in [0, 1].
func Similarity(nameA, nameB string) float64 {
	return Compute(nameA, nameB).Composite
}

// levenshteinSimilarity is 1 - distance/max(len). Two empty strings are
// vacuously identical; one empty string matches nothing.
func levenshteinSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	maxLen := utf8.RuneCountInString(a)
	if lb := utf8.RuneCountInString(b); lb > maxLen {
		maxLen = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// tokenSortSimilarity sorts tokens before comparing, handling word-order
// variants like "Ikeja Goodwill" vs "Goodwill Ikeja".
func tokenSortSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	return levenshteinSimilarity(sortedTokens(a), sortedTokens(b))
}

// tokenSetSimilarity compares intersection/remainder token combinations,
// tolerating one name being a subset of the other's token set
// ("Goodwill Pharmacy Ikeja" vs "Goodwill Pharmacy").
func tokenSetSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	setA := tokenSet(a)
	setB := tokenSet(b)

	var inter, diffA, diffB []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter = append(inter, tok)
		} else {
			diffA = append(diffA, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			diffB = append(diffB, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(diffA)
	sort.Strings(diffB)

	base := strings.Join(inter, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(diffA, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(diffB, " "))

	score := levenshteinSimilarity(base, combinedA)
	if s := levenshteinSimilarity(base, combinedB); s > score {
		score = s
	}
	if s := levenshteinSimilarity(combinedA, combinedB); s > score {
		score = s
	}
	return score
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
