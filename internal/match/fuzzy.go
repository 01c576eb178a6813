// Package match provides the fuzzy string matching primitive shared by the
// brand authority resolver and table lookups. Scoring is token-order
// insensitive so "Press Cawston" still matches "Cawston Press", and edit
// distance based so minor misspellings score high regardless of length.
package match

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the minimum score (0-100) accepted when the caller
// does not supply one.
const DefaultThreshold = 80

// Result is a successful match.
type Result struct {
	// Candidate is the matched candidate exactly as supplied.
	Candidate string
	// Score is the similarity score, 0-100.
	Score int
}

var foldDiacritics = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// fold lowercases, strips diacritics, and collapses whitespace so that
// scoring compares content rather than formatting.
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}

// tokenSort reorders the words of a folded string into a canonical order.
func tokenSort(s string) string {
	words := strings.Fields(s)
	sort.Strings(words)
	return strings.Join(words, " ")
}

// Score returns the token-sort similarity of two strings on a 0-100 scale.
// Both inputs are folded before comparison.
func Score(a, b string) int {
	fa, fb := fold(a), fold(b)
	if fa == "" || fb == "" {
		return 0
	}
	if fa == fb {
		return 100
	}
	sim := levenshtein.Similarity(tokenSort(fa), tokenSort(fb), nil)
	return int(sim * 100)
}

// Best returns the highest-scoring candidate at or above threshold, or
// ok=false when none qualifies. Ties go to the earlier candidate in the
// supplied order, which keeps matching deterministic for a fixed set.
func Best(query string, candidates []string, threshold int) (Result, bool) {
	if strings.TrimSpace(query) == "" || len(candidates) == 0 {
		return Result{}, false
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	best := Result{Score: -1}
	for _, c := range candidates {
		if score := Score(query, c); score > best.Score {
			best = Result{Candidate: c, Score: score}
		}
	}

	if best.Score < threshold {
		return Result{}, false
	}
	return best, true
}
