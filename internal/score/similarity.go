package score

import (
	"strings"

	"github.com/ppiankov/trackmatch/internal/normalize"
)

// Similarity scores
const (
	ExactScore     = 1.0
	SubstringScore = 0.9
)

// minTokenLen is the shortest token counted as a shared word
const minTokenLen = 3

// Similarity compares two strings as bags of normalized words and returns a
// score in [0,1]. Equal canonical forms score 1.0, containment scores 0.9
// (an empty side is contained in any non-empty one), two empty sides score 0,
// anything else scores the Dice coefficient over shared tokens. A token of a
// consumes at most one matching token of b, so the result is symmetric.
func Similarity(a, b string) float64 {
	na := normalize.String(a)
	nb := normalize.String(b)

	if na == "" && nb == "" {
		return 0
	}
	if na == nb {
		return ExactScore
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return SubstringScore
	}

	ta := strings.Fields(na)
	tb := strings.Fields(nb)
	matches := sharedTokens(ta, tb)

	return 2.0 * float64(matches) / float64(len(ta)+len(tb))
}

// sharedTokens counts the multiset intersection of qualifying tokens
func sharedTokens(a, b []string) int {
	available := make(map[string]int, len(b))
	for _, tok := range b {
		if len([]rune(tok)) >= minTokenLen {
			available[tok]++
		}
	}

	matches := 0
	for _, tok := range a {
		if available[tok] > 0 {
			available[tok]--
			matches++
		}
	}
	return matches
}
