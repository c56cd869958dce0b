// Package fuzzy implements OCR-tolerant text similarity.
package fuzzy

import (
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"github.com/mikey/exam-grader/internal/utils"
)

// DefaultThreshold is the baseline acceptance ratio for fuzzy matches
const DefaultThreshold = 0.85

// Match is a token accepted by ClosestMatch
type Match struct {
	Text  string
	Index int
	Score float64
}

// Ratio returns the indel similarity 2*LCS/(|a|+|b|) of two strings, counted in runes.
// Either side being empty yields 0.
func Ratio(a, b string) float64 {
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}
	if a == b {
		return 1
	}
	lcs := edlib.LCS(a, b)
	return 2 * float64(lcs) / float64(la+lb)
}

// Contains reports whether expected occurs in haystack, exactly or approximately.
// Both sides are normalized first; the haystack is scanned with token windows around
// the expected token count so surrounding words do not dilute the ratio.
func Contains(expected, haystack string, threshold float64) bool {
	exp := utils.Normalize(expected)
	hay := utils.Normalize(haystack)
	if exp == "" || hay == "" {
		return false
	}
	if strings.Contains(hay, exp) {
		return true
	}
	if Ratio(exp, hay) >= threshold {
		return true
	}

	expTokens := strings.Fields(exp)
	hayTokens := strings.Fields(hay)
	if len(expTokens) == 1 {
		_, ok := ClosestMatch(exp, hayTokens, threshold)
		return ok
	}

	minSize := len(expTokens) - 1
	maxSize := len(expTokens) + 1
	for size := minSize; size <= maxSize; size++ {
		if size > len(hayTokens) {
			break
		}
		for start := 0; start+size <= len(hayTokens); start++ {
			window := strings.Join(hayTokens[start:start+size], " ")
			if Ratio(exp, window) >= threshold {
				return true
			}
		}
	}
	return false
}

// ClosestMatch returns the best token scoring at or above threshold.
// Ties keep the earliest token.
func ClosestMatch(expected string, tokens []string, threshold float64) (Match, bool) {
	if expected == "" || len(tokens) == 0 {
		return Match{}, false
	}

	best := Match{Index: -1}
	for i, token := range tokens {
		score := Ratio(expected, token)
		if score >= threshold && score > best.Score {
			best = Match{Text: token, Index: i, Score: score}
		}
	}
	if best.Index < 0 {
		return Match{}, false
	}
	return best, true
}
