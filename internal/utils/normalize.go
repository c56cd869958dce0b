package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// mathPunct lists punctuation that carries meaning in math and is kept by Normalize
const mathPunct = `()[]{}.,-/\_*!%'`

// foldChain builds a fresh transformer; transform chains keep state and must not be shared
func foldChain() transform.Transformer {
	stripMarks := runes.Remove(runes.In(unicode.Mn))
	// lower-casing can reintroduce decomposable runes, so decompose and strip again afterwards
	return transform.Chain(
		norm.NFKD,
		stripMarks,
		cases.Lower(language.Und),
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
	)
}

// Normalize canonicalizes recognized text for tolerant comparison.
// It strips diacritics, lower-cases, drops prose punctuation and collapses whitespace.
// Input without any letter or digit normalizes to the empty string.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	folded, _, err := transform.String(foldChain(), SanitizeString(text))
	if err != nil {
		folded = strings.ToLower(text)
	}

	var b strings.Builder
	b.Grow(len(folded))
	hasContent := false
	pendingSpace := false
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r) || unicode.IsControl(r):
			pendingSpace = true
			continue
		case unicode.IsPunct(r) && !strings.ContainsRune(mathPunct, r):
			pendingSpace = true
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			hasContent = true
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}

	if !hasContent {
		return ""
	}
	return b.String()
}

// Tokens returns the whitespace-delimited words of the normalized text
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

// Compact returns the normalized text with all whitespace removed
func Compact(text string) string {
	return strings.Join(Tokens(text), "")
}
