// Package normalize canonicalizes free text (titles, artist names) into a
// comparable form.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Stopwords are tokens that carry no identity for a song or artist
var Stopwords = map[string]struct{}{
	"official":  {},
	"video":     {},
	"audio":     {},
	"lyrics":    {},
	"music":     {},
	"hd":        {},
	"4k":        {},
	"resmi":     {},
	"klip":      {},
	"clip":      {},
	"mv":        {},
	"ft":        {},
	"feat":      {},
	"featuring": {},
	"with":      {},
	"x":         {},
	"&":         {},
	"and":       {},
	"ve":        {},
}

// turkishFold is applied before Unicode decomposition. ı has no decomposition.
var turkishFold = strings.NewReplacer(
	"ğ", "g",
	"ü", "u",
	"ş", "s",
	"ı", "i",
	"ö", "o",
	"ç", "c",
)

// Fold lowercases text and strips diacritics
func Fold(text string) string {
	s := strings.ToLower(text)
	s = turkishFold.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// String returns the canonical form of text: folded, punctuation replaced by
// spaces, whitespace collapsed and stopwords removed
func String(text string) string {
	return strings.Join(Tokens(text), " ")
}

// Tokens returns the canonical tokens of text in order
func Tokens(text string) []string {
	s := Fold(text)

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)

	fields := strings.Fields(s)
	tokens := fields[:0]
	for _, f := range fields {
		if _, stop := Stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
