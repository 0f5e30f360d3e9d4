// Package fuzzy scores the similarity of free-text names such as roles,
// degrees, organizations and schools.
package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legalSuffixes are tokens that carry no identity in organization names.
var legalSuffixes = map[string]struct{}{
	"inc": {}, "llc": {}, "ltd": {}, "limited": {},
	"corp": {}, "corporation": {}, "co": {}, "company": {}, "group": {},
	"holdings": {}, "plc": {}, "pvt": {}, "private": {},
}

// Normalize lower-cases s, folds accents, replaces punctuation with spaces
// and drops legal suffixes. Tokens are separated by single spaces.
func Normalize(s string) string {
	return strings.Join(Tokens(s), " ")
}

// Tokens splits s into normalized, legal-suffix-free tokens.
func Tokens(s string) []string {
	folded := fold(s)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if _, drop := legalSuffixes[f]; drop {
			continue
		}
		out = append(out, f)
	}
	return out
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
