// Package hebrew provides Hebrew-aware text and price utilities for retail
// product names. The reconciliation core consumes these as black boxes.
package hebrew

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// niqqudStripper removes combining marks (Hebrew niqqud and cantillation)
// after canonical decomposition.
var niqqudStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Normalize produces the canonical form of a product name used for
// matching and deduplication: niqqud stripped, punctuation dropped,
// Latin lowercased, whitespace collapsed.
func Normalize(raw string) string {
	stripped, _, err := transform.String(niqqudStripper, raw)
	if err != nil {
		stripped = raw
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '/':
			b.WriteRune(' ')
		// other punctuation dropped
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// ContainsHebrew reports whether the string has at least one Hebrew letter.
func ContainsHebrew(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hebrew, r) {
			return true
		}
	}
	return false
}

// HasQualityText reports whether a product name looks like clean
// source-locale text: Hebrew script present, more than five runes, and no
// encoding-replacement markers.
func HasQualityText(name string) bool {
	if !ContainsHebrew(name) {
		return false
	}
	n := 0
	for _, r := range name {
		if r == '�' {
			return false
		}
		n++
	}
	return n > 5
}
