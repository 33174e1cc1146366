// internal/rank/normalize.go
//
// Word normalization shared by the oracle loaders and the guess path.
// A word is lowercased, trimmed, and stripped of combining diacritics
// (NFD decomposition, drop marks, recompose), so "Forêt" and "foret"
// resolve to the same table entry.

package rank

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, trims, and removes diacritics from s.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Transform only fails on malformed UTF-8; fall back to the lowercased input.
		return s
	}
	return out
}
