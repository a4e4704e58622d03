package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics strips diacritical marks from a string (e.g. "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeLabel normalizes a label for search and display matching
// (lowercase, no diacritics, spaces for dashes). Registration uniqueness is
// case-sensitive exact match and intentionally does NOT use this form; it
// only serves fuzzy listing so "jan-novak" finds "Jan Novák".
func NormalizeLabel(label string) string {
	label = removeDiacritics(label)
	label = strings.ToLower(label)
	label = strings.ReplaceAll(label, "-", " ")
	return strings.TrimSpace(label)
}
