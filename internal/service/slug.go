package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonSlug matches every run of characters that may not appear in a slug.
var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts s into a lowercase, hyphen-separated ASCII slug.
// Accents are stripped ("Café" becomes "cafe"), other non-ASCII letters are
// dropped, and any run of separators collapses to a single hyphen.
// The result may be empty.
func Slugify(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = nonSlug.ReplaceAllString(strings.ToLower(out), "-")
	return strings.Trim(out, "-")
}
