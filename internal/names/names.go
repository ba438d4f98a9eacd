// Package names normalizes player names scraped or fetched from different
// sources into a single join key.
package names

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// suffixes is the closed list of generational suffixes removed by Normalize.
// Matching is whole-word and case-sensitive; a trailing period is consumed.
var suffixes = []string{"Jr", "Sr", "III", "II", "IV"}

var (
	suffixPattern = regexp.MustCompile(`\b(?:` + strings.Join(suffixes, "|") + `)\b\.?`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// Normalize returns the join key for a player name: diacritics stripped,
// suffixes removed, whitespace collapsed, lowercased.
func Normalize(name string) string {
	name = StripDiacritics(name)
	name = suffixPattern.ReplaceAllString(name, "")
	name = spacePattern.ReplaceAllString(name, " ")
	return strings.ToLower(strings.TrimSpace(name))
}

// StripDiacritics decomposes the string (NFD) and drops combining marks.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Suffixes returns the suffixes stripped by Normalize.
func Suffixes() []string {
	out := make([]string, len(suffixes))
	copy(out, suffixes)
	return out
}
