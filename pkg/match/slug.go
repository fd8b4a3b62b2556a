package match

import (
	"regexp"
	"strings"
)

var (
	trailingDigits = regexp.MustCompile(`\d+$`)
	camelWord      = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	lowerUpper     = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// StripTrailingDigits removes a trailing run of ASCII digits: "Lithium9"
// becomes "Lithium".
func StripTrailingDigits(name string) string {
	return trailingDigits.ReplaceAllString(name, "")
}

// BaseSlug derives a catalog slug guess from a display name: trailing
// digits are dropped, camel-case boundaries become hyphens, the result is
// lower-cased and spaces become hyphens. "ThisModDoesNotExist" becomes
// "this-mod-does-not-exist".
func BaseSlug(name string) string {
	s := StripTrailingDigits(name)
	s = camelWord.ReplaceAllString(s, "${1}-${2}")
	s = lowerUpper.ReplaceAllString(s, "${1}-${2}")
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}

// Slugs returns the slug candidates tried by the fallback strategy, in
// order: the base slug, then its -fabric and -forge variants. A name that
// reduces to an empty slug has no candidates.
func Slugs(name string) []string {
	base := BaseSlug(name)
	if base == "" {
		return nil
	}
	return []string{base, base + "-fabric", base + "-forge"}
}
