package utils

import (
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s, collapses every run of non-alphanumerics to one hyphen
// and strips leading and trailing hyphens. Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}
