package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9_-]+`)
	slugDashes  = regexp.MustCompile(`-{2,}`)
	slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Slugify turns a title into a URL-safe slug: latin letters, digits,
// hyphen and underscore. Accents are stripped, other runes dropped.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	slug := strings.ToLower(strings.TrimSpace(folded))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugDashes.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// IsValidSlug reports whether s may be used as a slug as is.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
