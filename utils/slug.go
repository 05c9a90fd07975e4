package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength matches the groups.slug column.
const MaxSlugLength = 50

var (
	slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	slugUnsafe  = regexp.MustCompile(`[^a-z0-9_]+`)
)

// Slugify derives a slug from a title: diacritics are stripped, letters
// lower-cased and every other run of characters becomes one hyphen.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, title)
	if err != nil {
		plain = title
	}
	s := slugUnsafe.ReplaceAllString(strings.ToLower(plain), "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxSlugLength {
		s = strings.TrimRight(s[:MaxSlugLength], "-")
	}
	return s
}

// ValidSlug reports whether s is a non-empty slug of letters, digits,
// underscores and hyphens that fits the column.
func ValidSlug(s string) bool {
	return len(s) <= MaxSlugLength && slugPattern.MatchString(s)
}
