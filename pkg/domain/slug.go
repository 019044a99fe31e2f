package domain

import (
	"regexp"
	"strings"
)

var (
	slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Slugify derives a URL-safe slug from a display name.
// Example: "Acme Foundation, Inc." -> "acme-foundation-inc"
func Slugify(name string) string {
	slug := slugSeparators.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// IsSlug reports whether s is already in slug form.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}
