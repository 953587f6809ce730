// Package slug generates and validates URL-safe store identifiers.
package slug

import (
	"regexp"
	"strings"
)

const (
	MinLength = 3
	MaxLength = 50
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	separators   = regexp.MustCompile(`[\s_-]+`)
	validSlug    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Generate derives a URL-friendly slug from free text: lowercase, special
// characters stripped, runs of spaces/underscores/hyphens collapsed to a
// single hyphen, leading and trailing hyphens removed.
func Generate(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = invalidChars.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Validate reports whether s is an acceptable store slug.
func Validate(s string) bool {
	if len(s) < MinLength || len(s) > MaxLength {
		return false
	}
	return validSlug.MatchString(s)
}
