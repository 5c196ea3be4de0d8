package utils

import (
	"github.com/gosimple/slug"
)

const maxSlugLength = 32

// GenerateSlug builds a tag slug from a display name:
// "Завтрак" -> "zavtrak", "Main Course!" -> "main-course".
// Output is truncated to the tag slug column width.
func GenerateSlug(input string) string {
	s := slug.Make(input)
	if len(s) > maxSlugLength {
		s = s[:maxSlugLength]
		for len(s) > 0 && s[len(s)-1] == '-' {
			s = s[:len(s)-1]
		}
	}
	return s
}

// IsValidSlug reports whether s matches ^[-a-zA-Z0-9_]+$.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
