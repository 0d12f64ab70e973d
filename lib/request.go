package lib

import "strings"

// SanitizeString trims control characters and optionally whitespace from a
// query or form value.
func SanitizeString(s string, trim bool, lower bool) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
	if trim {
		s = strings.TrimSpace(s)
	}
	if lower {
		s = strings.ToLower(s)
	}
	return s
}
