package util

import "strings"

// SanitizeText drops NUL and other control characters that Postgres text
// columns reject or PDF extraction leaves behind. Newlines and tabs survive.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return r
		case r < 0x20, r == 0x7f:
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
