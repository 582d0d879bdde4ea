package textutil

import (
	"strings"
	"unicode"
)

// SafeToken converts a string to a filesystem-safe token while preserving
// case, since upstream video IDs are case-sensitive. ASCII letters, digits,
// hyphens, and underscores are kept; everything else becomes an underscore.
// Returns "unknown" for empty input.
func SafeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "unknown"
	}
	return out
}

// SafeTitle keeps only letters, digits, and spaces from a title and trims
// trailing spaces, producing a prefix suitable for download file names.
func SafeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Truncate shortens text to at most max runes, marking the cut with "...".
func Truncate(text string, max int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return strings.TrimSpace(string(runes[:max-3])) + "..."
}
