package textutil

import (
	"regexp"
	"strings"
)

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// Letters are lowercased, digits and hyphens/underscores are kept, everything
// else becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}

var (
	versionTokenPattern = regexp.MustCompile(`\bv?\d+\.?\d*\.?\d*\b`)
	nonAlnumPattern     = regexp.MustCompile(`[^a-z0-9\s]`)
)

// NormalizeName lowercases a software name, strips version/year tokens and
// non-alphanumeric characters, and collapses whitespace. The result is used as
// the metadata cache key.
func NormalizeName(name string) string {
	normalized := strings.ToLower(name)
	normalized = versionTokenPattern.ReplaceAllString(normalized, "")
	normalized = nonAlnumPattern.ReplaceAllString(normalized, " ")
	return strings.Join(strings.Fields(normalized), " ")
}
