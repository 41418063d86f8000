package naming

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Violation kinds, ordered by check priority. The first violation found is
// the one recorded against a ledger entry.
const (
	KindUnderscoreOveruse = "underscore_overuse"
	KindBracketUsage      = "bracket_usage"
	KindVersionFormat     = "version_format"
	KindLowercaseName     = "lowercase_name"
	KindComplexName       = "complex_name"
	KindInvalidChars      = "invalid_chars"
)

// Violation describes one naming rule a filename breaks, with a concrete
// rename suggestion where a mechanical fix exists.
type Violation struct {
	Kind       string
	Details    string
	Suggestion string
}

// Result is the outcome of validating a single filename.
type Result struct {
	Valid      bool
	Violations []Violation
}

var (
	looseVersionPattern = regexp.MustCompile(`(?i)(?:[\s\._]|^)(\d+(?:\.\d+)+)(?:\s|_|\.|\-|$)`)
	vPrefixPattern      = regexp.MustCompile(`(?i)[\s\._]v\d+`)
	underscoreRuns      = regexp.MustCompile(`_+`)
)

var acronyms = map[string]struct{}{
	"cc": {}, "ui": {}, "ux": {}, "api": {}, "sdk": {}, "ide": {},
}

// Validate checks a filename (extension included) against the naming rules.
func Validate(filename string) Result {
	base := filename
	ext := ""
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		base = filename[:idx]
		ext = filename[idx:]
	}

	var violations []Violation

	if count := strings.Count(base, "_"); count >= 3 {
		violations = append(violations, Violation{
			Kind:       KindUnderscoreOveruse,
			Details:    fmt.Sprintf("filename uses %d underscores; use spaces instead", count),
			Suggestion: suggestUnderscoreFix(base) + ext,
		})
	}

	if strings.ContainsAny(filename, "[]") {
		fixed := strings.ReplaceAll(strings.ReplaceAll(filename, "[", ""), "]", "")
		fixed = strings.TrimSpace(strings.ReplaceAll(fixed, "  ", " "))
		violations = append(violations, Violation{
			Kind:       KindBracketUsage,
			Details:    "square brackets are not allowed; fold the text into the product name or drop it",
			Suggestion: fixed,
		})
	}

	if version := looseVersion(base); version != "" && !vPrefixPattern.MatchString(base) {
		violations = append(violations, Violation{
			Kind:       KindVersionFormat,
			Details:    fmt.Sprintf("version %q is missing the v prefix", version),
			Suggestion: suggestVersionFix(base, version) + ext,
		})
	}

	if isAllLower(base) && len([]rune(base)) > 5 {
		violations = append(violations, Violation{
			Kind:       KindLowercaseName,
			Details:    "filename is entirely lowercase; use the product's official capitalization",
			Suggestion: suggestTitleCase(base) + ext,
		})
	}

	if length := len([]rune(base)); length > 100 {
		violations = append(violations, Violation{
			Kind:       KindComplexName,
			Details:    fmt.Sprintf("filename is %d characters long; keep it concise", length),
			Suggestion: "simplify to the Product vVersion - Description form",
		})
	}

	if invalid := invalidChars(base); len(invalid) > 0 {
		fixed := filename
		for _, c := range invalid {
			fixed = strings.ReplaceAll(fixed, string(c), "")
		}
		violations = append(violations, Violation{
			Kind:       KindInvalidChars,
			Details:    fmt.Sprintf("disallowed characters: %s", joinRunes(invalid)),
			Suggestion: strings.TrimSpace(fixed),
		})
	}

	return Result{Valid: len(violations) == 0, Violations: violations}
}

func suggestUnderscoreFix(base string) string {
	return strings.TrimSpace(underscoreRuns.ReplaceAllString(base, " "))
}

// looseVersion returns the longest dotted version number in the name, or ""
// when none looks like a version.
func looseVersion(base string) string {
	var best string
	for _, match := range looseVersionPattern.FindAllStringSubmatch(base, -1) {
		if len(match[1]) > len(best) {
			best = match[1]
		}
	}
	return best
}

func suggestVersionFix(base, version string) string {
	replacements := [][2]string{
		{"_" + version, " v" + version},
		{"." + version, " v" + version},
		{" " + version, " v" + version},
	}
	for _, pair := range replacements {
		if strings.Contains(base, pair[0]) {
			return strings.ReplaceAll(base, pair[0], pair[1])
		}
	}
	return base
}

func suggestTitleCase(base string) string {
	prepared := strings.ReplaceAll(base, "_", " ")
	prepared = strings.ReplaceAll(prepared, "-", " - ")
	var out []string
	for _, word := range strings.Fields(prepared) {
		if word == "-" || word == "." {
			out = append(out, word)
			continue
		}
		if _, ok := acronyms[word]; ok {
			out = append(out, strings.ToUpper(word))
			continue
		}
		out = append(out, capitalize(word))
	}
	return strings.Join(out, " ")
}

func capitalize(word string) string {
	runes := []rune(word)
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// isAllLower reports whether the name has at least one cased rune and none
// of them uppercase.
func isAllLower(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsLower(r) {
			cased = true
		}
	}
	return cased
}

// invalidChars returns the distinct disallowed runes in first-seen order.
func invalidChars(base string) []rune {
	seen := make(map[rune]struct{})
	var out []rune
	for _, r := range base {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '.', '-', '_', ' ':
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func joinRunes(runes []rune) string {
	parts := make([]string, len(runes))
	for i, r := range runes {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
