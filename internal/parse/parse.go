package parse

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Parsed holds the information extracted from a release filename.
type Parsed struct {
	SoftwareName string
	Version      string
	Vendor       string
	Year         string
	IsPortable   bool
}

var (
	extensionPattern  = regexp.MustCompile(`\.[^.]+$`)
	byGroupPattern    = regexp.MustCompile(`(?i)\bby\s+\w+`)
	bracketedPattern  = regexp.MustCompile(`\[.*?\]`)
	archTokenPattern  = regexp.MustCompile(`(?i)[._\s](x64|x86|32bit|64bit)[._\s]`)
	archParenPattern  = regexp.MustCompile(`(?i)\((x64|x86|32bit|64bit|win|portable)\)`)
	buildPattern      = regexp.MustCompile(`(?i)\bbuild[_\s]*\d+`)
	domainPattern     = regexp.MustCompile(`\.\w{2,3}($|\s)`)
	punctuationFilter = regexp.MustCompile(`[._\-\[\]()]`)
	whitespaceFilter  = regexp.MustCompile(`\s+`)

	titleCaser = cases.Title(language.Und)
)

// Parse extracts software name, version, vendor, and year from a filename or
// folder name. parentFolder is used as the name when the filename alone is
// too generic to identify the product (for example "setup.exe").
func Parse(filename, parentFolder string) Parsed {
	stem := extensionPattern.ReplaceAllString(filename, "")

	// Version and year come out before any cleanup mangles them.
	version := extractVersion(stem)
	year := extractYear(stem)

	stem = byGroupPattern.ReplaceAllString(stem, "")
	stem = bracketedPattern.ReplaceAllString(stem, "")
	stem = archTokenPattern.ReplaceAllString(stem, " ")
	stem = archParenPattern.ReplaceAllString(stem, "")
	stem = buildPattern.ReplaceAllString(stem, "")
	stem = domainPattern.ReplaceAllString(stem, " ")

	cleaned := punctuationFilter.ReplaceAllString(stem, " ")
	cleaned = strings.TrimSpace(whitespaceFilter.ReplaceAllString(cleaned, " "))

	name := extractSoftwareName(cleaned, version, year)

	// A too-short or purely generic name means the file does not identify
	// the product; fall back to the folder it lives in.
	_, generic := noiseWords[strings.ToLower(name)]
	if (len(name) < 3 || generic) && parentFolder != "" {
		name = parentFolder
	}

	return Parsed{
		SoftwareName: strings.TrimSpace(name),
		Version:      version,
		Vendor:       extractVendor(name),
		Year:         year,
		IsPortable:   isPortable(filename, parentFolder),
	}
}

func extractSoftwareName(text, version, year string) string {
	result := text

	if version != "" {
		for _, token := range strings.Fields(version) {
			escaped := regexp.QuoteMeta(token)
			result = regexp.MustCompile(`(?i)\bv?`+escaped+`\b`).ReplaceAllString(result, "")
			result = regexp.MustCompile(`(?i)\bSP`+escaped+`\b`).ReplaceAllString(result, "")
			result = regexp.MustCompile(`(?i)\bR`+escaped+`\b`).ReplaceAllString(result, "")
		}
	}
	if year != "" {
		result = regexp.MustCompile(`\b`+year+`\b`).ReplaceAllString(result, "")
	}

	var filtered []string
	for _, word := range strings.Fields(result) {
		lower := strings.ToLower(word)
		if _, edition := editionWords[lower]; edition {
			filtered = append(filtered, word)
			continue
		}
		_, noise := noiseWords[lower]
		if !noise && !isAllDigits(word) && len(word) > 1 {
			filtered = append(filtered, word)
		}
	}
	if len(filtered) > 6 {
		filtered = filtered[:6]
	}
	if len(filtered) > 0 {
		return strings.Join(filtered, " ")
	}
	if fields := strings.Fields(text); len(fields) > 0 {
		return fields[0]
	}
	return "Unknown"
}

func extractVendor(softwareName string) string {
	words := strings.Fields(softwareName)
	if len(words) == 0 {
		return ""
	}

	nameLower := strings.ToLower(softwareName)
	for _, vendor := range knownVendors {
		if !strings.Contains(nameLower, vendor) {
			continue
		}
		// Prefer the word as it appears in the name.
		for _, word := range words {
			if strings.ToLower(word) == vendor {
				return titleCaser.String(word)
			}
		}
		if vendor == "ds" {
			return "Dassault Systemes"
		}
		return titleCaser.String(vendor)
	}

	first := []rune(words[0])
	if len(first) >= 2 && unicode.IsUpper(first[0]) {
		return words[0]
	}
	return ""
}

func isAllDigits(word string) bool {
	for _, r := range word {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(word) > 0
}
