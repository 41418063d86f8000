package parse

import (
	"regexp"
	"strings"
)

// versionPatterns in priority order: explicit v-prefixed versions first, then
// dotted numerics by decreasing depth, then marketing years, service packs,
// and bare v-numbers. The first hit wins.
var versionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)v(\d+\.\d+\.\d+\.\d+)`),
	regexp.MustCompile(`(?i)v(\d+\.\d+\.\d+)`),
	regexp.MustCompile(`(?i)v(\d+\.\d+)`),
	regexp.MustCompile(`(\d+\.\d+\.\d+\.\d+\.\d+)`),
	regexp.MustCompile(`(\d+\.\d+\.\d+\.\d+)`),
	regexp.MustCompile(`(\d+\.\d+\.\d+)`),
	regexp.MustCompile(`[\s_](\d+\.\d+)[\s_]`),
	regexp.MustCompile(`(?i)\b(365|360|2024|2023|2022|2021|2020|2019|2018|2017|2016)\b`),
	regexp.MustCompile(`\b(20\d{2})\b`),
	regexp.MustCompile(`(?i)\bSP(\d+)\b`),
	regexp.MustCompile(`(?i)\bR(\d+)\b`),
	regexp.MustCompile(`(?i)\bv(\d+)\b`),
}

var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)

func extractVersion(text string) string {
	for _, pattern := range versionPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		version := match[1]
		if strings.Count(version, ".") > 3 {
			parts := strings.Split(version, ".")
			version = strings.Join(parts[:3], ".")
		}
		return version
	}
	return ""
}

func extractYear(text string) string {
	match := yearPattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return match[1]
}
