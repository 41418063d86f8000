package parse

import (
	"regexp"
	"strings"
)

var portableMarkers = []*regexp.Regexp{
	regexp.MustCompile(`\bportable\b`),
	regexp.MustCompile(`\bport\b`),
	regexp.MustCompile(`\bportableapps\b`),
	regexp.MustCompile(`\bgreen\b`),
	regexp.MustCompile(`\bnoinstall\b`),
	regexp.MustCompile(`\bstandalone\b`),
}

// Korean markers checked by substring; \b does not apply to Hangul.
var portableMarkersKorean = []string{"포터블", "휴대용"}

func isPortable(filename, parentFolder string) bool {
	haystack := strings.ToLower(filename + " " + parentFolder)
	for _, marker := range portableMarkers {
		if marker.MatchString(haystack) {
			return true
		}
	}
	for _, marker := range portableMarkersKorean {
		if strings.Contains(haystack, marker) {
			return true
		}
	}
	return false
}

var splitArchivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\.part\d+\.rar$`),
	regexp.MustCompile(`\.part\d+$`),
	regexp.MustCompile(`\.z\d{2,3}$`),
	regexp.MustCompile(`\.r\d{2,3}$`),
	regexp.MustCompile(`\.\d{3}$`),
	regexp.MustCompile(`\.7z\.\d{3}$`),
}

// IsSplitArchive reports whether a filename is one segment of a multi-part
// archive (.part01.rar, .z01, .r00, .001, .7z.001 and similar).
func IsSplitArchive(filename string) bool {
	lower := strings.ToLower(filename)
	for _, pattern := range splitArchivePatterns {
		if pattern.MatchString(lower) {
			return true
		}
	}
	return false
}
