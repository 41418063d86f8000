// Package confidence scores synthesized metadata against the parsed
// filename to decide between automatic registration and operator review.
package confidence

import (
	"strings"

	"appdepot/internal/aimeta"
	"appdepot/internal/parse"
	"appdepot/internal/textutil"
)

// Levels returned by Level.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

// DefaultThreshold is the score at or above which a match is accepted
// without review.
const DefaultThreshold = 0.9

// Weight of each scoring term.
const (
	weightTitle       = 0.30
	weightVendor      = 0.15
	weightDescription = 0.15
	weightCategory    = 0.15
	weightIconURL     = 0.10
	weightWebsite     = 0.15
)

var validCategories = map[string]struct{}{
	"Graphics": {}, "Office": {}, "Development": {}, "Utility": {},
	"Media": {}, "OS": {}, "Security": {}, "Network": {}, "Mac": {},
	"Mobile": {}, "Patch": {}, "Driver": {}, "Source": {}, "Backup": {},
	"Business": {}, "Engineering": {}, "Theme": {}, "Hardware": {},
	"Font": {},
}

var placeholderVendors = map[string]struct{}{
	"unknown": {}, "n/a": {}, "": {},
}

// Score rates synthesized metadata in [0, 1]. Terms: title similarity to
// the parsed name (0.30), a real vendor (0.15), a description of sane
// length (0.15 full, 0.08 for borderline), a known category (0.15), an
// http icon URL (0.10), and an http official website (0.15).
func Score(meta aimeta.Metadata, parsed parse.Parsed) float64 {
	score := titleSimilarity(meta.Title, parsed.SoftwareName) * weightTitle

	if _, placeholder := placeholderVendors[strings.ToLower(meta.Developer)]; !placeholder {
		score += weightVendor
	}

	switch length := len([]rune(meta.DescriptionShort)); {
	case length >= 100 && length <= 500:
		score += weightDescription
	case (length >= 50 && length < 100) || (length > 500 && length <= 1000):
		score += 0.08
	}

	if _, ok := validCategories[meta.Category]; ok {
		score += weightCategory
	}

	if strings.HasPrefix(meta.IconURL, "http") {
		score += weightIconURL
	}
	if strings.HasPrefix(meta.OfficialWebsite, "http") {
		score += weightWebsite
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// titleSimilarity blends sequence similarity with word overlap (70/30) on
// case-folded, whitespace-normalized names.
func titleSimilarity(title, parsedName string) float64 {
	if title == "" || parsedName == "" {
		return 0
	}
	titleNorm := strings.Join(strings.Fields(strings.ToLower(title)), " ")
	parsedNorm := strings.Join(strings.Fields(strings.ToLower(parsedName)), " ")

	similarity := textutil.SequenceRatio(titleNorm, parsedNorm)
	if len(strings.Fields(parsedNorm)) > 0 && len(strings.Fields(titleNorm)) > 0 {
		overlap := textutil.WordOverlap(titleNorm, parsedNorm)
		similarity = similarity*0.7 + overlap*0.3
	}
	return similarity
}

// Level maps a score to high (>= 0.9), medium (>= 0.7), or low.
func Level(score float64) string {
	switch {
	case score >= 0.9:
		return LevelHigh
	case score >= 0.7:
		return LevelMedium
	default:
		return LevelLow
	}
}
