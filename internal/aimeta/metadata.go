package aimeta

import (
	"fmt"
	"strings"

	"appdepot/internal/parse"
)

// Metadata is the provider's view of one software title. Field names follow
// the provider contract; the matcher adapts them onto catalog products.
type Metadata struct {
	Title               string            `json:"title"`
	Subtitle            string            `json:"subtitle"`
	Version             string            `json:"version"`
	Platform            string            `json:"platform"`
	Developer           string            `json:"developer"`
	Category            string            `json:"category"`
	OfficialWebsite     string            `json:"official_website"`
	IconURL             string            `json:"icon_url"`
	LicenseType         string            `json:"license_type"`
	Language            string            `json:"language"`
	DescriptionShort    string            `json:"description_short"`
	DescriptionDetailed string            `json:"description_detailed"`
	Features            []string          `json:"features"`
	SupportedFormats    []string          `json:"supported_formats"`
	SystemRequirements  map[string]string `json:"system_requirements"`
	InstallationInfo    map[string]string `json:"installation_info"`
	ReleaseNotes        string            `json:"release_notes"`
	ReleaseDate         string            `json:"release_date"`
}

// Normalize trims whitespace from the scalar fields and drops empty list
// entries.
func (m *Metadata) Normalize() {
	m.Title = strings.TrimSpace(m.Title)
	m.Subtitle = strings.TrimSpace(m.Subtitle)
	m.Version = strings.TrimSpace(m.Version)
	m.Platform = strings.TrimSpace(m.Platform)
	m.Developer = strings.TrimSpace(m.Developer)
	m.Category = strings.TrimSpace(m.Category)
	m.OfficialWebsite = strings.TrimSpace(m.OfficialWebsite)
	m.IconURL = strings.TrimSpace(m.IconURL)
	m.LicenseType = strings.TrimSpace(m.LicenseType)
	m.Language = strings.TrimSpace(m.Language)
	m.DescriptionShort = strings.TrimSpace(m.DescriptionShort)
	m.DescriptionDetailed = strings.TrimSpace(m.DescriptionDetailed)
	m.ReleaseNotes = strings.TrimSpace(m.ReleaseNotes)
	m.ReleaseDate = strings.TrimSpace(m.ReleaseDate)
	m.Features = trimStrings(m.Features)
	m.SupportedFormats = trimStrings(m.SupportedFormats)
}

func trimStrings(values []string) []string {
	var out []string
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Fallback builds heuristic-only metadata from the parsed filename when the
// provider is disabled or failed.
func Fallback(parsed parse.Parsed) Metadata {
	return Metadata{
		Title:            parsed.SoftwareName,
		Version:          parsed.Version,
		Platform:         "Windows",
		Developer:        parsed.Vendor,
		Category:         "Utility",
		DescriptionShort: fmt.Sprintf("%s software", parsed.SoftwareName),
	}
}
