package catalog

import (
	"path/filepath"
	"time"
)

// Ledger entry kinds. A clean filename is recorded as scanned; anything else
// carries its highest-priority naming violation kind.
const (
	KindScanned = "scanned"
)

// Review statuses.
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewManual   = "manual"
	ReviewIgnored  = "ignored"
)

// Metadata cache sources.
const (
	SourceAI     = "ai"
	SourceManual = "manual"
)

// maxFeatures caps the features list persisted per product.
const maxFeatures = 20

// Product is one software title anchored to a library folder.
type Product struct {
	ID                  int64
	Title               string
	Subtitle            string
	Description         string
	Vendor              string
	IconURL             string
	Category            string
	FolderPath          string
	IsPortable          bool
	OfficialWebsite     string
	LicenseType         string
	Platform            string
	DetailedDescription string
	Features            []string
	SystemRequirements  map[string]string
	SupportedFormats    []string
	InstallationInfo    map[string]string
	ReleaseNotes        string
	ReleaseDate         string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Version is one release file belonging to a product.
type Version struct {
	ID          int64
	ProductID   int64
	VersionName string
	FileName    string
	FilePath    string
	FileSize    int64
	ReleaseDate time.Time
	IsPortable  bool
	CreatedAt   time.Time
}

// LedgerEntry records one discovered file awaiting (or past) matching.
// Resolved entries carry both catalog references or neither.
type LedgerEntry struct {
	ID         int64
	FolderPath string
	FileName   string
	Kind       string
	Details    string
	Suggestion string
	Resolved   bool
	ProductID  *int64
	VersionID  *int64
	CreatedAt  time.Time
}

// FilePath joins the entry's folder and file name.
func (e *LedgerEntry) FilePath() string {
	return filepath.Join(e.FolderPath, e.FileName)
}

// ReviewItem is a low-confidence match parked for operator review.
type ReviewItem struct {
	ID            int64
	FilePath      string
	FileName      string
	FolderPath    string
	ParsedName    string
	ParsedVersion string
	ParsedVendor  string
	SuggestedJSON string
	Confidence    float64
	Status        string
	ManualJSON    string
	ReviewedBy    string
	CreatedAt     time.Time
	ReviewedAt    *time.Time
}

// CacheEntry is cached synthesized metadata keyed by normalized software
// name.
type CacheEntry struct {
	ID           int64
	SoftwareName string
	MetadataJSON string
	Confidence   float64
	Source       string
	HitCount     int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
