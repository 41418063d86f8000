package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"appdepot/internal/catalog"
	"appdepot/internal/config"
	"appdepot/internal/logging"
	"appdepot/internal/naming"
	"appdepot/internal/services"
	"appdepot/internal/textutil"
)

// ErrScanInProgress reports that another scan already holds the root's lock.
var ErrScanInProgress = errors.New("scan already in progress for this root")

// Result aggregates the outcome of one scan invocation.
type Result struct {
	NewProducts     int      `json:"new_products"`
	NewVersions     int      `json:"new_versions"`
	UpdatedProducts int      `json:"updated_products"`
	DeletedVersions int      `json:"deleted_versions"`
	DeletedProducts int      `json:"deleted_products"`
	AIGenerated     int      `json:"ai_generated"`
	IconsCached     int      `json:"icons_cached"`
	Errors          []string `json:"errors"`
}

// Merge folds another result into this one.
func (r *Result) Merge(other Result) {
	r.NewProducts += other.NewProducts
	r.NewVersions += other.NewVersions
	r.UpdatedProducts += other.UpdatedProducts
	r.DeletedVersions += other.DeletedVersions
	r.DeletedProducts += other.DeletedProducts
	r.AIGenerated += other.AIGenerated
	r.IconsCached += other.IconsCached
	r.Errors = append(r.Errors, other.Errors...)
}

// Scanner walks library roots and records discovered files in the ledger.
type Scanner struct {
	store           *catalog.Store
	logger          *slog.Logger
	lockDir         string
	excludedFolders []string
	excludedGlobs   []string
	excludedPaths   []string
}

// New builds a scanner using the exclusion rules from configuration.
func New(store *catalog.Store, cfg *config.Config, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		store:           store,
		logger:          logging.NewComponentLogger(logger, "scanner"),
		lockDir:         cfg.Paths.StateDir,
		excludedFolders: cfg.Scan.ExcludedFolders,
		excludedGlobs:   cfg.Scan.ExcludedGlobs,
		excludedPaths:   cfg.Scan.ExcludedPaths,
	}
}

// Scan walks one root, records new files in the ledger, and reconciles the
// catalog against what is actually on disk. Folder-level read errors are
// recorded in the result and do not abort the walk; only a missing or
// unusable root fails the invocation.
func (s *Scanner) Scan(ctx context.Context, root string) (Result, error) {
	result := Result{}

	root, err := filepath.Abs(root)
	if err != nil {
		return result, services.Wrap(services.ErrValidation, "scanner", "scan", "resolve root", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return result, services.Wrap(services.ErrValidation, "scanner", "scan",
			fmt.Sprintf("path does not exist: %s", root), err)
	}
	if !info.IsDir() {
		return result, services.Wrap(services.ErrValidation, "scanner", "scan",
			fmt.Sprintf("not a directory: %s", root), nil)
	}

	release, err := s.acquireLock(root)
	if err != nil {
		return result, err
	}
	defer release()

	logger := logging.WithContext(ctx, s.logger)
	logger.Info("scan started", logging.String("root", root))

	seen := make(map[string]struct{})
	s.scanFolder(ctx, root, seen, &result)
	s.reconcile(ctx, root, seen, &result)

	logger.Info("scan finished",
		logging.String("root", root),
		logging.Int("new_entries", result.NewProducts),
		logging.Int("deleted_versions", result.DeletedVersions),
		logging.Int("deleted_products", result.DeletedProducts),
		logging.Int("errors", len(result.Errors)))
	return result, nil
}

// acquireLock takes the per-root lock file so overlapping scans of the same
// root cannot race on existence checks.
func (s *Scanner) acquireLock(root string) (func(), error) {
	if err := os.MkdirAll(s.lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lockPath := filepath.Join(s.lockDir, "scan-"+textutil.SanitizeToken(root)+".lock")
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire scan lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrScanInProgress, root)
	}
	return func() { _ = lock.Unlock() }, nil
}

func (s *Scanner) scanFolder(ctx context.Context, folder string, seen map[string]struct{}, result *Result) {
	if s.folderExcluded(folder) {
		return
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("error processing %s: %v", filepath.Base(folder), err))
		return
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		name := entry.Name()
		if entry.IsDir() {
			s.scanFolder(ctx, filepath.Join(folder, name), seen, result)
			continue
		}
		if s.fileExcluded(name) {
			continue
		}
		filePath := filepath.Join(folder, name)
		seen[filePath] = struct{}{}
		if err := s.recordFile(ctx, folder, name, filePath, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("error processing %s: %v", name, err))
		}
	}
}

func (s *Scanner) folderExcluded(folder string) bool {
	name := strings.ToLower(filepath.Base(folder))
	for _, excluded := range s.excludedFolders {
		if name == strings.ToLower(excluded) {
			return true
		}
	}
	for _, excluded := range s.excludedPaths {
		if expanded, err := config.ExpandPath(excluded); err == nil && expanded == folder {
			return true
		}
	}
	return false
}

// fileExcluded checks a file name against the exact-name exclusions and the
// glob pattern list, both case-insensitively.
func (s *Scanner) fileExcluded(name string) bool {
	lower := strings.ToLower(name)
	for _, excluded := range s.excludedFolders {
		if lower == strings.ToLower(excluded) {
			return true
		}
	}
	for _, pattern := range s.excludedGlobs {
		if matched, err := path.Match(strings.ToLower(pattern), lower); err == nil && matched {
			return true
		}
	}
	return false
}

// recordFile inserts a ledger entry for a newly discovered file. Files
// already in the ledger are skipped; files that already own a version get a
// pre-resolved entry so matching never touches them again.
func (s *Scanner) recordFile(ctx context.Context, folder, name, filePath string, result *Result) error {
	existing, err := s.store.GetEntry(ctx, folder, name)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	entry := &catalog.LedgerEntry{
		FolderPath: folder,
		FileName:   name,
		Kind:       catalog.KindScanned,
		Details:    "scanned file awaiting matching",
		Suggestion: name,
	}
	if verdict := naming.Validate(name); !verdict.Valid {
		first := verdict.Violations[0]
		entry.Kind = string(first.Kind)
		entry.Details = first.Details
		if first.Suggestion != "" {
			entry.Suggestion = first.Suggestion
		}
	}

	version, err := s.store.GetVersionByFilePath(ctx, filePath)
	if err != nil {
		return err
	}
	if version != nil {
		entry.ProductID = &version.ProductID
		entry.VersionID = &version.ID
		entry.Resolved = true
		entry.Details = "file already registered in catalog"
	}

	inserted, err := s.store.InsertEntry(ctx, entry)
	if err != nil {
		return err
	}
	if inserted {
		result.NewProducts++
	}
	return nil
}

// reconcile deletes versions whose files vanished from disk, then products
// left without any version under the root.
func (s *Scanner) reconcile(ctx context.Context, root string, seen map[string]struct{}, result *Result) {
	versions, err := s.store.ListVersionsUnder(ctx, root)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cleanup error: %v", err))
		return
	}

	var stale []*catalog.Version
	var staleIDs []int64
	for _, version := range versions {
		if _, ok := seen[version.FilePath]; !ok {
			stale = append(stale, version)
			staleIDs = append(staleIDs, version.ID)
		}
	}
	if len(staleIDs) > 0 {
		deleted, err := s.store.DeleteVersions(ctx, staleIDs)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("cleanup error: %v", err))
			return
		}
		result.DeletedVersions = int(deleted)

		// Drop the ledger entries for the vanished files too. Leaving them
		// would strand resolved entries whose version reference the FK just
		// nulled while the product reference survived.
		for _, version := range stale {
			if err := s.store.DeleteEntryByFile(ctx, filepath.Dir(version.FilePath), filepath.Base(version.FilePath)); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("cleanup error: %v", err))
			}
		}
	}

	deletedProducts, err := s.store.DeleteProductsWithoutVersionsUnder(ctx, root)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cleanup error: %v", err))
		return
	}
	result.DeletedProducts = int(deletedProducts)
}
