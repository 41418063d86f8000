package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"appdepot/internal/aimeta"
	"appdepot/internal/catalog"
	"appdepot/internal/confidence"
	"appdepot/internal/config"
	"appdepot/internal/logging"
	"appdepot/internal/parse"
	"appdepot/internal/purge"
	"appdepot/internal/services"
	"appdepot/internal/textutil"
)

// Options selects the matching mode for one batch.
type Options struct {
	// SkipClarityCheck disables split-archive filtering and the clarity
	// gate. Set for operator-initiated matching.
	SkipClarityCheck bool
	// Provided carries operator-supplied metadata used verbatim for every
	// folder in the batch instead of cache lookups or synthesis.
	Provided *aimeta.Metadata
}

// ProductSummary describes one product created or updated by a batch.
type ProductSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Vendor      string `json:"vendor"`
	Category    string `json:"category"`
	IconURL     string `json:"icon_url"`
	FolderPath  string `json:"folder_path"`
}

// BatchResult aggregates the outcome of one matching batch.
type BatchResult struct {
	Matched  int
	Failed   int
	Errors   []string
	Products []ProductSummary
}

// Matcher materializes scanned ledger entries into the catalog.
type Matcher struct {
	store     *catalog.Store
	client    *aimeta.Client
	purger    purge.Service
	logger    *slog.Logger
	threshold float64
}

// New builds a matcher. The auto-accept threshold comes from configuration
// and falls back to the scorer's default when unset.
func New(store *catalog.Store, client *aimeta.Client, purger purge.Service, cfg *config.Config, logger *slog.Logger) *Matcher {
	threshold := cfg.Matcher.AutoAcceptThreshold
	if threshold <= 0 {
		threshold = confidence.DefaultThreshold
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Matcher{
		store:     store,
		client:    client,
		purger:    purger,
		logger:    logging.NewComponentLogger(logger, "matcher"),
		threshold: threshold,
	}
}

// Match processes a batch of unresolved ledger entries. Folder groups fail
// independently: a folder whose materialization errors is rolled back and
// counted as failed while the rest of the batch continues.
func (m *Matcher) Match(ctx context.Context, entries []*catalog.LedgerEntry, opts Options) (BatchResult, error) {
	result := BatchResult{}
	if len(entries) == 0 {
		return result, nil
	}
	if _, ok := services.RunIDFromContext(ctx); !ok {
		ctx = services.WithRunID(ctx, uuid.NewString())
	}
	logger := logging.WithContext(ctx, m.logger)

	// Split-archive parts are never eligible for unattended registration.
	filtered := entries
	if !opts.SkipClarityCheck {
		filtered = filtered[:0:0]
		for _, entry := range entries {
			if parse.IsSplitArchive(entry.FileName) {
				continue
			}
			filtered = append(filtered, entry)
		}
	}

	groups, order := groupByFolder(filtered)

	if !opts.SkipClarityCheck {
		order = m.clarityGate(ctx, logger, groups, order, &result)
	}

	for _, folderPath := range order {
		m.matchFolder(ctx, logger, folderPath, groups[folderPath], opts, &result)
	}

	if result.Matched > 0 {
		if err := m.purger.Purge(ctx, purge.CatalogPatterns); err != nil {
			logger.Warn("cache purge failed", logging.Error(err))
		}
	}

	logger.Info("match batch complete",
		logging.Int("matched", result.Matched),
		logging.Int("failed", result.Failed),
		logging.Int("errors", len(result.Errors)))
	return result, nil
}

func groupByFolder(entries []*catalog.LedgerEntry) (map[string][]*catalog.LedgerEntry, []string) {
	groups := make(map[string][]*catalog.LedgerEntry)
	var order []string
	for _, entry := range entries {
		if _, seen := groups[entry.FolderPath]; !seen {
			order = append(order, entry.FolderPath)
		}
		groups[entry.FolderPath] = append(groups[entry.FolderPath], entry)
	}
	return groups, order
}

// clarityGate drops folders whose representative filename the classifier
// judges unclear. Classifier failures are treated as clear so a provider
// outage never blocks the batch.
func (m *Matcher) clarityGate(ctx context.Context, logger *slog.Logger, groups map[string][]*catalog.LedgerEntry, order []string, result *BatchResult) []string {
	kept := order[:0:0]
	for _, folderPath := range order {
		group := groups[folderPath]
		sample := group[0].FileName
		clarity, err := m.client.ClassifyClarity(ctx, sample, filepath.Base(folderPath))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("clarity check failed for %s: %v", folderPath, err))
			kept = append(kept, folderPath)
			continue
		}
		if clarity == aimeta.ClarityUnclear {
			logger.Info("folder left for review", logging.String("folder", folderPath), logging.String("sample", sample))
			continue
		}
		kept = append(kept, folderPath)
	}
	return kept
}

func (m *Matcher) matchFolder(ctx context.Context, logger *slog.Logger, folderPath string, group []*catalog.LedgerEntry, opts Options, result *BatchResult) {
	parsedFolder := parse.Parse(filepath.Base(folderPath), "")

	meta, cachedScore, synthesized, err := m.resolveMetadata(ctx, parsedFolder, opts, result)
	if err != nil {
		meta = aimeta.Fallback(parsedFolder)
	}
	score := confidence.Score(meta, parsedFolder)
	if cachedScore != nil {
		// A cache hit keeps the score it was stored with. Operator-reviewed
		// metadata is seeded at full confidence and must not be re-scored
		// below the auto-accept gate on the next encounter.
		score = *cachedScore
	}

	if synthesized && err == nil {
		m.cacheMetadata(ctx, logger, parsedFolder.SoftwareName, meta, score)
	}

	autoMode := !opts.SkipClarityCheck && opts.Provided == nil
	if autoMode && score < m.threshold {
		m.queueForReview(ctx, logger, folderPath, group, meta, score, result)
		return
	}

	var summary ProductSummary
	folderMatched := 0
	txErr := m.store.WithTx(ctx, func(tx *catalog.Tx) error {
		product, err := m.materializeProduct(ctx, tx, folderPath, parsedFolder, group, meta, opts.Provided != nil)
		if err != nil {
			return err
		}
		for _, entry := range group {
			if err := m.materializeVersion(ctx, tx, product, entry); err != nil {
				return err
			}
			folderMatched++
		}
		summary = ProductSummary{
			ID:          product.ID,
			Title:       product.Title,
			Description: product.Description,
			Vendor:      product.Vendor,
			Category:    product.Category,
			IconURL:     product.IconURL,
			FolderPath:  product.FolderPath,
		}
		return nil
	})
	if txErr != nil {
		result.Failed += len(group)
		result.Errors = append(result.Errors, fmt.Sprintf("failed to process %s: %v", folderPath, txErr))
		logger.Warn("folder match failed", logging.String("folder", folderPath), logging.Error(txErr))
		return
	}
	result.Matched += folderMatched
	result.Products = append(result.Products, summary)
	logger.Info("folder matched",
		logging.String("folder", folderPath),
		logging.String("title", summary.Title),
		logging.Float64("confidence", score),
		logging.Int("files", folderMatched))
}

// resolveMetadata returns the metadata for a folder along with the stored
// score on a cache hit and whether the metadata was freshly synthesized.
// Synthesis failures are recorded in the batch errors and surfaced as an
// error so the caller falls back to heuristic metadata.
func (m *Matcher) resolveMetadata(ctx context.Context, parsedFolder parse.Parsed, opts Options, result *BatchResult) (aimeta.Metadata, *float64, bool, error) {
	if opts.Provided != nil {
		return *opts.Provided, nil, false, nil
	}

	cacheKey := textutil.NormalizeName(parsedFolder.SoftwareName)
	if cached, err := m.store.LookupMetadata(ctx, cacheKey); err == nil && cached != nil {
		var meta aimeta.Metadata
		if err := json.Unmarshal([]byte(cached.MetadataJSON), &meta); err == nil {
			stored := cached.Confidence
			return meta, &stored, false, nil
		}
	}

	meta, err := m.client.Synthesize(ctx, parsedFolder.SoftwareName)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("metadata synthesis failed for %s: %v", parsedFolder.SoftwareName, err))
		return aimeta.Metadata{}, nil, false, err
	}
	return meta, nil, true, nil
}

func (m *Matcher) cacheMetadata(ctx context.Context, logger *slog.Logger, softwareName string, meta aimeta.Metadata, score float64) {
	payload, err := json.Marshal(meta)
	if err != nil {
		return
	}
	key := textutil.NormalizeName(softwareName)
	if key == "" {
		return
	}
	if err := m.store.SaveMetadata(ctx, key, string(payload), score, catalog.SourceAI); err != nil {
		logger.Warn("metadata cache write failed", logging.String("software", softwareName), logging.Error(err))
	}
}

func (m *Matcher) queueForReview(ctx context.Context, logger *slog.Logger, folderPath string, group []*catalog.LedgerEntry, meta aimeta.Metadata, score float64, result *BatchResult) {
	suggested, err := json.Marshal(meta)
	if err != nil {
		result.Failed += len(group)
		result.Errors = append(result.Errors, fmt.Sprintf("failed to queue %s for review: %v", folderPath, err))
		return
	}
	folderName := filepath.Base(folderPath)
	for _, entry := range group {
		parsed := parse.Parse(entry.FileName, folderName)
		item := &catalog.ReviewItem{
			FilePath:      entry.FilePath(),
			FileName:      entry.FileName,
			FolderPath:    entry.FolderPath,
			ParsedName:    parsed.SoftwareName,
			ParsedVersion: parsed.Version,
			ParsedVendor:  parsed.Vendor,
			SuggestedJSON: string(suggested),
			Confidence:    score,
		}
		if err := m.store.UpsertReviewItem(ctx, item); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("failed to queue %s for review: %v", entry.FilePath(), err))
		}
	}
	logger.Info("folder queued for review",
		logging.String("folder", folderPath),
		logging.Float64("confidence", score),
		logging.Int("files", len(group)))
}

// materializeProduct returns the folder's product, creating it when missing.
// Existing products are only updated with non-empty operator-provided fields;
// automatic matching never overwrites an existing product.
func (m *Matcher) materializeProduct(ctx context.Context, tx *catalog.Tx, folderPath string, parsedFolder parse.Parsed, group []*catalog.LedgerEntry, meta aimeta.Metadata, provided bool) (*catalog.Product, error) {
	existing, err := tx.GetProductByFolder(ctx, folderPath)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if provided {
			applyProvidedFields(existing, meta)
			if err := tx.UpdateProduct(ctx, existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}

	product := newProduct(folderPath, parsedFolder, group, meta, provided)
	if err := tx.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func newProduct(folderPath string, parsedFolder parse.Parsed, group []*catalog.LedgerEntry, meta aimeta.Metadata, provided bool) *catalog.Product {
	title := meta.Title
	if title == "" {
		title = parsedFolder.SoftwareName
	}
	description := meta.DescriptionShort
	if description == "" {
		description = fmt.Sprintf("%s software", parsedFolder.SoftwareName)
	}
	category := meta.Category
	if category == "" {
		category = "Utility"
	}

	product := &catalog.Product{
		Title:       title,
		Description: description,
		Vendor:      meta.Developer,
		Category:    category,
		IconURL:     meta.IconURL,
		FolderPath:  folderPath,
		IsPortable:  parse.Parse(group[0].FileName, "").IsPortable,
	}
	if provided {
		product.Subtitle = meta.Subtitle
		product.OfficialWebsite = meta.OfficialWebsite
		product.LicenseType = meta.LicenseType
		product.Platform = meta.Platform
		product.DetailedDescription = meta.DescriptionDetailed
		product.Features = meta.Features
		product.SystemRequirements = meta.SystemRequirements
		product.SupportedFormats = meta.SupportedFormats
		product.InstallationInfo = meta.InstallationInfo
		product.ReleaseNotes = meta.ReleaseNotes
		product.ReleaseDate = meta.ReleaseDate
	}
	return product
}

func applyProvidedFields(product *catalog.Product, meta aimeta.Metadata) {
	if meta.Title != "" {
		product.Title = meta.Title
	}
	if meta.Subtitle != "" {
		product.Subtitle = meta.Subtitle
	}
	if meta.DescriptionShort != "" {
		product.Description = meta.DescriptionShort
	}
	if meta.Developer != "" {
		product.Vendor = meta.Developer
	}
	if meta.Category != "" {
		product.Category = meta.Category
	}
	if meta.OfficialWebsite != "" {
		product.OfficialWebsite = meta.OfficialWebsite
	}
	if meta.LicenseType != "" {
		product.LicenseType = meta.LicenseType
	}
	if meta.Platform != "" {
		product.Platform = meta.Platform
	}
	if meta.DescriptionDetailed != "" {
		product.DetailedDescription = meta.DescriptionDetailed
	}
	if len(meta.Features) > 0 {
		product.Features = meta.Features
	}
	if len(meta.SystemRequirements) > 0 {
		product.SystemRequirements = meta.SystemRequirements
	}
	if len(meta.SupportedFormats) > 0 {
		product.SupportedFormats = meta.SupportedFormats
	}
	if len(meta.InstallationInfo) > 0 {
		product.InstallationInfo = meta.InstallationInfo
	}
	if meta.ReleaseNotes != "" {
		product.ReleaseNotes = meta.ReleaseNotes
	}
	if meta.ReleaseDate != "" {
		product.ReleaseDate = meta.ReleaseDate
	}
	if meta.IconURL != "" {
		product.IconURL = meta.IconURL
	}
}

// materializeVersion links the entry to an existing version for its file path
// or creates a new one, then resolves the ledger entry with both references.
func (m *Matcher) materializeVersion(ctx context.Context, tx *catalog.Tx, product *catalog.Product, entry *catalog.LedgerEntry) error {
	filePath := entry.FilePath()
	existing, err := tx.GetVersionByFilePath(ctx, filePath)
	if err != nil {
		return err
	}
	if existing != nil {
		return tx.ResolveEntry(ctx, entry.ID, existing.ProductID, existing.ID)
	}

	parsed := parse.Parse(entry.FileName, filepath.Base(entry.FolderPath))
	versionName := parsed.Version
	if versionName == "" {
		versionName = "Unknown"
	}
	var fileSize int64
	if info, err := os.Stat(filePath); err == nil {
		fileSize = info.Size()
	}

	version := &catalog.Version{
		ProductID:   product.ID,
		VersionName: versionName,
		FileName:    entry.FileName,
		FilePath:    filePath,
		FileSize:    fileSize,
		IsPortable:  parsed.IsPortable,
	}
	if err := tx.CreateVersion(ctx, version); err != nil {
		return err
	}
	return tx.ResolveEntry(ctx, entry.ID, product.ID, version.ID)
}
