package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"appdepot/internal/aimeta"
	"appdepot/internal/catalog"
	"appdepot/internal/logging"
	"appdepot/internal/matcher"
	"appdepot/internal/services"
	"appdepot/internal/textutil"
)

// Queue exposes operator decisions over parked review items.
type Queue struct {
	store   *catalog.Store
	matcher *matcher.Matcher
	logger  *slog.Logger
}

// NewQueue builds a review queue on top of the catalog store and matcher.
func NewQueue(store *catalog.Store, m *matcher.Matcher, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Queue{
		store:   store,
		matcher: m,
		logger:  logging.NewComponentLogger(logger, "review"),
	}
}

// List returns review items with the given status, or all items when status
// is empty.
func (q *Queue) List(ctx context.Context, status string) ([]*catalog.ReviewItem, error) {
	return q.store.ListReviewItems(ctx, status)
}

// Approve registers the item's folder with the metadata suggested during
// auto-matching and closes the item. The suggestion is cached under the
// normalized software name with its original confidence so repeat encounters
// skip the provider.
func (q *Queue) Approve(ctx context.Context, id int64, reviewer string) error {
	item, err := q.pendingItem(ctx, id)
	if err != nil {
		return err
	}
	var meta aimeta.Metadata
	if err := json.Unmarshal([]byte(item.SuggestedJSON), &meta); err != nil {
		return services.Wrap(services.ErrValidation, "review", "approve",
			fmt.Sprintf("item %d has no usable suggestion", id), err)
	}
	if err := q.materialize(ctx, item, meta); err != nil {
		return err
	}
	q.seedCache(ctx, meta, item.Confidence)
	if err := q.store.CloseReviewItem(ctx, id, catalog.ReviewApproved, reviewer, ""); err != nil {
		return err
	}
	q.logger.Info("review item approved",
		logging.Int64("item", id),
		logging.String("reviewer", reviewer),
		logging.String("folder", item.FolderPath))
	return nil
}

// Manual registers the item's folder with operator-supplied metadata and
// closes the item. The metadata is cached with full confidence.
func (q *Queue) Manual(ctx context.Context, id int64, meta aimeta.Metadata, reviewer string) error {
	item, err := q.pendingItem(ctx, id)
	if err != nil {
		return err
	}
	meta.Normalize()
	if meta.Title == "" {
		return services.Wrap(services.ErrValidation, "review", "manual", "metadata title is required", nil)
	}
	if err := q.materialize(ctx, item, meta); err != nil {
		return err
	}
	q.seedCache(ctx, meta, 1.0)
	manualJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode manual metadata: %w", err)
	}
	if err := q.store.CloseReviewItem(ctx, id, catalog.ReviewManual, reviewer, string(manualJSON)); err != nil {
		return err
	}
	q.logger.Info("review item resolved manually",
		logging.Int64("item", id),
		logging.String("reviewer", reviewer),
		logging.String("folder", item.FolderPath))
	return nil
}

// Ignore closes the item without touching the catalog. The underlying ledger
// entry stays unresolved so a later rescan can surface the file again.
func (q *Queue) Ignore(ctx context.Context, id int64, reviewer string) error {
	item, err := q.pendingItem(ctx, id)
	if err != nil {
		return err
	}
	if err := q.store.CloseReviewItem(ctx, id, catalog.ReviewIgnored, reviewer, ""); err != nil {
		return err
	}
	q.logger.Info("review item ignored",
		logging.Int64("item", id),
		logging.String("reviewer", reviewer),
		logging.String("folder", item.FolderPath))
	return nil
}

func (q *Queue) pendingItem(ctx context.Context, id int64) (*catalog.ReviewItem, error) {
	item, err := q.store.GetReviewItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, services.Wrap(services.ErrNotFound, "review", "lookup",
			fmt.Sprintf("review item %d not found", id), nil)
	}
	if item.Status != catalog.ReviewPending {
		return nil, services.Wrap(services.ErrConflict, "review", "lookup",
			fmt.Sprintf("review item %d already %s", id, item.Status), nil)
	}
	return item, nil
}

// materialize pushes the item's ledger entries through the matcher in
// provided-metadata mode. All unresolved entries for the item's folder are
// matched together so sibling files join the same product.
func (q *Queue) materialize(ctx context.Context, item *catalog.ReviewItem, meta aimeta.Metadata) error {
	entries, err := q.store.ListEntries(ctx, catalog.LedgerFilter{Folder: item.FolderPath})
	if err != nil {
		return err
	}
	var pending []*catalog.LedgerEntry
	for _, entry := range entries {
		if !entry.Resolved {
			pending = append(pending, entry)
		}
	}
	if len(pending) == 0 {
		return services.Wrap(services.ErrNotFound, "review", "materialize",
			fmt.Sprintf("no unresolved entries for %s", item.FolderPath), nil)
	}

	result, err := q.matcher.Match(ctx, pending, matcher.Options{
		SkipClarityCheck: true,
		Provided:         &meta,
	})
	if err != nil {
		return err
	}
	if result.Matched == 0 {
		return services.Wrap(services.ErrTransient, "review", "materialize",
			fmt.Sprintf("materialization failed for %s", item.FolderPath),
			errors.New(firstError(result.Errors)))
	}
	return nil
}

func (q *Queue) seedCache(ctx context.Context, meta aimeta.Metadata, confidence float64) {
	key := textutil.NormalizeName(meta.Title)
	if key == "" {
		return
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return
	}
	if err := q.store.SaveMetadata(ctx, key, string(payload), confidence, catalog.SourceManual); err != nil {
		q.logger.Warn("metadata cache write failed", logging.String("software", meta.Title), logging.Error(err))
	}
}

func firstError(errs []string) string {
	if len(errs) == 0 {
		return "unknown error"
	}
	return errs[0]
}
