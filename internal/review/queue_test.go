package review_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"appdepot/internal/aimeta"
	"appdepot/internal/catalog"
	"appdepot/internal/config"
	"appdepot/internal/logging"
	"appdepot/internal/matcher"
	"appdepot/internal/purge"
	"appdepot/internal/review"
	"appdepot/internal/services"
	"appdepot/internal/testsupport"
)

type fixture struct {
	cfg   *config.Config
	store *catalog.Store
	queue *review.Queue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	client := aimeta.NewClient(cfg.AI)
	m := matcher.New(store, client, purge.NewService(cfg), cfg, logging.NewNop())
	return &fixture{
		cfg:   cfg,
		store: store,
		queue: review.NewQueue(store, m, logging.NewNop()),
	}
}

// seedItem parks one ledger entry in the review queue the way the
// auto-matcher does for a low-confidence folder.
func (f *fixture) seedItem(t *testing.T, folderName, fileName string, meta aimeta.Metadata, confidence float64) *catalog.ReviewItem {
	t.Helper()
	ctx := context.Background()
	folder := filepath.Join(testsupport.LibraryRoot(f.cfg), folderName)

	entry := &catalog.LedgerEntry{FolderPath: folder, FileName: fileName, Kind: catalog.KindScanned}
	if _, err := f.store.InsertEntry(ctx, entry); err != nil {
		t.Fatalf("insert entry: %v", err)
	}

	suggested, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("encode suggestion: %v", err)
	}
	item := &catalog.ReviewItem{
		FilePath:      filepath.Join(folder, fileName),
		FileName:      fileName,
		FolderPath:    folder,
		ParsedName:    meta.Title,
		SuggestedJSON: string(suggested),
		Confidence:    confidence,
	}
	if err := f.store.UpsertReviewItem(ctx, item); err != nil {
		t.Fatalf("upsert review item: %v", err)
	}
	return item
}

func TestApproveMaterializesSuggestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	meta := aimeta.Metadata{
		Title:            "Krita",
		Developer:        "Krita Foundation",
		Category:         "Graphics",
		DescriptionShort: "Digital painting application",
	}
	item := f.seedItem(t, "Krita 5.2", "krita-5.2.2-setup.exe", meta, 0.62)

	if err := f.queue.Approve(ctx, item.ID, "alex"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	product, err := f.store.GetProductByFolder(ctx, item.FolderPath)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product == nil || product.Title != "Krita" || product.Vendor != "Krita Foundation" {
		t.Fatalf("unexpected product: %+v", product)
	}

	closed, err := f.store.GetReviewItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get review item: %v", err)
	}
	if closed.Status != catalog.ReviewApproved || closed.ReviewedBy != "alex" {
		t.Fatalf("item not closed: %+v", closed)
	}
	if closed.ReviewedAt == nil {
		t.Fatal("expected reviewed_at timestamp")
	}

	cached, err := f.store.LookupMetadata(ctx, "krita")
	if err != nil {
		t.Fatalf("lookup cache: %v", err)
	}
	if cached == nil || cached.Source != catalog.SourceManual {
		t.Fatalf("expected manual cache entry, got %+v", cached)
	}
	if cached.Confidence != 0.62 {
		t.Fatalf("approve must preserve stored confidence, got %v", cached.Confidence)
	}

	entry, err := f.store.GetEntry(ctx, item.FolderPath, item.FileName)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if !entry.Resolved {
		t.Fatal("ledger entry must be resolved after approval")
	}
}

func TestManualUsesOperatorMetadata(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, "bundle", "installer.exe", aimeta.Metadata{Title: "wrong guess"}, 0.31)

	operator := aimeta.Metadata{
		Title:            "Inkscape",
		Developer:        "Inkscape Project",
		Category:         "Graphics",
		DescriptionShort: "Vector graphics editor",
	}
	if err := f.queue.Manual(ctx, item.ID, operator, "sam"); err != nil {
		t.Fatalf("manual: %v", err)
	}

	product, err := f.store.GetProductByFolder(ctx, item.FolderPath)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product == nil || product.Title != "Inkscape" {
		t.Fatalf("unexpected product: %+v", product)
	}

	closed, err := f.store.GetReviewItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get review item: %v", err)
	}
	if closed.Status != catalog.ReviewManual {
		t.Fatalf("status = %q", closed.Status)
	}
	if closed.ManualJSON == "" {
		t.Fatal("expected manual metadata to be recorded")
	}

	cached, err := f.store.LookupMetadata(ctx, "inkscape")
	if err != nil {
		t.Fatalf("lookup cache: %v", err)
	}
	if cached == nil || cached.Confidence != 1.0 {
		t.Fatalf("manual cache entry should carry full confidence, got %+v", cached)
	}
}

func TestManualRequiresTitle(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, "bundle", "installer.exe", aimeta.Metadata{Title: "x"}, 0.1)
	err := f.queue.Manual(context.Background(), item.ID, aimeta.Metadata{}, "sam")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestIgnoreLeavesLedgerUnresolved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.seedItem(t, "mystery", "x.zip", aimeta.Metadata{Title: "Mystery"}, 0.2)

	if err := f.queue.Ignore(ctx, item.ID, "alex"); err != nil {
		t.Fatalf("ignore: %v", err)
	}

	closed, err := f.store.GetReviewItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get review item: %v", err)
	}
	if closed.Status != catalog.ReviewIgnored {
		t.Fatalf("status = %q", closed.Status)
	}

	entry, err := f.store.GetEntry(ctx, item.FolderPath, item.FileName)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if entry.Resolved {
		t.Fatal("ignored item must leave its ledger entry unresolved")
	}
	count, err := f.store.CountProducts(ctx)
	if err != nil {
		t.Fatalf("count products: %v", err)
	}
	if count != 0 {
		t.Fatalf("ignore must not create products, got %d", count)
	}
}

func TestApproveMissingItem(t *testing.T) {
	f := newFixture(t)
	err := f.queue.Approve(context.Background(), 9999, "alex")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestApproveTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	meta := aimeta.Metadata{Title: "Krita", Category: "Graphics"}
	item := f.seedItem(t, "Krita 5.2", "krita-5.2.2-setup.exe", meta, 0.5)

	if err := f.queue.Approve(ctx, item.ID, "alex"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	err := f.queue.Approve(ctx, item.ID, "alex")
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}
