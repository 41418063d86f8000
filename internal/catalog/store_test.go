package catalog_test

import (
	"context"
	"errors"
	"testing"

	"appdepot/internal/catalog"
	"appdepot/internal/testsupport"
)

func TestProductRoundTrip(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	product := &catalog.Product{
		Title:      "Total Commander",
		Vendor:     "Ghisler",
		Category:   "Utility",
		FolderPath: "/library/Total Commander",
		Features:   []string{"dual pane", "ftp client"},
		SystemRequirements: map[string]string{
			"os": "Windows 10",
		},
	}
	if err := store.CreateProduct(ctx, product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	if product.ID == 0 {
		t.Fatal("expected product ID to be set")
	}

	loaded, err := store.GetProductByFolder(ctx, "/library/Total Commander")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected product")
	}
	if loaded.Title != "Total Commander" || loaded.Vendor != "Ghisler" {
		t.Fatalf("unexpected product %+v", loaded)
	}
	if len(loaded.Features) != 2 || loaded.Features[0] != "dual pane" {
		t.Fatalf("features = %v", loaded.Features)
	}
	if loaded.SystemRequirements["os"] != "Windows 10" {
		t.Fatalf("system requirements = %v", loaded.SystemRequirements)
	}

	loaded.Description = "orthodox file manager"
	if err := store.UpdateProduct(ctx, loaded); err != nil {
		t.Fatalf("update product: %v", err)
	}
	again, err := store.GetProductByID(ctx, loaded.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if again.Description != "orthodox file manager" {
		t.Fatalf("description = %q", again.Description)
	}
}

func TestFeaturesCapped(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	features := make([]string, 30)
	for i := range features {
		features[i] = "feature"
	}
	product := &catalog.Product{
		Title:      "Big App",
		FolderPath: "/library/Big App",
		Features:   features,
	}
	if err := store.CreateProduct(ctx, product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	loaded, err := store.GetProductByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if len(loaded.Features) != 20 {
		t.Fatalf("features len = %d, want 20", len(loaded.Features))
	}
}

func TestVersionsCascadeWithProduct(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	product := &catalog.Product{Title: "App", FolderPath: "/library/App"}
	if err := store.CreateProduct(ctx, product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	version := &catalog.Version{
		ProductID:   product.ID,
		VersionName: "1.0",
		FileName:    "app_v1.0.exe",
		FilePath:    "/library/App/app_v1.0.exe",
		FileSize:    1024,
	}
	if err := store.CreateVersion(ctx, version); err != nil {
		t.Fatalf("create version: %v", err)
	}

	deleted, err := store.DeleteProductsWithoutVersionsUnder(ctx, "/library")
	if err != nil {
		t.Fatalf("delete empty products: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("deleted = %d, want 0 while version exists", deleted)
	}

	if _, err := store.DeleteVersions(ctx, []int64{version.ID}); err != nil {
		t.Fatalf("delete versions: %v", err)
	}
	deleted, err = store.DeleteProductsWithoutVersionsUnder(ctx, "/library")
	if err != nil {
		t.Fatalf("delete empty products: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
}

func TestListVersionsUnderRespectsFolderBoundaries(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	seed := func(folder, file string) {
		t.Helper()
		product := &catalog.Product{Title: file, Category: "Utility", FolderPath: folder}
		if err := store.CreateProduct(ctx, product); err != nil {
			t.Fatalf("create product: %v", err)
		}
		version := &catalog.Version{
			ProductID: product.ID,
			FileName:  file,
			FilePath:  folder + "/" + file,
		}
		if err := store.CreateVersion(ctx, version); err != nil {
			t.Fatalf("create version: %v", err)
		}
	}
	seed("/srv/lib/App One", "app-one-1.0.zip")
	seed("/srv/library2/App Two", "app-two-1.0.zip")
	seed("/srv/lib", "app-root-1.0.zip")

	versions, err := store.ListVersionsUnder(ctx, "/srv/lib")
	if err != nil {
		t.Fatalf("list versions under: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("versions under /srv/lib = %d: %+v", len(versions), versions)
	}
	for _, version := range versions {
		if version.FileName == "app-two-1.0.zip" {
			t.Fatalf("sibling root leaked into listing: %+v", version)
		}
	}

	// A % in the root path must match literally, not as a wildcard.
	seed("/srv/100% Games/Doom", "doom-1.0.zip")
	versions, err = store.ListVersionsUnder(ctx, "/srv/100%")
	if err != nil {
		t.Fatalf("list versions under: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("wildcard escaped the pattern: %+v", versions)
	}

	deleted, err := store.DeleteProductsWithoutVersionsUnder(ctx, "/srv/lib")
	if err != nil {
		t.Fatalf("delete empty products: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("deleted %d products that still own versions", deleted)
	}
}

func TestLedgerInsertIsIdempotent(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	entry := &catalog.LedgerEntry{
		FolderPath: "/library/App",
		FileName:   "app.exe",
		Kind:       catalog.KindScanned,
	}
	inserted, err := store.InsertEntry(ctx, entry)
	if err != nil {
		t.Fatalf("insert entry: %v", err)
	}
	if !inserted {
		t.Fatal("expected first insert to report true")
	}

	duplicate := &catalog.LedgerEntry{
		FolderPath: "/library/App",
		FileName:   "app.exe",
		Kind:       "underscore_overuse",
	}
	inserted, err = store.InsertEntry(ctx, duplicate)
	if err != nil {
		t.Fatalf("re-insert entry: %v", err)
	}
	if inserted {
		t.Fatal("expected duplicate insert to report false")
	}

	stored, err := store.GetEntry(ctx, "/library/App", "app.exe")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if stored.Kind != catalog.KindScanned {
		t.Fatalf("kind = %q, want original kind preserved", stored.Kind)
	}
}

func TestResolveEntryRequiresBothRefsOrNeither(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	entry := &catalog.LedgerEntry{FolderPath: "/library/App", FileName: "app.exe", Kind: catalog.KindScanned}
	if _, err := store.InsertEntry(ctx, entry); err != nil {
		t.Fatalf("insert entry: %v", err)
	}

	if err := store.ResolveEntry(ctx, entry.ID, 7, 0); !errors.Is(err, catalog.ErrPartialResolution) {
		t.Fatalf("partial resolution error = %v", err)
	}

	product := &catalog.Product{Title: "App", FolderPath: "/library/App"}
	if err := store.CreateProduct(ctx, product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	version := &catalog.Version{ProductID: product.ID, FileName: "app.exe", FilePath: "/library/App/app.exe"}
	if err := store.CreateVersion(ctx, version); err != nil {
		t.Fatalf("create version: %v", err)
	}
	if err := store.ResolveEntry(ctx, entry.ID, product.ID, version.ID); err != nil {
		t.Fatalf("resolve entry: %v", err)
	}

	stored, err := store.GetEntryByID(ctx, entry.ID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if !stored.Resolved || stored.ProductID == nil || stored.VersionID == nil {
		t.Fatalf("entry not fully resolved: %+v", stored)
	}

	unresolved, err := store.CountUnresolved(ctx)
	if err != nil {
		t.Fatalf("count unresolved: %v", err)
	}
	if unresolved != 0 {
		t.Fatalf("unresolved = %d, want 0", unresolved)
	}
}

func TestReviewQueueLifecycle(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item := &catalog.ReviewItem{
		FilePath:      "/library/App/app.exe",
		FileName:      "app.exe",
		FolderPath:    "/library/App",
		ParsedName:    "App",
		ParsedVersion: "1.0",
		SuggestedJSON: `{"title":"App"}`,
		Confidence:    0.5,
	}
	if err := store.UpsertReviewItem(ctx, item); err != nil {
		t.Fatalf("upsert review item: %v", err)
	}
	if item.Status != catalog.ReviewPending {
		t.Fatalf("status = %q, want pending", item.Status)
	}

	pending, err := store.ListReviewItems(ctx, catalog.ReviewPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}

	if err := store.CloseReviewItem(ctx, item.ID, catalog.ReviewIgnored, "operator", ""); err != nil {
		t.Fatalf("close review item: %v", err)
	}
	closed, err := store.GetReviewItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("get review item: %v", err)
	}
	if closed.Status != catalog.ReviewIgnored || closed.ReviewedAt == nil || closed.ReviewedBy != "operator" {
		t.Fatalf("closed item = %+v", closed)
	}

	// Re-scanning the same file reopens the item with fresh parse data.
	item.Confidence = 0.8
	if err := store.UpsertReviewItem(ctx, item); err != nil {
		t.Fatalf("re-upsert review item: %v", err)
	}
	if item.Status != catalog.ReviewPending || item.Confidence != 0.8 {
		t.Fatalf("reopened item = %+v", item)
	}
}

func TestMetadataCacheHitCount(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if entry, err := store.LookupMetadata(ctx, "total commander"); err != nil || entry != nil {
		t.Fatalf("miss returned %+v, %v", entry, err)
	}

	if err := store.SaveMetadata(ctx, "total commander", `{"title":"Total Commander"}`, 0.92, catalog.SourceAI); err != nil {
		t.Fatalf("save metadata: %v", err)
	}

	first, err := store.LookupMetadata(ctx, "total commander")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if first == nil || first.HitCount != 1 {
		t.Fatalf("first lookup = %+v", first)
	}

	second, err := store.LookupMetadata(ctx, "total commander")
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if second.HitCount != 2 {
		t.Fatalf("hit count = %d, want 2", second.HitCount)
	}

	// Manual save refreshes content and source but keeps the hit count.
	if err := store.SaveMetadata(ctx, "total commander", `{"title":"Total Commander 11"}`, 1.0, catalog.SourceManual); err != nil {
		t.Fatalf("re-save metadata: %v", err)
	}
	third, err := store.LookupMetadata(ctx, "total commander")
	if err != nil {
		t.Fatalf("third lookup: %v", err)
	}
	if third.Source != catalog.SourceManual || third.HitCount != 3 {
		t.Fatalf("third lookup = %+v", third)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	sentinel := errors.New("boom")
	err := store.WithTx(ctx, func(tx *catalog.Tx) error {
		product := &catalog.Product{Title: "Doomed", FolderPath: "/library/Doomed"}
		if err := tx.CreateProduct(ctx, product); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}

	count, err := store.CountProducts(ctx)
	if err != nil {
		t.Fatalf("count products: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0 after rollback", count)
	}
}
