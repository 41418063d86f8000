package schedule_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"appdepot/internal/aimeta"
	"appdepot/internal/catalog"
	"appdepot/internal/config"
	"appdepot/internal/logging"
	"appdepot/internal/matcher"
	"appdepot/internal/purge"
	"appdepot/internal/scanner"
	"appdepot/internal/schedule"
	"appdepot/internal/services"
	"appdepot/internal/testsupport"
)

func newScheduler(t *testing.T, cfg *config.Config, store *catalog.Store, opts ...schedule.Option) *schedule.Scheduler {
	t.Helper()
	client := aimeta.NewClient(cfg.AI)
	m := matcher.New(store, client, purge.NewService(cfg), cfg, logging.NewNop())
	s := scanner.New(store, cfg, logging.NewNop())
	return schedule.New(s, m, store, cfg, logging.NewNop(), opts...)
}

func TestRunOnceAggregatesAllRoots(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	second := t.TempDir()
	cfg.Scan.Roots = append(cfg.Scan.Roots, second)
	store := testsupport.MustOpenStore(t, cfg)

	testsupport.WriteFile(t, filepath.Join(cfg.Scan.Roots[0], "ToolA", "tool-a-1.0.zip"), 32)
	testsupport.WriteFile(t, filepath.Join(second, "ToolB", "tool-b-2.0.zip"), 32)

	sched := newScheduler(t, cfg, store)
	result := sched.RunOnce(context.Background())

	if result.NewProducts != 2 {
		t.Fatalf("new entries = %d, errors = %v", result.NewProducts, result.Errors)
	}
	if len(result.ScannedPaths) != 2 {
		t.Fatalf("scanned paths = %v", result.ScannedPaths)
	}

	status := sched.Status()
	if status.LastRunTime == nil || status.LastResult == nil {
		t.Fatalf("status missing last run: %+v", status)
	}
	if status.LastResult.NewProducts != 2 {
		t.Fatalf("last result = %+v", status.LastResult)
	}
}

func TestRunOnceIsolatesFailingRoot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	good := testsupport.LibraryRoot(cfg)
	cfg.Scan.Roots = []string{filepath.Join(good, "missing"), good}
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.WriteFile(t, filepath.Join(good, "Tool", "tool-1.0.zip"), 32)

	sched := newScheduler(t, cfg, store)
	result := sched.RunOnce(context.Background())

	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v", result.Errors)
	}
	if result.NewProducts != 1 {
		t.Fatalf("good root not scanned: %+v", result)
	}
	if len(result.ScannedPaths) != 1 || result.ScannedPaths[0] != good {
		t.Fatalf("scanned paths = %v", result.ScannedPaths)
	}
}

func TestRunOnceAutoMatchesWhenAIEnabled(t *testing.T) {
	meta := aimeta.Metadata{
		Title:            "Total Commander",
		Developer:        "Ghisler Software",
		Category:         "Utility",
		IconURL:          "https://example.com/tc.png",
		OfficialWebsite:  "https://www.ghisler.com",
		DescriptionShort: strings.Repeat("Orthodox file manager for Windows. ", 4),
	}
	encoded, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("encode metadata: %v", err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		content := "CLEAR"
		if len(req.Messages) > 0 && !strings.Contains(req.Messages[0].Content, "UNCLEAR") {
			content = string(encoded)
		}
		response, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": content}}},
		})
		w.Write(response)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithAI(server.URL, "test-key"))
	store := testsupport.MustOpenStore(t, cfg)
	root := testsupport.LibraryRoot(cfg)
	testsupport.WriteFile(t, filepath.Join(root, "Total Commander 10.51", "Total Commander 10.51.zip"), 64)

	sched := newScheduler(t, cfg, store)
	result := sched.RunOnce(context.Background())

	if result.Matched != 1 {
		t.Fatalf("matched = %d, errors = %v", result.Matched, result.Errors)
	}
	count, err := store.CountProducts(context.Background())
	if err != nil {
		t.Fatalf("count products: %v", err)
	}
	if count != 1 {
		t.Fatalf("products = %d", count)
	}
}

func TestStatusReportsNextRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Scheduler.Cron = "0 2 * * *"
	store := testsupport.MustOpenStore(t, cfg)

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sched := newScheduler(t, cfg, store, schedule.WithClock(func() time.Time { return fixed }))

	if next := sched.Status().NextRun; next != nil {
		t.Fatalf("stopped scheduler must not report a next run, got %v", next)
	}

	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer sched.Stop()

	status := sched.Status()
	if !status.Running {
		t.Fatal("expected running status")
	}
	if status.Cron != "0 2 * * *" {
		t.Fatalf("cron = %q", status.Cron)
	}
	want := time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC)
	if status.NextRun == nil || !status.NextRun.Equal(want) {
		t.Fatalf("next run = %v, want %v", status.NextRun, want)
	}

	sched.Stop()
	if sched.Status().Running {
		t.Fatal("expected stopped status")
	}
}

func TestStartRejectsInvalidCron(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Scheduler.Cron = "not a cron line"
	store := testsupport.MustOpenStore(t, cfg)

	sched := newScheduler(t, cfg, store)
	err := sched.Start(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
