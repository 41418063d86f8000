package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"appdepot/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Matcher.AutoAcceptThreshold != 0.9 {
		t.Fatalf("auto_accept_threshold = %v", cfg.Matcher.AutoAcceptThreshold)
	}
	if cfg.Scheduler.Cron != "0 2 * * *" {
		t.Fatalf("cron = %q", cfg.Scheduler.Cron)
	}
	if len(cfg.Scan.ExcludedFolders) == 0 {
		t.Fatal("expected default excluded folders")
	}
}

func TestLoadExpandsAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := strings.Join([]string{
		`[paths]`,
		`state_dir = "` + filepath.Join(dir, "state") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		`[scan]`,
		`roots = ["` + dir + `", "  "]`,
		`[ai]`,
		`model = "  test/model  "`,
		`[logging]`,
		`format = "JSON"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if len(cfg.Scan.Roots) != 1 {
		t.Fatalf("roots = %v, want single entry", cfg.Scan.Roots)
	}
	if cfg.AI.Model != "test/model" {
		t.Fatalf("model = %q", cfg.AI.Model)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format = %q", cfg.Logging.Format)
	}
	if cfg.DatabasePath() != filepath.Join(dir, "state", "catalog.db") {
		t.Fatalf("database path = %q", cfg.DatabasePath())
	}
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := "[matcher]\nauto_accept_threshold = 1.5\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}
