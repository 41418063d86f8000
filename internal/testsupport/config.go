package testsupport

import (
	"path/filepath"
	"testing"

	"appdepot/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Scan.Roots = []string{filepath.Join(base, "library")}
	cfg.AI.Enabled = false

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithRoots overrides the scan roots on the test config.
func WithRoots(roots ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scan.Roots = roots
	}
}

// WithAI enables the metadata provider pointed at the given endpoint.
func WithAI(baseURL, apiKey string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.AI.Enabled = true
		cfg.AI.BaseURL = baseURL
		cfg.AI.APIKey = apiKey
	}
}

// LibraryRoot returns the first scan root of a test config.
func LibraryRoot(cfg *config.Config) string {
	return cfg.Scan.Roots[0]
}
