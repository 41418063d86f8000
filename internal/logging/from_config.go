package logging

import (
	"log/slog"
	"os"
	"path/filepath"

	"appdepot/internal/config"
)

// NewFromConfig creates a logger using application config defaults. Output is
// teed to the log directory when one is configured.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", OutputPaths: []string{"stdout"}})
	}

	outputPaths := []string{"stdout"}
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, err
		}
		outputPaths = append(outputPaths, filepath.Join(cfg.Paths.LogDir, "appdepot.log"))
	}

	return New(Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputPaths,
	})
}
