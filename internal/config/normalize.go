package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeScan(); err != nil {
		return err
	}
	c.normalizeAI()
	c.normalizeMatcher()
	c.normalizeScheduler()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() error {
	roots := make([]string, 0, len(c.Scan.Roots))
	for _, root := range c.Scan.Roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		expanded, err := expandPath(root)
		if err != nil {
			return fmt.Errorf("scan.roots: %w", err)
		}
		roots = append(roots, expanded)
	}
	c.Scan.Roots = roots

	paths := make([]string, 0, len(c.Scan.ExcludedPaths))
	for _, path := range c.Scan.ExcludedPaths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		expanded, err := expandPath(path)
		if err != nil {
			return fmt.Errorf("scan.excluded_paths: %w", err)
		}
		paths = append(paths, expanded)
	}
	c.Scan.ExcludedPaths = paths

	c.Scan.ExcludedFolders = trimAll(c.Scan.ExcludedFolders)
	c.Scan.ExcludedGlobs = trimAll(c.Scan.ExcludedGlobs)
	return nil
}

func (c *Config) normalizeAI() {
	if c.AI.APIKey == "" {
		if value, ok := os.LookupEnv("APPDEPOT_AI_API_KEY"); ok {
			c.AI.APIKey = value
		}
	}
	c.AI.APIKey = strings.TrimSpace(c.AI.APIKey)
	c.AI.BaseURL = strings.TrimSpace(c.AI.BaseURL)
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = defaultAIBaseURL
	}
	c.AI.Model = strings.TrimSpace(c.AI.Model)
	if c.AI.Model == "" {
		c.AI.Model = defaultAIModel
	}
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = defaultAITimeoutSeconds
	}
}

func (c *Config) normalizeMatcher() {
	if c.Matcher.AutoAcceptThreshold == 0 {
		c.Matcher.AutoAcceptThreshold = defaultAutoAcceptThreshold
	}
	c.Matcher.PurgeURL = strings.TrimSpace(c.Matcher.PurgeURL)
	if c.Matcher.PurgeTimeoutSeconds <= 0 {
		c.Matcher.PurgeTimeoutSeconds = defaultPurgeTimeoutSeconds
	}
}

func (c *Config) normalizeScheduler() {
	c.Scheduler.Cron = strings.TrimSpace(c.Scheduler.Cron)
	if c.Scheduler.Cron == "" {
		c.Scheduler.Cron = defaultSchedulerCron
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
