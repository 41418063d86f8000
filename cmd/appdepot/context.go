package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"appdepot/internal/aimeta"
	"appdepot/internal/catalog"
	"appdepot/internal/config"
	"appdepot/internal/logging"
	"appdepot/internal/matcher"
	"appdepot/internal/purge"
	"appdepot/internal/review"
	"appdepot/internal/scanner"
	"appdepot/internal/schedule"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withStore opens the catalog store for one command invocation and closes it
// afterwards.
func (c *commandContext) withStore(fn func(cfg *config.Config, store *catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func (c *commandContext) newLogger(cfg *config.Config) *slog.Logger {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func (c *commandContext) newMatcher(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *matcher.Matcher {
	client := aimeta.NewClient(cfg.AI)
	return matcher.New(store, client, purge.NewService(cfg), cfg, logger)
}

func (c *commandContext) newScanner(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *scanner.Scanner {
	return scanner.New(store, cfg, logger)
}

func (c *commandContext) newReviewQueue(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *review.Queue {
	return review.NewQueue(store, c.newMatcher(cfg, store, logger), logger)
}

func (c *commandContext) newScheduler(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *schedule.Scheduler {
	return schedule.New(
		c.newScanner(cfg, store, logger),
		c.newMatcher(cfg, store, logger),
		store,
		cfg,
		logger,
	)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
