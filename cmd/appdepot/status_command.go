package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"appdepot/internal/catalog"
	"appdepot/internal/config"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog and configuration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				cmdCtx := cmd.Context()
				products, err := store.CountProducts(cmdCtx)
				if err != nil {
					return err
				}
				versions, err := store.CountVersions(cmdCtx)
				if err != nil {
					return err
				}
				unresolved, err := store.CountUnresolved(cmdCtx)
				if err != nil {
					return err
				}
				pending, err := store.CountReviewItems(cmdCtx, catalog.ReviewPending)
				if err != nil {
					return err
				}
				cached, err := store.CountCacheEntries(cmdCtx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader("Catalog", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintf(out, "  Database:          %s\n", store.Path())
				fmt.Fprintf(out, "  Products:          %d\n", products)
				fmt.Fprintf(out, "  Versions:          %d\n", versions)
				fmt.Fprintf(out, "  Unmatched files:   %d\n", unresolved)
				fmt.Fprintf(out, "  Pending review:    %d\n", pending)
				fmt.Fprintf(out, "  Cached metadata:   %d\n", cached)
				fmt.Fprintln(out)

				for _, line := range renderSectionHeader("Configuration", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintf(out, "  Scan roots:        %s\n", joinOrDash(cfg.Scan.Roots))
				fmt.Fprintf(out, "  AI enabled:        %s\n", yesNo(cfg.AI.Enabled))
				if cfg.AI.Enabled {
					fmt.Fprintf(out, "  AI model:          %s\n", cfg.AI.Model)
				}
				fmt.Fprintf(out, "  Auto-accept at:    %.2f\n", cfg.Matcher.AutoAcceptThreshold)
				fmt.Fprintf(out, "  Scheduler:         %s (%s)\n", yesNo(cfg.Scheduler.Enabled), cfg.Scheduler.Cron)
				fmt.Fprintf(out, "  Cache purge:       %s\n", orDash(cfg.Matcher.PurgeURL))
				return nil
			})
		},
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if colorize {
		line = "\x1b[34m" + line + "\x1b[0m"
	}
	return []string{line}
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
