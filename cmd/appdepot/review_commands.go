package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"appdepot/internal/aimeta"
	"appdepot/internal/catalog"
	"appdepot/internal/config"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Work the low-confidence review queue",
	}
	cmd.AddCommand(newReviewListCommand(ctx))
	cmd.AddCommand(newReviewApproveCommand(ctx))
	cmd.AddCommand(newReviewManualCommand(ctx))
	cmd.AddCommand(newReviewIgnoreCommand(ctx))
	return cmd
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List review queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				items, err := store.ListReviewItems(cmd.Context(), status)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Review queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						fmt.Sprintf("%d", item.ID),
						item.Status,
						item.ParsedName,
						item.ParsedVersion,
						fmt.Sprintf("%.2f", item.Confidence),
						item.FileName,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Status", "Parsed Name", "Version", "Confidence", "File"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", catalog.ReviewPending, "Filter by status (empty for all)")
	return cmd
}

func newReviewApproveCommand(ctx *commandContext) *cobra.Command {
	var reviewer string

	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Register a folder with its suggested metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				queue := ctx.newReviewQueue(cfg, store, ctx.newLogger(cfg))
				if err := queue.Approve(cmd.Context(), id, reviewer); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d approved\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reviewer, "reviewer", "cli", "Name recorded as the reviewer")
	return cmd
}

func newReviewManualCommand(ctx *commandContext) *cobra.Command {
	var reviewer string
	var meta aimeta.Metadata

	cmd := &cobra.Command{
		Use:   "manual <id>",
		Short: "Register a folder with operator-supplied metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				queue := ctx.newReviewQueue(cfg, store, ctx.newLogger(cfg))
				if err := queue.Manual(cmd.Context(), id, meta, reviewer); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d resolved with manual metadata\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reviewer, "reviewer", "cli", "Name recorded as the reviewer")
	cmd.Flags().StringVar(&meta.Title, "title", "", "Product title (required)")
	cmd.Flags().StringVar(&meta.Subtitle, "subtitle", "", "Product subtitle")
	cmd.Flags().StringVar(&meta.Developer, "vendor", "", "Vendor or developer name")
	cmd.Flags().StringVar(&meta.Category, "category", "", "Product category")
	cmd.Flags().StringVar(&meta.DescriptionShort, "description", "", "Short description")
	cmd.Flags().StringVar(&meta.IconURL, "icon-url", "", "Icon URL")
	cmd.Flags().StringVar(&meta.OfficialWebsite, "website", "", "Official website URL")
	cmd.Flags().StringVar(&meta.LicenseType, "license", "", "License type")
	cmd.Flags().StringVar(&meta.Platform, "platform", "", "Platform")
	cmd.Flags().StringVar(&meta.ReleaseDate, "release-date", "", "Release date")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newReviewIgnoreCommand(ctx *commandContext) *cobra.Command {
	var reviewer string

	cmd := &cobra.Command{
		Use:   "ignore <id>",
		Short: "Close a review item without cataloging anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				queue := ctx.newReviewQueue(cfg, store, ctx.newLogger(cfg))
				if err := queue.Ignore(cmd.Context(), id, reviewer); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d ignored\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reviewer, "reviewer", "cli", "Name recorded as the reviewer")
	return cmd
}
