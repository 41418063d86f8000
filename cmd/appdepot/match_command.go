package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"appdepot/internal/catalog"
	"appdepot/internal/config"
	"appdepot/internal/matcher"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var skipClarity bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match scanned files into catalog products",
		Long: "Runs the auto-matcher over every unresolved scanned ledger entry. " +
			"Folders with unclear filenames or low-confidence metadata are left for " +
			"review; use --skip-clarity to force matching of everything.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				entries, err := store.ListUnresolved(cmd.Context(), catalog.KindScanned)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to match")
					return nil
				}

				m := ctx.newMatcher(cfg, store, ctx.newLogger(cfg))
				result, err := m.Match(cmd.Context(), entries, matcher.Options{SkipClarityCheck: skipClarity})
				if err != nil {
					return err
				}

				if asJSON {
					return writeJSON(cmd, result)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Matched: %d  Failed: %d\n", result.Matched, result.Failed)
				if len(result.Products) > 0 {
					rows := make([][]string, 0, len(result.Products))
					for _, product := range result.Products {
						rows = append(rows, []string{
							fmt.Sprintf("%d", product.ID),
							product.Title,
							product.Vendor,
							product.Category,
							product.FolderPath,
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"ID", "Title", "Vendor", "Category", "Folder"},
						rows,
						[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
					))
				}
				for _, msg := range result.Errors {
					fmt.Fprintf(out, "warning: %s\n", msg)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipClarity, "skip-clarity", false, "Skip the filename clarity gate and split-archive filter")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the batch result as JSON")
	return cmd
}
