package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"appdepot/internal/catalog"
	"appdepot/internal/config"
	"appdepot/internal/scanner"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan [path...]",
		Short: "Scan library roots and update the ledger",
		Long: "Walks the given paths (or the configured scan roots) and records every " +
			"eligible file in the scan ledger, then removes catalog entries for files " +
			"that no longer exist on disk.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				roots := args
				if len(roots) == 0 {
					roots = cfg.Scan.Roots
				}
				if len(roots) == 0 {
					return fmt.Errorf("no scan roots configured; pass a path or set [scan] roots")
				}

				s := ctx.newScanner(cfg, store, ctx.newLogger(cfg))
				total := scanner.Result{}
				var failures []string
				for _, root := range roots {
					result, err := s.Scan(cmd.Context(), root)
					if err != nil {
						failures = append(failures, fmt.Sprintf("%s: %v", root, err))
						continue
					}
					total.Merge(result)
				}

				if asJSON {
					return writeJSON(cmd, struct {
						scanner.Result
						Failures []string `json:"failures,omitempty"`
					}{total, failures})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "New files recorded:  %d\n", total.NewProducts)
				fmt.Fprintf(out, "Deleted versions:    %d\n", total.DeletedVersions)
				fmt.Fprintf(out, "Deleted products:    %d\n", total.DeletedProducts)
				for _, msg := range total.Errors {
					fmt.Fprintf(out, "warning: %s\n", msg)
				}
				for _, msg := range failures {
					fmt.Fprintf(out, "failed: %s\n", msg)
				}
				if len(failures) == len(roots) {
					return fmt.Errorf("all scan roots failed")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the scan result as JSON")
	return cmd
}
