package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"appdepot/internal/catalog"
	"appdepot/internal/config"
)

func newViolationsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "violations",
		Short: "Inspect and fix filename violations",
	}
	cmd.AddCommand(newViolationsListCommand(ctx))
	cmd.AddCommand(newViolationsResolveCommand(ctx))
	cmd.AddCommand(newViolationsDeleteCommand(ctx))
	cmd.AddCommand(newViolationsApplyCommand(ctx))
	return cmd
}

func newViolationsListCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var showResolved bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger entries and their naming verdicts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				resolved := showResolved
				entries, err := store.ListEntries(cmd.Context(), catalog.LedgerFilter{
					Kind:     kind,
					Resolved: &resolved,
				})
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No entries")
					return nil
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					suggestion := entry.Suggestion
					if suggestion == entry.FileName {
						suggestion = ""
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d", entry.ID),
						entry.Kind,
						entry.FileName,
						suggestion,
						entry.FolderPath,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Kind", "File", "Suggestion", "Folder"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Filter by violation kind (e.g. underscore_overuse)")
	cmd.Flags().BoolVar(&showResolved, "resolved", false, "List resolved entries instead of open ones")
	return cmd
}

func newViolationsResolveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id>",
		Short: "Mark a ledger entry resolved without touching the file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				if err := store.ResolveEntry(cmd.Context(), id, 0, 0); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Entry %d resolved\n", id)
				return nil
			})
		},
	}
}

func newViolationsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a ledger entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				if err := store.DeleteEntry(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Entry %d deleted\n", id)
				return nil
			})
		},
	}
}

// newViolationsApplyCommand renames the file on disk to the stored
// suggestion and marks the entry resolved.
func newViolationsApplyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <id>",
		Short: "Rename a file to its suggested name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				entry, err := store.GetEntryByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("entry %d not found", id)
				}
				if entry.Suggestion == "" || entry.Suggestion == entry.FileName {
					return fmt.Errorf("entry %d has no rename suggestion", id)
				}

				oldPath := entry.FilePath()
				newPath := filepath.Join(entry.FolderPath, entry.Suggestion)
				if _, err := os.Stat(newPath); err == nil {
					return fmt.Errorf("target already exists: %s", newPath)
				}
				if err := os.Rename(oldPath, newPath); err != nil {
					return fmt.Errorf("rename file: %w", err)
				}
				if err := store.ResolveEntry(cmd.Context(), id, 0, 0); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s -> %s\n", entry.FileName, entry.Suggestion)
				return nil
			})
		},
	}
}

func parseEntryID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
