package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"appdepot/internal/catalog"
	"appdepot/internal/config"
	"appdepot/internal/logging"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the unattended scan scheduler",
	}
	cmd.AddCommand(newDaemonRunCommand(ctx))
	return cmd
}

func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler in the foreground until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				if len(cfg.Scan.Roots) == 0 {
					return fmt.Errorf("no scan roots configured; set [scan] roots")
				}

				signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				logger := ctx.newLogger(cfg)
				sched := ctx.newScheduler(cfg, store, logger)

				if runNow {
					result := sched.RunOnce(signalCtx)
					logger.Info("initial run complete",
						logging.Int("new_entries", result.NewProducts),
						logging.Int("matched", result.Matched),
						logging.Int("errors", len(result.Errors)))
				}

				if err := sched.Start(signalCtx); err != nil {
					return err
				}
				defer sched.Stop()

				fmt.Fprintf(cmd.OutOrStdout(), "Scheduler running (cron %q); press Ctrl+C to stop\n", cfg.Scheduler.Cron)
				<-signalCtx.Done()
				fmt.Fprintln(cmd.OutOrStdout(), "Shutting down")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&runNow, "now", false, "Run a full scan-and-match cycle immediately on startup")
	return cmd
}
