package main

import (
	"os/signal"
	"syscall"

	"github.com/core-coin/cipctl/rewriter"
	"github.com/spf13/cobra"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	var report bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Update once, then again whenever proposals change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd, g)
			if err != nil {
				return err
			}
			app, err := NewApp(cfg, logger, false)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = app.Watch(ctx, func(r *rewriter.Report) {
				if report {
					printReport(cmd.OutOrStdout(), r)
				}
			})
			logger.Info("Watcher stopped")
			return err
		},
	}
	cmd.Flags().BoolVar(&report, "report", false, "Print a table of per-document results after each run")
	return cmd
}
