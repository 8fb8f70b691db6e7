package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/core-coin/cipctl/rewriter"
	"github.com/spf13/cobra"
)

type updateFlags struct {
	dryRun bool
	report bool
}

func (f *updateFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Classify and report without writing")
	cmd.Flags().BoolVar(&f.report, "report", false, "Print a table of per-document results")
}

func newUpdateCmd(g *globalFlags) *cobra.Command {
	f := &updateFlags{}
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Classify every proposal and rewrite changed statuses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, g, f)
		},
	}
	f.register(cmd)
	return cmd
}

// runUpdate performs one batch run. It fails only when the collection cannot
// be enumerated; per-document problems are reported and logged.
func runUpdate(cmd *cobra.Command, g *globalFlags, f *updateFlags) error {
	cfg, logger, err := setup(cmd, g)
	if err != nil {
		return err
	}
	app, err := NewApp(cfg, logger, f.dryRun)
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := app.Run(cmd.Context())
	if err != nil {
		return err
	}
	if f.report {
		printReport(cmd.OutOrStdout(), report)
	}
	return nil
}

func printReport(w io.Writer, report *rewriter.Report) {
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		age := ""
		if res.Status != "" {
			age = strconv.FormatFloat(res.AgeDays, 'f', 1, 64)
		}
		to := string(res.Status)
		if res.Regressed {
			to += " (regressed)"
		}
		rows = append(rows, []string{
			res.ID,
			string(res.Outcome),
			string(res.Previous),
			to,
			age,
			res.Reason,
		})
	}
	fmt.Fprintln(w, renderTable(tableView{
		Headers:  []string{"Document", "Outcome", "From", "To", "Age (days)", "Reason"},
		Rows:     rows,
		Aligns:   []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		Tone:     outcomeTone,
		Colorize: shouldColorize(w),
	}))

	mode := ""
	if report.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "%d updated, %d unchanged, %d skipped, %d failed%s\n",
		report.Count(rewriter.OutcomeUpdated),
		report.Count(rewriter.OutcomeUnchanged),
		report.Count(rewriter.OutcomeSkipped),
		report.Count(rewriter.OutcomeFailed),
		mode)
}

// outcomeTone highlights problem rows of a report table.
func outcomeTone(row []string) rowTone {
	if len(row) < 2 {
		return toneNormal
	}
	switch rewriter.Outcome(row[1]) {
	case rewriter.OutcomeFailed:
		return toneError
	case rewriter.OutcomeSkipped:
		return toneWarn
	case rewriter.OutcomeUnchanged:
		return toneMuted
	default:
		return toneNormal
	}
}
