package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewScansCmd creates and returns the scans subcommand for the dedup CLI.
// It lists the recorded scan runs.
func NewScansCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scans",
		Short: "List recorded scan runs",
		Long: `List every committed scan run in the order it started.

Failed targets are never recorded, so each listed run corresponds to a root
in the inventory tree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScans(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	return cmd
}

func runScans(ctx context.Context, w io.Writer, opts *options) error {
	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	scans, err := st.Repository().Scans(ctx)
	if err != nil {
		return err
	}
	if len(scans) == 0 {
		fmt.Fprintln(w, "No scans recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tROOT\tTARGET\tWARNINGS\tSTARTED\tVERSION")
	for _, s := range scans {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\t%s\n",
			s.ID.String()[:8], s.RootID, s.Target, s.Warnings, humanize.Time(s.StartedAt), s.ToolVersion)
	}
	return tw.Flush()
}
