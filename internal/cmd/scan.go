package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/passchm/file-dedup-tool/scan"
)

// NewScanCmd creates and returns the scan subcommand for the dedup CLI.
// It walks the given targets and commits each one to the inventory.
func NewScanCmd(opts *options) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "scan TARGET...",
		Short: "Scan files and directories into the inventory",
		Long: `Scan files and directories into the inventory.

Every target is walked depth-first. Directories are descended in name order,
symbolic links are recorded but never followed, and regular files are
fingerprinted with SHA-256. Files named like zip or tar archives (including
.tar.gz, .tar.bz2, .tar.xz and .tar.zst) are expanded, nested archives too.

Each target is committed on its own: a target that fails (an unreadable
file, a special file such as a FIFO, an archive with duplicate member paths)
leaves nothing behind, and the remaining targets are still scanned. Problems
inside archives are reported as warnings and do not stop the scan.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), cmd.OutOrStdout(), opts, args, quiet)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only report failed targets")

	return cmd
}

func runScan(ctx context.Context, w io.Writer, opts *options, targets []string, quiet bool) error {
	threshold, err := opts.cfg.SpoolBytes()
	if err != nil {
		return err
	}

	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	results := scan.ScanTargets(ctx, st, targets,
		scan.WithLogger(opts.logger),
		scan.WithSpoolThreshold(threshold),
	)

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
			fmt.Fprintf(w, "failed  %s: %v\n", r.Target, r.Err)
			continue
		}
		if quiet {
			continue
		}
		fmt.Fprintf(w, "ok      %s (root %d, %s, %s)\n", r.Target, r.RootID,
			plural(len(r.Warnings), "warning"), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "        %s\n", warn)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d targets failed: %w", failed, len(results), scan.Err(results))
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}
