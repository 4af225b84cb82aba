package cmd

import (
	"github.com/spf13/cobra"

	"github.com/passchm/file-dedup-tool/scan"
)

// NewInspectCmd creates and returns the inspect subcommand for the dedup CLI.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect ARCHIVE",
		Short: "Show the reconciled member tree of an archive",
		Long: `Show how the member list of a zip or tar archive is reconciled into a tree.

Members declared by the archive are marked "!", path components implied by
member names but never declared are marked "?". Nothing is written to the
inventory and nested archives are not expanded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return scan.Inspect(args[0], cmd.OutOrStdout())
		},
	}
	return cmd
}
