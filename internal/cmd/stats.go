package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/passchm/file-dedup-tool/dupes"
	"github.com/passchm/file-dedup-tool/entry"
)

// NewStatsCmd creates and returns the stats subcommand for the dedup CLI.
// It summarizes the inventory by kind.
func NewStatsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the inventory",
		Long: `Summarize the inventory.

Prints the number of entries of every kind, the total size of file content
and how many bytes duplicate content could free.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	return cmd
}

// inventoryStats is the summary printed by the stats command.
type inventoryStats struct {
	Entries  int
	Roots    int
	ByKind   map[entry.Kind]int
	Content  int64
	Groups   int
	Wasted   int64
	Archives int
}

func collectStats(entries []entry.Entry) (inventoryStats, error) {
	s := inventoryStats{Entries: len(entries), ByKind: make(map[entry.Kind]int)}
	idx := dupes.NewIndex(entries)
	for _, e := range entries {
		s.ByKind[e.Kind]++
		if e.IsRoot() {
			s.Roots++
		}
		if e.Kind.CanHoldDigest() {
			s.Content += e.Size
			if len(idx.Children(e.ID)) > 0 {
				s.Archives++
			}
		}
	}

	groups, err := dupes.GroupByDigest(entries)
	if err != nil {
		return s, err
	}
	s.Groups = len(groups.Duplicates())
	s.Wasted = groups.Wasted()
	return s, nil
}

func runStats(ctx context.Context, w io.Writer, opts *options) error {
	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.Repository().All(ctx)
	if err != nil {
		return err
	}
	s, err := collectStats(entries)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Entries:       %s in %s\n", humanize.Comma(int64(s.Entries)), plural(s.Roots, "root"))
	for _, k := range entry.Kinds() {
		if n := s.ByKind[k]; n > 0 {
			fmt.Fprintf(w, "  %-22s %s\n", k.String()+":", humanize.Comma(int64(n)))
		}
	}
	fmt.Fprintf(w, "Archives:      %s\n", humanize.Comma(int64(s.Archives)))
	fmt.Fprintf(w, "File content:  %s\n", humanize.IBytes(uint64(s.Content)))
	fmt.Fprintf(w, "Duplicates:    %s\n", plural(s.Groups, "group"))
	fmt.Fprintf(w, "Reclaimable:   %s\n", humanize.IBytes(uint64(s.Wasted)))
	return nil
}
