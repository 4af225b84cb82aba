package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/passchm/file-dedup-tool/dupes"
	"github.com/passchm/file-dedup-tool/entry"
	"github.com/passchm/file-dedup-tool/store"
	"github.com/passchm/file-dedup-tool/util"
)

// groupPalette colors group headers; a digest always maps to the same color.
var groupPalette = []lipgloss.Color{"39", "170", "214", "78", "204", "141", "45", "221"}

// NewDupesCmd creates and returns the dupes subcommand for the dedup CLI.
// It reports groups of entries with identical content.
func NewDupesCmd(opts *options) *cobra.Command {
	var (
		minSize string
		root    int64
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "dupes",
		Short: "Report duplicate content",
		Long: `Report groups of inventory entries with identical content.

Entries are grouped by SHA-256 digest. Empty files, directories, symbolic
links and archive members that could not be read never count as duplicates.
Groups are listed with the most reclaimable bytes first. Archive members are
shown with their full location, e.g. "/data/a.tar » report.zip » x.txt".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			threshold, err := humanize.ParseBytes(minSize)
			if err != nil {
				return fmt.Errorf("invalid --min-size %q: %w", minSize, err)
			}
			return runDupes(cmd.Context(), cmd.OutOrStdout(), opts, int64(threshold), entry.ID(root), limit)
		},
	}

	cmd.Flags().StringVar(&minSize, "min-size", "1", "Ignore entries smaller than this (e.g. 4KiB)")
	cmd.Flags().Int64Var(&root, "root", 0, "Only consider entries below this entry ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many groups (0 shows all)")

	return cmd
}

func runDupes(ctx context.Context, w io.Writer, opts *options, minSize int64, root entry.ID, limit int) error {
	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	idx, candidates, err := loadCandidates(ctx, st.Repository(), root, minSize)
	if err != nil {
		return err
	}
	groups, err := dupes.GroupByDigest(candidates)
	if err != nil {
		return err
	}

	renderDupes(w, idx, groups.Duplicates(), limit)
	return nil
}

// loadCandidates returns an index of the whole inventory for locating
// entries, and the digested entries of at least minSize bytes below root.
func loadCandidates(ctx context.Context, repo *store.Repository, root entry.ID, minSize int64) (*dupes.Index, []entry.Entry, error) {
	all, err := repo.All(ctx)
	if err != nil {
		return nil, nil, err
	}
	if root == entry.RootParent {
		candidates, err := repo.WithChecksum(ctx, max(minSize-1, 0))
		if err != nil {
			return nil, nil, err
		}
		return dupes.NewIndex(all), candidates, nil
	}

	sub, err := repo.Subtree(ctx, root)
	if err != nil {
		return nil, nil, err
	}
	var candidates []entry.Entry
	for _, e := range sub {
		if e.Size >= minSize {
			candidates = append(candidates, e)
		}
	}
	return dupes.NewIndex(all), candidates, nil
}

func renderDupes(w io.Writer, idx *dupes.Index, groups []dupes.Group, limit int) {
	r := lipgloss.NewRenderer(w)
	pathStyle := r.NewStyle().PaddingLeft(2)
	footerStyle := r.NewStyle().Bold(true)

	if len(groups) == 0 {
		fmt.Fprintln(w, "No duplicates found.")
		return
	}

	var total int64
	for _, g := range groups {
		total += g.Wasted()
	}

	shown := groups
	if limit > 0 && limit < len(shown) {
		shown = shown[:limit]
	}
	for i, g := range shown {
		if i > 0 {
			fmt.Fprintln(w)
		}
		color := groupPalette[util.Bucket(g.Digest, len(groupPalette))]
		header := r.NewStyle().Bold(true).Foreground(color).
			Render(fmt.Sprintf("sha256:%s", shortDigest(g.Digest)))
		fmt.Fprintf(w, "%s  %d × %s  (%s reclaimable)\n", header, g.Len(),
			humanize.IBytes(uint64(g.Size)), humanize.IBytes(uint64(g.Wasted())))
		for _, e := range g.Entries {
			fmt.Fprintln(w, pathStyle.Render(idx.Location(e.ID)))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, footerStyle.Render(fmt.Sprintf("%s, %s reclaimable",
		plural(len(groups), "duplicate group"), humanize.IBytes(uint64(total)))))
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
