package cmd

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/passchm/file-dedup-tool/dupes"
	"github.com/passchm/file-dedup-tool/entry"
)

// NewTreeCmd creates and returns the tree subcommand for the dedup CLI.
func NewTreeCmd(opts *options) *cobra.Command {
	var root int64

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the inventory tree",
		Long: `Print the inventory as an indented tree.

Each line shows the entry name, its ID and kind, and for files the size and
the leading characters of the SHA-256 digest. Use --root to print a single
subtree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd.Context(), cmd.OutOrStdout(), opts, entry.ID(root))
		},
	}

	cmd.Flags().Int64Var(&root, "root", 0, "Only print the subtree of this entry ID")

	return cmd
}

func runTree(ctx context.Context, w io.Writer, opts *options, root entry.ID) error {
	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.Repository().Subtree(ctx, root)
	if err != nil {
		return err
	}
	renderTree(w, dupes.NewIndex(entries))
	return nil
}

func renderTree(w io.Writer, idx *dupes.Index) {
	r := lipgloss.NewRenderer(w)
	dirStyle := r.NewStyle().Bold(true)
	metaStyle := r.NewStyle().Faint(true)

	idx.Walk(func(e entry.Entry, depth int) {
		name := e.Path
		switch {
		case depth == 0:
		case e.Kind.IsArchiveMember():
			name = path.Base(e.Path)
		default:
			name = filepath.Base(e.Path)
		}
		if e.Kind.IsDirectory() {
			name = dirStyle.Render(name)
		}

		meta := fmt.Sprintf("#%d %s", e.ID, e.Kind)
		if e.Kind.CanHoldDigest() || e.Kind == entry.Symlink || e.Kind == entry.TarMemberSymlink {
			meta += " " + humanize.IBytes(uint64(e.Size))
		}
		if e.HasChecksum() {
			meta += " " + shortDigest(e.Digest())
		}
		fmt.Fprintf(w, "%s%s  %s\n", strings.Repeat("    ", depth), name, metaStyle.Render(meta))
	})
}
