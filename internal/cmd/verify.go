package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/passchm/file-dedup-tool/entry"
	"github.com/passchm/file-dedup-tool/util"
)

// errVerifyFailed is returned by verify when any problem was found.
var errVerifyFailed = errors.New("inventory verification failed")

// NewVerifyCmd creates and returns the verify subcommand for the dedup CLI.
// It checks the consistency of the inventory and, optionally, that the
// scanned files are unchanged on disk.
func NewVerifyCmd(opts *options) *cobra.Command {
	var (
		rehash  bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check inventory consistency",
		Long: `Check the inventory for structural problems.

Every entry must hang below an existing parent that can own children, archive
members must sit inside an archive of their own format, and only file content
may carry a digest. With --rehash, every scanned filesystem file is read again
and reported when it is missing or its content changed since the scan.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), cmd.OutOrStdout(), opts, rehash, verbose)
		},
	}

	cmd.Flags().BoolVar(&rehash, "rehash", false, "Re-read scanned files and compare digests")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	return cmd
}

// problem is one finding of verify.
type problem struct {
	ID      entry.ID
	Path    string
	Message string
}

func (p problem) String() string {
	return fmt.Sprintf("entry %d %q: %s", p.ID, p.Path, p.Message)
}

func runVerify(ctx context.Context, w io.Writer, opts *options, rehash, verbose bool) error {
	st, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.Repository().All(ctx)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(w, "Verifying %s\n", plural(len(entries), "entry"))
	}

	problems := checkStructure(entries)
	if rehash {
		changed, err := checkContent(ctx, entries, util.GetFileHash)
		if err != nil {
			return err
		}
		problems = append(problems, changed...)
	}

	for _, p := range problems {
		fmt.Fprintf(w, "  - %s\n", p)
	}

	fmt.Fprintf(w, "\nVerification complete:\n")
	fmt.Fprintf(w, "  Entries checked: %d\n", len(entries))
	fmt.Fprintf(w, "  Problems: %d\n", len(problems))

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errVerifyFailed, plural(len(problems), "problem"))
	}
	return nil
}

// checkStructure reports entries that break the shape of the inventory forest.
func checkStructure(entries []entry.Entry) []problem {
	byID := make(map[entry.ID]entry.Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	var problems []problem
	report := func(e entry.Entry, format string, args ...any) {
		problems = append(problems, problem{ID: e.ID, Path: e.Path, Message: fmt.Sprintf(format, args...)})
	}

	for _, e := range entries {
		if !e.Kind.Valid() {
			report(e, "unknown kind %d", int(e.Kind))
			continue
		}
		if e.Size < 0 {
			report(e, "negative size %d", e.Size)
		}
		if e.HasChecksum() && !e.Kind.CanHoldDigest() {
			report(e, "%s carries a digest", e.Kind)
		}
		if e.Kind.IsSynthetic() && e.Size != 0 {
			report(e, "synthetic component has size %d", e.Size)
		}

		if e.IsRoot() {
			if e.Kind.IsArchiveMember() {
				report(e, "archive member %s without a parent", e.Kind)
			}
			continue
		}

		parent, ok := byID[e.ParentID]
		switch {
		case !ok:
			report(e, "parent %d does not exist", e.ParentID)
		case parent.ID >= e.ID:
			report(e, "parent %d was not recorded before its child", parent.ID)
		default:
			if msg := parentMismatch(parent.Kind, e.Kind); msg != "" {
				report(e, "%s", msg)
			}
		}
	}
	return problems
}

// parentMismatch describes why a child of kind k cannot sit below a parent
// of kind p, or returns the empty string.
func parentMismatch(p, k entry.Kind) string {
	if !k.IsArchiveMember() {
		if p != entry.Directory {
			return fmt.Sprintf("%s below %s", k, p)
		}
		return ""
	}
	// Archive members live below an archive file of any format, or below a
	// directory of their own format. A tar may also declare members below a
	// path it declared as a symlink.
	if p.CanHoldDigest() {
		return ""
	}
	if p.IsDirectory() && p.Container() == k.Container() {
		return ""
	}
	if p == entry.TarMemberSymlink && k.Container() == entry.ContainerTar {
		return ""
	}
	return fmt.Sprintf("%s below %s", k, p)
}

// checkContent re-hashes every filesystem file of the inventory.
func checkContent(ctx context.Context, entries []entry.Entry, hash func(string) (string, error)) ([]problem, error) {
	var problems []problem
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return problems, err
		}
		if e.Kind != entry.File {
			continue
		}

		info, err := os.Lstat(e.Path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			problems = append(problems, problem{e.ID, e.Path, "missing"})
			continue
		case err != nil:
			problems = append(problems, problem{e.ID, e.Path, err.Error()})
			continue
		case !info.Mode().IsRegular():
			problems = append(problems, problem{e.ID, e.Path, "no longer a regular file"})
			continue
		}

		sum, err := hash(e.Path)
		if err != nil {
			problems = append(problems, problem{e.ID, e.Path, err.Error()})
			continue
		}
		if sum != e.Digest() || info.Size() != e.Size {
			problems = append(problems, problem{e.ID, e.Path, "content changed"})
		}
	}
	return problems, nil
}
