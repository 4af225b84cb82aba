package cmd

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/passchm/file-dedup-tool/util"
)

// NewSeedCmd creates and returns the seed subcommand for the dedup CLI.
// It generates a sample tree with duplicate content and nested archives.
func NewSeedCmd(opts *options) *cobra.Command {
	var (
		outputPath string
		fileCount  int
		poolSize   int
		archives   int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a sample tree with duplicates and archives",
		Long: `Generate a sample tree for trying out dedup.

Creates files in a YYYY/MM/DD directory structure. Each file contains a
single UUID line drawn from a small pool, so many files share content.
Afterwards some day directories are packed into zip and tar.gz archives
below archives/, and that directory is bundled once more into bundle.tar.zst
so the tree contains archives nested inside archives.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileCount < 1 || poolSize < 1 {
				return fmt.Errorf("--count and --pool must be positive")
			}
			return runSeed(cmd.OutOrStdout(), opts.logger, seedOptions{
				Output:   outputPath,
				Files:    fileCount,
				Pool:     poolSize,
				Archives: archives,
				Verbose:  verbose,
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to output directory (required)")
	cmd.Flags().IntVarP(&fileCount, "count", "c", 1000, "Number of files to generate")
	cmd.Flags().IntVar(&poolSize, "pool", 50, "Number of distinct file contents")
	cmd.Flags().IntVarP(&archives, "archives", "a", 4, "Number of day directories to pack into archives")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	cmd.MarkFlagRequired("output")

	return cmd
}

type seedOptions struct {
	Output   string
	Files    int
	Pool     int
	Archives int
	Verbose  bool
}

func randN(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		panic(err)
	}
	return v.Int64()
}

func runSeed(w io.Writer, logger *log.Logger, o seedOptions) error {
	if o.Verbose {
		fmt.Fprintf(w, "Generating %s in %s\n", plural(o.Files, "file"), o.Output)
	}
	if err := os.MkdirAll(o.Output, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	pool := make([]string, o.Pool)
	for i := range pool {
		pool[i] = uuid.New().String()
	}

	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dirFileCounts := make(map[string]int)
	created := 0
	for created < o.Files {
		fileTime := baseTime.AddDate(0, 0, int(randN(365)))
		dirPath := filepath.Join(o.Output,
			fmt.Sprintf("%04d", fileTime.Year()),
			fmt.Sprintf("%02d", fileTime.Month()),
			fmt.Sprintf("%02d", fileTime.Day()))
		if err := os.MkdirAll(dirPath, 0o755); err != nil {
			return err
		}

		ext := ".json"
		if randN(2) == 1 {
			ext = ".txt"
		}
		filePath := filepath.Join(dirPath, fmt.Sprintf("%08x%s", randN(0xFFFFFFFF), ext))
		if _, err := os.Stat(filePath); err == nil {
			continue
		}

		content := pool[randN(int64(len(pool)))] + "\n"
		if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
			return err
		}
		if err := os.Chtimes(filePath, fileTime, fileTime); err != nil {
			return err
		}

		dirFileCounts[dirPath]++
		created++
		if o.Verbose && created%1000 == 0 {
			fmt.Fprintf(w, "Created %d/%d files...\n", created, o.Files)
		}
	}

	packed, err := packSeedArchives(o.Output, dirFileCounts, o.Archives)
	if err != nil {
		return err
	}
	for _, p := range packed {
		logger.Debug("packed archive", "path", p)
	}

	if o.Verbose {
		fmt.Fprintf(w, "Created %s across %d directories\n", plural(created, "file"), len(dirFileCounts))
		fmt.Fprintf(w, "Packed %s\n", plural(len(packed), "archive"))
	}
	return nil
}

// packSeedArchives packs up to n day directories into archives/ and bundles
// that directory into bundle.tar.zst. It returns the created archive paths.
func packSeedArchives(root string, dirs map[string]int, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	names := make([]string, 0, len(dirs))
	for d := range dirs {
		names = append(names, d)
	}
	slices.Sort(names)
	if len(names) > n {
		names = names[:n]
	}

	archiveDir := filepath.Join(root, "archives")
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return nil, err
	}

	var packed []string
	for i, dir := range names {
		base := filepath.Join(archiveDir, fmt.Sprintf("%02d-%s", i, filepath.Base(dir)))
		var (
			dest string
			err  error
		)
		if i%2 == 0 {
			dest = base + ".zip"
			err = util.PackZip(dir, dest)
		} else {
			dest = base + ".tar.gz"
			err = util.PackTar(dir, dest, util.CompressionGzip)
		}
		if err != nil {
			return nil, err
		}
		packed = append(packed, dest)
	}

	bundle := filepath.Join(root, "bundle.tar.zst")
	if err := util.PackTar(archiveDir, bundle, util.CompressionZstd); err != nil {
		return nil, err
	}
	return append(packed, bundle), nil
}
