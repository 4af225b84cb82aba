package cmd

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/passchm/file-dedup-tool/internal/config"
	"github.com/passchm/file-dedup-tool/store"
	"github.com/passchm/file-dedup-tool/version"
)

// options carries the resolved configuration shared by every subcommand.
type options struct {
	v          *viper.Viper
	configFile string
	cfg        config.Config
	logger     *log.Logger
}

// load resolves flags, environment and config file. It runs before every
// subcommand.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.v, o.configFile)
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = logger
	return nil
}

func (o *options) openStore(ctx context.Context) (*store.Store, error) {
	o.logger.Debug("opening inventory", "database", o.cfg.Database)
	return store.Open(ctx, o.cfg.Database)
}

// NewRootCmd creates and returns the root cobra command for the dedup CLI.
// It sets up all subcommands, command groups, and the persistent
// configuration flags.
func NewRootCmd() *cobra.Command {
	opts := &options{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "dedup",
		Short: "dedup - find duplicate files across directory trees and archives",
		Long: `dedup builds a persistent inventory of file trees and reports duplicate content.

Every scanned file is fingerprinted with SHA-256. Zip and tar archives,
including compressed tarballs and archives nested inside archives, are
expanded so their members take part in duplicate detection too.

Use subcommands to perform different operations:
  - scan: Add directory trees and files to the inventory
  - dupes: Report groups of identical content
  - tree: Print the inventory tree
  - scans: List recorded scan runs
  - stats: Summarize the inventory
  - verify: Check inventory consistency and re-hash files
  - inspect: Show how an archive's members are reconciled into a tree
  - seed: Generate a sample tree with duplicates and archives`,
		Version:      version.GetFullVersion(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	defaults := config.DefaultConfig()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "Config file (default: ./dedup.toml or $XDG_CONFIG_HOME/dedup/dedup.toml)")
	pf.String("database", defaults.Database, "Inventory database file")
	pf.String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	pf.String("spool-threshold", defaults.SpoolThreshold, "Memory budget for buffering nested archives")
	_ = opts.v.BindPFlag(config.KeyDatabase, pf.Lookup("database"))
	_ = opts.v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))
	_ = opts.v.BindPFlag(config.KeySpoolThreshold, pf.Lookup("spool-threshold"))

	groupInventory := "inventory"
	groupReports := "reports"
	groupUtilities := "utilities"

	// Add command groups for better organization
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupInventory,
		Title: "Inventory Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupReports,
		Title: "Reports",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	scanCmd := NewScanCmd(opts)
	verifyCmd := NewVerifyCmd(opts)
	dupesCmd := NewDupesCmd(opts)
	treeCmd := NewTreeCmd(opts)
	scansCmd := NewScansCmd(opts)
	statsCmd := NewStatsCmd(opts)
	inspectCmd := NewInspectCmd()
	seedCmd := NewSeedCmd(opts)
	versionCmd := NewVersionCmd()

	scanCmd.GroupID = groupInventory
	verifyCmd.GroupID = groupInventory
	dupesCmd.GroupID = groupReports
	treeCmd.GroupID = groupReports
	scansCmd.GroupID = groupReports
	statsCmd.GroupID = groupReports
	inspectCmd.GroupID = groupUtilities
	seedCmd.GroupID = groupUtilities
	versionCmd.GroupID = groupUtilities

	// Add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(dupesCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(scansCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}
