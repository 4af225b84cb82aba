// Package cmd provides the command-line interface implementation for dedup.
//
// This package contains all the subcommand implementations for the dedup CLI tool.
// It uses the Cobra library for command structure and Fang for styling.
//
// The package is organized into the following commands:
//   - root: Main command coordinator, persistent configuration flags
//   - scan: Filesystem and archive scanning into the inventory
//   - verify: Inventory consistency checks and re-hashing
//   - dupes: Duplicate content report
//   - tree, scans, stats: Inventory listings
//   - inspect: Archive member reconciliation preview
//   - seed: Sample data generation
//   - version: Build information
//
// Each command is implemented as a separate file with its own constructor function
// that returns a *cobra.Command. Commands that touch the inventory share the
// options resolved by the root command through internal/config.
package cmd
