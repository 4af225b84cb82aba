// Package main provides the dedup command-line interface.
//
// dedup builds a persistent, content-addressed inventory of file trees and
// reports duplicate content. Regular files are fingerprinted with SHA-256;
// zip and tar archives, compressed tarballs and archives nested inside
// archives are expanded so their members take part in duplicate detection.
// The inventory is a SQLite database that grows with every scan.
//
// The main binary supports multiple subcommands:
//   - scan: Add directory trees and files to the inventory
//   - verify: Check inventory consistency and re-hash scanned files
//   - dupes: Report groups of identical content
//   - tree: Print the inventory tree
//   - scans: List recorded scan runs
//   - stats: Summarize the inventory
//   - inspect: Show the reconciled member tree of an archive
//   - seed: Generate a sample tree with duplicates and archives
package main
