// Package util provides utility functions for the dedup scanner.
package util

import "errors"

// Sentinel errors for package util.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// File and directory errors
	ErrExpectedFile     = errors.New("expected file, got directory")
	ErrUnknownEntryKind = errors.New("unknown kind of path")
	ErrReadFile         = errors.New("failed to read file")

	// Archive errors
	ErrNotArchive        = errors.New("not a valid archive")
	ErrTruncatedArchive  = errors.New("truncated archive")
	ErrEncryptedMember   = errors.New("encrypted archive member")
	ErrUnreadableMember  = errors.New("unreadable archive member")
	ErrUnsupportedMember = errors.New("unsupported archive member type")
)
