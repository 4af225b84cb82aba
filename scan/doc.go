// Package scan builds the inventory forest.
//
// A Scanner walks a filesystem path and persists one Entry per visited node
// through a Sink. Regular files whose name carries an archive suffix are
// opened and their members are persisted as children of the archive's own
// Entry; archives nested inside archives are expanded the same way, to any
// depth.
//
// Error Handling:
//
// Failures of the local filesystem (an unreadable file, an unclassifiable
// path) are fatal and returned to the caller. Problems inside archives
// (malformed containers, encrypted or unreadable members, member types the
// inventory cannot represent) are recoverable: they are recorded as Warnings
// in the scanner's Diagnostics, logged, and the scan carries on. Duplicate
// member paths inside one archive are fatal.
//
// ScanTargets drives a Scanner over a list of top-level targets, committing
// each target in its own store transaction.
package scan
