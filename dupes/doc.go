// Package dupes finds duplicate content in a persisted inventory.
//
// GroupByDigest buckets entries by SHA-256 digest. Only entries with content
// (size greater than zero) and a recorded digest take part, so empty files,
// directories, symlinks, synthetic components and unreadable archive members
// never show up as duplicates. Every group is checked for a consistent size.
//
// Index answers the structural questions a report needs: an entry's children,
// its chain of ancestors, and a readable location that spells out nested
// archives, e.g. "/data/a.tar » report.zip » x.txt".
//
// Both are read-only views over entries loaded from the store.
package dupes
