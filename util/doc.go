// Package util provides the low-level building blocks of the dedup scanner.
//
// Key Components:
//
// Content Hashing:
//   - SHA-256 content addressing through go-digest's canonical algorithm
//   - Lowercase hex digests, bit-identical to the checksums of earlier
//     inventories
//   - Streaming Hasher for digesting a member while it is copied elsewhere
//
// Archive Detection:
//   - Dotted suffix rules deciding which names are zip or tar archives
//   - Magic-byte sniffing of gzip, bzip2, xz and zstd compressed tar streams
//
// Spooling:
//   - Spool turns a forward-only member stream into a random-access copy,
//     in memory below a threshold and in a temporary file above it
//
// Packing:
//   - PackZip and PackTar write a directory tree into zip or (compressed)
//     tar archives, used to generate sample inventories
//
// Errors:
//   - Sentinel errors shared by the scanner, checked with errors.Is
package util
