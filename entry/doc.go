// Package entry defines the inventory record shared by the scanner, the store
// and the duplicate grouper.
//
// An Entry is one node of the persisted inventory forest: a file, directory or
// symlink found on disk, or a member (real or synthesized) of a zip or tar
// archive. Entries are created exactly once during a scan and never mutated;
// the parent_id column of the store links them into a forest whose roots are
// parented to RootParent.
//
// Kind is a closed enumeration. Its integer codes are part of the on-disk
// schema and must not be renumbered.
package entry
