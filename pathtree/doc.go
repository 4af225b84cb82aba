// Package pathtree reconciles a flat list of archive member records into a
// filesystem-like tree.
//
// Archive formats do not promise an explicit entry for every ancestor
// directory: a zip may hold "a/b.txt" without ever declaring "a/". Build
// shapes a tree from every declared path, attaches each record to the node
// whose component sequence equals the record's own, and leaves the remaining
// nodes synthetic. Matching is exact: no case folding, no cleaning of "." or
// "..", only empty segments (trailing or doubled slashes) are dropped.
//
// Every record must land on exactly one node. Two records declaring the same
// path are rejected with ErrDuplicatePath; archives with colliding member
// paths are a known unsupported case.
package pathtree
