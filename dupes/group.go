package dupes

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/passchm/file-dedup-tool/entry"
)

// ErrSizeMismatch is returned when entries share a digest but not a size.
var ErrSizeMismatch = errors.New("entries share a digest but differ in size")

// Group is the set of entries carrying one digest, ordered by ID.
type Group struct {
	Digest  string
	Size    int64
	Entries []entry.Entry
}

// Len returns the number of entries in the group.
func (g Group) Len() int {
	return len(g.Entries)
}

// Wasted returns the bytes that could be reclaimed by keeping one copy.
func (g Group) Wasted() int64 {
	if len(g.Entries) < 2 {
		return 0
	}
	return g.Size * int64(len(g.Entries)-1)
}

// Groups maps digests to their groups.
type Groups map[string]Group

// GroupByDigest buckets the digestible entries by digest.
func GroupByDigest(entries []entry.Entry) (Groups, error) {
	groups := make(Groups)
	for _, e := range entries {
		if !e.Digestible() {
			continue
		}
		d := e.Digest()
		g, ok := groups[d]
		if !ok {
			g = Group{Digest: d, Size: e.Size}
		} else if g.Size != e.Size {
			return nil, fmt.Errorf("%w: digest %s has sizes %d and %d (entry %d)",
				ErrSizeMismatch, d, g.Size, e.Size, e.ID)
		}
		g.Entries = append(g.Entries, e)
		groups[d] = g
	}
	for d, g := range groups {
		slices.SortFunc(g.Entries, func(a, b entry.Entry) int { return cmp.Compare(a.ID, b.ID) })
		groups[d] = g
	}
	return groups, nil
}

// Lookup returns the group of digest.
func (gs Groups) Lookup(digest string) (Group, bool) {
	g, ok := gs[digest]
	return g, ok
}

// Duplicates returns the groups with at least two entries, most reclaimable
// bytes first and then by digest.
func (gs Groups) Duplicates() []Group {
	var out []Group
	for _, g := range gs {
		if g.Len() >= 2 {
			out = append(out, g)
		}
	}
	slices.SortFunc(out, func(a, b Group) int {
		if c := cmp.Compare(b.Wasted(), a.Wasted()); c != 0 {
			return c
		}
		return cmp.Compare(a.Digest, b.Digest)
	})
	return out
}

// Wasted sums the reclaimable bytes over all groups.
func (gs Groups) Wasted() int64 {
	var total int64
	for _, g := range gs {
		total += g.Wasted()
	}
	return total
}
