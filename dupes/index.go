package dupes

import (
	"cmp"
	"slices"
	"strings"

	"github.com/passchm/file-dedup-tool/entry"
)

// LocationSeparator joins the archive levels of a location.
const LocationSeparator = " » "

// Index is a navigable view of a set of entries.
type Index struct {
	byID     map[entry.ID]entry.Entry
	byPath   map[string][]entry.ID
	children map[entry.ID][]entry.ID
	roots    []entry.ID
}

// NewIndex indexes entries. Entries whose parent is not part of the set are
// treated as roots.
func NewIndex(entries []entry.Entry) *Index {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b entry.Entry) int { return cmp.Compare(a.ID, b.ID) })

	idx := &Index{
		byID:     make(map[entry.ID]entry.Entry, len(sorted)),
		byPath:   make(map[string][]entry.ID),
		children: make(map[entry.ID][]entry.ID),
	}
	for _, e := range sorted {
		idx.byID[e.ID] = e
	}
	for _, e := range sorted {
		idx.byPath[e.Path] = append(idx.byPath[e.Path], e.ID)
		if _, ok := idx.byID[e.ParentID]; ok && !e.IsRoot() {
			idx.children[e.ParentID] = append(idx.children[e.ParentID], e.ID)
		} else {
			idx.roots = append(idx.roots, e.ID)
		}
	}
	return idx
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int {
	return len(idx.byID)
}

// ByID returns the entry with the given id.
func (idx *Index) ByID(id entry.ID) (entry.Entry, bool) {
	e, ok := idx.byID[id]
	return e, ok
}

// ByPath returns every entry recorded under path, ordered by ID. Re-scans and
// archive members make paths ambiguous.
func (idx *Index) ByPath(path string) []entry.Entry {
	return idx.resolve(idx.byPath[path])
}

// Children returns the direct children of id in insertion order.
func (idx *Index) Children(id entry.ID) []entry.Entry {
	return idx.resolve(idx.children[id])
}

// Roots returns the entries without an indexed parent.
func (idx *Index) Roots() []entry.Entry {
	return idx.resolve(idx.roots)
}

// Ancestors returns the chain from the outermost indexed ancestor down to the
// entry itself.
func (idx *Index) Ancestors(id entry.ID) []entry.Entry {
	var chain []entry.Entry
	for {
		e, ok := idx.byID[id]
		if !ok {
			break
		}
		chain = append(chain, e)
		if e.IsRoot() {
			break
		}
		id = e.ParentID
	}
	slices.Reverse(chain)
	return chain
}

// Location renders where an entry lives: the filesystem path of the
// outermost archive followed by the member path at each archive level.
func (idx *Index) Location(id entry.ID) string {
	chain := idx.Ancestors(id)
	if len(chain) == 0 {
		return ""
	}
	var parts []string
	for i, e := range chain {
		if i == len(chain)-1 || idx.isArchive(e) {
			parts = append(parts, e.Path)
		}
	}
	return strings.Join(parts, LocationSeparator)
}

// isArchive reports whether e is a file that was expanded into members.
func (idx *Index) isArchive(e entry.Entry) bool {
	return e.Kind.CanHoldDigest() && len(idx.children[e.ID]) > 0
}

// Walk visits the entries below the roots in pre-order. depth is 0 for
// roots.
func (idx *Index) Walk(fn func(e entry.Entry, depth int)) {
	for _, id := range idx.roots {
		idx.walk(id, 0, fn)
	}
}

func (idx *Index) walk(id entry.ID, depth int, fn func(entry.Entry, int)) {
	fn(idx.byID[id], depth)
	for _, c := range idx.children[id] {
		idx.walk(c, depth+1, fn)
	}
}

func (idx *Index) resolve(ids []entry.ID) []entry.Entry {
	if len(ids) == 0 {
		return nil
	}
	out := make([]entry.Entry, 0, len(ids))
	for _, id := range ids {
		out = append(out, idx.byID[id])
	}
	return out
}
