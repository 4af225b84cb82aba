package dupes

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passchm/file-dedup-tool/entry"
)

func file(id entry.ID, path string, size int64, sum string) entry.Entry {
	e := entry.Entry{ID: id, Kind: entry.File, Path: path, Size: size}
	if sum != "" {
		e.Checksum = entry.ChecksumOf(sum)
	}
	return e
}

func TestGroupByDigest(t *testing.T) {
	entries := []entry.Entry{
		file(5, "/b/copy", 10, "aa"),
		file(2, "/a/orig", 10, "aa"),
		file(3, "/a/unique", 4, "bb"),
		file(4, "/a/empty1", 0, "e3"),
		file(6, "/a/empty2", 0, "e3"),
		file(7, "/a/encrypted", 10, ""),
		{ID: 1, Kind: entry.Directory, Path: "/a"},
	}

	groups, err := GroupByDigest(entries)
	require.NoError(t, err)
	assert.Len(t, groups, 2)

	aa, ok := groups.Lookup("aa")
	require.True(t, ok)
	assert.Equal(t, int64(10), aa.Size)
	require.Equal(t, 2, aa.Len())
	assert.Equal(t, entry.ID(2), aa.Entries[0].ID)
	assert.Equal(t, entry.ID(5), aa.Entries[1].ID)
	assert.Equal(t, int64(10), aa.Wasted())

	_, ok = groups.Lookup("e3")
	assert.False(t, ok, "empty content never groups")

	bb, _ := groups.Lookup("bb")
	assert.Zero(t, bb.Wasted())

	dups := groups.Duplicates()
	require.Len(t, dups, 1)
	assert.Equal(t, "aa", dups[0].Digest)
	assert.Equal(t, int64(10), groups.Wasted())
}

func TestGroupByDigest_SizeMismatch(t *testing.T) {
	_, err := GroupByDigest([]entry.Entry{
		file(1, "x", 10, "aa"),
		file(2, "y", 11, "aa"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSizeMismatch))
}

func TestDuplicates_Order(t *testing.T) {
	groups, err := GroupByDigest([]entry.Entry{
		file(1, "small1", 1, "s"),
		file(2, "small2", 1, "s"),
		file(3, "small3", 1, "s"),
		file(4, "big1", 100, "b"),
		file(5, "big2", 100, "b"),
		file(6, "tie1", 2, "t2"),
		file(7, "tie2", 2, "t2"),
		file(8, "tieA", 2, "t1"),
		file(9, "tieB", 2, "t1"),
	})
	require.NoError(t, err)

	var order []string
	for _, g := range groups.Duplicates() {
		order = append(order, g.Digest)
	}
	assert.Equal(t, []string{"b", "s", "t1", "t2"}, order)
}

func TestGroupByDigest_ArchiveMembersCount(t *testing.T) {
	member := entry.Entry{ID: 9, Kind: entry.ZipMemberFile, Path: "x.txt", Size: 3, Checksum: entry.ChecksumOf("cc"), ParentID: 8}
	groups, err := GroupByDigest([]entry.Entry{file(1, "/x.txt", 3, "cc"), member})
	require.NoError(t, err)
	g, ok := groups.Lookup("cc")
	require.True(t, ok)
	assert.Equal(t, 2, g.Len())
}
