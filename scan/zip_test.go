package scan

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passchm/file-dedup-tool/entry"
	"github.com/passchm/file-dedup-tool/pathtree"
	"github.com/passchm/file-dedup-tool/util"
)

func TestScanZip_SyntheticComponent(t *testing.T) {
	st := openStore(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "archive.zip"), zipBytes(t,
		zipMember{name: "a/b.txt", body: "bee"},
		zipMember{name: "a/c.txt", body: "sea"},
	))

	res, all := scanOne(t, st, path)
	require.NoError(t, res.Err)
	requireForest(t, all)
	require.Len(t, all, 4)

	archive := byPath(t, all, path)
	assert.Equal(t, entry.File, archive.Kind)

	a := byPath(t, all, "a")
	assert.Equal(t, entry.ZipMemberComponent, a.Kind)
	assert.Equal(t, archive.ID, a.ParentID)
	assert.Zero(t, a.Size)
	assert.Nil(t, a.Checksum)
	assert.Equal(t, archive.Timestamp, a.Timestamp)

	assert.Equal(t, []string{"a/b.txt", "a/c.txt"}, childrenOf(all, a.ID))
	b := byPath(t, all, "a/b.txt")
	assert.Equal(t, entry.ZipMemberFile, b.Kind)
	assert.Equal(t, int64(3), b.Size)
	assert.Equal(t, hashOf(t, []byte("bee")), b.Digest())
	assert.Equal(t, memberTime, b.Timestamp)
	assert.Empty(t, res.Warnings)
}

func TestScanZip_ExplicitDirectoryMember(t *testing.T) {
	st := openStore(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "dirs.zip"), zipBytes(t,
		zipMember{name: "d/"},
		zipMember{name: "d/f.txt", body: "f"},
	))

	res, all := scanOne(t, st, path)
	require.NoError(t, res.Err)
	d := byPath(t, all, "d/")
	assert.Equal(t, entry.ZipMemberDirectory, d.Kind)
	assert.Nil(t, d.Checksum)
	assert.Equal(t, memberTime, d.Timestamp)
	assert.Equal(t, []string{"d/f.txt"}, childrenOf(all, d.ID))
}

func TestScanZip_DuplicateMemberIsFatal(t *testing.T) {
	st := openStore(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "before.txt"), []byte("b"))
	writeFile(t, filepath.Join(root, "dup.zip"), zipBytes(t,
		zipMember{name: "x.txt", body: "one"},
		zipMember{name: "x.txt", body: "two"},
	))

	res, all := scanOne(t, st, root)
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, pathtree.ErrDuplicatePath))
	assert.True(t, res.Failed())
	assert.Empty(t, all, "nothing of the target may be committed")
}

func TestScanZip_EncryptedMember(t *testing.T) {
	st := openStore(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "locked.zip"), zipBytes(t,
		zipMember{name: "secret.bin", body: "0123456789", encrypted: true},
		zipMember{name: "plain.txt", body: "visible"},
	))

	res, all := scanOne(t, st, path)
	require.NoError(t, res.Err)

	secret := byPath(t, all, "secret.bin")
	assert.Equal(t, entry.ZipMemberFile, secret.Kind)
	assert.Equal(t, int64(10), secret.Size)
	assert.Nil(t, secret.Checksum)

	plain := byPath(t, all, "plain.txt")
	assert.Equal(t, hashOf(t, []byte("visible")), plain.Digest())

	enc := warningsWith(res.Warnings, util.ErrEncryptedMember)
	require.Len(t, enc, 1)
	assert.Equal(t, "secret.bin", enc[0].Member)
	assert.Equal(t, byPath(t, all, path).ID, enc[0].ParentID)
	assert.Equal(t, SeverityWarning, enc[0].Severity)
}

func TestScanZip_UnsupportedMethod(t *testing.T) {
	st := openStore(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "odd.zip"), zipBytes(t,
		zipMember{name: "weird.bin", body: "payload", method: 99},
		zipMember{name: "ok.txt", body: "ok"},
	))

	res, all := scanOne(t, st, path)
	require.NoError(t, res.Err)
	weird := byPath(t, all, "weird.bin")
	assert.Nil(t, weird.Checksum)
	assert.Equal(t, int64(7), weird.Size)
	assert.True(t, byPath(t, all, "ok.txt").HasChecksum())
	require.Len(t, warningsWith(res.Warnings, util.ErrUnreadableMember), 1)
}

func TestScanZip_NotAZip(t *testing.T) {
	st := openStore(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "bogus.ZIP"), []byte("this is plain text"))

	res, all := scanOne(t, st, path)
	require.NoError(t, res.Err)
	require.Len(t, all, 1)
	assert.True(t, all[0].HasChecksum())
	require.Len(t, warningsWith(res.Warnings, util.ErrNotArchive), 1)
	assert.Empty(t, res.Warnings[0].Member)
}

func TestScanZip_DeflateAndZstdMembers(t *testing.T) {
	st := openStore(t)
	body := string(bytes.Repeat([]byte("compressible "), 100))
	path := writeFile(t, filepath.Join(t.TempDir(), "packed.zip"), zipBytes(t,
		zipMember{name: "deflated.txt", body: body, method: 8},
	))

	res, all := scanOne(t, st, path)
	require.NoError(t, res.Err)
	assert.Equal(t, hashOf(t, []byte(body)), byPath(t, all, "deflated.txt").Digest())
}

func TestScanZip_NestedSpoolOnDisk(t *testing.T) {
	st := openStore(t)
	inner := zipBytes(t, zipMember{name: "deep.txt", body: "deep"})
	path := writeFile(t, filepath.Join(t.TempDir(), "outer.zip"), zipBytes(t,
		zipMember{name: "inner.zip", body: string(inner)},
	))

	spoolDir := t.TempDir()
	res, all := scanOne(t, st, path, WithSpoolThreshold(0), WithTempDir(spoolDir))
	require.NoError(t, res.Err)

	innerEntry := byPath(t, all, "inner.zip")
	assert.Equal(t, hashOf(t, inner), innerEntry.Digest())
	deep := byPath(t, all, "deep.txt")
	assert.Equal(t, innerEntry.ID, deep.ParentID)

	left, err := filepath.Glob(filepath.Join(spoolDir, "*"))
	require.NoError(t, err)
	assert.Empty(t, left, "spool files are removed")
}

func TestScanZip_DirectScanWithoutStore(t *testing.T) {
	sink := &memorySink{}
	sc := New(sink)
	parent, err := sink.Insert(context.Background(), entry.Entry{Kind: entry.File, Path: "mem.zip", Size: 1, Timestamp: memberTime})
	require.NoError(t, err)

	data := zipBytes(t, zipMember{name: "x/y/z.txt", body: "zed"})
	require.NoError(t, sc.ScanZip(context.Background(), bytes.NewReader(data), int64(len(data)), parent))

	var paths []string
	for _, e := range sink.entries[1:] {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"x", "x/y", "x/y/z.txt"}, paths)
	assert.Equal(t, entry.ZipMemberComponent, sink.entries[2].Kind)
	assert.Equal(t, memberTime, sink.entries[2].Timestamp)
}
