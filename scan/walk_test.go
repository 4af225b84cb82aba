package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passchm/file-dedup-tool/entry"
	"github.com/passchm/file-dedup-tool/util"
)

func TestScanPath_DirectoryTree(t *testing.T) {
	st := openStore(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.txt"), []byte("bee"))
	writeFile(t, filepath.Join(root, "a", "x.txt"), []byte("ex"))
	writeFile(t, filepath.Join(root, "a", "empty"), nil)
	require.NoError(t, os.Symlink("b.txt", filepath.Join(root, "link")))

	res, all := scanOne(t, st, root)
	require.NoError(t, res.Err)
	requireForest(t, all)
	require.Len(t, all, 6)

	top := byPath(t, all, root)
	assert.Equal(t, entry.Directory, top.Kind)
	assert.True(t, top.IsRoot())
	assert.Equal(t, top.ID, res.RootID)
	assert.Zero(t, top.Size)
	assert.Nil(t, top.Checksum)

	// children in name order
	assert.Equal(t, []string{
		filepath.Join(root, "a"),
		filepath.Join(root, "b.txt"),
		filepath.Join(root, "link"),
	}, childrenOf(all, top.ID))

	a := byPath(t, all, filepath.Join(root, "a"))
	assert.Equal(t, []string{
		filepath.Join(root, "a", "empty"),
		filepath.Join(root, "a", "x.txt"),
	}, childrenOf(all, a.ID))

	b := byPath(t, all, filepath.Join(root, "b.txt"))
	assert.Equal(t, entry.File, b.Kind)
	assert.Equal(t, int64(3), b.Size)
	require.NotNil(t, b.Checksum)
	assert.Equal(t, hashOf(t, []byte("bee")), *b.Checksum)

	empty := byPath(t, all, filepath.Join(root, "a", "empty"))
	assert.Zero(t, empty.Size)
	assert.True(t, empty.HasChecksum())
	assert.False(t, empty.Digestible())

	link := byPath(t, all, filepath.Join(root, "link"))
	assert.Equal(t, entry.Symlink, link.Kind)
	assert.Nil(t, link.Checksum)
	info, err := os.Lstat(filepath.Join(root, "link"))
	require.NoError(t, err)
	assert.Equal(t, info.Size(), link.Size)
	assert.Equal(t, entry.Timestamp(info.ModTime()), link.Timestamp)
}

func TestScanPath_SymlinkToDirectoryNotFollowed(t *testing.T) {
	st := openStore(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real", "f.txt"), []byte("f"))
	require.NoError(t, os.Symlink("real", filepath.Join(root, "alias")))

	res, all := scanOne(t, st, root)
	require.NoError(t, res.Err)
	alias := byPath(t, all, filepath.Join(root, "alias"))
	assert.Equal(t, entry.Symlink, alias.Kind)
	assert.Empty(t, childrenOf(all, alias.ID))
}

func TestScanPath_SingleFileTarget(t *testing.T) {
	st := openStore(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "lonely.bin"), []byte("content"))

	res, all := scanOne(t, st, path)
	require.NoError(t, res.Err)
	require.Len(t, all, 1)
	assert.Equal(t, entry.File, all[0].Kind)
	assert.True(t, all[0].IsRoot())
}

func TestScanPath_IdenticalFilesShareDigest(t *testing.T) {
	st := openStore(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "one"), []byte("same bytes"))
	writeFile(t, filepath.Join(root, "two"), []byte("same bytes"))
	writeFile(t, filepath.Join(root, "three"), []byte("same byteS"))

	res, all := scanOne(t, st, root)
	require.NoError(t, res.Err)
	one := byPath(t, all, filepath.Join(root, "one"))
	two := byPath(t, all, filepath.Join(root, "two"))
	three := byPath(t, all, filepath.Join(root, "three"))
	assert.Equal(t, one.Digest(), two.Digest())
	assert.NotEqual(t, one.Digest(), three.Digest())
}

func TestScanPath_MissingTarget(t *testing.T) {
	st := openStore(t)
	res, all := scanOne(t, st, filepath.Join(t.TempDir(), "nope"))
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, util.ErrReadFile))
	assert.True(t, errors.Is(res.Err, os.ErrNotExist))
	assert.Empty(t, all)
}

func TestScanPath_UnreadableFileIsFatal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits do not apply to root")
	}
	st := openStore(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "fine.txt"), []byte("ok"))
	locked := writeFile(t, filepath.Join(root, "locked.txt"), []byte("secret"))
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	res, all := scanOne(t, st, root)
	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, util.ErrReadFile))
	assert.Contains(t, res.Err.Error(), "locked.txt")
	assert.Empty(t, all, "a failed target must not leave entries behind")
}

func TestScanPath_CancelledContext(t *testing.T) {
	st := openStore(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "f"), []byte("f"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := ScanTargets(ctx, st, []string{root})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)

	n, err := st.Repository().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
