package scan

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/passchm/file-dedup-tool/entry"
	"github.com/passchm/file-dedup-tool/store"
	"github.com/passchm/file-dedup-tool/util"
)

var memberTime = time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)

type zipMember struct {
	name      string
	body      string
	encrypted bool
	// method 0 means zip.Store. Unknown methods are written raw.
	method uint16
}

func zipBytes(t *testing.T, members ...zipMember) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		fh := &zip.FileHeader{Name: m.name, Method: m.method, Modified: memberTime}
		if m.encrypted {
			fh.Flags |= zipFlagEncrypted
		}
		if m.method != zip.Store && m.method != zip.Deflate {
			fh.CRC32 = crc32.ChecksumIEEE([]byte(m.body))
			fh.CompressedSize64 = uint64(len(m.body))
			fh.UncompressedSize64 = uint64(len(m.body))
			w, err := zw.CreateRaw(fh)
			require.NoError(t, err)
			_, err = w.Write([]byte(m.body))
			require.NoError(t, err)
			continue
		}
		w, err := zw.CreateHeader(fh)
		require.NoError(t, err)
		_, err = w.Write([]byte(m.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type tarMemberSpec struct {
	name     string
	body     string
	typeflag byte
	linkname string
}

func tarBytes(t *testing.T, members ...tarMemberSpec) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, m := range members {
		typeflag := m.typeflag
		if typeflag == 0 {
			typeflag = tar.TypeReg
		}
		hdr := &tar.Header{
			Name:     m.name,
			Typeflag: typeflag,
			Linkname: m.linkname,
			Mode:     0o644,
			ModTime:  memberTime,
			Format:   tar.FormatPAX,
		}
		if typeflag == tar.TypeReg {
			hdr.Size = int64(len(m.body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Size > 0 {
			_, err := tw.Write([]byte(m.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func gzipBytes(t *testing.T, p []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(p)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, p []byte) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, p, 0o644))
	return path
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "inventory.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// scanOne scans a single target and returns its result together with every
// persisted entry.
func scanOne(t *testing.T, st *store.Store, target string, opts ...Option) (TargetResult, []entry.Entry) {
	t.Helper()
	results := ScanTargets(context.Background(), st, []string{target}, opts...)
	require.Len(t, results, 1)
	all, err := st.Repository().All(context.Background())
	require.NoError(t, err)
	return results[0], all
}

func byPath(t *testing.T, entries []entry.Entry, path string) entry.Entry {
	t.Helper()
	var found []entry.Entry
	for _, e := range entries {
		if e.Path == path {
			found = append(found, e)
		}
	}
	require.Len(t, found, 1, "entries with path %q", path)
	return found[0]
}

func childrenOf(entries []entry.Entry, parent entry.ID) []string {
	var paths []string
	for _, e := range entries {
		if e.ParentID == parent {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

func hashOf(t *testing.T, p []byte) string {
	t.Helper()
	sum, err := util.GetHash(bytes.NewReader(p))
	require.NoError(t, err)
	return sum
}

// requireForest checks that every entry's parent was persisted before it.
func requireForest(t *testing.T, entries []entry.Entry) {
	t.Helper()
	seen := map[entry.ID]bool{entry.RootParent: true}
	for _, e := range entries {
		require.True(t, seen[e.ParentID], "entry %d (%s) has unknown parent %d", e.ID, e.Path, e.ParentID)
		seen[e.ID] = true
	}
}

func warningsWith(ws []Warning, code error) []Warning {
	var out []Warning
	for _, w := range ws {
		if w.Is(code) {
			out = append(out, w)
		}
	}
	return out
}

// memorySink is a Sink that keeps entries in a slice; IDs are 1-based
// positions.
type memorySink struct {
	entries []entry.Entry
}

func (m *memorySink) Insert(_ context.Context, e entry.Entry) (entry.ID, error) {
	e.ID = entry.ID(len(m.entries) + 1)
	m.entries = append(m.entries, e)
	return e.ID, nil
}

func (m *memorySink) Timestamp(_ context.Context, id entry.ID) (time.Time, error) {
	if id < 1 || int(id) > len(m.entries) {
		return time.Time{}, store.ErrNotFound
	}
	return m.entries[id-1].Timestamp, nil
}
