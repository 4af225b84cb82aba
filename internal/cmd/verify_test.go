package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/passchm/file-dedup-tool/entry"
)

func TestCheckStructure(t *testing.T) {
	sum := entry.ChecksumOf("aa")
	tests := []struct {
		name    string
		entries []entry.Entry
		want    string
	}{
		{
			name: "consistent forest",
			entries: []entry.Entry{
				{ID: 1, Kind: entry.Directory, Path: "/d"},
				{ID: 2, Kind: entry.File, Path: "/d/a.tar", Size: 10, Checksum: sum, ParentID: 1},
				{ID: 3, Kind: entry.TarMemberComponent, Path: "x", ParentID: 2},
				{ID: 4, Kind: entry.TarMemberFile, Path: "x/y.zip", Size: 4, Checksum: sum, ParentID: 3},
				{ID: 5, Kind: entry.ZipMemberFile, Path: "z", Size: 1, Checksum: sum, ParentID: 4},
			},
		},
		{
			name: "tar members below a tar symlink",
			entries: []entry.Entry{
				{ID: 1, Kind: entry.File, Path: "/a.tar", Size: 3, Checksum: sum},
				{ID: 2, Kind: entry.TarMemberSymlink, Path: "link", ParentID: 1},
				{ID: 3, Kind: entry.TarMemberFile, Path: "link/x", Size: 1, Checksum: sum, ParentID: 2},
			},
		},
		{
			name: "zip member below a tar symlink",
			entries: []entry.Entry{
				{ID: 1, Kind: entry.File, Path: "/a.tar", Size: 3, Checksum: sum},
				{ID: 2, Kind: entry.TarMemberSymlink, Path: "link", ParentID: 1},
				{ID: 3, Kind: entry.ZipMemberFile, Path: "link/x", ParentID: 2},
			},
			want: "zip-member-file below tar-member-symlink",
		},
		{
			name:    "orphan",
			entries: []entry.Entry{{ID: 2, Kind: entry.File, Path: "/a", ParentID: 1}},
			want:    "parent 1 does not exist",
		},
		{
			name:    "member root",
			entries: []entry.Entry{{ID: 1, Kind: entry.ZipMemberFile, Path: "a"}},
			want:    "without a parent",
		},
		{
			name: "digest on directory",
			entries: []entry.Entry{
				{ID: 1, Kind: entry.Directory, Path: "/d", Checksum: sum},
			},
			want: "directory carries a digest",
		},
		{
			name: "sized component",
			entries: []entry.Entry{
				{ID: 1, Kind: entry.File, Path: "/a.zip", Size: 3, Checksum: sum},
				{ID: 2, Kind: entry.ZipMemberComponent, Path: "x", Size: 3, ParentID: 1},
			},
			want: "synthetic component has size 3",
		},
		{
			name: "file below file",
			entries: []entry.Entry{
				{ID: 1, Kind: entry.File, Path: "/a"},
				{ID: 2, Kind: entry.File, Path: "/a/b", ParentID: 1},
			},
			want: "file below file",
		},
		{
			name: "zip member below tar directory",
			entries: []entry.Entry{
				{ID: 1, Kind: entry.File, Path: "/a.tar", Size: 3, Checksum: sum},
				{ID: 2, Kind: entry.TarMemberDirectory, Path: "d", ParentID: 1},
				{ID: 3, Kind: entry.ZipMemberFile, Path: "d/x", ParentID: 2},
			},
			want: "zip-member-file below tar-member-directory",
		},
		{
			name: "child recorded before parent",
			entries: []entry.Entry{
				{ID: 1, Kind: entry.File, Path: "/d/a", ParentID: 2},
				{ID: 2, Kind: entry.Directory, Path: "/d"},
			},
			want: "not recorded before its child",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := checkStructure(tt.entries)
			if tt.want == "" {
				if len(problems) != 0 {
					t.Fatalf("unexpected problems: %v", problems)
				}
				return
			}
			if len(problems) != 1 {
				t.Fatalf("got %d problems, want 1: %v", len(problems), problems)
			}
			if !strings.Contains(problems[0].Message, tt.want) {
				t.Errorf("problem %q does not mention %q", problems[0].Message, tt.want)
			}
		})
	}
}

func TestCheckContent_HashError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a")
	write(t, path, "a")

	failing := func(string) (string, error) { return "", errors.New("boom") }
	entries := []entry.Entry{
		{ID: 1, Kind: entry.File, Path: path, Size: 1, Checksum: entry.ChecksumOf("x")},
		{ID: 2, Kind: entry.Symlink, Path: filepath.Join(dir, "gone")},
	}

	problems, err := checkContent(context.Background(), entries, failing)
	if err != nil {
		t.Fatal(err)
	}
	if len(problems) != 1 || problems[0].Message != "boom" {
		t.Errorf("problems = %v", problems)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := checkContent(ctx, entries, failing); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
