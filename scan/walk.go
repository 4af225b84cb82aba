package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/passchm/file-dedup-tool/entry"
	"github.com/passchm/file-dedup-tool/util"
)

// ScanPath persists path and, for directories, everything below it. Regular
// files with an archive suffix are expanded. It returns the ID of the entry
// persisted for path.
//
// Symlinks are recorded, never followed. A path that is neither a regular
// file, a directory nor a symlink fails with util.ErrUnknownEntryKind; a file
// that cannot be read fails with util.ErrReadFile.
func (s *Scanner) ScanPath(ctx context.Context, path string, parent entry.ID) (entry.ID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := os.Lstat(path)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", util.ErrReadFile, path, err)
	}

	e := entry.Entry{
		Path:      path,
		Timestamp: entry.Timestamp(info.ModTime()),
		ParentID:  parent,
	}

	mode := info.Mode()
	switch {
	case mode&fs.ModeSymlink != 0:
		e.Kind = entry.Symlink
		e.Size = info.Size()
		return s.insert(ctx, e)
	case mode.IsDir():
		e.Kind = entry.Directory
		return s.scanDir(ctx, e)
	case mode.IsRegular():
		e.Kind = entry.File
		e.Size = info.Size()
		return s.scanFile(ctx, e)
	default:
		return 0, fmt.Errorf("%w %q (%s)", util.ErrUnknownEntryKind, path, mode.Type())
	}
}

func (s *Scanner) scanDir(ctx context.Context, e entry.Entry) (entry.ID, error) {
	id, err := s.insert(ctx, e)
	if err != nil {
		return 0, err
	}

	children, err := os.ReadDir(e.Path)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", util.ErrReadFile, e.Path, err)
	}
	for _, child := range children {
		if _, err := s.ScanPath(ctx, filepath.Join(e.Path, child.Name()), id); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (s *Scanner) scanFile(ctx context.Context, e entry.Entry) (entry.ID, error) {
	sum, err := util.GetFileHash(e.Path)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", util.ErrReadFile, e.Path, err)
	}
	e.Checksum = entry.ChecksumOf(sum)

	id, err := s.insert(ctx, e)
	if err != nil {
		return 0, err
	}

	format := util.ArchiveFormatOf(e.Path)
	if format == util.FormatNone {
		return id, nil
	}

	f, err := os.Open(e.Path)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", util.ErrReadFile, e.Path, err)
	}
	defer f.Close()

	s.logger.Info("expanding archive", "path", e.Path, "format", format)
	switch format {
	case util.FormatZip:
		err = s.ScanZip(ctx, f, e.Size, id)
	case util.FormatTar:
		err = s.ScanTar(ctx, f, id)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}
