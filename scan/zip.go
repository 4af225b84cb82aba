package scan

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"

	"github.com/passchm/file-dedup-tool/entry"
	"github.com/passchm/file-dedup-tool/pathtree"
	"github.com/passchm/file-dedup-tool/util"
)

// zipFlagEncrypted is bit 0 of the general purpose flags.
const zipFlagEncrypted = 0x1

// openZip reads the central directory of a zip archive and wires the
// klauspost decompressors into it.
func openZip(r io.ReaderAt, size int64) (*zip.Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, err
	}
	zr.RegisterDecompressor(zip.Deflate, flate.NewReader)
	zr.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	return zr, nil
}

// ScanZip persists the members of the zip archive r as descendants of
// parent, the entry of the archive itself. A stream that is not a zip
// archive yields a warning and no children.
func (s *Scanner) ScanZip(ctx context.Context, r io.ReaderAt, size int64, parent entry.ID) error {
	zr, err := openZip(r, size)
	if err != nil {
		s.warn(parent, "", util.ErrNotArchive, fmt.Errorf("not a zip archive: %w", err))
		return nil
	}

	rootTS, err := s.rootTimestamp(ctx, parent)
	if err != nil {
		return err
	}

	tree, err := pathtree.Build(zr.File, func(f *zip.File) string { return f.Name })
	if err != nil {
		return fmt.Errorf("zip archive of entry %d: %w", parent, err)
	}
	return s.persistZip(ctx, rootTS, tree, parent)
}

func (s *Scanner) persistZip(ctx context.Context, rootTS time.Time, node *pathtree.Node[*zip.File], parent entry.ID) error {
	for _, child := range node.Children() {
		id, err := s.persistZipNode(ctx, rootTS, child, parent)
		if err != nil {
			return err
		}
		if err := s.persistZip(ctx, rootTS, child, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) persistZipNode(ctx context.Context, rootTS time.Time, node *pathtree.Node[*zip.File], parent entry.ID) (entry.ID, error) {
	f, ok := node.Record()
	if !ok {
		return s.insert(ctx, entry.Entry{
			Kind:      entry.ZipMemberComponent,
			Path:      node.Path(),
			Timestamp: rootTS,
			ParentID:  parent,
		})
	}

	e := entry.Entry{
		Path:      f.Name,
		Timestamp: zipTime(f),
		ParentID:  parent,
	}
	if strings.HasSuffix(f.Name, "/") {
		e.Kind = entry.ZipMemberDirectory
		return s.insert(ctx, e)
	}

	e.Kind = entry.ZipMemberFile
	e.Size = int64(f.UncompressedSize64)

	format := util.ArchiveFormatOf(f.Name)
	var sp *util.Spool
	if f.Flags&zipFlagEncrypted != 0 {
		s.warn(parent, f.Name, util.ErrEncryptedMember, nil)
	} else {
		sum, spool, err := s.readZipMember(f, format != util.FormatNone)
		if err != nil {
			s.warn(parent, f.Name, util.ErrUnreadableMember, err)
		} else {
			e.Checksum = entry.ChecksumOf(sum)
			sp = spool
		}
	}
	defer s.closeSpool(sp)

	id, err := s.insert(ctx, e)
	if err != nil {
		return 0, err
	}
	if sp != nil {
		if err := s.scanNested(ctx, format, sp, id); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (s *Scanner) readZipMember(f *zip.File, keep bool) (string, *util.Spool, error) {
	rc, err := f.Open()
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()
	return s.digestMember(rc, keep)
}

// zipTime returns the member's wall-clock modification time read as UTC.
// Zip timestamps carry no zone.
func zipTime(f *zip.File) time.Time {
	m := f.Modified
	return time.Date(m.Year(), m.Month(), m.Day(), m.Hour(), m.Minute(), m.Second(), 0, time.UTC)
}
