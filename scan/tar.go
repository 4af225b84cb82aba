package scan

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/passchm/file-dedup-tool/entry"
	"github.com/passchm/file-dedup-tool/pathtree"
	"github.com/passchm/file-dedup-tool/util"
)

// tarMember is one header of a tar stream together with what was learned
// while its body streamed past.
type tarMember struct {
	hdr      *tar.Header
	checksum *string
	spool    *util.Spool
	// skip marks member types the inventory has no kind for.
	skip bool
}

// ScanTar persists the members of the tar stream r as descendants of parent,
// the entry of the archive itself. gzip, bzip2, xz and zstd compression is
// detected from the leading bytes, falling back to plain tar. A stream that
// is not a tar archive, or that breaks off mid-way, yields a warning and no
// children.
func (s *Scanner) ScanTar(ctx context.Context, r io.Reader, parent entry.ID) error {
	tr, first, compression, release, err := util.OpenTar(r)
	defer release()
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, tar.ErrInsecurePath) {
		s.warn(parent, "", util.ErrNotArchive, fmt.Errorf("not a tar archive: %s stream: %w", compression, err))
		return nil
	}
	if errors.Is(err, io.EOF) {
		return nil
	}

	members, ok := s.readTar(tr, first, parent)
	defer func() {
		for _, m := range members {
			s.closeSpool(m.spool)
			m.spool = nil
		}
	}()
	if !ok {
		return nil
	}

	rootTS, err := s.rootTimestamp(ctx, parent)
	if err != nil {
		return err
	}

	tree, err := pathtree.Build(members, func(m *tarMember) string { return m.hdr.Name })
	if err != nil {
		return fmt.Errorf("tar archive of entry %d: %w", parent, err)
	}
	return s.persistTar(ctx, rootTS, tree, parent)
}

// readTar enumerates every header of the stream, starting with first. Tar
// cannot be rewound, so regular member bodies are digested here, and archive
// members are spooled for their nested scan. ok is false when the stream
// breaks off.
func (s *Scanner) readTar(tr *tar.Reader, first *tar.Header, parent entry.ID) (members []*tarMember, ok bool) {
	hdr := first
	for {
		m := &tarMember{hdr: hdr}
		switch hdr.Typeflag {
		case tar.TypeXGlobalHeader:
			m = nil
		case tar.TypeReg, tar.TypeGNUSparse:
			format := util.ArchiveFormatOf(hdr.Name)
			sum, sp, err := s.digestMember(tr, format != util.FormatNone)
			if err != nil {
				s.warn(parent, hdr.Name, util.ErrUnreadableMember, err)
			} else {
				m.checksum = entry.ChecksumOf(sum)
				m.spool = sp
			}
		case tar.TypeDir, tar.TypeSymlink:
		default:
			m.skip = true
			s.warn(parent, hdr.Name, util.ErrUnsupportedMember, fmt.Errorf("type flag %q", hdr.Typeflag))
		}
		if m != nil {
			members = append(members, m)
		}

		var err error
		hdr, err = tr.Next()
		if errors.Is(err, io.EOF) {
			return members, true
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			err = nil
		}
		if err != nil {
			s.warn(parent, "", util.ErrTruncatedArchive, err)
			return members, false
		}
	}
}

func (s *Scanner) persistTar(ctx context.Context, rootTS time.Time, node *pathtree.Node[*tarMember], parent entry.ID) error {
	for _, child := range node.Children() {
		id, err := s.persistTarNode(ctx, rootTS, child, parent)
		if err != nil {
			return err
		}
		if err := s.persistTar(ctx, rootTS, child, id); err != nil {
			return err
		}
	}
	return nil
}

// persistTarNode persists one node and returns the ID its children hang
// from. Skipped members hand their own parent down.
func (s *Scanner) persistTarNode(ctx context.Context, rootTS time.Time, node *pathtree.Node[*tarMember], parent entry.ID) (entry.ID, error) {
	m, ok := node.Record()
	if !ok {
		return s.insert(ctx, entry.Entry{
			Kind:      entry.TarMemberComponent,
			Path:      node.Path(),
			Timestamp: rootTS,
			ParentID:  parent,
		})
	}
	if m.skip {
		return parent, nil
	}

	hdr := m.hdr
	e := entry.Entry{
		Path:      hdr.Name,
		Timestamp: entry.Timestamp(hdr.ModTime),
		ParentID:  parent,
	}
	switch hdr.Typeflag {
	case tar.TypeDir:
		e.Kind = entry.TarMemberDirectory
		return s.insert(ctx, e)
	case tar.TypeSymlink:
		e.Kind = entry.TarMemberSymlink
		e.Size = hdr.Size
		return s.insert(ctx, e)
	}

	e.Kind = entry.TarMemberFile
	e.Size = hdr.Size
	e.Checksum = m.checksum
	id, err := s.insert(ctx, e)
	if err != nil {
		return 0, err
	}
	if m.spool != nil {
		err := s.scanNested(ctx, util.ArchiveFormatOf(hdr.Name), m.spool, id)
		s.closeSpool(m.spool)
		m.spool = nil
		if err != nil {
			return 0, err
		}
	}
	return id, nil
}
