package scan

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/passchm/file-dedup-tool/pathtree"
	"github.com/passchm/file-dedup-tool/util"
)

// Inspect writes the reconciled member tree of the archive at path to w
// without persisting anything. Declared members are marked "!", implied
// path components "?".
func Inspect(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w %q: %w", util.ErrReadFile, path, err)
	}
	defer f.Close()

	switch util.ArchiveFormatOf(path) {
	case util.FormatZip:
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("%w %q: %w", util.ErrReadFile, path, err)
		}
		zr, err := openZip(f, info.Size())
		if err != nil {
			return fmt.Errorf("%w %q: %w", util.ErrNotArchive, path, err)
		}
		tree, err := pathtree.Build(zr.File, func(f *zip.File) string { return f.Name })
		if err != nil {
			return err
		}
		return pathtree.Fprint(w, tree, func(f *zip.File) string { return f.Name })
	case util.FormatTar:
		headers, err := tarHeaders(f)
		if err != nil {
			return fmt.Errorf("%w %q: %w", util.ErrNotArchive, path, err)
		}
		tree, err := pathtree.Build(headers, func(h *tar.Header) string { return h.Name })
		if err != nil {
			return err
		}
		return pathtree.Fprint(w, tree, func(h *tar.Header) string { return h.Name })
	default:
		return fmt.Errorf("%w %q: no archive suffix", util.ErrNotArchive, path)
	}
}

func tarHeaders(r io.Reader) ([]*tar.Header, error) {
	tr, hdr, _, release, err := util.OpenTar(r)
	defer release()

	var headers []*tar.Header
	for {
		if errors.Is(err, io.EOF) {
			return headers, nil
		}
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeXGlobalHeader {
			headers = append(headers, hdr)
		}
		hdr, err = tr.Next()
	}
}
