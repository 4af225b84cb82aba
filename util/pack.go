package util

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// ErrExpectedDirectory is returned when a directory was required.
var ErrExpectedDirectory = errors.New("expected directory but got file")

// PackZip writes every regular file and directory below dir into a new zip
// archive at dest. Member names are slash-separated paths relative to dir.
func PackZip(dir, dest string) (err error) {
	if err := requireDir(dir); err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	w := zip.NewWriter(file)
	w.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	err = walkRelative(dir, dest, func(path, rel string, info fs.FileInfo) error {
		fh, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		fh.Name = rel
		if info.IsDir() {
			fh.Name += "/"
			_, err = w.CreateHeader(fh)
			return err
		}
		fh.Method = zip.Deflate
		writer, err := w.CreateHeader(fh)
		if err != nil {
			return err
		}
		return copyFile(writer, path)
	})
	if err != nil {
		return err
	}
	return w.Close()
}

// PackTar writes every regular file and directory below dir into a new tar
// archive at dest, compressed with c.
func PackTar(dir, dest string, c Compression) (err error) {
	if err := requireDir(dir); err != nil {
		return err
	}
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	cw, err := compressor(file, c)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(cw)

	err = walkRelative(dir, dest, func(path, rel string, info fs.FileInfo) error {
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		return copyFile(tw, path)
	})
	if err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return cw.Close()
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func compressor(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		return zstd.NewWriter(w)
	case CompressionXz:
		return xz.NewWriter(w)
	case CompressionNone:
		return nopWriteCloser{w}, nil
	default:
		return nil, errors.New("unsupported compression for packing: " + c.String())
	}
}

func requireDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return ErrExpectedDirectory
	}
	return nil
}

// walkRelative visits regular files and directories below dir in lexical
// order, skipping skip itself.
func walkRelative(dir, skip string, fn func(path, rel string, info fs.FileInfo) error) error {
	skipAbs, _ := filepath.Abs(skip)
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == skipAbs {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return fn(path, filepath.ToSlash(rel), info)
	})
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
