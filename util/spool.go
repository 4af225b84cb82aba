package util

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// DefaultSpoolThreshold is the default in-memory budget for spooled members.
const DefaultSpoolThreshold int64 = 32 << 20

// Spool is a random-access copy of a forward-only stream. Small streams live
// in memory; larger ones are written to a temporary file that Close removes.
type Spool struct {
	ra   io.ReaderAt
	size int64
	file *os.File
}

// NewSpool copies r until EOF. Streams of at most threshold bytes are kept in
// memory; a threshold of zero or less always spills to a temporary file in
// dir (the default temp directory when dir is empty).
func NewSpool(r io.Reader, threshold int64, dir string) (*Spool, error) {
	var buf bytes.Buffer
	if threshold > 0 {
		n, err := io.CopyN(&buf, r, threshold+1)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if n <= threshold {
			return &Spool{ra: bytes.NewReader(buf.Bytes()), size: n}, nil
		}
	}

	f, err := os.CreateTemp(dir, "dedup-spool-*")
	if err != nil {
		return nil, err
	}
	s := &Spool{ra: f, file: f}
	n, err := io.Copy(f, io.MultiReader(&buf, r))
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.size = n
	return s, nil
}

// ReaderAt returns random access to the spooled bytes.
func (s *Spool) ReaderAt() io.ReaderAt {
	return s.ra
}

// Size returns the number of spooled bytes.
func (s *Spool) Size() int64 {
	return s.size
}

// Reader returns a fresh sequential reader over the spooled bytes.
func (s *Spool) Reader() io.Reader {
	return io.NewSectionReader(s.ra, 0, s.size)
}

// OnDisk reports whether the spool spilled to a temporary file.
func (s *Spool) OnDisk() bool {
	return s.file != nil
}

// Close releases the spool, removing its temporary file if any.
func (s *Spool) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	name := s.file.Name()
	err := s.file.Close()
	s.file = nil
	if rmErr := os.Remove(name); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}
