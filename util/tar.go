package util

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
)

// maxReplay bounds the bytes kept to retry a misdetected stream as plain tar.
const maxReplay = 1 << 20

// replayReader records what is read through it so the stream can be read
// again from the start.
type replayReader struct {
	r       io.Reader
	buf     bytes.Buffer
	stopped bool
}

func (rr *replayReader) Read(p []byte) (int, error) {
	n, err := rr.r.Read(p)
	if !rr.stopped {
		if rr.buf.Len()+n > maxReplay {
			rr.stop()
		} else {
			rr.buf.Write(p[:n])
		}
	}
	return n, err
}

func (rr *replayReader) stop() {
	rr.stopped = true
	rr.buf = bytes.Buffer{}
}

// replay returns a reader starting over at the first byte, or false once
// too much was consumed to start over.
func (rr *replayReader) replay() (io.Reader, bool) {
	if rr.stopped {
		return nil, false
	}
	head := bytes.NewReader(rr.buf.Bytes())
	rr.stopped = true
	return io.MultiReader(head, rr.r), true
}

// OpenTar opens the possibly compressed tar stream r and reads its first
// header. An empty archive yields io.EOF. Compression is detected from magic
// bytes; when the detected decoder fails before the first header, the
// stream is retried as plain tar, since a plain archive starts with a member
// name that may look like a magic number. release frees decoder resources
// and must be called once tr is no longer used.
func OpenTar(r io.Reader) (tr *tar.Reader, first *tar.Header, c Compression, release func(), err error) {
	rr := &replayReader{r: r}
	dr, release, c, err := Decompress(rr)
	if err == nil {
		tr = tar.NewReader(dr)
		first, err = tr.Next()
		if headerRead(err) || c == CompressionNone {
			rr.stop()
			return tr, first, c, release, err
		}
	}
	release()

	plain, ok := rr.replay()
	if !ok {
		return nil, nil, c, func() {}, err
	}
	ptr := tar.NewReader(plain)
	hdr, perr := ptr.Next()
	if perr == nil || errors.Is(perr, tar.ErrInsecurePath) {
		return ptr, hdr, CompressionNone, func() {}, perr
	}
	return nil, nil, c, func() {}, err
}

// headerRead reports whether tar.Next got as far as a header or a clean end.
func headerRead(err error) bool {
	return err == nil || errors.Is(err, io.EOF) || errors.Is(err, tar.ErrInsecurePath)
}
