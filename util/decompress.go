package util

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression identifies the compression wrapped around a tar stream.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXz
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXz:
		return "xz"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

var (
	magicGzip       = []byte{0x1f, 0x8b, 0x08}
	magicBzip2      = []byte("BZh")
	magicBzip2Block = []byte{0x31, 0x41, 0x59, 0x26, 0x53, 0x59}
	magicBzip2End   = []byte{0x17, 0x72, 0x45, 0x38, 0x50, 0x90}
	magicXz         = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicZstd       = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// sniffLen covers the bzip2 stream header plus its first block magic.
const sniffLen = 10

// SniffCompression inspects the first bytes of br without consuming them.
func SniffCompression(br *bufio.Reader) Compression {
	head, _ := br.Peek(sniffLen)
	switch {
	case bytes.HasPrefix(head, magicGzip):
		return CompressionGzip
	case isBzip2(head):
		return CompressionBzip2
	case bytes.HasPrefix(head, magicXz):
		return CompressionXz
	case bytes.HasPrefix(head, magicZstd):
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// isBzip2 matches "BZh", a block size digit and the block or end-of-stream
// magic.
func isBzip2(head []byte) bool {
	if len(head) < sniffLen || !bytes.HasPrefix(head, magicBzip2) {
		return false
	}
	if head[3] < '1' || head[3] > '9' {
		return false
	}
	return bytes.Equal(head[4:], magicBzip2Block) || bytes.Equal(head[4:], magicBzip2End)
}

// Decompress returns a reader yielding the decompressed content of r, chosen
// by magic bytes. Uncompressed input is passed through. The returned release
// function frees decoder resources and must be called once the reader is no
// longer used.
func Decompress(r io.Reader) (io.Reader, func(), Compression, error) {
	br := bufio.NewReader(r)
	c := SniffCompression(br)
	noop := func() {}

	switch c {
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, noop, c, err
		}
		return zr, func() { _ = zr.Close() }, c, nil
	case CompressionBzip2:
		return bzip2.NewReader(br), noop, c, nil
	case CompressionXz:
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, noop, c, err
		}
		return xr, noop, c, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, noop, c, err
		}
		return dec, dec.Close, c, nil
	default:
		return br, noop, c, nil
	}
}
