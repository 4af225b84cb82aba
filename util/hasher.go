package util

import (
	_ "crypto/sha256" // registers the canonical digest algorithm
	"io"
	"os"

	"github.com/opencontainers/go-digest"
	"github.com/taigrr/colorhash"
)

// GetFileHash hashes a file and returns the hash as a lowercase hex string.
func GetFileHash(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", ErrExpectedFile
	}
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return GetHash(file)
}

// GetHash calculates the SHA-256 hash of data from an io.Reader.
// It returns the hash as a hexadecimal string.
func GetHash(r io.Reader) (string, error) {
	d, err := digest.Canonical.FromReader(r)
	if err != nil {
		return "", err
	}
	return d.Encoded(), nil
}

// Hasher accumulates a SHA-256 digest of everything written to it.
type Hasher struct {
	d digest.Digester
}

// NewHasher returns an empty Hasher.
func NewHasher() *Hasher {
	return &Hasher{d: digest.Canonical.Digester()}
}

// Write implements io.Writer.
func (h *Hasher) Write(p []byte) (int, error) {
	return h.d.Hash().Write(p)
}

// Sum returns the lowercase hex digest of the bytes written so far.
func (h *Hasher) Sum() string {
	return h.d.Digest().Encoded()
}

// Bucket maps a hex digest onto one of n stable buckets.
func Bucket(hash string, n int) int {
	if n <= 0 {
		return 0
	}
	b := colorhash.HashString(hash) % n
	if b < 0 {
		b += n
	}
	return b
}
