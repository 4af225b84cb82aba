package entry

import (
	"math"
	"time"
)

// ID is the store-assigned identifier of a persisted Entry.
type ID int64

// RootParent is the parent ID of top-level scan roots.
const RootParent ID = 0

// Entry is one node of the inventory forest.
type Entry struct {
	ID        ID
	Kind      Kind
	Path      string
	Size      int64
	Timestamp time.Time
	Checksum  *string
	ParentID  ID
}

// IsRoot reports whether e is a top-level scan target.
func (e Entry) IsRoot() bool {
	return e.ParentID == RootParent
}

// HasChecksum reports whether a content digest was recorded for e.
func (e Entry) HasChecksum() bool {
	return e.Checksum != nil && *e.Checksum != ""
}

// Digest returns the checksum or the empty string.
func (e Entry) Digest() string {
	if e.Checksum == nil {
		return ""
	}
	return *e.Checksum
}

// Digestible reports whether e takes part in duplicate matching. Zero-size
// content never does.
func (e Entry) Digestible() bool {
	return e.Size > 0 && e.HasChecksum()
}

// ChecksumOf returns a pointer suitable for Entry.Checksum.
func ChecksumOf(hex string) *string {
	return &hex
}

// Timestamp normalizes t the way every persisted timestamp is normalized:
// UTC, truncated to whole microseconds.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// EpochSeconds converts a normalized timestamp into floating-point seconds
// since the Unix epoch.
func EpochSeconds(t time.Time) float64 {
	t = Timestamp(t)
	return float64(t.Unix()) + float64(t.Nanosecond()/1000)/1e6
}

// FromEpochSeconds is the inverse of EpochSeconds. Converting back and forth
// yields bit-identical values for any timestamp within float64 microsecond
// precision.
func FromEpochSeconds(sec float64) time.Time {
	whole := math.Floor(sec)
	micros := int64(math.Round((sec - whole) * 1e6))
	return time.Unix(int64(whole), micros*1000).UTC()
}
