package scan

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/passchm/file-dedup-tool/entry"
	"github.com/passchm/file-dedup-tool/util"
)

// Sink persists entries. *store.Repository satisfies it.
type Sink interface {
	Insert(ctx context.Context, e entry.Entry) (entry.ID, error)
	Timestamp(ctx context.Context, id entry.ID) (time.Time, error)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger warnings and progress are written to.
func WithLogger(l *log.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDiagnostics makes the scanner collect warnings into d.
func WithDiagnostics(d *Diagnostics) Option {
	return func(s *Scanner) {
		if d != nil {
			s.diags = d
		}
	}
}

// WithSpoolThreshold sets how many bytes of nested archives are buffered in
// memory at once, across all open spools. The rest go to temporary files.
func WithSpoolThreshold(n int64) Option {
	return func(s *Scanner) {
		s.spoolThreshold = n
	}
}

// WithTempDir sets the directory for spool files. Empty means os.TempDir.
func WithTempDir(dir string) Option {
	return func(s *Scanner) {
		s.tempDir = dir
	}
}

// Scanner persists filesystem trees and archive contents through a Sink.
// It is not safe for concurrent use.
type Scanner struct {
	sink           Sink
	logger         *log.Logger
	diags          *Diagnostics
	spoolThreshold int64
	tempDir        string
	// spooled counts the bytes held by open in-memory spools.
	spooled int64
}

// New returns a Scanner writing to sink.
func New(sink Sink, opts ...Option) *Scanner {
	s := &Scanner{
		sink:           sink,
		logger:         log.New(io.Discard),
		diags:          &Diagnostics{},
		spoolThreshold: util.DefaultSpoolThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Diagnostics returns the warnings collected so far.
func (s *Scanner) Diagnostics() *Diagnostics {
	return s.diags
}

func (s *Scanner) insert(ctx context.Context, e entry.Entry) (entry.ID, error) {
	id, err := s.sink.Insert(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("failed to persist %q: %w", e.Path, err)
	}
	s.logger.Debug("persisted", "id", id, "kind", e.Kind, "path", e.Path, "parent", e.ParentID)
	return id, nil
}

func (s *Scanner) rootTimestamp(ctx context.Context, id entry.ID) (time.Time, error) {
	ts, err := s.sink.Timestamp(ctx, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read timestamp of entry %d: %w", id, err)
	}
	return ts, nil
}

// warn records a recoverable problem. code is one of the util archive
// sentinels, cause the underlying error if any.
func (s *Scanner) warn(parent entry.ID, member string, code error, cause error) {
	err := code
	if cause != nil {
		err = fmt.Errorf("%w: %w", code, cause)
	}
	w := Warning{
		Severity: SeverityWarning,
		ParentID: parent,
		Member:   member,
		Message:  code.Error(),
		Err:      err,
	}
	s.diags.Add(w)

	kv := []any{"parent", parent}
	if member != "" {
		kv = append(kv, "member", member)
	}
	if cause != nil {
		kv = append(kv, "err", cause)
	}
	s.logger.Warn(w.Message, kv...)
}

// digestMember reads r to the end and returns its SHA-256 digest. When keep is
// set the content is also spooled for a nested scan; the caller releases the
// returned spool with closeSpool.
func (s *Scanner) digestMember(r io.Reader, keep bool) (string, *util.Spool, error) {
	h := util.NewHasher()
	if !keep {
		if _, err := io.Copy(h, r); err != nil {
			return "", nil, err
		}
		return h.Sum(), nil, nil
	}
	sp, err := util.NewSpool(io.TeeReader(r, h), s.spoolThreshold-s.spooled, s.tempDir)
	if err != nil {
		return "", nil, err
	}
	if !sp.OnDisk() {
		s.spooled += sp.Size()
	}
	return h.Sum(), sp, nil
}

// closeSpool releases sp and returns its bytes to the in-memory budget. nil
// is ignored.
func (s *Scanner) closeSpool(sp *util.Spool) {
	if sp == nil {
		return
	}
	if !sp.OnDisk() {
		s.spooled -= sp.Size()
	}
	if err := sp.Close(); err != nil {
		s.logger.Debug("removing spool", "err", err)
	}
}

// scanNested expands a spooled archive member below parent.
func (s *Scanner) scanNested(ctx context.Context, format util.ArchiveFormat, sp *util.Spool, parent entry.ID) error {
	switch format {
	case util.FormatZip:
		return s.ScanZip(ctx, sp.ReaderAt(), sp.Size(), parent)
	case util.FormatTar:
		return s.ScanTar(ctx, sp.Reader(), parent)
	default:
		return nil
	}
}
