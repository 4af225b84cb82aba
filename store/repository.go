package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/passchm/file-dedup-tool/entry"
)

const entryColumns = `id, kind, path, size, timestamp, checksum, parent_id`

// Repository reads and writes inventory rows through a DBTX (either *sql.DB
// or *sql.Tx).
type Repository struct {
	db DBTX
}

// NewRepository returns a new Repository bound to the given DBTX.
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// Insert persists e and returns its newly assigned ID. The ID field of e is
// ignored.
func (r *Repository) Insert(ctx context.Context, e entry.Entry) (entry.ID, error) {
	if err := validate(e); err != nil {
		return 0, err
	}

	var checksum sql.NullString
	if e.Checksum != nil {
		checksum = sql.NullString{String: *e.Checksum, Valid: true}
	}

	query := `INSERT INTO files (kind, path, size, timestamp, checksum, parent_id)
			VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		int(e.Kind), strings.ToValidUTF8(e.Path, "�"), e.Size,
		entry.EpochSeconds(e.Timestamp), checksum, int64(e.ParentID))
	if err != nil {
		return 0, fmt.Errorf("failed to insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}
	return entry.ID(id), nil
}

func validate(e entry.Entry) error {
	switch {
	case !e.Kind.Valid():
		return fmt.Errorf("%w: %w: %d", ErrInvalidEntry, entry.ErrUnknownKind, int(e.Kind))
	case e.Size < 0:
		return fmt.Errorf("%w: negative size %d", ErrInvalidEntry, e.Size)
	case e.ParentID < entry.RootParent:
		return fmt.Errorf("%w: negative parent id %d", ErrInvalidEntry, e.ParentID)
	case e.Checksum != nil && !e.Kind.CanHoldDigest():
		return fmt.Errorf("%w: %s entry cannot carry a checksum", ErrInvalidEntry, e.Kind)
	case e.Kind.IsSynthetic() && e.Size != 0:
		return fmt.Errorf("%w: synthetic entry with size %d", ErrInvalidEntry, e.Size)
	}
	return nil
}

// Timestamp returns the persisted timestamp of the entry with the given id.
func (r *Repository) Timestamp(ctx context.Context, id entry.ID) (time.Time, error) {
	var sec float64
	err := r.db.QueryRowContext(ctx, `SELECT timestamp FROM files WHERE id = ?`, int64(id)).Scan(&sec)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read timestamp: %w", err)
	}
	return entry.FromEpochSeconds(sec), nil
}

// Get returns the entry with the given id.
func (r *Repository) Get(ctx context.Context, id entry.ID) (entry.Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM files WHERE id = ?`, int64(id))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entry.Entry{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return entry.Entry{}, err
	}
	return e, nil
}

// Children lists the direct children of parent in insertion order.
func (r *Repository) Children(ctx context.Context, parent entry.ID) ([]entry.Entry, error) {
	return r.query(ctx, `SELECT `+entryColumns+` FROM files WHERE parent_id = ? ORDER BY id`, int64(parent))
}

// Roots lists every top-level scan root.
func (r *Repository) Roots(ctx context.Context) ([]entry.Entry, error) {
	return r.Children(ctx, entry.RootParent)
}

// All lists every persisted entry in insertion order.
func (r *Repository) All(ctx context.Context) ([]entry.Entry, error) {
	return r.query(ctx, `SELECT `+entryColumns+` FROM files ORDER BY id`)
}

// Subtree lists the entry with the given id and all of its descendants in
// insertion order. RootParent selects the whole forest.
func (r *Repository) Subtree(ctx context.Context, id entry.ID) ([]entry.Entry, error) {
	if id == entry.RootParent {
		return r.All(ctx)
	}
	query := `WITH RECURSIVE sub(id) AS (
			SELECT id FROM files WHERE id = ?
			UNION ALL
			SELECT f.id FROM files f JOIN sub ON f.parent_id = sub.id
		)
		SELECT ` + entryColumns + ` FROM files WHERE id IN (SELECT id FROM sub) ORDER BY id`
	entries, err := r.query(ctx, query, int64(id))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return entries, nil
}

// WithChecksum lists the entries that carry a checksum and are larger than
// minSize bytes, ordered by checksum and then id.
func (r *Repository) WithChecksum(ctx context.Context, minSize int64) ([]entry.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM files
			WHERE checksum IS NOT NULL AND size > ?
			ORDER BY checksum, id`
	return r.query(ctx, query, minSize)
}

// Count returns the number of persisted entries.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]entry.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []entry.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (entry.Entry, error) {
	var (
		id, parent int64
		kind       int
		e          entry.Entry
		sec        float64
		checksum   sql.NullString
	)
	if err := row.Scan(&id, &kind, &e.Path, &e.Size, &sec, &checksum, &parent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry.Entry{}, err
		}
		return entry.Entry{}, fmt.Errorf("query row scan failed: %w", err)
	}
	k, err := entry.ParseKind(kind)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("entry %d: %w", id, err)
	}
	e.ID = entry.ID(id)
	e.Kind = k
	e.ParentID = entry.ID(parent)
	e.Timestamp = entry.FromEpochSeconds(sec)
	if checksum.Valid {
		e.Checksum = entry.ChecksumOf(checksum.String)
	}
	return e, nil
}

// Scan describes one committed top-level scan target.
type Scan struct {
	ID          uuid.UUID
	Target      string
	RootID      entry.ID
	ToolVersion string
	StartedAt   time.Time
	FinishedAt  time.Time
	Warnings    int
}

// RecordScan persists the bookkeeping row of a scan.
func (r *Repository) RecordScan(ctx context.Context, s Scan) error {
	query := `INSERT INTO scans (id, target, root_id, tool_version, started_at, finished_at, warnings)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID.String(), strings.ToValidUTF8(s.Target, "�"), int64(s.RootID), s.ToolVersion,
		entry.EpochSeconds(s.StartedAt), entry.EpochSeconds(s.FinishedAt), s.Warnings)
	if err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}
	return nil
}

// Scans lists every recorded scan, oldest first.
func (r *Repository) Scans(ctx context.Context) ([]Scan, error) {
	query := `SELECT id, target, root_id, tool_version, started_at, finished_at, warnings
			FROM scans ORDER BY started_at, root_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select scans: %w", err)
	}
	defer rows.Close()

	var result []Scan
	for rows.Next() {
		var (
			s               Scan
			id              string
			root            int64
			started, finish float64
		)
		if err := rows.Scan(&id, &s.Target, &root, &s.ToolVersion, &started, &finish, &s.Warnings); err != nil {
			return nil, err
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("scan %q: %w", id, err)
		}
		s.RootID = entry.ID(root)
		s.StartedAt = entry.FromEpochSeconds(started)
		s.FinishedAt = entry.FromEpochSeconds(finish)
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
