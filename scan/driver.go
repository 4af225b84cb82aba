package scan

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/passchm/file-dedup-tool/entry"
	"github.com/passchm/file-dedup-tool/store"
	"github.com/passchm/file-dedup-tool/version"
)

// Committer runs fn inside one store transaction. *store.Store satisfies it.
type Committer interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repo *store.Repository) error) error
}

// TargetResult reports the outcome of one top-level target.
type TargetResult struct {
	Target     string
	RunID      uuid.UUID
	RootID     entry.ID
	StartedAt  time.Time
	FinishedAt time.Time
	Warnings   []Warning
	// Err is the failure that rolled the target back, if any.
	Err error
}

// Failed reports whether nothing of the target was committed.
func (r TargetResult) Failed() bool {
	return r.Err != nil
}

// ScanTargets scans every target into st, each inside its own transaction.
// A failing target is rolled back and reported; the remaining targets are
// still scanned. Warnings of all targets are also collected in the
// Diagnostics passed through opts, if any.
func ScanTargets(ctx context.Context, st Committer, targets []string, opts ...Option) []TargetResult {
	cfg := New(nil, opts...)
	results := make([]TargetResult, 0, len(targets))

	for _, target := range targets {
		res := scanTarget(ctx, st, filepath.Clean(target), cfg)
		if res.Failed() {
			cfg.diags.Add(Warning{
				Severity: SeverityError,
				Member:   res.Target,
				Message:  "scan aborted",
				Err:      res.Err,
			})
			cfg.logger.Error("scan aborted", "target", res.Target, "err", res.Err)
		} else {
			cfg.logger.Info("scan committed", "target", res.Target, "root", res.RootID,
				"warnings", len(res.Warnings), "run", res.RunID)
		}
		results = append(results, res)
	}
	return results
}

func scanTarget(ctx context.Context, st Committer, target string, cfg *Scanner) TargetResult {
	res := TargetResult{
		Target:    target,
		RunID:     uuid.New(),
		StartedAt: time.Now(),
	}
	mark := cfg.diags.Len()
	cfg.logger.Info("scanning", "target", target, "run", res.RunID)

	res.Err = st.WithTx(ctx, func(ctx context.Context, repo *store.Repository) error {
		sc := &Scanner{
			sink:           repo,
			logger:         cfg.logger.With("target", target),
			diags:          cfg.diags,
			spoolThreshold: cfg.spoolThreshold,
			tempDir:        cfg.tempDir,
		}
		root, err := sc.ScanPath(ctx, target, entry.RootParent)
		if err != nil {
			return err
		}
		res.RootID = root
		res.FinishedAt = time.Now()
		return repo.RecordScan(ctx, store.Scan{
			ID:          res.RunID,
			Target:      target,
			RootID:      root,
			ToolVersion: version.GetVersion(),
			StartedAt:   res.StartedAt,
			FinishedAt:  res.FinishedAt,
			Warnings:    cfg.diags.Len() - mark,
		})
	})

	res.Warnings = cfg.diags.Since(mark)
	if res.Err != nil {
		res.RootID = 0
		if res.FinishedAt.IsZero() {
			res.FinishedAt = time.Now()
		}
	}
	return res
}

// Err joins the failures among results, or returns nil if every target
// was committed.
func Err(results []TargetResult) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
