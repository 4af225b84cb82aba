package scan

import (
	"errors"
	"fmt"
	"slices"

	"github.com/passchm/file-dedup-tool/entry"
)

// Severity grades a Warning.
type Severity int

const (
	// SeverityWarning marks a recoverable problem; the scan went on.
	SeverityWarning Severity = iota + 1
	// SeverityError marks a failure that aborted a top-level target.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Warning is one diagnostic raised while scanning.
type Warning struct {
	Severity Severity
	// ParentID is the entry that owns the offending archive or member.
	ParentID entry.ID
	// Member is the declared member name, empty for archive-level problems.
	Member  string
	Message string
	Err     error
}

// Is reports whether the warning was caused by target.
func (w Warning) Is(target error) bool {
	return errors.Is(w.Err, target)
}

func (w Warning) String() string {
	s := fmt.Sprintf("%s: entry %d", w.Severity, w.ParentID)
	if w.Member != "" {
		s += fmt.Sprintf(" member %q", w.Member)
	}
	s += ": " + w.Message
	if w.Err != nil {
		s += fmt.Sprintf(" (%v)", w.Err)
	}
	return s
}

// Diagnostics collects the warnings of one or more scans in the order they
// were raised.
type Diagnostics struct {
	warnings []Warning
}

// Add appends w.
func (d *Diagnostics) Add(w Warning) {
	d.warnings = append(d.warnings, w)
}

// Len returns the number of collected warnings. It doubles as a mark for
// Since.
func (d *Diagnostics) Len() int {
	return len(d.warnings)
}

// Warnings returns a copy of every collected warning.
func (d *Diagnostics) Warnings() []Warning {
	return slices.Clone(d.warnings)
}

// Since returns the warnings added after mark was taken with Len.
func (d *Diagnostics) Since(mark int) []Warning {
	if mark >= len(d.warnings) {
		return nil
	}
	return slices.Clone(d.warnings[mark:])
}

// Count returns the number of warnings of the given severity.
func (d *Diagnostics) Count(sev Severity) int {
	n := 0
	for _, w := range d.warnings {
		if w.Severity == sev {
			n++
		}
	}
	return n
}
