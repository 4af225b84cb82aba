package scan

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/passchm/file-dedup-tool/util"
)

func TestDiagnostics(t *testing.T) {
	d := &Diagnostics{}
	assert.Zero(t, d.Len())
	assert.Nil(t, d.Since(0))

	d.Add(Warning{Severity: SeverityWarning, ParentID: 1, Message: "first"})
	mark := d.Len()
	d.Add(Warning{Severity: SeverityWarning, ParentID: 2, Message: "second"})
	d.Add(Warning{Severity: SeverityError, Message: "third"})

	assert.Equal(t, 3, d.Len())
	since := d.Since(mark)
	assert.Len(t, since, 2)
	assert.Equal(t, "second", since[0].Message)
	assert.Equal(t, 2, d.Count(SeverityWarning))
	assert.Equal(t, 1, d.Count(SeverityError))

	// copies do not alias the collector
	ws := d.Warnings()
	ws[0].Message = "changed"
	assert.Equal(t, "first", d.Warnings()[0].Message)
}

func TestWarning(t *testing.T) {
	cause := errors.New("bad crc")
	w := Warning{
		Severity: SeverityWarning,
		ParentID: 7,
		Member:   "a/b.bin",
		Message:  util.ErrUnreadableMember.Error(),
		Err:      fmt.Errorf("%w: %w", util.ErrUnreadableMember, cause),
	}
	assert.True(t, w.Is(util.ErrUnreadableMember))
	assert.True(t, w.Is(cause))
	assert.False(t, w.Is(util.ErrEncryptedMember))
	assert.Equal(t,
		`warning: entry 7 member "a/b.bin": unreadable archive member (unreadable archive member: bad crc)`,
		w.String())

	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "severity(9)", Severity(9).String())
}

func TestScanner_WarnCollects(t *testing.T) {
	sc := New(&memorySink{})
	sc.warn(3, "", util.ErrNotArchive, nil)
	sc.warn(4, "m", util.ErrEncryptedMember, errors.New("flag"))

	ws := sc.Diagnostics().Warnings()
	assert.Len(t, ws, 2)
	assert.Equal(t, util.ErrNotArchive, ws[0].Err)
	assert.Equal(t, "m", ws[1].Member)
	assert.True(t, ws[1].Is(util.ErrEncryptedMember))
}
