package browser

import (
	"context"
	"slices"
	"sync"

	"github.com/go-faster/errors"
	json "github.com/goccy/go-json"

	"github.com/alexanderramin/shiftdash/internal/contract"
	"github.com/alexanderramin/shiftdash/internal/period"
)

// Detail is the edit session for one employee record. It holds a staged
// copy of the fetched record; list rows are only touched after a save the
// backend accepted.
type Detail struct {
	b *Browser

	EmpID         string
	DurationMonth string
	PayrollMonth  string

	mu      sync.Mutex
	staged  contract.EmployeeObject
	raw     json.RawMessage
	pending map[string]contract.ShiftEdit
	editing bool
	err     string
}

// FetchDetail loads the full record for one row. On failure the returned
// Detail carries the error text for inline display and the list state is
// left alone.
func (b *Browser) FetchDetail(ctx context.Context, empID, durationMonth, payrollMonth string) (*Detail, error) {
	d := &Detail{
		b:             b,
		EmpID:         empID,
		DurationMonth: durationMonth,
		PayrollMonth:  payrollMonth,
		pending:       make(map[string]contract.ShiftEdit),
	}

	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		d.err = ErrClosed.Error()
		return d, ErrClosed
	}

	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(b.life, cancel)
	defer func() { stop(); cancel() }()

	e, raw, err := b.backend.Employee(reqCtx, empID, wireMonth(durationMonth), wireMonth(payrollMonth))
	if err != nil {
		d.err = errorMessage(err)
		return d, err
	}
	d.staged = copyEmployee(e)
	d.raw = raw
	return d, nil
}

// Record returns a copy of the staged record.
func (d *Detail) Record() contract.EmployeeObject {
	d.mu.Lock()
	defer d.mu.Unlock()
	return copyEmployee(d.staged)
}

// Raw is the detail body as the backend sent it.
func (d *Detail) Raw() json.RawMessage { return d.raw }

// Error is the inline error text, empty when the last operation succeeded.
func (d *Detail) Error() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Editing reports whether unsaved edits exist.
func (d *Detail) Editing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.editing
}

// Staged returns the unsaved edit for month, if any. Failed saves keep it
// so the user can retry without retyping.
func (d *Detail) Staged(month string) (contract.ShiftEdit, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.pending[wireMonth(month)]
	return e, ok
}

// Current returns the counts to prefill an edit form for month: the staged
// edit when one exists, else the record's values.
func (d *Detail) Current(month string) (contract.ShiftEdit, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := wireMonth(month)
	if e, ok := d.pending[key]; ok {
		return e, nil
	}
	i := d.monthIndex(key)
	if i < 0 {
		return contract.ShiftEdit{}, errors.Wrap(ErrUnknownMonth, month)
	}
	return d.staged.Months[i].Shifts(), nil
}

// Stage records typed values for month without sending them.
func (d *Detail) Stage(month string, edit contract.ShiftEdit) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[wireMonth(month)] = edit
	d.editing = true
}

// Cancel discards every unsaved edit.
func (d *Detail) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = make(map[string]contract.ShiftEdit)
	d.editing = false
	d.err = ""
}

// SaveShiftEdit sends the fields of edit that differ from the staged month
// and merges the backend's returned values into the staged record. On
// success the edit is cleared and the browser is flagged for refresh; on
// failure the edit stays staged and Error is set.
func (d *Detail) SaveShiftEdit(ctx context.Context, month string, edit contract.ShiftEdit) error {
	key := wireMonth(month)

	d.mu.Lock()
	d.pending[key] = edit
	d.editing = true
	i := d.monthIndex(key)
	if i < 0 {
		err := errors.Wrap(ErrUnknownMonth, month)
		d.err = err.Error()
		d.mu.Unlock()
		return err
	}
	target := d.staged.Months[i]
	d.mu.Unlock()

	valid, err := edit.Validate()
	if err != nil {
		d.fail(err)
		return err
	}
	changed, err := contract.ChangedFields(target.Shifts(), valid)
	if err != nil {
		d.fail(err)
		return err
	}
	if len(changed) == 0 {
		d.clean(key)
		return nil
	}

	payroll := target.PayrollMonth
	if payroll == "" {
		payroll = d.PayrollMonth
	}
	duration := target.DurationMonth
	if duration == "" {
		duration = d.DurationMonth
	}

	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(d.b.life, cancel)
	days, err := d.b.backend.UpdateShifts(reqCtx, d.EmpID, wireMonth(payroll), wireMonth(duration), changed)
	stop()
	cancel()
	if err != nil {
		d.fail(err)
		return err
	}

	merged, err := contract.MergeShiftDays(target, days)
	if err != nil {
		d.fail(err)
		return err
	}

	d.mu.Lock()
	if j := d.monthIndex(key); j >= 0 {
		d.staged.Months[j] = merged
	}
	delete(d.pending, key)
	d.editing = len(d.pending) > 0
	d.err = ""
	record := copyEmployee(d.staged)
	d.mu.Unlock()

	d.b.mergeSaved(record)
	return nil
}

func (d *Detail) fail(err error) {
	d.mu.Lock()
	d.err = errorMessage(err)
	d.mu.Unlock()
}

func (d *Detail) clean(key string) {
	d.mu.Lock()
	delete(d.pending, key)
	d.editing = len(d.pending) > 0
	d.err = ""
	d.mu.Unlock()
}

func (d *Detail) monthIndex(key string) int {
	for i, m := range d.staged.Months {
		if wireMonth(m.DurationMonth) == key {
			return i
		}
	}
	return -1
}

// mergeSaved copies saved months into matching list rows and flags the
// list for refresh.
func (b *Browser) mergeSaved(e contract.EmployeeObject) {
	b.update(func(s *Snapshot) {
		for i := range s.Rows {
			r := &s.Rows[i]
			if r.EmpID == e.EmpID && wireMonth(r.Employee.DurationMonth) == wireMonth(e.DurationMonth) &&
				wireMonth(r.Employee.PayrollMonth) == wireMonth(e.PayrollMonth) {
				r.Employee.Months = slices.Clone(e.Months)
			}
		}
		s.NeedsRefresh = true
	})
}

func copyEmployee(e contract.EmployeeObject) contract.EmployeeObject {
	e.Months = slices.Clone(e.Months)
	return e
}

// wireMonth normalizes a month label, passing through anything unparseable.
func wireMonth(s string) string {
	w, err := period.Normalize(s)
	if err != nil {
		return s
	}
	return w
}
