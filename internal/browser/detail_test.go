package browser

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/shiftdash/internal/api"
	"github.com/alexanderramin/shiftdash/internal/contract"
)

const detailBody = `{"emp_id":"E1","emp_name":"Kiran","duration_month":"2024-01","payroll_month":"2024-02",
	"months":[{"duration_month":"2024-01","payroll_month":"2024-02","shift_a":"3","shift_b":"0","shift_c":"0","prime":"1","approved_by":"ops"}]}`

func detailBackend(t *testing.T) *fakeBackend {
	t.Helper()
	return &fakeBackend{
		searchFn: func(ctx context.Context, c searchCall) (contract.SearchResponse, error) {
			e, err := contract.DecodeEmployee([]byte(detailBody))
			require.NoError(t, err)
			return contract.SearchResponse{TotalRecords: 1, Records: []contract.EmployeeRecord{contract.NewEmployeeRecord(e, nil, 0)}}, nil
		},
		detailFn: func(ctx context.Context, empID, duration, payroll string) (contract.EmployeeObject, json.RawMessage, error) {
			assert.Equal(t, "E1", empID)
			assert.Equal(t, "2024-01", duration)
			assert.Equal(t, "2024-02", payroll)
			e, err := contract.DecodeEmployee([]byte(detailBody))
			return e, json.RawMessage(detailBody), err
		},
	}
}

func TestFetchDetail_StagedCopy(t *testing.T) {
	b, _ := newTestBrowser(t, detailBackend(t))

	d, err := b.FetchDetail(context.Background(), "E1", "Jan'24", "Feb'24")
	require.NoError(t, err)

	rec := d.Record()
	assert.Equal(t, "Kiran", rec.EmpName)
	rec.Months[0].ShiftA = "99"
	assert.Equal(t, contract.FlexString("3"), d.Record().Months[0].ShiftA, "callers get a copy")

	cur, err := d.Current("2024-01")
	require.NoError(t, err)
	assert.Equal(t, contract.ShiftEdit{ShiftA: "3", ShiftB: "0", ShiftC: "0", Prime: "1"}, cur)
	assert.False(t, d.Editing())
}

func TestFetchDetail_FailureIsInlineAndListUntouched(t *testing.T) {
	backend := detailBackend(t)
	backend.detailFn = func(ctx context.Context, empID, duration, payroll string) (contract.EmployeeObject, json.RawMessage, error) {
		return contract.EmployeeObject{}, nil, api.ErrTimeout
	}
	b, _ := newTestBrowser(t, backend)
	require.NoError(t, b.Refresh(context.Background()))
	before := b.Snapshot()

	d, err := b.FetchDetail(context.Background(), "E1", "2024-01", "2024-02")
	assert.ErrorIs(t, err, api.ErrTimeout)
	require.NotNil(t, d)
	assert.Equal(t, msgTimeout, d.Error())
	assert.Equal(t, before, b.Snapshot())
}

func TestSaveShiftEdit_SendsChangedFieldsAndTrustsServer(t *testing.T) {
	backend := detailBackend(t)
	backend.updateFn = func(ctx context.Context, c updateCall) ([]contract.ShiftDays, error) {
		// The backend caps shift A at 4 days.
		return []contract.ShiftDays{{Shift: "A", Days: "4"}, {Shift: "PRIME", Days: "2"}}, nil
	}
	b, _ := newTestBrowser(t, backend)
	ctx := context.Background()
	require.NoError(t, b.Refresh(ctx))

	d, err := b.FetchDetail(ctx, "E1", "2024-01", "2024-02")
	require.NoError(t, err)

	err = d.SaveShiftEdit(ctx, "Jan'24", contract.ShiftEdit{ShiftA: "6", ShiftB: "0", ShiftC: "0", Prime: "2"})
	require.NoError(t, err)

	calls := backend.updateCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]string{"shift_a": "6", "prime": "2"}, calls[0].fields)
	assert.Equal(t, "2024-02", calls[0].payroll)
	assert.Equal(t, "2024-01", calls[0].duration)

	month := d.Record().Months[0]
	assert.Equal(t, contract.FlexString("4"), month.ShiftA, "server value wins over typed value")
	assert.Equal(t, contract.FlexString("2"), month.Prime)
	assert.Contains(t, string(month.Raw), "approved_by")
	assert.False(t, d.Editing())
	assert.Empty(t, d.Error())
	_, staged := d.Staged("2024-01")
	assert.False(t, staged)

	snap := b.Snapshot()
	assert.True(t, snap.NeedsRefresh)
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, contract.FlexString("4"), snap.Rows[0].Employee.Months[0].ShiftA)

	require.NoError(t, b.Refresh(ctx))
	assert.False(t, b.Snapshot().NeedsRefresh)
}

func TestSaveShiftEdit_FailureKeepsStagedEdit(t *testing.T) {
	backend := detailBackend(t)
	backend.updateFn = func(ctx context.Context, c updateCall) ([]contract.ShiftDays, error) {
		return nil, api.ErrUnavailable
	}
	b, _ := newTestBrowser(t, backend)
	ctx := context.Background()

	d, err := b.FetchDetail(ctx, "E1", "2024-01", "2024-02")
	require.NoError(t, err)

	edit := contract.ShiftEdit{ShiftA: "5", ShiftB: "0", ShiftC: "0", Prime: "1"}
	assert.ErrorIs(t, d.SaveShiftEdit(ctx, "2024-01", edit), api.ErrUnavailable)

	assert.True(t, d.Editing())
	assert.Equal(t, msgNetwork, d.Error())
	staged, ok := d.Staged("2024-01")
	require.True(t, ok)
	assert.Equal(t, edit, staged)
	cur, err := d.Current("2024-01")
	require.NoError(t, err)
	assert.Equal(t, edit, cur, "form prefill uses the staged values")
	assert.Equal(t, contract.FlexString("3"), d.Record().Months[0].ShiftA)
	assert.False(t, b.Snapshot().NeedsRefresh)
}

func TestSaveShiftEdit_NoChangesSendsNothing(t *testing.T) {
	backend := detailBackend(t)
	b, _ := newTestBrowser(t, backend)
	ctx := context.Background()

	d, err := b.FetchDetail(ctx, "E1", "2024-01", "2024-02")
	require.NoError(t, err)

	require.NoError(t, d.SaveShiftEdit(ctx, "2024-01", contract.ShiftEdit{ShiftA: "3", ShiftB: "0", ShiftC: "0", Prime: "1"}))
	assert.Empty(t, backend.updateCalls())
	assert.False(t, d.Editing())
}

func TestSaveShiftEdit_ValidationAndUnknownMonth(t *testing.T) {
	backend := detailBackend(t)
	b, _ := newTestBrowser(t, backend)
	ctx := context.Background()

	d, err := b.FetchDetail(ctx, "E1", "2024-01", "2024-02")
	require.NoError(t, err)

	err = d.SaveShiftEdit(ctx, "2024-01", contract.ShiftEdit{ShiftA: "-2"})
	var verr *contract.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, d.Error(), "ShiftA")

	assert.ErrorIs(t, d.SaveShiftEdit(ctx, "2023-12", contract.ShiftEdit{}), ErrUnknownMonth)
	assert.Empty(t, backend.updateCalls())

	d.Cancel()
	assert.False(t, d.Editing())
	assert.Empty(t, d.Error())
}
