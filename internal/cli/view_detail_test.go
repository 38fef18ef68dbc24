package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/shiftdash/internal/api"
	"github.com/alexanderramin/shiftdash/internal/contract"
)

// loadedDetailView opens E01 and feeds it the fetch result.
func loadedDetailView(t *testing.T) (*detailView, *fakeAPI, *SharedState) {
	t.Helper()
	app, fake := testApp(t)
	fake.seedEmployees(1)
	state := testState(t, app)

	fake.mu.Lock()
	row := contract.NewEmployeeRecord(fake.employees[0], nil, 0)
	fake.mu.Unlock()

	v := newDetailView(state, row)
	v.Update(v.Init()())
	require.NotNil(t, v.detail)
	require.Empty(t, v.detail.Error())
	return v, fake, state
}

func runSave(v *detailView, cmd tea.Cmd) {
	v.Update(cmd())
}

func TestDetailView_EditPushesForm(t *testing.T) {
	v, _, _ := loadedDetailView(t)

	cmd := v.openEdit("2024-01")
	push, ok := cmd().(pushViewMsg)
	require.True(t, ok)
	wizard, ok := push.view.(*wizardView)
	require.True(t, ok)
	assert.Equal(t, "Edit Jan'24", wizard.Title())
	assert.Equal(t, ViewForm, wizard.ID())
}

func TestDetailView_UnchangedFormSendsNothing(t *testing.T) {
	v, fake, _ := loadedDetailView(t)

	push := v.openEdit("2024-01")().(pushViewMsg)
	runSave(v, push.view.(*wizardView).done())

	assert.Empty(t, fake.updateCalls())
	assert.False(t, v.detail.Editing())
	assert.Contains(t, stripANSI(v.View()), "Saved Jan'24")
}

func TestDetailView_SaveSendsOnlyChangedFields(t *testing.T) {
	v, fake, state := loadedDetailView(t)

	runSave(v, v.save("2024-01", contract.ShiftEdit{ShiftA: "5", ShiftB: "0", ShiftC: "0", Prime: "1"}))

	require.Len(t, fake.updateCalls(), 1)
	assert.Equal(t, map[string]string{"shift_a": "5"}, fake.updateCalls()[0])
	assert.Equal(t, "5", v.detail.Record().Months[0].ShiftA.String())
	assert.True(t, state.Browser.Snapshot().NeedsRefresh)

	out := stripANSI(v.View())
	assert.Contains(t, out, "Saved Jan'24")
	assert.NotContains(t, out, "unsaved")
}

func TestDetailView_FailedSaveKeepsEditForRetry(t *testing.T) {
	v, fake, _ := loadedDetailView(t)
	fake.updateErr = &api.StatusError{Endpoint: "update", StatusCode: 500}

	edit := contract.ShiftEdit{ShiftA: "7", ShiftB: "0", ShiftC: "0", Prime: "1"}
	runSave(v, v.save("2024-01", edit))

	out := stripANSI(v.View())
	assert.Contains(t, out, "unsaved edits")
	assert.Contains(t, out, "Jan'24*")
	staged, ok := v.detail.Staged("2024-01")
	require.True(t, ok)
	assert.Equal(t, edit, staged)

	fake.mu.Lock()
	fake.updateErr = nil
	fake.mu.Unlock()

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	require.NotNil(t, cmd)
	runSave(v, cmd)

	assert.Len(t, fake.updateCalls(), 2)
	assert.False(t, v.detail.Editing())
	assert.Equal(t, "7", v.detail.Record().Months[0].ShiftA.String())
}

func TestDetailView_DiscardEdits(t *testing.T) {
	v, _, _ := loadedDetailView(t)
	v.detail.Stage("2024-01", contract.ShiftEdit{ShiftA: "9"})

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})

	assert.False(t, v.detail.Editing())
	assert.Contains(t, stripANSI(v.View()), "Edits discarded")
}

func TestDetailView_MissingRecordShowsError(t *testing.T) {
	app, _ := testApp(t)
	state := testState(t, app)

	v := newDetailView(state, contract.EmployeeRecord{EmpID: "E99"})
	v.Update(v.Init()())

	assert.Contains(t, stripANSI(v.View()), "404")
}

func TestValidateShiftDays(t *testing.T) {
	assert.NoError(t, validateShiftDays(""))
	assert.NoError(t, validateShiftDays(" 12 "))
	assert.Error(t, validateShiftDays("-1"))
	assert.Error(t, validateShiftDays("1.5"))
	assert.Error(t, validateShiftDays("abc"))
}
