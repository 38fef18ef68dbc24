package cli

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/shiftdash/internal/browser"
	"github.com/alexanderramin/shiftdash/internal/cli/formatter"
	"github.com/alexanderramin/shiftdash/internal/contract"
	"github.com/alexanderramin/shiftdash/internal/period"
)

type detailLoadedMsg struct {
	detail *browser.Detail
	err    error
}

type detailSavedMsg struct {
	month string
	err   error
}

// detailView shows one employee record and edits its monthly shift counts.
type detailView struct {
	state  *SharedState
	row    contract.EmployeeRecord
	detail *browser.Detail
	cursor int
	saving bool
	notice string
}

func newDetailView(state *SharedState, row contract.EmployeeRecord) *detailView {
	return &detailView{state: state, row: row}
}

func (v *detailView) ID() ViewID    { return ViewDetail }
func (v *detailView) Title() string { return v.row.EmpID }

func (v *detailView) ShortHelp() []key.Binding {
	bindings := []key.Binding{
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit month")),
	}
	if v.detail != nil && v.detail.Editing() {
		bindings = append(bindings,
			key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "retry save")),
			key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "discard edits")),
		)
	}
	return bindings
}

func (v *detailView) Init() tea.Cmd {
	b, row := v.state.Browser, v.row
	return func() tea.Msg {
		d, err := b.FetchDetail(context.Background(), row.EmpID, row.Employee.DurationMonth, row.Employee.PayrollMonth)
		return detailLoadedMsg{detail: d, err: err}
	}
}

func (v *detailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		v.detail = msg.detail
		return v, nil

	case detailSavedMsg:
		v.saving = false
		if msg.err == nil {
			v.notice = "Saved " + period.Display(msg.month)
		} else {
			v.notice = ""
		}
		return v, nil

	case tea.KeyMsg:
		if v.detail == nil || v.saving {
			return v, nil
		}
		return v.updateKeys(msg)
	}
	return v, nil
}

func (v *detailView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	months := v.detail.Record().Months
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(months)-1 {
			v.cursor++
		}
	case "e", "enter":
		if v.cursor < len(months) {
			return v, v.openEdit(months[v.cursor].DurationMonth)
		}
	case "s":
		if v.cursor < len(months) {
			month := months[v.cursor].DurationMonth
			if edit, ok := v.detail.Staged(month); ok {
				return v, v.save(month, edit)
			}
		}
	case "x":
		v.detail.Cancel()
		v.notice = "Edits discarded"
	}
	return v, nil
}

// openEdit pushes a form prefilled with the month's current counts.
func (v *detailView) openEdit(month string) tea.Cmd {
	edit, err := v.detail.Current(month)
	if err != nil {
		return showOutput(formatter.Failure(err.Error()))
	}
	title := v.row.EmpID + " · " + period.Display(month)
	return pushView(newWizardView("Edit "+period.Display(month), shiftEditForm(title, &edit), func() tea.Cmd {
		v.detail.Stage(month, edit)
		return v.save(month, edit)
	}))
}

func (v *detailView) save(month string, edit contract.ShiftEdit) tea.Cmd {
	v.saving = true
	v.notice = ""
	d := v.detail
	return func() tea.Msg {
		err := d.SaveShiftEdit(context.Background(), month, edit)
		return detailSavedMsg{month: month, err: err}
	}
}

func (v *detailView) View() string {
	if v.detail == nil {
		return "\n  " + formatter.Dim("Loading "+v.row.EmpID+"...")
	}

	var b strings.Builder
	b.WriteString("\n")
	if msg := v.detail.Error(); msg != "" {
		b.WriteString(formatter.StyleRed.Render(msg) + "\n\n")
	}

	record := v.detail.Record()
	if record.EmpID == "" {
		return b.String()
	}

	staged := make(map[string]contract.ShiftEdit)
	for _, m := range record.Months {
		if edit, ok := v.detail.Staged(m.DurationMonth); ok {
			month := m.DurationMonth
			if n, err := period.Normalize(month); err == nil {
				month = n
			}
			staged[month] = edit
		}
	}
	b.WriteString(formatter.RenderEmployeeDetail(record, v.cursor, staged))

	switch {
	case v.saving:
		b.WriteString("\n" + formatter.Dim("Saving...") + "\n")
	case v.notice != "":
		b.WriteString("\n" + formatter.Success(v.notice) + "\n")
	case v.detail.Editing():
		b.WriteString("\n" + formatter.StyleYellow.Render("* unsaved edits") + "\n")
	}
	return b.String()
}
