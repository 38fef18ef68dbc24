package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"

	"github.com/alexanderramin/shiftdash/internal/browser"
	"github.com/alexanderramin/shiftdash/internal/cli/formatter"
	"github.com/alexanderramin/shiftdash/internal/contract"
	"github.com/alexanderramin/shiftdash/internal/export"
	"github.com/alexanderramin/shiftdash/internal/session"
)

// browserOpMsg reports the end of a browser call made from a view. The
// resulting state arrives separately as browserChangedMsg.
type browserOpMsg struct {
	err error
}

// uploadDoneMsg reports the end of an upload started from the form.
type uploadDoneMsg struct {
	name string
	err  error
}

// employeesView is the paginated record table.
type employeesView struct {
	state  *SharedState
	snap   browser.Snapshot
	cursor int

	searching bool
	search    string
}

func newEmployeesView(state *SharedState) *employeesView {
	return &employeesView{
		state: state,
		snap:  state.Browser.Snapshot(),
	}
}

func (v *employeesView) ID() ViewID    { return ViewEmployees }
func (v *employeesView) Title() string { return "Employees" }

// CapturesInput is true while the employee ID search box is focused.
func (v *employeesView) CapturesInput() bool { return v.searching }

func (v *employeesView) ShortHelp() []key.Binding {
	if v.searching {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "done")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		key.NewBinding(key.WithKeys("n", "p"), key.WithHelp("n/p", "page")),
		key.NewBinding(key.WithKeys("+", "-"), key.WithHelp("+/-", "page size")),
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "emp id")),
		key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filters")),
		key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
	}
}

func (v *employeesView) Init() tea.Cmd {
	if v.snap.Status != browser.StatusIdle {
		return nil
	}
	b := v.state.Browser
	return browserOp(func(ctx context.Context) error {
		return b.ApplyFilters(ctx, contract.FilterCriteria{}, 1)
	})
}

// browserOp runs fn off the UI goroutine. Superseded requests are not
// errors worth showing.
func browserOp(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := fn(context.Background())
		if errors.Is(err, browser.ErrSuperseded) {
			err = nil
		}
		return browserOpMsg{err: err}
	}
}

func (v *employeesView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case browserOpMsg:
		v.resnap()
		if msg.err != nil && v.snap.Error == "" {
			return v, showOutput(formatter.Failure(msg.err.Error()))
		}
		return v, nil

	case browserChangedMsg:
		v.resnap()
		if v.snap.NeedsRefresh && v.snap.Status != browser.StatusLoading {
			b := v.state.Browser
			return v, browserOp(b.Refresh)
		}
		return v, nil

	case refreshViewMsg:
		return v, browserOp(v.state.Browser.Refresh)

	case uploadDoneMsg:
		v.resnap()
		if v.snap.ErrorModalOpen {
			return v, pushView(newUploadErrorsView(v.state))
		}
		if msg.err != nil && v.snap.Error == "" {
			return v, showOutput(formatter.Failure(msg.err.Error()))
		}
		return v, showOutput(uploadOutcome(v.snap))

	case tea.KeyMsg:
		if v.searching {
			return v.updateSearch(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *employeesView) resnap() {
	v.snap = v.state.Browser.Snapshot()
	if v.cursor >= len(v.snap.Rows) {
		v.cursor = max(len(v.snap.Rows)-1, 0)
	}
}

func (v *employeesView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := v.state.Browser
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.snap.Rows)-1 {
			v.cursor++
		}
	case "n", "right":
		if v.snap.Page < v.snap.TotalPages {
			page := v.snap.Page + 1
			v.cursor = 0
			return v, browserOp(func(ctx context.Context) error { return b.ChangePage(ctx, page) })
		}
	case "p", "left":
		if v.snap.Page > 1 {
			page := v.snap.Page - 1
			v.cursor = 0
			return v, browserOp(func(ctx context.Context) error { return b.ChangePage(ctx, page) })
		}
	case "+", "=":
		return v, v.stepPageSize(1)
	case "-":
		return v, v.stepPageSize(-1)
	case "r":
		return v, browserOp(b.Refresh)
	case "/":
		v.searching = true
		v.search = v.snap.Criteria.EmpID
	case "f":
		return v, v.openFilters()
	case "u":
		return v, v.openUpload()
	case "x":
		return v, v.export()
	case "enter":
		if v.cursor < len(v.snap.Rows) {
			return v, pushView(newDetailView(v.state, v.snap.Rows[v.cursor]))
		}
	}
	return v, nil
}

// updateSearch edits the employee ID filter. Every keystroke schedules a
// debounced fetch so only the final value hits the backend.
func (v *employeesView) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		v.searching = false
		return v, nil
	case tea.KeyEsc:
		v.searching = false
		v.search = ""
	case tea.KeyBackspace:
		if len(v.search) == 0 {
			return v, nil
		}
		v.search = v.search[:len(v.search)-1]
	case tea.KeyRunes:
		v.search += msg.String()
	default:
		return v, nil
	}
	criteria := v.snap.Criteria
	criteria.EmpID = v.search
	v.cursor = 0
	v.state.Browser.DebouncedFetch(criteria, 1)
	return v, nil
}

// stepPageSize moves to the neighbouring page size and remembers it.
func (v *employeesView) stepPageSize(delta int) tea.Cmd {
	i := slices.Index(browser.PageSizes, v.snap.PageSize) + delta
	if i < 0 || i >= len(browser.PageSizes) {
		return nil
	}
	size := browser.PageSizes[i]
	b, sessions := v.state.Browser, v.state.App.Sessions
	v.cursor = 0
	return browserOp(func(ctx context.Context) error {
		if sessions != nil {
			if err := sessions.SetPreference(ctx, session.PrefPageSize, strconv.Itoa(size)); err != nil {
				return err
			}
		}
		return b.SetPageSize(ctx, size)
	})
}

func (v *employeesView) openFilters() tea.Cmd {
	criteria := v.snap.Criteria
	b := v.state.Browser
	form := filterForm(&criteria)
	return pushView(newWizardView("Filters", form, func() tea.Cmd {
		v.search = criteria.EmpID
		v.cursor = 0
		return browserOp(func(ctx context.Context) error { return b.ApplyFilters(ctx, criteria, 1) })
	}))
}

func (v *employeesView) openUpload() tea.Cmd {
	var path string
	b := v.state.Browser
	return pushView(newWizardView("Upload", uploadForm(&path), func() tea.Cmd {
		return func() tea.Msg {
			path = strings.TrimSpace(path)
			name := filepath.Base(path)
			data, _, err := readUpload(path, false)
			if err != nil {
				return uploadDoneMsg{name: name, err: err}
			}
			err = b.UploadFile(context.Background(), name, bytes.NewReader(data))
			return uploadDoneMsg{name: name, err: err}
		}
	}))
}

func (v *employeesView) export() tea.Cmd {
	app, snap := v.state.App, v.snap
	name := fmt.Sprintf("shiftdash-employees-p%d-%s.xlsx", snap.Page, app.Clock.Now().Format("20060102-150405"))
	path := filepath.Join(app.Config.ExportDir, name)
	return func() tea.Msg {
		err := writeFile(path, func(f *os.File) error {
			return export.WriteRecords(f, snap.Rows, snap.Summary)
		})
		if err != nil {
			return cmdOutputMsg{output: formatter.Failure("Export failed: " + err.Error())}
		}
		return cmdOutputMsg{output: formatter.Success(fmt.Sprintf("Wrote %d records to %s", len(snap.Rows), path))}
	}
}

func (v *employeesView) View() string {
	var b strings.Builder
	b.WriteString("\n")

	if v.searching || v.snap.Criteria.EmpID != "" {
		text := v.snap.Criteria.EmpID
		if v.searching {
			text = v.search + "█"
		}
		b.WriteString(formatter.StyleYellow.Render("emp id") + " " + text + "\n")
	}
	if desc := describeCriteria(v.snap.Criteria); desc != "" {
		b.WriteString(formatter.Dim(desc) + "\n")
	}
	b.WriteString(formatter.StatusPill(v.snap.Status))
	if v.snap.Uploading {
		b.WriteString("  " + formatter.Dim("uploading..."))
	}
	b.WriteString("\n\n")

	if v.snap.Error != "" {
		b.WriteString(formatter.StyleRed.Render(v.snap.Error) + "\n\n")
	}
	if v.snap.Status == browser.StatusIdle {
		b.WriteString(formatter.Dim("Loading records...") + "\n")
		return b.String()
	}

	b.WriteString(formatter.RenderRecords(v.snap.Rows, v.cursor))
	if v.snap.Summary != nil {
		b.WriteString("\n" + formatter.RenderShiftSummary(v.snap.Summary) + "\n")
	}
	b.WriteString("\n" + formatter.RenderPager(v.snap) + "\n")
	return b.String()
}

// describeCriteria lists the active filters other than the employee ID.
func describeCriteria(c contract.FilterCriteria) string {
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}
	add("manager", c.AccountManager)
	add("department", c.Department)
	add("client", c.Client)
	if c.StartMonth != "" || c.EndMonth != "" {
		parts = append(parts, monthRangeLabel(c.StartMonth, c.EndMonth))
	}
	return strings.Join(parts, "  ·  ")
}
