package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/shiftdash/internal/cli/formatter"
	"github.com/alexanderramin/shiftdash/internal/contract"
	"github.com/alexanderramin/shiftdash/internal/currency"
	"github.com/alexanderramin/shiftdash/internal/export"
	"github.com/alexanderramin/shiftdash/internal/period"
	"github.com/alexanderramin/shiftdash/internal/rollup"
)

// summaryLoadedMsg carries a fetched rollup tree.
type summaryLoadedMsg struct {
	kind       contract.SummaryKind
	tree       *rollup.Tree
	recognized bool
	err        error
}

// summaryView is the expandable rollup table for one summary endpoint.
type summaryView struct {
	state *SharedState
	kind  contract.SummaryKind

	tree       *rollup.Tree
	index      rollup.HighlightIndex
	grand      decimal.Decimal
	recognized bool
	loading    bool
	err        error

	exp         rollup.Expansion
	sort        *rollup.Sort
	highlighted string
	cache       rollup.Cache
	cursor      int

	filtering bool
	filter    string
}

func newSummaryView(state *SharedState, kind contract.SummaryKind) *summaryView {
	return &summaryView{
		state:   state,
		kind:    kind,
		exp:     rollup.CollapseAll(),
		loading: true,
	}
}

func (v *summaryView) ID() ViewID    { return ViewSummary }
func (v *summaryView) Title() string { return v.kind.Title() }

// CapturesInput is true while the filter box is focused.
func (v *summaryView) CapturesInput() bool { return v.filtering }

func (v *summaryView) ShortHelp() []key.Binding {
	if v.filtering {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "keep filter")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s/S", "sort total/heads")),
		key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "highlight")),
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		key.NewBinding(key.WithKeys("E"), key.WithHelp("E/C", "expand/collapse all")),
		key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
	}
}

func (v *summaryView) Init() tea.Cmd {
	return v.load()
}

func (v *summaryView) load() tea.Cmd {
	app, kind, months := v.state.App, v.kind, v.state.Months
	return func() tea.Msg {
		tree, ok, err := app.API.Summary(context.Background(), kind, months)
		return summaryLoadedMsg{kind: kind, tree: tree, recognized: ok, err: err}
	}
}

func (v *summaryView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryLoadedMsg:
		if msg.kind != v.kind {
			return v, nil
		}
		v.loading = false
		v.err = msg.err
		if msg.err != nil {
			return v, nil
		}
		v.setTree(msg.tree, msg.recognized)
		return v, nil

	case refreshViewMsg:
		v.loading = true
		return v, v.load()

	case tea.KeyMsg:
		if v.filtering {
			return v.updateFilter(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

// setTree swaps in a new tree. Open rows stay open when their keys survive.
func (v *summaryView) setTree(t *rollup.Tree, recognized bool) {
	v.tree = t
	v.recognized = recognized
	v.index = rollup.NewHighlightIndex(t)
	v.grand = decimal.Zero
	if t != nil {
		totals := make([]decimal.Decimal, 0, len(t.Roots))
		for _, r := range t.Roots {
			totals = append(totals, r.Total)
		}
		v.grand = currency.Sum(totals...)
	}
	v.cache.Reset()
	v.clampCursor()
}

func (v *summaryView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := v.rows()

	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(rows)-1 {
			v.cursor++
		}
	case "enter", " ", "right", "left":
		if v.cursor < len(rows) && rows[v.cursor].HasChildren {
			v.exp = rollup.Toggle(v.exp, rows[v.cursor].Key)
		}
	case "E":
		v.exp = rollup.ExpandAll(v.tree)
	case "C":
		v.exp = rollup.CollapseAll()
		v.cursor = 0
	case "s":
		v.sort = rollup.NextSort(v.sort, rollup.MetricTotalAllowance)
	case "S":
		v.sort = rollup.NextSort(v.sort, rollup.MetricHeadCount)
	case "h":
		if v.cursor < len(rows) {
			name := rows[v.cursor].Name
			if v.highlighted == name {
				name = ""
			}
			v.highlighted = name
		}
	case "/":
		v.filtering = true
		v.filter = ""
		v.cursor = 0
	case "r":
		v.loading = true
		return v, v.load()
	case "x":
		return v, v.export(rows)
	}
	v.clampCursor()
	return v, nil
}

func (v *summaryView) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.filtering = false
		v.filter = ""
	case tea.KeyEnter:
		v.filtering = false
	case tea.KeyBackspace:
		if len(v.filter) > 0 {
			v.filter = v.filter[:len(v.filter)-1]
		}
	case tea.KeyRunes, tea.KeySpace:
		v.filter += msg.String()
	}
	v.cursor = 0
	return v, nil
}

func (v *summaryView) rows() []rollup.DisplayRow {
	if v.tree == nil {
		return nil
	}
	return rollup.FilterRows(v.cache.Rows(v.tree, v.exp, v.sort), v.filter)
}

func (v *summaryView) clampCursor() {
	n := len(v.rows())
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

// export writes the visible rows to a workbook in the working directory.
func (v *summaryView) export(rows []rollup.DisplayRow) tea.Cmd {
	app, kind := v.state.App, v.kind
	name := fmt.Sprintf("shiftdash-%s-%s.xlsx", kind, app.Clock.Now().Format("20060102-150405"))
	path := filepath.Join(app.Config.ExportDir, name)
	return func() tea.Msg {
		err := writeFile(path, func(f *os.File) error {
			return export.WriteTree(f, kind.Levels(), rows)
		})
		if err != nil {
			return cmdOutputMsg{output: formatter.Failure("Export failed: " + err.Error())}
		}
		return cmdOutputMsg{output: formatter.Success(fmt.Sprintf("Wrote %d rows to %s", len(rows), path))}
	}
}

func (v *summaryView) View() string {
	// Nothing loaded yet: the status is all there is to show. After that a
	// reload keeps the previous rows on screen, whatever its outcome.
	if v.tree == nil {
		if v.loading {
			return "\n  " + formatter.Dim("Loading "+strings.ToLower(v.kind.Title())+"...")
		}
		if v.err != nil {
			return "\n  " + formatter.StyleRed.Render("Error: "+v.err.Error())
		}
	}

	var b strings.Builder
	b.WriteString("\n")
	switch {
	case v.loading:
		b.WriteString(formatter.Dim("Reloading...") + "\n\n")
	case v.err != nil:
		b.WriteString(formatter.StyleRed.Render("Error: "+v.err.Error()) + "\n\n")
	}
	if !v.recognized {
		b.WriteString(formatter.Dim("The server sent a summary this version cannot read.") + "\n\n")
	}
	if v.filtering || v.filter != "" {
		b.WriteString(formatter.StyleYellow.Render("/") + " " + v.filter)
		if v.filtering {
			b.WriteString("█")
		}
		b.WriteString("\n\n")
	}

	rows := v.rows()
	b.WriteString(formatter.RenderRollup(rows, formatter.TreeOptions{
		Levels:      v.kind.Levels(),
		Highlighted: v.highlighted,
		Index:       v.index,
		Cursor:      v.cursor,
	}))

	var status []string
	if v.sort != nil {
		status = append(status, "sort "+v.sort.String())
	}
	if v.highlighted != "" {
		status = append(status, "highlight "+v.highlighted)
	}
	if v.cursor < len(rows) && rows[v.cursor].Node != nil && v.grand.IsPositive() {
		status = append(status, rows[v.cursor].Name+" "+formatter.RenderShare(rows[v.cursor].Node.Total, v.grand, 20))
	}
	if len(status) > 0 {
		b.WriteString("\n" + formatter.Dim(strings.Join(status, "  ·  ")) + "\n")
	}
	return b.String()
}

// monthRangeLabel renders a month range for headers, e.g. "Jan'24 – Mar'24".
func monthRangeLabel(start, end string) string {
	switch {
	case start != "" && end != "":
		return period.Display(start) + " – " + period.Display(end)
	case start != "":
		return "from " + period.Display(start)
	case end != "":
		return "until " + period.Display(end)
	}
	return "all months"
}
