package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/shiftdash/internal/cli/formatter"
	"github.com/alexanderramin/shiftdash/internal/contract"
)

type homeItem struct {
	label string
	hint  string
	open  func(*SharedState) View
}

// homeView is the dashboard's landing menu.
type homeView struct {
	state  *SharedState
	items  []homeItem
	cursor int
}

func newHomeView(state *SharedState) *homeView {
	summary := func(kind contract.SummaryKind) func(*SharedState) View {
		return func(s *SharedState) View { return newSummaryView(s, kind) }
	}
	return &homeView{
		state: state,
		items: []homeItem{
			{label: "Account managers", hint: "manager › client › department", open: summary(contract.SummaryManagers)},
			{label: "Clients", hint: "client › department › employee", open: summary(contract.SummaryClients)},
			{label: "Monthly", hint: "month › client › department", open: summary(contract.SummaryMonthly)},
			{label: "Employees", hint: "search, edit and upload records", open: func(s *SharedState) View { return newEmployeesView(s) }},
		},
	}
}

func (v *homeView) ID() ViewID    { return ViewHome }
func (v *homeView) Title() string { return "" }

func (v *homeView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "jump")),
	}
}

func (v *homeView) Init() tea.Cmd { return nil }

func (v *homeView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	switch s := keyMsg.String(); s {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.items)-1 {
			v.cursor++
		}
	case "enter":
		return v, pushView(v.items[v.cursor].open(v.state))
	default:
		if len(s) == 1 && s[0] >= '1' && int(s[0]-'0') <= len(v.items) {
			v.cursor = int(s[0] - '1')
			return v, pushView(v.items[v.cursor].open(v.state))
		}
	}
	return v, nil
}

func (v *homeView) View() string {
	var b strings.Builder
	b.WriteString("\n")
	for i, item := range v.items {
		cursor := "  "
		style := formatter.StyleFg
		if i == v.cursor {
			cursor = formatter.StyleGreen.Render("▸ ")
			style = formatter.StyleBold
		}
		b.WriteString(fmt.Sprintf("%s%s %s  %s\n",
			cursor,
			formatter.Dim(fmt.Sprintf("%d", i+1)),
			style.Render(fmt.Sprintf("%-18s", item.label)),
			formatter.Dim(item.hint),
		))
	}
	return b.String()
}
