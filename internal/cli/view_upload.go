package cli

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/shiftdash/internal/cli/formatter"
)

// uploadErrorsView is the modal listing why the backend rejected an upload.
// It stays until dismissed.
type uploadErrorsView struct {
	state *SharedState
}

func newUploadErrorsView(state *SharedState) *uploadErrorsView {
	return &uploadErrorsView{state: state}
}

func (v *uploadErrorsView) ID() ViewID    { return ViewUploadErrors }
func (v *uploadErrorsView) Title() string { return "Upload failed" }

// CapturesInput keeps esc and q from bypassing the dismiss handling.
func (v *uploadErrorsView) CapturesInput() bool { return true }

func (v *uploadErrorsView) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter/esc", "dismiss")),
	}
}

func (v *uploadErrorsView) Init() tea.Cmd { return nil }

func (v *uploadErrorsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil
	}
	switch keyMsg.String() {
	case "enter", "esc", "q", " ":
		v.state.Browser.DismissErrorModal()
		return v, popView()
	}
	return v, nil
}

func (v *uploadErrorsView) View() string {
	snap := v.state.Browser.Snapshot()
	return "\n" + formatter.RenderModal("Upload failed",
		formatter.RenderUploadErrors(snap.Error, snap.ErrorFileLink, snap.ErrorRows)) + "\n"
}
