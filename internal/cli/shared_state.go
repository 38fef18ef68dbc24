package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/shiftdash/internal/browser"
	"github.com/alexanderramin/shiftdash/internal/contract"
)

// SharedState is the state every view of one dashboard session sees.
type SharedState struct {
	App *App

	Width  int
	Height int

	// Months bounds every summary view.
	Months   contract.MonthRange
	Username string

	// Browser is the record browser shared by the employee views.
	Browser *browser.Browser
	changes chan struct{}
	unsub   func()
}

func newSharedState(app *App, months contract.MonthRange) *SharedState {
	ctx := context.Background()
	s := &SharedState{
		App:     app,
		Months:  months,
		Browser: app.newBrowser(ctx),
		changes: make(chan struct{}, 1),
	}
	// Changes coalesce: a pending signal already means "re-read the snapshot".
	s.unsub = s.Browser.OnChange(func(browser.Snapshot) {
		select {
		case s.changes <- struct{}{}:
		default:
		}
	})
	if app.Sessions != nil {
		if sess, err := app.Sessions.Current(ctx); err == nil {
			s.Username = sess.Username
		}
	}
	return s
}

// waitForBrowser blocks until the browser reports a change.
func (s *SharedState) waitForBrowser() tea.Cmd {
	ch := s.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return browserChangedMsg{}
	}
}

// Close releases the browser.
func (s *SharedState) Close() {
	if s.unsub != nil {
		s.unsub()
	}
	s.Browser.Close()
}

// ContentHeight returns the rows available to the active view below the
// header and above the status bar.
func (s *SharedState) ContentHeight() int {
	h := s.Height - 4
	if h < 5 {
		return 5
	}
	return h
}
