package cli

import (
	"testing"

	"github.com/alexanderramin/shiftdash/internal/teatest"
)

// TestDriver wraps teatest.Driver with access to the appModel internals
// (view stack, shared state) the generic driver can't see.
type TestDriver struct {
	*teatest.Driver
}

// NewTestDriver builds the dashboard for app at 120x40 and drains Init.
func NewTestDriver(t *testing.T, app *App) *TestDriver {
	t.Helper()

	m := newAppModel(testState(t, app))
	d := teatest.New(t, m, teatest.WithSize(120, 40))
	d.DrainInit()

	return &TestDriver{Driver: d}
}

func (d *TestDriver) appModel() appModel {
	return d.Model.(appModel)
}

// ActiveViewID returns the ViewID of the top view on the stack.
func (d *TestDriver) ActiveViewID() ViewID {
	m := d.appModel()
	v := m.activeView()
	if v == nil {
		return ViewID(-1)
	}
	return v.ID()
}

// ActiveView returns the top view on the stack.
func (d *TestDriver) ActiveView() View {
	m := d.appModel()
	return m.activeView()
}

// ViewStackLen returns the number of views on the stack.
func (d *TestDriver) ViewStackLen() int {
	return len(d.appModel().viewStack)
}

// State returns the shared state for inspection.
func (d *TestDriver) State() *SharedState {
	return d.appModel().state
}

// IsQuitting reports whether the app has signalled a quit.
func (d *TestDriver) IsQuitting() bool {
	return d.appModel().quitting || d.Quitting
}

// LastOutput returns the transient output shown over the active view.
func (d *TestDriver) LastOutput() string {
	return stripANSI(d.appModel().lastOutput)
}

// Screen returns the rendered frame without styling.
func (d *TestDriver) Screen() string {
	return stripANSI(d.View())
}
