package cli

import tea "github.com/charmbracelet/bubbletea"

// Navigation messages used by views to request view transitions.
// The appModel handles these in its Update method.

// pushViewMsg pushes a new view onto the navigation stack.
type pushViewMsg struct {
	view View
}

// popViewMsg pops the current view off the navigation stack,
// returning to the previous view.
type popViewMsg struct{}

// cmdOutputMsg carries text to show transiently over the current view.
type cmdOutputMsg struct {
	output string
}

// refreshViewMsg asks every view on the stack to reload from its source.
type refreshViewMsg struct{}

// browserChangedMsg signals that the shared record browser has new state.
type browserChangedMsg struct{}

// wizardCompleteMsg is sent when a wizard form completes or is cancelled.
// The appModel handles it atomically: pop the wizard view, then run nextCmd.
type wizardCompleteMsg struct {
	nextCmd tea.Cmd
}

// pushView returns a tea.Cmd that pushes a view onto the stack.
func pushView(v View) tea.Cmd {
	return func() tea.Msg { return pushViewMsg{view: v} }
}

// popView returns a tea.Cmd that pops the current view.
func popView() tea.Cmd {
	return func() tea.Msg { return popViewMsg{} }
}

// showOutput returns a tea.Cmd that displays text over the current view.
func showOutput(s string) tea.Cmd {
	return func() tea.Msg { return cmdOutputMsg{output: s} }
}
