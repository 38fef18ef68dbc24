package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/shiftdash/internal/browser"
	"github.com/alexanderramin/shiftdash/internal/rollup"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
	ColorSelect = lipgloss.Color("#3c3836")
)

// Predefined lipgloss styles.
var (
	StyleGreen      = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow     = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleRed        = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue       = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple     = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim        = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg         = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader     = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold       = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
	StyleCursor     = lipgloss.NewStyle().Background(ColorSelect)
)

// RowStyle maps a rollup row class list to its style. Highlighting wins
// over the level style.
func RowStyle(class string) lipgloss.Style {
	if strings.Contains(class, rollup.ClassHighlighted) {
		return StyleYellowBold
	}
	switch {
	case strings.HasPrefix(class, rollup.ClassTop):
		return StyleBold
	case strings.HasPrefix(class, rollup.ClassMid):
		return StyleFg
	default:
		return StyleDim
	}
}

// StatusPill returns a colored indicator for the record browser state.
func StatusPill(status browser.Status) string {
	switch status {
	case browser.StatusLoading:
		return StyleYellow.Render("◌ Loading")
	case browser.StatusReady:
		return StyleGreen.Render("● Ready")
	case browser.StatusError:
		return StyleRed.Render("✖ Error")
	default:
		return StyleDim.Render("○ Idle")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

// Success renders a green check followed by msg.
func Success(msg string) string {
	return StyleGreen.Render("✔") + " " + msg
}

// Failure renders a red cross followed by msg.
func Failure(msg string) string {
	return StyleRed.Render("✖") + " " + msg
}
