package cli

import (
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-faster/errors"

	"github.com/alexanderramin/shiftdash/internal/cli/formatter"
	"github.com/alexanderramin/shiftdash/internal/contract"
	"github.com/alexanderramin/shiftdash/internal/period"
)

// shiftdashHuhTheme returns a huh theme using the formatter palette.
func shiftdashHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// validateShiftDays accepts empty or a non-negative whole day count.
func validateShiftDays(s string) error {
	_, err := contract.ShiftEdit{ShiftA: s}.Validate()
	if err != nil {
		return errors.New("enter a whole number of days")
	}
	return nil
}

// validateOptionalMonth accepts empty or any month form period reads.
func validateOptionalMonth(s string) error {
	if _, err := period.Normalize(s); err != nil {
		return errors.New("use a month like Jan'24 or 2024-01")
	}
	return nil
}

// validateUploadPath requires an existing regular file.
func validateUploadPath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("enter a file path")
	}
	info, err := os.Stat(s)
	if err != nil {
		return errors.New("file not found")
	}
	if info.IsDir() {
		return errors.New("that is a directory")
	}
	return nil
}

// shiftEditForm binds the four shift inputs to edit.
func shiftEditForm(title string, edit *contract.ShiftEdit) *huh.Form {
	input := func(label string, v *string) *huh.Input {
		return huh.NewInput().
			Title(label).
			Placeholder("0").
			Value(v).
			Validate(validateShiftDays)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(title),
			input("Shift A days", &edit.ShiftA),
			input("Shift B days", &edit.ShiftB),
			input("Shift C days", &edit.ShiftC),
			input("PRIME days", &edit.Prime),
		),
	).WithTheme(shiftdashHuhTheme()).WithShowHelp(false)
}

// filterForm binds the search criteria fields.
func filterForm(c *contract.FilterCriteria) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Employee ID").Value(&c.EmpID),
			huh.NewInput().Title("Account Manager").Value(&c.AccountManager),
			huh.NewInput().Title("Department").Value(&c.Department),
			huh.NewInput().Title("Client").Value(&c.Client),
			huh.NewInput().Title("From month").Placeholder("Jan'24").Value(&c.StartMonth).Validate(validateOptionalMonth),
			huh.NewInput().Title("To month").Placeholder("Mar'24").Value(&c.EndMonth).Validate(validateOptionalMonth),
		),
	).WithTheme(shiftdashHuhTheme()).WithShowHelp(false)
}

// uploadForm asks for the spreadsheet path.
func uploadForm(path *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Spreadsheet to upload").
				Placeholder("allowances.xlsx").
				Value(path).
				Validate(validateUploadPath),
		),
	).WithTheme(shiftdashHuhTheme()).WithShowHelp(false)
}
