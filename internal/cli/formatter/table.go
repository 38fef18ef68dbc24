package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// colGap is the padding between table columns.
const colGap = 2

// Table is an aligned text table. Columns listed in Right are right-aligned,
// which is how amount columns read best.
type Table struct {
	Headers []string
	Rows    [][]string
	Right   map[int]bool
	// Cursor marks a data row with the selection background; -1 for none.
	Cursor int
}

// RenderTable renders a left-aligned table with no cursor.
func RenderTable(headers []string, rows [][]string) string {
	return Table{Headers: headers, Rows: rows, Cursor: -1}.Render()
}

// Render draws the table. Widths are measured on visible text so styled
// cells align.
func (t Table) Render() string {
	cols := len(t.Headers)
	if cols == 0 {
		return ""
	}

	widths := make([]int, cols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	header := make([]string, cols)
	for i, h := range t.Headers {
		header[i] = StyleHeader.Render(h)
	}
	b.WriteString(t.line(header, widths))

	sep := make([]string, cols)
	for i, w := range widths {
		sep[i] = StyleDim.Render(strings.Repeat("─", w))
	}
	b.WriteString(t.line(sep, widths))

	for idx, row := range t.Rows {
		cells := make([]string, cols)
		copy(cells, row)
		line := t.line(cells, widths)
		if idx == t.Cursor {
			line = StyleCursor.Render(strings.TrimSuffix(line, "\n")) + "\n"
		}
		b.WriteString(line)
	}
	return b.String()
}

func (t Table) line(cells []string, widths []int) string {
	var b strings.Builder
	last := len(cells) - 1
	for i, cell := range cells {
		pad := max(widths[i]-lipgloss.Width(cell), 0)
		if t.Right[i] {
			b.WriteString(strings.Repeat(" ", pad) + cell)
		} else {
			b.WriteString(cell)
			if i < last {
				b.WriteString(strings.Repeat(" ", pad))
			}
		}
		if i < last {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")
	return b.String()
}
