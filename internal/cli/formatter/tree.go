package formatter

import (
	"github.com/alexanderramin/shiftdash/internal/rollup"
)

const (
	markerOpen   = "▾ "
	markerClosed = "▸ "
	markerLeaf   = "· "
	treeIndent   = "  "
)

// TreeOptions controls how rollup rows are drawn.
type TreeOptions struct {
	// Levels names the Top, Mid and Leaf entities, e.g. Manager, Client,
	// Department. The first is used as the name column header.
	Levels      [rollup.MaxDepth]string
	Highlighted string
	Index       rollup.HighlightIndex
	// Cursor is the selected row index, -1 for none.
	Cursor int
}

// RenderRollup draws flattened rollup rows as an indented table. Expandable
// rows carry a ▸/▾ marker, highlighted rows are emphasized and per-row
// annotations go to the Note column.
func RenderRollup(rows []rollup.DisplayRow, opts TreeOptions) string {
	if len(rows) == 0 {
		return Dim("No data.") + "\n"
	}

	headers := []string{opts.Levels[0], "Heads"}
	for _, code := range rollup.ShiftCodes {
		headers = append(headers, string(code))
	}
	headers = append(headers, "Total", "Note")

	right := map[int]bool{1: true, 6: true}
	for i := range rollup.ShiftCodes {
		right[2+i] = true
	}

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		style := RowStyle(rollup.RowClass(r, opts.Index, opts.Highlighted))
		line := []string{
			style.Render(TreeLabel(r)),
			style.Render(itoa(r.HeadCount)),
		}
		for _, code := range rollup.ShiftCodes {
			line = append(line, style.Render(r.Shifts[code]))
		}
		line = append(line, style.Render(r.Total), StyleRed.Render(r.Error))
		out = append(out, line)
	}

	return Table{Headers: headers, Rows: out, Right: right, Cursor: opts.Cursor}.Render()
}

// TreeLabel is a row's name indented by level with its expansion marker.
func TreeLabel(r rollup.DisplayRow) string {
	prefix := ""
	for i := rollup.LevelTop; i < r.Level; i++ {
		prefix += treeIndent
	}
	switch {
	case !r.HasChildren:
		prefix += markerLeaf
	case r.Expanded:
		prefix += markerOpen
	default:
		prefix += markerClosed
	}
	return prefix + r.Name
}
