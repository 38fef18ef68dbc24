package rollup

// HighlightIndex maps each top-level name to the names of its leaf-level
// descendants. Build it once per tree, not per row.
type HighlightIndex map[string]map[string]struct{}

// NewHighlightIndex indexes t.
func NewHighlightIndex(t *Tree) HighlightIndex {
	idx := HighlightIndex{}
	if t == nil {
		return idx
	}
	for _, top := range t.Roots {
		names, ok := idx[top.Name]
		if !ok {
			names = map[string]struct{}{}
			idx[top.Name] = names
		}
		for _, mid := range top.Children {
			for _, leaf := range mid.Children {
				names[leaf.Name] = struct{}{}
			}
		}
	}
	return idx
}

// Contains reports whether top has a leaf descendant named leaf.
func (h HighlightIndex) Contains(top, leaf string) bool {
	_, ok := h[top][leaf]
	return ok
}

// Row class names used by renderers.
const (
	ClassTop         = "row-top"
	ClassMid         = "row-mid"
	ClassLeaf        = "row-leaf"
	ClassHighlighted = "row-highlighted"
)

// IsHighlighted applies the selection rules: a top row lights up when any of
// its leaves is named highlighted, a mid row when its own name matches and a
// leaf row when its parent's name matches.
func IsHighlighted(row DisplayRow, idx HighlightIndex, highlighted string) bool {
	if highlighted == "" {
		return false
	}
	switch row.Level {
	case LevelTop:
		return idx.Contains(row.Name, highlighted)
	case LevelMid:
		return row.Name == highlighted
	case LevelLeaf:
		return row.ParentName == highlighted
	}
	return false
}

// RowClass returns the style class list for row.
func RowClass(row DisplayRow, idx HighlightIndex, highlighted string) string {
	class := ClassLeaf
	switch row.Level {
	case LevelTop:
		class = ClassTop
	case LevelMid:
		class = ClassMid
	}
	if IsHighlighted(row, idx, highlighted) {
		class += " " + ClassHighlighted
	}
	return class
}
