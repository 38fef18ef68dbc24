package rollup

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FilterRows keeps the rows whose name fuzzily matches query, plus every
// ancestor of a match that is present in rows so indentation still reads as
// a tree. Order is preserved. An empty query returns rows unchanged.
func FilterRows(rows []DisplayRow, query string) []DisplayRow {
	query = strings.TrimSpace(query)
	if query == "" {
		return rows
	}

	parentOf := make(map[string]string, len(rows))
	for _, r := range rows {
		parentOf[r.Key] = r.ParentKey
	}

	keep := make(map[string]bool, len(rows))
	for _, r := range rows {
		if !fuzzy.MatchFold(query, r.Name) {
			continue
		}
		for k := r.Key; k != "" && !keep[k]; k = parentOf[k] {
			keep[k] = true
		}
	}

	out := make([]DisplayRow, 0, len(keep))
	for _, r := range rows {
		if keep[r.Key] {
			out = append(out, r)
		}
	}
	return out
}
