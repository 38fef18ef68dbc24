package rollup

import (
	"sort"

	"github.com/alexanderramin/shiftdash/internal/currency"
	"github.com/shopspring/decimal"
)

// Metric names a sortable column.
type Metric string

const (
	MetricTotalAllowance Metric = "total_allowance"
	MetricHeadCount      Metric = "head_count"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort orders the flattened row list by a metric. A nil *Sort keeps payload
// order.
type Sort struct {
	Metric    Metric
	Direction Direction
}

func (s *Sort) String() string {
	if s == nil {
		return "none"
	}
	return string(s.Metric) + ":" + string(s.Direction)
}

// NextSort cycles none → desc → asc → none on metric.
func NextSort(s *Sort, metric Metric) *Sort {
	switch {
	case s == nil || s.Metric != metric:
		return &Sort{Metric: metric, Direction: Desc}
	case s.Direction == Desc:
		return &Sort{Metric: metric, Direction: Asc}
	default:
		return nil
	}
}

// DisplayRow is one visible line of a rollup table. Money fields are already
// formatted; Node points back at the source for toggles and info popovers.
type DisplayRow struct {
	Key         string
	ParentKey   string
	Name        string
	ParentName  string
	Level       Level
	HeadCount   int
	Shifts      map[ShiftCode]string
	Total       string
	Error       string
	HasChildren bool
	Expanded    bool
	Node        *Node
}

// Flatten emits one row per visible node: every root, plus the children of
// each expanded node, depth-first in payload order. Collapsed subtrees stay
// in the tree untouched. With a non-nil sort the whole list is stably
// reordered by the metric read back from its display form, so rows from
// different parents can interleave.
//
// Row levels follow traversal depth; a payload whose node levels disagree
// still renders.
func Flatten(t *Tree, exp Expansion, s *Sort) []DisplayRow {
	if t == nil {
		return nil
	}
	var rows []DisplayRow
	var walk func(nodes []*Node, parent *Node, depth Level)
	walk = func(nodes []*Node, parent *Node, depth Level) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			row := newDisplayRow(n, parent, depth, exp)
			rows = append(rows, row)
			if row.Expanded && int(depth)+1 < MaxDepth {
				walk(n.Children, n, depth+1)
			}
		}
	}
	walk(t.Roots, nil, LevelTop)

	if s != nil {
		SortRows(rows, *s)
	}
	return rows
}

func newDisplayRow(n, parent *Node, depth Level, exp Expansion) DisplayRow {
	shifts := make(map[ShiftCode]string, len(ShiftCodes))
	for _, code := range ShiftCodes {
		shifts[code] = currency.Format(n.Shifts.Get(code))
	}
	row := DisplayRow{
		Key:         n.Key,
		Name:        n.Name,
		Level:       depth,
		HeadCount:   n.HeadCount,
		Shifts:      shifts,
		Total:       currency.Format(n.Total),
		Error:       n.Error,
		HasChildren: len(n.Children) > 0,
		Expanded:    len(n.Children) > 0 && exp.IsExpanded(n.Key),
		Node:        n,
	}
	if parent != nil {
		row.ParentKey = parent.Key
		row.ParentName = parent.Name
	}
	return row
}

// SortRows stably orders rows in place by s. Equal values keep their
// relative order in both directions.
func SortRows(rows []DisplayRow, s Sort) {
	type keyed struct {
		row   DisplayRow
		value decimal.Decimal
	}
	ks := make([]keyed, len(rows))
	for i, r := range rows {
		ks[i] = keyed{row: r, value: metricValue(r, s.Metric)}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if s.Direction == Desc {
			return ks[i].value.GreaterThan(ks[j].value)
		}
		return ks[i].value.LessThan(ks[j].value)
	})
	for i := range ks {
		rows[i] = ks[i].row
	}
}

func metricValue(r DisplayRow, m Metric) decimal.Decimal {
	switch m {
	case MetricHeadCount:
		return decimal.NewFromInt(int64(r.HeadCount))
	default:
		return currency.ParseOrZero(r.Total)
	}
}
