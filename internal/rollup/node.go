// Package rollup turns nested allowance aggregates into the flat, expandable
// row lists shown by the summary tables. Everything here is pure: callers
// hold the tree, expansion and sort state and pass them in.
package rollup

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// Level is the depth of a node in a three-level rollup.
type Level int

const (
	LevelTop Level = iota
	LevelMid
	LevelLeaf
)

// MaxDepth is the number of levels a rollup tree may hold.
const MaxDepth = 3

func (l Level) String() string {
	switch l {
	case LevelTop:
		return "top"
	case LevelMid:
		return "mid"
	case LevelLeaf:
		return "leaf"
	default:
		return "level-" + strconv.Itoa(int(l))
	}
}

// ShiftCode is a categorical time band under which allowance accrues.
type ShiftCode string

const (
	ShiftA     ShiftCode = "A"
	ShiftB     ShiftCode = "B"
	ShiftC     ShiftCode = "C"
	ShiftPrime ShiftCode = "PRIME"
)

// ShiftCodes lists the fixed shift key set in display order.
var ShiftCodes = []ShiftCode{ShiftA, ShiftB, ShiftC, ShiftPrime}

// ShiftTotals maps a shift code to its allowance total. Missing codes read
// as zero.
type ShiftTotals map[ShiftCode]decimal.Decimal

// Get returns the total for code, zero when absent.
func (s ShiftTotals) Get(code ShiftCode) decimal.Decimal {
	if v, ok := s[code]; ok {
		return v
	}
	return decimal.Zero
}

// Node is one entity in a rollup: a manager, client, department, month or
// employee depending on the view.
type Node struct {
	Key       string
	Name      string
	Level     Level
	HeadCount int
	Shifts    ShiftTotals
	Total     decimal.Decimal
	Children  []*Node
	// Error is an informational annotation; it never affects totals.
	Error string
}

// Tree is a normalized rollup payload. Version changes every time a tree is
// built so derived state can tell payloads apart.
type Tree struct {
	Version uint64
	Roots   []*Node
}

var treeVersion atomic.Uint64

// NewTree takes ownership of roots, assigns each node its level and a key
// that is unique across the whole tree, and drops anything nested deeper
// than the leaf level.
func NewTree(roots []*Node) *Tree {
	t := &Tree{Version: treeVersion.Add(1)}
	t.Roots = normalize(roots, "", LevelTop)
	return t
}

// Len returns the total number of nodes in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	n := 0
	t.Walk(func(*Node, *Node) { n++ })
	return n
}

// Walk visits every node depth-first in payload order along with its parent
// (nil for roots).
func (t *Tree) Walk(fn func(node, parent *Node)) {
	if t == nil {
		return
	}
	var walk func(nodes []*Node, parent *Node)
	walk = func(nodes []*Node, parent *Node) {
		for _, n := range nodes {
			fn(n, parent)
			walk(n.Children, n)
		}
	}
	walk(t.Roots, nil)
}

func normalize(nodes []*Node, parentKey string, level Level) []*Node {
	if int(level) >= MaxDepth {
		return nil
	}
	out := make([]*Node, 0, len(nodes))
	seen := make(map[string]int, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		segment := escapeKey(n.Name)
		seen[segment]++
		if c := seen[segment]; c > 1 {
			segment += "#" + strconv.Itoa(c)
		}
		if parentKey != "" {
			n.Key = parentKey + "/" + segment
		} else {
			n.Key = segment
		}
		n.Level = level
		if n.Shifts == nil {
			n.Shifts = ShiftTotals{}
		}
		n.Children = normalize(n.Children, n.Key, level+1)
		out = append(out, n)
	}
	return out
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, "/", `\/`, "#", `\#`)

func escapeKey(name string) string {
	return keyEscaper.Replace(name)
}

// RollUp fills n's head count, shift totals and total from its direct
// children. Adapters call it only for levels whose endpoint sends no totals
// of its own; backend figures are never overwritten elsewhere.
func RollUp(n *Node) {
	if n == nil {
		return
	}
	head := 0
	total := decimal.Zero
	shifts := ShiftTotals{}
	for _, c := range n.Children {
		if c == nil {
			continue
		}
		head += c.HeadCount
		total = total.Add(c.Total)
		for _, code := range ShiftCodes {
			shifts[code] = shifts.Get(code).Add(c.Shifts.Get(code))
		}
	}
	n.HeadCount = head
	n.Total = total
	n.Shifts = shifts
}
