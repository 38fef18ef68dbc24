package rollup

import (
	"sort"
	"strings"
)

// Expansion records which node keys are expanded. The zero value has every
// node collapsed. Values are immutable: Toggle and friends return copies.
// Keys that no longer exist in the current tree are simply never consulted.
type Expansion struct {
	open map[string]struct{}
}

// NewExpansion returns an Expansion with keys expanded.
func NewExpansion(keys ...string) Expansion {
	e := Expansion{open: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		e.open[k] = struct{}{}
	}
	return e
}

// IsExpanded reports whether key is expanded. Absent keys are collapsed.
func (e Expansion) IsExpanded(key string) bool {
	_, ok := e.open[key]
	return ok
}

// Len returns the number of expanded keys.
func (e Expansion) Len() int { return len(e.open) }

// Keys returns the expanded keys in sorted order.
func (e Expansion) Keys() []string {
	keys := make([]string, 0, len(e.open))
	for k := range e.open {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a stable string identifying this expansion set.
func (e Expansion) Snapshot() string {
	return strings.Join(e.Keys(), "\x00")
}

// Equal reports whether both expansions open the same keys.
func (e Expansion) Equal(other Expansion) bool {
	if len(e.open) != len(other.open) {
		return false
	}
	for k := range e.open {
		if _, ok := other.open[k]; !ok {
			return false
		}
	}
	return true
}

// Toggle returns a copy of e with key flipped. e is left untouched.
func Toggle(e Expansion, key string) Expansion {
	next := Expansion{open: make(map[string]struct{}, len(e.open)+1)}
	for k := range e.open {
		next.open[k] = struct{}{}
	}
	if _, ok := next.open[key]; ok {
		delete(next.open, key)
	} else {
		next.open[key] = struct{}{}
	}
	return next
}

// ExpandAll returns an Expansion opening every node of t that has children.
func ExpandAll(t *Tree) Expansion {
	e := NewExpansion()
	t.Walk(func(n, _ *Node) {
		if len(n.Children) > 0 {
			e.open[n.Key] = struct{}{}
		}
	})
	return e
}

// CollapseAll returns an Expansion with every node collapsed.
func CollapseAll() Expansion {
	return NewExpansion()
}
