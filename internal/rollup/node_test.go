package rollup

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTree_AssignsLevelsAndKeys(t *testing.T) {
	tree := sampleTree()

	require.Len(t, tree.Roots, 2)
	asha := tree.Roots[0]
	assert.Equal(t, "Asha", asha.Key)
	assert.Equal(t, LevelTop, asha.Level)
	assert.Equal(t, "Asha/Acme", asha.Children[0].Key)
	assert.Equal(t, LevelMid, asha.Children[0].Level)
	assert.Equal(t, "Asha/Acme/Ops", asha.Children[0].Children[0].Key)
	assert.Equal(t, LevelLeaf, asha.Children[0].Children[0].Level)
	assert.Equal(t, 9, tree.Len())
}

func TestNewTree_KeysUniqueAcrossTree(t *testing.T) {
	tree := NewTree([]*Node{
		branch("Asha", 0, branch("Acme", 0, leaf("Ops", 1), leaf("Ops", 2))),
		branch("Asha", 0, branch("Acme", 0, leaf("Ops", 3))),
		branch("A/B", 0),
		branch("A", 0, branch("B", 0)),
	})

	seen := map[string]bool{}
	tree.Walk(func(n, _ *Node) {
		assert.False(t, seen[n.Key], "duplicate key %q", n.Key)
		seen[n.Key] = true
	})
	assert.Equal(t, "Asha/Acme/Ops#2", tree.Roots[0].Children[0].Children[1].Key)
	assert.Equal(t, "Asha#2", tree.Roots[1].Key)
	assert.NotEqual(t, tree.Roots[2].Key, tree.Roots[3].Children[0].Key)
}

func TestNewTree_DropsNodesBelowLeaf(t *testing.T) {
	tree := NewTree([]*Node{
		branch("Top", 0, branch("Mid", 0, branch("Leaf", 0, leaf("TooDeep", 1)))),
	})

	leafNode := tree.Roots[0].Children[0].Children[0]
	assert.Empty(t, leafNode.Children)
	assert.Equal(t, 3, tree.Len())
}

func TestNewTree_SkipsNilNodes(t *testing.T) {
	tree := NewTree([]*Node{nil, branch("Top", 0, nil, leaf("Mid", 1))})
	assert.Equal(t, 2, tree.Len())
}

func TestNewTree_VersionsDiffer(t *testing.T) {
	a := NewTree(nil)
	b := NewTree(nil)
	assert.NotEqual(t, a.Version, b.Version)
}

func TestRollUp_SumsDirectChildren(t *testing.T) {
	c1 := &Node{Name: "C1", HeadCount: 5, Total: decimal.NewFromInt(5000),
		Shifts: ShiftTotals{ShiftA: decimal.NewFromInt(3000), ShiftPrime: decimal.NewFromInt(2000)}}
	c2 := &Node{Name: "C2", HeadCount: 2, Total: decimal.NewFromInt(1500),
		Shifts: ShiftTotals{ShiftA: decimal.NewFromInt(1500)}}
	mgr := &Node{Name: "Mgr", Children: []*Node{c1, c2}}

	RollUp(mgr)

	assert.Equal(t, 7, mgr.HeadCount)
	assert.Equal(t, "6500", mgr.Total.String())
	assert.Equal(t, "4500", mgr.Shifts.Get(ShiftA).String())
	assert.Equal(t, "2000", mgr.Shifts.Get(ShiftPrime).String())
	assert.True(t, mgr.Shifts.Get(ShiftB).IsZero())
}
