package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggle_DoesNotMutateInput(t *testing.T) {
	base := NewExpansion("a")
	next := Toggle(base, "b")

	assert.False(t, base.IsExpanded("b"))
	assert.True(t, next.IsExpanded("a"))
	assert.True(t, next.IsExpanded("b"))
}

func TestToggle_TwiceRestoresState(t *testing.T) {
	states := []Expansion{
		{},
		NewExpansion(),
		NewExpansion("a"),
		NewExpansion("a", "b/c"),
	}
	for _, state := range states {
		for _, k := range []string{"a", "b/c", "zzz"} {
			assert.True(t, Toggle(Toggle(state, k), k).Equal(state), "key %q on %v", k, state.Keys())
		}
	}
}

func TestExpansion_Snapshot(t *testing.T) {
	a := NewExpansion("x", "y")
	b := NewExpansion("y", "x")
	assert.Equal(t, a.Snapshot(), b.Snapshot())
	assert.NotEqual(t, a.Snapshot(), Toggle(a, "z").Snapshot())
	assert.Equal(t, "", Expansion{}.Snapshot())
}

func TestExpandAll_OpensOnlyParents(t *testing.T) {
	exp := ExpandAll(sampleTree())
	assert.Equal(t, []string{"Asha", "Asha/Acme", "Asha/Globex", "Ravi", "Ravi/Initech"}, exp.Keys())
}

func TestExpansion_StaleKeysAreInert(t *testing.T) {
	exp := NewExpansion("Gone", "Gone/Child")
	rows := Flatten(sampleTree(), exp, nil)
	assert.Equal(t, []string{"Asha", "Ravi"}, names(rows))
}
