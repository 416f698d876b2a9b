package community

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
)

func TestLPA_DisconnectedComponents(t *testing.T) {
	// Two triangles with no bridge.
	g := graph.Assemble(
		[]string{"1", "2", "3", "4", "5", "6"},
		[]graph.Edge{
			{From: "1", To: "2", Weight: 1}, {From: "2", To: "3", Weight: 1}, {From: "3", To: "1", Weight: 1},
			{From: "4", To: "5", Weight: 1}, {From: "5", To: "6", Weight: 1}, {From: "6", To: "4", Weight: 1},
		},
	)

	for _, seeded := range []bool{false, true} {
		p := Params{Resolution: 1}
		if seeded {
			p = p.WithSeed(5)
		}
		a, err := NewLabelPropagationPartitioner().Partition(g, p)
		require.NoError(t, err)
		assert.Equal(t, model.Assignment{"1": 0, "2": 0, "3": 0, "4": 1, "5": 1, "6": 1}, a)
	}
}

func TestLPA_WeightedPull(t *testing.T) {
	// x is tied to the {a,b} pair more strongly than to c.
	g := graph.Assemble(
		[]string{"a", "b", "x", "c"},
		[]graph.Edge{
			{From: "a", To: "b", Weight: 5},
			{From: "a", To: "x", Weight: 4},
			{From: "b", To: "x", Weight: 4},
			{From: "x", To: "c", Weight: 1},
		},
	)
	a, err := NewLabelPropagationPartitioner().Partition(g, Params{Resolution: 1}.WithSeed(11))
	require.NoError(t, err)

	assert.Equal(t, a["a"], a["b"])
	assert.Equal(t, a["a"], a["x"])
}

func TestLPA_Singletons(t *testing.T) {
	g := graph.Assemble([]string{"p", "q"}, nil)
	a, err := NewLabelPropagationPartitioner().Partition(g, Params{Resolution: 1})
	require.NoError(t, err)
	assert.Equal(t, model.Assignment{"p": 0, "q": 1}, a)
}
