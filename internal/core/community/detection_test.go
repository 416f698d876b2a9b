package community

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
)

// twoTriangles is {a,b,c} and {d,e,f} joined by the bridge c-d.
func twoTriangles() *graph.Graph {
	return graph.Assemble(
		[]string{"a", "b", "c", "d", "e", "f"},
		[]graph.Edge{
			{From: "a", To: "b", Weight: 1}, {From: "b", To: "c", Weight: 1}, {From: "a", To: "c", Weight: 1},
			{From: "d", To: "e", Weight: 1}, {From: "e", To: "f", Weight: 1}, {From: "d", To: "f", Weight: 1},
			{From: "c", To: "d", Weight: 1},
		},
	)
}

func TestModularity_TwoTriangles(t *testing.T) {
	g := twoTriangles()
	a, err := ModularityPartitioner{}.Partition(g, Params{Resolution: 1}.WithSeed(42))
	require.NoError(t, err)

	assert.Equal(t, model.Assignment{"a": 0, "b": 0, "c": 0, "d": 1, "e": 1, "f": 1}, a)
	assert.Greater(t, Modularity(g, a, 1), 0.3)
}

func TestModularity_SharedEntityPairStaysTogether(t *testing.T) {
	papers := []model.Paper{
		{DOI: "10.1/a", Title: "deep learning for protein structure"},
		{DOI: "10.1/b", Title: "deep learning approaches in structure prediction"},
	}
	g, _ := graph.Build(papers, graph.BuildOptions{})
	require.GreaterOrEqual(t, g.Weight("10.1/a", "10.1/b"), 1)

	for _, r := range []float64{0.5, 1.0, 1.5} {
		a, err := ModularityPartitioner{}.Partition(g, Params{Resolution: r}.WithSeed(7))
		require.NoError(t, err)
		assert.Equal(t, a["10.1/a"], a["10.1/b"], "resolution %v", r)
		assert.Equal(t, 1, a.NumClusters())
	}
}

func TestModularity_DisjointPapersAreSingletons(t *testing.T) {
	papers := []model.Paper{
		{DOI: "x", Title: "CRISPR screening"},
		{DOI: "y", Title: "yeast metabolism"},
		{DOI: "z", Title: "graph neural network"},
	}
	g, _ := graph.Build(papers, graph.BuildOptions{})
	require.Equal(t, 0, g.EdgeCount())

	a, err := ModularityPartitioner{}.Partition(g, Params{Resolution: 1})
	require.NoError(t, err)
	assert.Equal(t, model.Assignment{"x": 0, "y": 1, "z": 2}, a)
	assert.Equal(t, 0.0, Modularity(g, a, 1))
}

func TestModularity_IsolatedNodeIsSingleton(t *testing.T) {
	g := graph.Assemble([]string{"lone", "a", "b"}, []graph.Edge{{From: "a", To: "b", Weight: 3}})

	a, err := ModularityPartitioner{}.Partition(g, Params{Resolution: 1}.WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, model.Assignment{"lone": 0, "a": 1, "b": 1}, a)
}

func TestModularity_SeededRunsRepeat(t *testing.T) {
	g := twoTriangles()
	p := Params{Resolution: 1.2}.WithSeed(99)

	first, err := ModularityPartitioner{}.Partition(g, p)
	require.NoError(t, err)
	for range 10 {
		again, err := ModularityPartitioner{}.Partition(g, p)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPartition_Coverage(t *testing.T) {
	g := twoTriangles()
	for name, p := range map[string]Partitioner{
		"modularity":        ModularityPartitioner{},
		"label_propagation": NewLabelPropagationPartitioner(),
	} {
		t.Run(name, func(t *testing.T) {
			a, err := p.Partition(g, Params{Resolution: 1}.WithSeed(3))
			require.NoError(t, err)
			require.Len(t, a, g.Len())
			for _, key := range g.Keys() {
				assert.GreaterOrEqual(t, a[key], 0)
			}
			// contiguous ids
			assert.Equal(t, a.NumClusters()-1, a.ClusterIDs()[a.NumClusters()-1])
		})
	}
}

func TestPartition_BadResolution(t *testing.T) {
	g := twoTriangles()
	for _, r := range []float64{0, -1} {
		_, err := ModularityPartitioner{}.Partition(g, Params{Resolution: r})
		assert.True(t, errors.Is(err, model.ErrBadInput))

		_, err = NewLabelPropagationPartitioner().Partition(g, Params{Resolution: r})
		assert.True(t, errors.Is(err, model.ErrBadInput))
	}
}

func TestPartition_EmptyGraph(t *testing.T) {
	g, _ := graph.Build(nil, graph.BuildOptions{})
	a, err := ModularityPartitioner{}.Partition(g, Params{Resolution: 1})
	require.NoError(t, err)
	assert.Empty(t, a)
	assert.Empty(t, Summarize(g, a))
}

func TestNew(t *testing.T) {
	p, err := New("")
	require.NoError(t, err)
	assert.IsType(t, ModularityPartitioner{}, p)

	p, err = New(AlgorithmLabelPropagation)
	require.NoError(t, err)
	assert.IsType(t, &LabelPropagationPartitioner{}, p)

	p, err = New("louvain")
	require.NoError(t, err)
	assert.IsType(t, ModularityPartitioner{}, p)

	for _, name := range []string{"spectral", "leiden"} {
		_, err = New(name)
		assert.True(t, errors.Is(err, model.ErrBadInput), name)
	}
}
