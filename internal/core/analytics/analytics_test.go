package analytics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
)

func chain() *graph.Graph {
	// s -3- a, s -5- b, b -1- c, c -2- d
	return graph.Assemble(
		[]string{"s", "a", "b", "c", "d", "lone"},
		[]graph.Edge{
			{From: "s", To: "a", Weight: 3},
			{From: "s", To: "b", Weight: 5},
			{From: "b", To: "c", Weight: 1},
			{From: "c", To: "d", Weight: 2},
		},
	)
}

func TestHubs_DisjointPapers(t *testing.T) {
	papers := []model.Paper{
		{DOI: "x", Title: "CRISPR screening"},
		{DOI: "y", Title: "yeast metabolism"},
		{DOI: "z", Title: "graph neural network"},
	}
	g, _ := graph.Build(papers, graph.BuildOptions{})

	for _, key := range g.Keys() {
		score, err := HubScore(g, key)
		require.NoError(t, err)
		assert.Equal(t, 0, score)
	}

	hubs := FindHubPapers(g, 3)
	require.Len(t, hubs, 3)
	// all tied at zero, graph order
	assert.Equal(t, "x", hubs[0].DOI)
	assert.Equal(t, "z", hubs[2].DOI)
	assert.Equal(t, "CRISPR screening", hubs[0].Title)
	assert.Equal(t, []string{"crispr", "screening"}, hubs[0].Entities)
}

func TestHubs_Ranking(t *testing.T) {
	g := chain()

	hubs := FindHubPapers(g, 2)
	require.Len(t, hubs, 2)
	assert.Equal(t, "s", hubs[0].DOI)
	assert.Equal(t, 8, hubs[0].HubScore)
	assert.Equal(t, "b", hubs[1].DOI)
	assert.Equal(t, 6, hubs[1].HubScore)

	assert.Empty(t, FindHubPapers(g, 0))
	assert.Len(t, FindHubPapers(g, 100), g.Len())

	_, err := HubScore(g, "nope")
	assert.True(t, errors.Is(err, model.ErrNodeNotFound))
}

func TestFindPapersByEntity_BoundaryRule(t *testing.T) {
	papers := []model.Paper{
		{DOI: "1", Title: "Genome-wide CRISPR screens in human cells"},
		{DOI: "2", Title: "A crispr-like defence system in archaea"},
		{DOI: "3", Title: "crispr interference, revisited"},
		{DOI: "4", Title: "Yeast metabolism"},
	}
	g, _ := graph.Build(papers, graph.BuildOptions{})

	assert.Equal(t, []string{"1", "3"}, FindPapersByEntity(g, "CRISPR"))
	assert.Equal(t, []string{"1", "3"}, FindPapersByEntity(g, "  crispr "))
	assert.Empty(t, FindPapersByEntity(g, "cris"))
	assert.Empty(t, FindPapersByEntity(g, ""))
}

func TestFindPapersByEntities(t *testing.T) {
	papers := []model.Paper{
		{DOI: "1", Title: "mouse organoid"},
		{DOI: "2", Title: "mouse metabolism"},
		{DOI: "3", Title: "human organoid"},
	}
	g, _ := graph.Build(papers, graph.BuildOptions{})

	assert.Equal(t, []string{"1"}, FindPapersByEntities(g, []string{"mouse", "organoid"}, false))
	assert.Equal(t, []string{"1", "2", "3"}, FindPapersByEntities(g, []string{"mouse", "organoid"}, true))
	assert.Empty(t, FindPapersByEntities(g, nil, true))
}

func TestExpandFromSeed(t *testing.T) {
	g := chain()

	got, err := ExpandFromSeed(g, "s", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = ExpandFromSeed(g, "s", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)

	got, err = ExpandFromSeed(g, "s", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)

	got, err = ExpandFromSeed(g, "s", 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ExpandFromSeed(g, "lone", 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ExpandFromSeed(g, "s", -1)
	assert.True(t, errors.Is(err, model.ErrBadInput))

	_, err = ExpandFromSeed(g, "missing", 1)
	assert.True(t, errors.Is(err, model.ErrNodeNotFound))
}

func TestEntityStream_StrongestFollowsHeaviestEdge(t *testing.T) {
	g := chain()

	path, err := EntityStream(g, "s", Strongest, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"s", "b"}, path)

	path, err = EntityStream(g, "s", Strongest, 10)
	require.NoError(t, err)
	// no unvisited neighbour after d
	assert.Equal(t, []string{"s", "b", "c", "d"}, path)

	path, err = EntityStream(g, "s", Strongest, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"s"}, path)
}

func TestEntityStream_TieBreaksOnKey(t *testing.T) {
	g := graph.Assemble([]string{"seed", "zeta", "alpha"}, []graph.Edge{
		{From: "seed", To: "zeta", Weight: 2},
		{From: "seed", To: "alpha", Weight: 2},
	})
	path, err := EntityStream(g, "seed", Strongest, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"seed", "alpha"}, path)
}

func TestEntityStream_Diverse(t *testing.T) {
	papers := []model.Paper{
		{DOI: "seed", Title: "mouse organoid"},
		{DOI: "same", Title: "mouse organoid screening"},
		{DOI: "wide", Title: "mouse CRISPR yeast metabolism"},
		{DOI: "dup", Title: "mouse organoid"},
	}
	g, _ := graph.Build(papers, graph.BuildOptions{})

	path, err := EntityStream(g, "seed", Diverse, 5)
	require.NoError(t, err)
	// wide adds 3 new entities, then same adds screening, then dup adds nothing
	assert.Equal(t, []string{"seed", "wide", "same"}, path)
}

func TestStream_EarlyStop(t *testing.T) {
	seq, err := Stream(chain(), "s", Strongest, 10)
	require.NoError(t, err)

	var got []string
	for key := range seq {
		got = append(got, key)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"s", "b"}, got)
}

func TestStream_Errors(t *testing.T) {
	g := chain()

	_, err := Stream(g, "s", "random", 2)
	assert.True(t, errors.Is(err, model.ErrBadInput))

	_, err = Stream(g, "s", Strongest, -1)
	assert.True(t, errors.Is(err, model.ErrBadInput))

	_, err = EntityStream(g, "missing", Diverse, 2)
	assert.True(t, errors.Is(err, model.ErrNodeNotFound))
}
