package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/papersift/internal/core/community"
	"github.com/agenthands/papersift/internal/core/model"
)

func newValidator() *Validator {
	return NewValidator(community.ModularityPartitioner{}, community.Params{Resolution: 1}.WithSeed(42))
}

// cliques returns two groups of six papers where every paper cites every
// other paper of its group, plus one reference leaving the corpus.
func cliques() ([]model.Paper, model.Assignment) {
	var papers []model.Paper
	clusters := model.Assignment{}
	for g := range 2 {
		for i := range 6 {
			doi := fmt.Sprintf("10.%d/%d", g, i)
			var refs []string
			for j := range 6 {
				if j != i {
					refs = append(refs, fmt.Sprintf("10.%d/%d", g, j))
				}
			}
			refs = append(refs, "10.999/external", doi)
			papers = append(papers, model.Paper{DOI: doi, Title: doi, ReferencedWorks: refs})
			clusters[doi] = g
		}
	}
	return papers, clusters
}

func TestCitationGraph(t *testing.T) {
	papers := []model.Paper{
		{DOI: "a", ReferencedWorks: []string{"b", "a", "outside"}},
		{DOI: "b", ReferencedWorks: []string{"a"}},
		{DOI: "c", ReferencedWorks: []string{"a"}},
	}
	cg := CitationGraph(papers)

	assert.Equal(t, []string{"a", "b", "c"}, cg.Keys())
	assert.Equal(t, 2, cg.EdgeCount(), "mutual citation collapses to one edge")
	assert.Equal(t, 1, cg.Weight("a", "b"))
	assert.Equal(t, 1, cg.Weight("c", "a"))
	assert.False(t, cg.Has("outside"))
}

func TestNoCitations(t *testing.T) {
	papers := []model.Paper{
		{DOI: "1", Title: "mouse organoid"},
		{DOI: "2", Title: "mouse metabolism"},
	}
	v := newValidator()

	assert.False(t, v.HasCitationData(papers))

	report, err := v.GenerateReport(model.Assignment{"1": 0, "2": 0}, papers)
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, model.ErrInsufficientData))
}

func TestMinCitationEdges(t *testing.T) {
	papers := []model.Paper{
		{DOI: "a", ReferencedWorks: []string{"b"}},
		{DOI: "b", ReferencedWorks: []string{"c"}},
		{DOI: "c"},
	}
	v := newValidator()
	assert.False(t, v.HasCitationData(papers))

	v.MinCitationEdges = 2
	assert.True(t, v.HasCitationData(papers))
}

func TestGenerateReport_Agreement(t *testing.T) {
	papers, clusters := cliques()
	v := newValidator()
	require.True(t, v.HasCitationData(papers))

	report, err := v.GenerateReport(clusters, papers)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, report.ARI, 1e-9)
	assert.InDelta(t, 1.0, report.NMI, 1e-9)
	assert.Equal(t, 12, report.NumPapers)
	assert.Equal(t, 2, report.NumEntityClusters)
	assert.Equal(t, 2, report.NumCitationClusters)
	assert.Equal(t, ConfidenceSummary{High: 12}, report.ConfidenceSummary)
	assert.Equal(t, StrongAgreement, report.Interpretation)
	require.Len(t, report.Confidence, 12)
	for doi, c := range report.Confidence {
		assert.Equal(t, 1.0, c, doi)
	}
}

func TestGenerateReport_Disagreement(t *testing.T) {
	papers, _ := cliques()
	// entity view mixes the citation groups
	clusters := model.Assignment{}
	for i, p := range papers {
		clusters[p.DOI] = i % 2
	}

	report, err := newValidator().GenerateReport(clusters, papers)
	require.NoError(t, err)

	assert.Less(t, report.ARI, 0.2)
	assert.GreaterOrEqual(t, report.ARI, -1.0)
	assert.GreaterOrEqual(t, report.NMI, 0.0)
	assert.LessOrEqual(t, report.NMI, 1.0)
	assert.Equal(t, WeakAgreement, report.Interpretation)
	for _, c := range report.Confidence {
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, 1.0)
	}
}

func TestConfidence(t *testing.T) {
	cg := CitationGraph([]model.Paper{
		{DOI: "a", ReferencedWorks: []string{"b"}},
		{DOI: "b"},
		{DOI: "c"},
		{DOI: "solo"},
	})
	got := Confidence(model.Assignment{"a": 0, "b": 0, "c": 0, "solo": 1}, cg)

	assert.InDelta(t, 0.5, got["a"], 1e-12)
	assert.InDelta(t, 0.5, got["b"], 1e-12)
	assert.Equal(t, 0.0, got["c"])
	assert.Equal(t, 1.0, got["solo"])
}

func TestBucket(t *testing.T) {
	got := Bucket(map[string]float64{
		"a": 1, "b": 0.51, "c": 0.5, "d": 0.2, "e": 0.19, "f": 0,
	})
	assert.Equal(t, ConfidenceSummary{High: 2, Medium: 2, Low: 2}, got)
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		ari  float64
		want string
	}{
		{0.9, StrongAgreement},
		{0.51, StrongAgreement},
		{0.5, ModerateAgreement},
		{0.2, ModerateAgreement},
		{0.19, WeakAgreement},
		{-0.3, WeakAgreement},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Interpret(tt.ari), "ari=%v", tt.ari)
	}
}
