package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/papersift/internal/config"
	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
)

func testPrompts() config.LabelingPrompts {
	return config.LabelingPrompts{
		Summary: "SUMMARY entities=%s titles=%s",
		Reduce:  "REDUCE %s",
		Name:    "NAME %s",
	}
}

func TestSummarizeCommunity_SmallCommunity(t *testing.T) {
	mockLLM := &MockLLMClient{Response: `Sure! {"summary": "CRISPR screens in mouse organoids."}`}
	l := NewLabeler(mockLLM, testPrompts(), nil)

	got, err := l.SummarizeCommunity(context.Background(), []string{"crispr", "mouse"}, []string{"A", "B"})
	require.NoError(t, err)

	assert.Equal(t, "CRISPR screens in mouse organoids.", got)
	require.Equal(t, 1, mockLLM.Calls())
	assert.Contains(t, mockLLM.Prompts[0], "entities=crispr, mouse")
	assert.Contains(t, mockLLM.Prompts[0], "- A\n- B\n")
}

func TestSummarizeCommunity_MapReduce(t *testing.T) {
	mockLLM := &MockLLMClient{Respond: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "REDUCE") {
			return `{"summary": "combined"}`, nil
		}
		return `{"summary": "part"}`, nil
	}}
	l := NewLabeler(mockLLM, testPrompts(), nil)

	titles := make([]string, 45)
	for i := range titles {
		titles[i] = fmt.Sprintf("title %d", i)
	}
	got, err := l.SummarizeCommunity(context.Background(), nil, titles)
	require.NoError(t, err)

	assert.Equal(t, "combined", got)
	// three chunks then one reduce
	assert.Equal(t, 4, mockLLM.Calls())
}

func TestSummarizeCommunity_SkipsFailedChunks(t *testing.T) {
	calls := 0
	mockLLM := &MockLLMClient{Respond: func(prompt string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("rate limited")
		}
		return `{"summary": "ok"}`, nil
	}}
	l := NewLabeler(mockLLM, testPrompts(), nil)

	got, err := l.SummarizeCommunity(context.Background(), nil, make([]string, 30))
	require.NoError(t, err)
	// one surviving partial needs no reduce
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, mockLLM.Calls())
}

func TestSummarizeCommunity_AllChunksFail(t *testing.T) {
	l := NewLabeler(&MockLLMClient{Err: errors.New("down")}, testPrompts(), nil)

	_, err := l.SummarizeCommunity(context.Background(), nil, make([]string, 25))
	assert.Error(t, err)

	_, err = l.SummarizeCommunity(context.Background(), nil, []string{"one"})
	assert.Error(t, err)
}

func TestSummarizeCommunity_NoTitles(t *testing.T) {
	mockLLM := &MockLLMClient{}
	got, err := NewLabeler(mockLLM, testPrompts(), nil).SummarizeCommunity(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "No significant information.", got)
	assert.Zero(t, mockLLM.Calls())
}

func TestNameCommunity(t *testing.T) {
	l := NewLabeler(&MockLLMClient{Response: `{"name": "Organoid screens"}`}, testPrompts(), nil)
	name, err := l.NameCommunity(context.Background(), "summary")
	require.NoError(t, err)
	assert.Equal(t, "Organoid screens", name)

	l = NewLabeler(&MockLLMClient{Response: ` "Yeast metabolism" `}, testPrompts(), nil)
	name, err = l.NameCommunity(context.Background(), "summary")
	require.NoError(t, err)
	assert.Equal(t, "Yeast metabolism", name)

	prompts := testPrompts()
	prompts.Name = ""
	mockLLM := &MockLLMClient{}
	name, err = NewLabeler(mockLLM, prompts, nil).NameCommunity(context.Background(), "summary")
	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Zero(t, mockLLM.Calls())
}

func TestLabel(t *testing.T) {
	papers := []model.Paper{
		{DOI: "1", Title: "CRISPR screening in mouse"},
		{DOI: "2", Title: "CRISPR screening in human"},
		{DOI: "3", Title: "yeast metabolism"},
	}
	g, _ := graph.Build(papers, graph.BuildOptions{})
	communities := []model.CommunitySummary{
		{ClusterID: 0, Size: 2, DOIs: []string{"1", "2"}, TopEntities: []string{"crispr", "screening"}},
		{ClusterID: 1, Size: 1, DOIs: []string{"3"}, TopEntities: []string{"yeast"}},
	}

	mockLLM := &MockLLMClient{Respond: func(prompt string) (string, error) {
		if strings.HasPrefix(prompt, "NAME") {
			return `{"name": "n"}`, nil
		}
		return `{"summary": "s"}`, nil
	}}
	labels, err := NewLabeler(mockLLM, testPrompts(), nil).Label(context.Background(), g, communities)
	require.NoError(t, err)

	assert.Equal(t, []model.CommunityLabel{
		{ClusterID: 0, Name: "n", Summary: "s"},
		{ClusterID: 1, Name: "n", Summary: "s"},
	}, labels)
	assert.Contains(t, mockLLM.Prompts[0], "- CRISPR screening in mouse\n")
}

func TestLabel_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := graph.Assemble([]string{"a"}, nil)
	_, err := NewLabeler(&MockLLMClient{}, testPrompts(), nil).Label(ctx, g, []model.CommunitySummary{{DOIs: []string{"a"}}})
	assert.ErrorIs(t, err, context.Canceled)
}
