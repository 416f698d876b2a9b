package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/papersift/internal/config"
	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
	"github.com/agenthands/papersift/internal/llm"
)

// ChunkSize is the number of titles (or partial summaries) sent in one prompt.
const ChunkSize = 20

// Labeler names and describes communities with an LLM. It only reads what
// the pipeline already computed; entity extraction never goes through it.
type Labeler struct {
	LLM     llm.LLMClient
	Prompts config.LabelingPrompts
	Logger  *zap.Logger
}

func NewLabeler(client llm.LLMClient, prompts config.LabelingPrompts, logger *zap.Logger) *Labeler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Labeler{LLM: client, Prompts: prompts, Logger: logger}
}

// Label returns one label per community, in the order given.
func (l *Labeler) Label(ctx context.Context, g *graph.Graph, communities []model.CommunitySummary) ([]model.CommunityLabel, error) {
	labels := make([]model.CommunityLabel, 0, len(communities))
	for _, c := range communities {
		if err := ctx.Err(); err != nil {
			return labels, err
		}

		titles := make([]string, 0, len(c.DOIs))
		for _, doi := range c.DOIs {
			if t := g.Title(doi); t != "" {
				titles = append(titles, t)
			}
		}

		summary, err := l.SummarizeCommunity(ctx, c.TopEntities, titles)
		if err != nil {
			return labels, fmt.Errorf("failed to summarize cluster %d: %w", c.ClusterID, err)
		}
		name, err := l.NameCommunity(ctx, summary)
		if err != nil {
			return labels, fmt.Errorf("failed to name cluster %d: %w", c.ClusterID, err)
		}

		l.Logger.Debug("labelled cluster", zap.Int("cluster_id", c.ClusterID), zap.String("name", name))
		labels = append(labels, model.CommunityLabel{ClusterID: c.ClusterID, Name: name, Summary: summary})
	}
	return labels, nil
}

// SummarizeCommunity describes a community from its shared entities and
// member titles. Large communities are summarised chunk by chunk and the
// partial summaries reduced until one remains.
func (l *Labeler) SummarizeCommunity(ctx context.Context, entities, titles []string) (string, error) {
	if len(titles) == 0 {
		return "No significant information.", nil
	}

	entityList := strings.Join(entities, ", ")
	if len(titles) <= ChunkSize {
		return l.generateSummary(ctx, fmt.Sprintf(l.Prompts.Summary, entityList, bulletList(titles)))
	}

	var partials []string
	for chunk := range chunks(titles) {
		s, err := l.generateSummary(ctx, fmt.Sprintf(l.Prompts.Summary, entityList, bulletList(chunk)))
		if err != nil {
			l.Logger.Warn("chunk summary failed", zap.Error(err))
			continue
		}
		partials = append(partials, s)
	}
	if len(partials) == 0 {
		return "", errors.New("every chunk summary failed")
	}
	return l.reduce(ctx, partials)
}

func (l *Labeler) reduce(ctx context.Context, partials []string) (string, error) {
	for len(partials) > 1 {
		var next []string
		for chunk := range chunks(partials) {
			if len(chunk) == 1 {
				next = append(next, chunk[0])
				continue
			}
			s, err := l.generateSummary(ctx, fmt.Sprintf(l.Prompts.Reduce, bulletList(chunk)))
			if err != nil {
				return "", err
			}
			next = append(next, s)
		}
		partials = next
	}
	return partials[0], nil
}

func (l *Labeler) generateSummary(ctx context.Context, prompt string) (string, error) {
	response, err := l.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate community summary: %w", err)
	}

	result, err := llm.ParseJSON[model.LabelSummary](response)
	if err == nil && result.Summary != "" {
		return result.Summary, nil
	}
	return strings.TrimSpace(response), nil
}

// NameCommunity returns a short name for a summary. An empty name prompt
// disables naming.
func (l *Labeler) NameCommunity(ctx context.Context, summary string) (string, error) {
	if l.Prompts.Name == "" {
		return "", nil
	}

	response, err := l.LLM.Generate(ctx, fmt.Sprintf(l.Prompts.Name, summary))
	if err != nil {
		return "", fmt.Errorf("failed to generate community name: %w", err)
	}

	result, err := llm.ParseJSON[model.LabelName](response)
	if err == nil && result.Name != "" {
		return result.Name, nil
	}
	// bare name, possibly quoted
	return strings.Trim(strings.TrimSpace(response), `"`), nil
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return b.String()
}

func chunks(items []string) func(yield func([]string) bool) {
	return func(yield func([]string) bool) {
		for i := 0; i < len(items); i += ChunkSize {
			if !yield(items[i:min(i+ChunkSize, len(items))]) {
				return
			}
		}
	}
}
