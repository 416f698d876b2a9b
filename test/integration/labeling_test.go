//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/papersift/internal/core"
	"github.com/agenthands/papersift/internal/core/summary"
	"github.com/agenthands/papersift/internal/llm"
)

func TestLabelWithLLM(t *testing.T) {
	cfg := loadConfig(t)
	if os.Getenv("LLM_PROVIDER") == "" {
		t.Skip("Skipping integration test: LLM_PROVIDER not set")
	}
	ctx := context.Background()

	client, err := llm.NewClient(ctx, cfg.LLM, nil)
	require.NoError(t, err)

	seed := int64(42)
	res, err := core.NewPipeline(nil, nil, nil).Run(citingCorpus(), core.Options{Resolution: 1, Seed: &seed})
	require.NoError(t, err)

	labels, err := summary.NewLabeler(client, cfg.Labeling, nil).Label(ctx, res.Graph, res.Communities)
	require.NoError(t, err)
	require.Len(t, labels, len(res.Communities))
	for _, l := range labels {
		t.Logf("Cluster %d: %s: %s", l.ClusterID, l.Name, l.Summary)
		assert.NotEmpty(t, l.Summary)
	}
}
