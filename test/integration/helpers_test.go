//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/papersift/internal/config"
	"github.com/agenthands/papersift/internal/driver"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	_ = godotenv.Load("../../.env")

	cfg, err := config.Load("../../config/config.toml")
	if err != nil {
		t.Logf("Config not found, using defaults: %v", err)
		cfg = config.Default()
	}
	require.NoError(t, cfg.ApplyEnv())
	return cfg
}

// connect skips the test unless MEMGRAPH_URI is set.
func connect(t *testing.T, cfg *config.Config) driver.GraphDriver {
	t.Helper()
	if os.Getenv("MEMGRAPH_URI") == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}
	d, err := driver.NewMemgraphDriver(context.Background(), cfg.Memgraph, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close(context.Background()) })
	require.NoError(t, d.BuildIndices(context.Background()))
	return d
}

func count(t *testing.T, d driver.GraphDriver, cypher, runID string) int64 {
	t.Helper()
	res, err := d.ExecuteQuery(context.Background(), cypher, map[string]any{"run_id": runID})
	require.NoError(t, err)
	require.NotEmpty(t, res.Records)
	n, _ := res.Records[0].Get("count")
	return n.(int64)
}
