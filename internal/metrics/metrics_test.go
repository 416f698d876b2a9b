package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestCollector(t *testing.T) {
	c := NewCollector("papersift")

	c.RecordRun("run", nil)
	c.RecordRun("run", errors.New("boom"))
	c.RecordRun("run", nil)
	c.SetGraph(10, 4, 3, 0.5)
	c.CacheHit()
	c.CacheMiss()
	c.CacheMiss()
	c.ObserveHTTP("GET", "/hubs", 200, 5*time.Millisecond)
	c.Stage("build")()

	body := scrape(t, c)
	assert.Contains(t, body, `papersift_pipeline_runs_total{operation="run",outcome="success"} 2`)
	assert.Contains(t, body, `papersift_pipeline_runs_total{operation="run",outcome="error"} 1`)
	assert.Contains(t, body, "papersift_graph_nodes 10")
	assert.Contains(t, body, "papersift_graph_edges 4")
	assert.Contains(t, body, "papersift_modularity 0.5")
	assert.Contains(t, body, "papersift_cache_hits_total 1")
	assert.Contains(t, body, "papersift_cache_misses_total 2")
	assert.Contains(t, body, `papersift_http_requests_total{method="GET",route="/hubs",status="200"} 1`)
	assert.Contains(t, body, `papersift_pipeline_stage_duration_seconds_count{stage="build"} 1`)
}

func TestCollector_SeparateRegistries(t *testing.T) {
	a := NewCollector("papersift")
	b := NewCollector("papersift")
	a.CacheHit()

	assert.Contains(t, scrape(t, a), "papersift_cache_hits_total 1")
	assert.Contains(t, scrape(t, b), "papersift_cache_hits_total 0")
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordRun("run", nil)
		c.Stage("build")()
		c.SetGraph(1, 1, 1, 1)
		c.CacheHit()
		c.CacheMiss()
		c.ObserveHTTP("GET", "/", 200, time.Second)
	})
}
