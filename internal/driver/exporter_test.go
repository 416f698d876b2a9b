package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/agenthands/papersift/internal/core/community"
	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
)

func testSnapshot(t *testing.T) Snapshot {
	t.Helper()
	papers := []model.Paper{
		{DOI: "10.1/a", Title: "CRISPR screening in mouse", ReferencedWorks: []string{"10.1/b", "10.1/b", "10.9/outside"}},
		{DOI: "10.1/b", Title: "CRISPR screening in human", ReferencedWorks: []string{"10.1/a", "10.1/b"}},
		{DOI: "10.1/c", Title: "yeast metabolism"},
	}
	g, _ := graph.Build(papers, graph.BuildOptions{})
	clusters, err := community.ModularityPartitioner{}.Partition(g, community.Params{Resolution: 1}.WithSeed(42))
	require.NoError(t, err)

	return Snapshot{
		Graph:       g,
		Clusters:    clusters,
		Communities: community.Summarize(g, clusters),
		Labels:      []model.CommunityLabel{{ClusterID: 0, Name: "CRISPR screens", Summary: "s"}},
		Papers:      papers,
		Modularity:  community.Modularity(g, clusters, 1),
		Resolution:  1,
	}
}

func TestExport(t *testing.T) {
	mock := &MockDriver{}
	e := NewExporter(mock, nil)
	e.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	res, err := e.Export(context.Background(), testSnapshot(t))
	require.NoError(t, err)

	_, err = uuid.Parse(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Papers)
	assert.Equal(t, 2, res.Communities)
	assert.Equal(t, 3, res.Memberships)
	assert.Equal(t, 1, res.EntityEdges)
	// a->b and b->a; the duplicate, self and outside references are dropped
	assert.Equal(t, 2, res.CitationLinks)

	run := mock.queries(SaveRunQuery)
	require.Len(t, run, 1)
	assert.Equal(t, "2024-05-01T00:00:00Z", run[0].Params["created_at"])

	for _, q := range mock.Executed {
		assert.Equal(t, res.RunID, q.Params["run_id"])
	}

	saved := mock.queries(SaveCommunitiesQuery)
	require.Len(t, saved, 1)
	rows := saved[0].Params["rows"].([]map[string]any)
	assert.Equal(t, "CRISPR screens", rows[0]["name"])
	assert.Equal(t, "", rows[1]["name"])
}

func TestExport_Batches(t *testing.T) {
	mock := &MockDriver{}
	e := NewExporter(mock, nil)
	e.BatchSize = 2

	_, err := e.Export(context.Background(), testSnapshot(t))
	require.NoError(t, err)

	// 3 papers in batches of 2
	assert.Len(t, mock.queries(SavePapersQuery), 2)
}

func TestExport_PaperUUIDsAreStablePerRun(t *testing.T) {
	mock := &MockDriver{}
	res, err := NewExporter(mock, nil).Export(context.Background(), testSnapshot(t))
	require.NoError(t, err)

	runID := uuid.MustParse(res.RunID)
	rows := mock.queries(SavePapersQuery)[0].Params["rows"].([]map[string]any)
	assert.Equal(t, uuid.NewSHA1(runID, []byte("paper:10.1/a")).String(), rows[0]["uuid"])
}

func TestExport_Errors(t *testing.T) {
	_, err := NewExporter(&MockDriver{}, nil).Export(context.Background(), Snapshot{})
	assert.True(t, errors.Is(err, model.ErrBadInput))

	boom := errors.New("connection reset")
	mock := &MockDriver{Err: boom, FailOn: SaveCitesQuery}
	_, err = NewExporter(mock, nil).Export(context.Background(), testSnapshot(t))
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "failed to save citations")
}

func TestExport_DeletesPartialRunOnFailure(t *testing.T) {
	boom := errors.New("connection reset")
	mock := &MockDriver{Err: boom, FailOn: SaveCommunitiesQuery}
	core, logs := observer.New(zap.WarnLevel)

	res, err := NewExporter(mock, zap.New(core)).Export(context.Background(), testSnapshot(t))
	require.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "failed to save communities")
	require.NotNil(t, res)
	require.NotEmpty(t, res.RunID)

	deletes := mock.queries(DeleteRunQuery)
	require.Len(t, deletes, 1)
	assert.Equal(t, res.RunID, deletes[0].Params["run_id"])
	assert.Equal(t, mock.queries(SaveRunQuery)[0].Params["run_id"], res.RunID)
	assert.Empty(t, mock.queries(SaveHasMemberQuery))
	assert.Equal(t, 1, logs.FilterMessage("export failed, deleting partial run").Len())
}

// cleanupFailingDriver fails DeleteRunQuery on top of whatever the mock fails.
type cleanupFailingDriver struct {
	*MockDriver
	err error
}

func (d cleanupFailingDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	if query == DeleteRunQuery {
		d.Executed = append(d.Executed, executedQuery{Query: query, Params: params})
		return neo4j.EagerResult{}, d.err
	}
	return d.MockDriver.ExecuteQuery(ctx, query, params)
}

func TestExport_ReportsFailedCleanup(t *testing.T) {
	boom := errors.New("connection reset")
	gone := errors.New("server gone")
	mock := &MockDriver{Err: boom, FailOn: SavePapersQuery}
	core, logs := observer.New(zap.WarnLevel)

	res, err := NewExporter(cleanupFailingDriver{MockDriver: mock, err: gone}, zap.New(core)).
		Export(context.Background(), testSnapshot(t))
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, gone)
	assert.ErrorContains(t, err, "cleanup of run "+res.RunID)
	assert.Len(t, mock.queries(DeleteRunQuery), 1)
	assert.Equal(t, 1, logs.FilterMessage("failed to delete partial run").Len())
}

func TestDeleteRun(t *testing.T) {
	mock := &MockDriver{}
	e := NewExporter(mock, nil)

	id := uuid.NewString()
	require.NoError(t, e.DeleteRun(context.Background(), id))
	require.Len(t, mock.Executed, 1)
	assert.Equal(t, DeleteRunQuery, mock.Executed[0].Query)
	assert.Equal(t, id, mock.Executed[0].Params["run_id"])

	assert.True(t, errors.Is(e.DeleteRun(context.Background(), "not-a-uuid"), model.ErrBadInput))
}

func TestRunCommunities(t *testing.T) {
	mock := &MockDriver{Results: map[string]neo4j.EagerResult{
		GetRunCommunitiesQuery: {
			Records: []*neo4j.Record{
				{Keys: []string{"cluster_id", "name", "size"}, Values: []any{int64(0), "CRISPR screens", int64(2)}},
				{Keys: []string{"cluster_id", "name", "size"}, Values: []any{int64(1), nil, int64(1)}},
			},
		},
	}}
	e := NewExporter(mock, nil)

	got, err := e.RunCommunities(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, []StoredCommunity{
		{ClusterID: 0, Name: "CRISPR screens", Size: 2},
		{ClusterID: 1, Size: 1},
	}, got)

	_, err = e.RunCommunities(context.Background(), "nope")
	assert.True(t, errors.Is(err, model.ErrBadInput))
}
