package driver

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/papersift/internal/core/dedupe"
	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
	"github.com/agenthands/papersift/internal/logging"
)

const DefaultBatchSize = 500

// Snapshot is everything one export writes.
type Snapshot struct {
	Graph       *graph.Graph
	Clusters    model.Assignment
	Communities []model.CommunitySummary
	// Labels is optional.
	Labels     []model.CommunityLabel
	Papers     []model.Paper
	Modularity float64
	Resolution float64
}

type ExportResult struct {
	RunID         string `json:"run_id"`
	Papers        int    `json:"papers"`
	Communities   int    `json:"communities"`
	EntityEdges   int    `json:"entity_edges"`
	Memberships   int    `json:"memberships"`
	CitationLinks int    `json:"citation_links"`
}

// Exporter writes clustering results into a property graph.
type Exporter struct {
	Driver    GraphDriver
	Logger    *zap.Logger
	BatchSize int

	now func() time.Time
}

func NewExporter(d GraphDriver, logger *zap.Logger) *Exporter {
	return &Exporter{
		Driver:    d,
		Logger:    logging.OrNop(logger),
		BatchSize: DefaultBatchSize,
		now:       time.Now,
	}
}

// Export writes s under a fresh run id. When a write after the run node
// fails, the partial run is deleted and the returned result still carries
// its RunID so the caller can clean up if that deletion failed too.
func (e *Exporter) Export(ctx context.Context, s Snapshot) (*ExportResult, error) {
	if s.Graph == nil {
		return nil, model.BadInput("no graph to export")
	}
	runID := uuid.New()
	res := &ExportResult{RunID: runID.String()}
	log := logging.OrNop(e.Logger).With(zap.String("run_id", res.RunID))

	_, err := e.Driver.ExecuteQuery(ctx, SaveRunQuery, map[string]any{
		"run_id":      res.RunID,
		"created_at":  e.clock().UTC().Format(time.RFC3339),
		"papers":      s.Graph.Len(),
		"communities": len(s.Communities),
		"modularity":  s.Modularity,
		"resolution":  s.Resolution,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	if err := e.writeRun(ctx, s, runID, res); err != nil {
		return res, e.rollback(ctx, log, res.RunID, err)
	}

	log.Info("export complete",
		zap.Int("papers", res.Papers),
		zap.Int("communities", res.Communities),
		zap.Int("entity_edges", res.EntityEdges),
		zap.Int("citation_links", res.CitationLinks))
	return res, nil
}

func (e *Exporter) writeRun(ctx context.Context, s Snapshot, runID uuid.UUID, res *ExportResult) error {
	var err error
	papers := make([]map[string]any, 0, s.Graph.Len())
	for _, key := range s.Graph.Keys() {
		cid, ok := s.Clusters[key]
		if !ok {
			cid = -1
		}
		papers = append(papers, map[string]any{
			"uuid":       uuid.NewSHA1(runID, []byte("paper:"+key)).String(),
			"doi":        key,
			"title":      s.Graph.Title(key),
			"entities":   s.Graph.Entities(key).Labels(),
			"cluster_id": cid,
			"hub_score":  s.Graph.Strength(key),
		})
	}
	if res.Papers, err = e.writeBatches(ctx, SavePapersQuery, res.RunID, papers); err != nil {
		return fmt.Errorf("failed to save papers: %w", err)
	}

	labels := make(map[int]model.CommunityLabel, len(s.Labels))
	for _, l := range s.Labels {
		labels[l.ClusterID] = l
	}
	communities := make([]map[string]any, 0, len(s.Communities))
	var members []map[string]any
	for _, c := range s.Communities {
		communities = append(communities, map[string]any{
			"uuid":         uuid.NewSHA1(runID, []byte("community:"+strconv.Itoa(c.ClusterID))).String(),
			"cluster_id":   c.ClusterID,
			"size":         c.Size,
			"top_entities": c.TopEntities,
			"name":         labels[c.ClusterID].Name,
			"summary":      labels[c.ClusterID].Summary,
		})
		for _, doi := range c.DOIs {
			members = append(members, map[string]any{"cluster_id": c.ClusterID, "doi": doi})
		}
	}
	if res.Communities, err = e.writeBatches(ctx, SaveCommunitiesQuery, res.RunID, communities); err != nil {
		return fmt.Errorf("failed to save communities: %w", err)
	}
	if res.Memberships, err = e.writeBatches(ctx, SaveHasMemberQuery, res.RunID, members); err != nil {
		return fmt.Errorf("failed to save memberships: %w", err)
	}

	edges := s.Graph.Edges()
	rows := make([]map[string]any, 0, len(edges))
	for _, edge := range edges {
		rows = append(rows, map[string]any{"from": edge.From, "to": edge.To, "weight": edge.Weight})
	}
	if res.EntityEdges, err = e.writeBatches(ctx, SaveSharesEntitiesQuery, res.RunID, rows); err != nil {
		return fmt.Errorf("failed to save entity edges: %w", err)
	}

	if res.CitationLinks, err = e.writeBatches(ctx, SaveCitesQuery, res.RunID, citationRows(s.Papers)); err != nil {
		return fmt.Errorf("failed to save citations: %w", err)
	}
	return nil
}

// rollback deletes a partially written run, even when ctx is already
// cancelled.
func (e *Exporter) rollback(ctx context.Context, log *zap.Logger, runID string, cause error) error {
	log.Warn("export failed, deleting partial run", zap.Error(cause))
	if err := e.DeleteRun(context.WithoutCancel(ctx), runID); err != nil {
		log.Error("failed to delete partial run", zap.Error(err))
		return fmt.Errorf("%w; cleanup of run %s also failed: %w", cause, runID, err)
	}
	return cause
}

// DeleteRun removes every node of one export.
func (e *Exporter) DeleteRun(ctx context.Context, runID string) error {
	if _, err := uuid.Parse(runID); err != nil {
		return model.BadInput("run id %q: %v", runID, err)
	}
	if _, err := e.Driver.ExecuteQuery(ctx, DeleteRunQuery, map[string]any{"run_id": runID}); err != nil {
		return fmt.Errorf("failed to delete run %s: %w", runID, err)
	}
	return nil
}

// StoredCommunity is one community of an exported run as read back from the
// database.
type StoredCommunity struct {
	ClusterID int    `json:"cluster_id"`
	Name      string `json:"name,omitempty"`
	Size      int    `json:"size"`
}

// RunCommunities lists the communities of one export, largest first.
func (e *Exporter) RunCommunities(ctx context.Context, runID string) ([]StoredCommunity, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, model.BadInput("run id %q: %v", runID, err)
	}
	res, err := e.Driver.ExecuteQuery(ctx, GetRunCommunitiesQuery, map[string]any{"run_id": runID})
	if err != nil {
		return nil, fmt.Errorf("failed to read communities of run %s: %w", runID, err)
	}

	out := make([]StoredCommunity, 0, len(res.Records))
	for _, rec := range res.Records {
		cid, _ := rec.Get("cluster_id")
		name, _ := rec.Get("name")
		size, _ := rec.Get("size")

		c := StoredCommunity{}
		if v, ok := cid.(int64); ok {
			c.ClusterID = int(v)
		}
		if v, ok := size.(int64); ok {
			c.Size = int(v)
		}
		// name is null for unlabelled runs
		if v, ok := name.(string); ok {
			c.Name = v
		}
		out = append(out, c)
	}
	return out, nil
}

func (e *Exporter) writeBatches(ctx context.Context, query, runID string, rows []map[string]any) (int, error) {
	size := e.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	for i := 0; i < len(rows); i += size {
		batch := rows[i:min(i+size, len(rows))]
		if _, err := e.Driver.ExecuteQuery(ctx, query, map[string]any{"run_id": runID, "rows": batch}); err != nil {
			return i, err
		}
	}
	return len(rows), nil
}

func (e *Exporter) clock() time.Time {
	if e.now == nil {
		return time.Now()
	}
	return e.now()
}

// citationRows lists directed in-corpus references, each pair once.
func citationRows(papers []model.Paper) []map[string]any {
	unique := dedupe.Deduplicate(papers).Papers
	inCorpus := make(map[string]struct{}, len(unique))
	for _, p := range unique {
		inCorpus[p.DOI] = struct{}{}
	}

	type link struct{ from, to string }
	seen := make(map[link]struct{})
	var rows []map[string]any
	for _, p := range unique {
		for _, ref := range p.ReferencedWorks {
			l := link{p.DOI, ref}
			if _, ok := inCorpus[ref]; !ok || ref == p.DOI {
				continue
			}
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			rows = append(rows, map[string]any{"from": l.from, "to": l.to})
		}
	}
	return rows
}
