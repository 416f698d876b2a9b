package core

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/agenthands/papersift/internal/core/community"
	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
	"github.com/agenthands/papersift/internal/core/validation"
	"github.com/agenthands/papersift/internal/logging"
	"github.com/agenthands/papersift/internal/metrics"
)

// Pipeline composes extraction, graph building, partitioning and validation.
// It keeps no state between calls; every method returns fresh values.
type Pipeline struct {
	Partitioner community.Partitioner
	Logger      *zap.Logger
	Metrics     *metrics.Collector
}

func NewPipeline(p community.Partitioner, logger *zap.Logger, m *metrics.Collector) *Pipeline {
	if p == nil {
		p = community.ModularityPartitioner{}
	}
	return &Pipeline{
		Partitioner: p,
		Logger:      logging.OrNop(logger),
		Metrics:     m,
	}
}

type Options struct {
	UseTopics  bool
	Resolution float64
	Seed       *int64
	Strategy   graph.Strategy
	Workers    int

	// Validate runs the citation cross-check after clustering.
	Validate         bool
	MinCitationEdges int
}

func (o Options) params() community.Params {
	return community.Params{Resolution: o.Resolution, Seed: o.Seed}
}

type Result struct {
	Graph       *graph.Graph
	Clusters    model.Assignment
	Communities []model.CommunitySummary
	Modularity  float64
	Duplicates  []model.DuplicatePair

	// Report is nil unless validation was requested and the corpus had
	// enough citation edges. ValidationSkipped marks the latter case.
	Report            *validation.Report
	ValidationSkipped bool
}

func (p *Pipeline) logger() *zap.Logger {
	return logging.OrNop(p.Logger)
}

func (p *Pipeline) partitioner() community.Partitioner {
	if p.Partitioner == nil {
		return community.ModularityPartitioner{}
	}
	return p.Partitioner
}

// Run clusters papers.
func (p *Pipeline) Run(papers []model.Paper, opts Options) (res *Result, err error) {
	defer func() { p.Metrics.RecordRun("run", err) }()
	log := p.logger()

	done := p.Metrics.Stage("build")
	g, report := graph.Build(papers, graph.BuildOptions{
		UseTopics: opts.UseTopics,
		Strategy:  opts.Strategy,
		Workers:   opts.Workers,
	})
	done()
	for _, d := range report.Duplicates {
		log.Warn("duplicate DOI skipped",
			zap.String("doi", d.DOI),
			zap.Int("original_index", d.OriginalIndex),
			zap.Int("duplicate_index", d.DuplicateIndex))
	}
	log.Info("graph built",
		zap.Int("papers", g.Len()),
		zap.Int("edges", g.EdgeCount()),
		zap.String("strategy", string(opts.Strategy)))

	done = p.Metrics.Stage("partition")
	clusters, err := p.partitioner().Partition(g, opts.params())
	done()
	if err != nil {
		return nil, fmt.Errorf("failed to partition entity graph: %w", err)
	}

	res = &Result{
		Graph:       g,
		Clusters:    clusters,
		Communities: community.Summarize(g, clusters),
		Modularity:  community.Modularity(g, clusters, opts.Resolution),
		Duplicates:  report.Duplicates,
	}
	p.Metrics.SetGraph(g.Len(), g.EdgeCount(), clusters.NumClusters(), res.Modularity)
	log.Info("clustering complete",
		zap.Int("clusters", clusters.NumClusters()),
		zap.Float64("modularity", res.Modularity),
		zap.Float64("resolution", opts.Resolution))

	if !opts.Validate {
		return res, nil
	}
	res.Report, err = p.Validate(res, papers, opts)
	switch {
	case errors.Is(err, model.ErrInsufficientData):
		log.Warn("validation skipped", zap.Error(err))
		res.ValidationSkipped = true
		return res, nil
	case err != nil:
		return nil, err
	}
	return res, nil
}

// Validate cross-checks result.Clusters against the citation graph of papers
// using the same partitioner and parameters. Insufficient citation data is
// reported as model.ErrInsufficientData.
func (p *Pipeline) Validate(result *Result, papers []model.Paper, opts Options) (*validation.Report, error) {
	if result == nil {
		return nil, model.BadInput("nothing to validate")
	}
	done := p.Metrics.Stage("validate")
	defer done()

	v := validation.NewValidator(p.partitioner(), opts.params())
	if opts.MinCitationEdges > 0 {
		v.MinCitationEdges = opts.MinCitationEdges
	}
	report, err := v.GenerateReport(result.Clusters, papers)
	if err != nil {
		return nil, err
	}
	p.logger().Info("validation complete",
		zap.Float64("ari", report.ARI),
		zap.Float64("nmi", report.NMI),
		zap.Int("citation_clusters", report.NumCitationClusters))
	return report, nil
}

// SubCluster re-clusters the members of one cluster on their own. Members get
// ids "c.s"; when the cluster does not split every member keeps "c".
func (p *Pipeline) SubCluster(papers []model.Paper, clusters model.Assignment, clusterID int, opts Options) (map[string]string, error) {
	ids := make(map[string]string, len(clusters))
	for doi, cid := range clusters {
		ids[doi] = strconv.Itoa(cid)
	}
	return p.SubClusterID(papers, ids, strconv.Itoa(clusterID), opts)
}

// SubClusterID is SubCluster over string ids, so an already hierarchical
// cluster such as "3.1" can be split again into "3.1.s".
func (p *Pipeline) SubClusterID(papers []model.Paper, clusters map[string]string, clusterID string, opts Options) (out map[string]string, err error) {
	defer func() { p.Metrics.RecordRun("subcluster", err) }()

	var members []model.Paper
	seen := make(map[string]struct{})
	for _, paper := range papers {
		if cid, ok := clusters[paper.DOI]; !ok || cid != clusterID {
			continue
		}
		if _, dup := seen[paper.DOI]; dup {
			continue
		}
		seen[paper.DOI] = struct{}{}
		members = append(members, paper)
	}
	switch {
	case len(members) == 0:
		return nil, fmt.Errorf("%w: cluster %s", model.ErrNodeNotFound, clusterID)
	case len(members) < 2:
		return nil, model.BadInput("cluster %s has %d member, need at least 2", clusterID, len(members))
	}

	g, _ := graph.Build(members, graph.BuildOptions{
		UseTopics: opts.UseTopics,
		Strategy:  opts.Strategy,
		Workers:   opts.Workers,
	})
	sub, err := p.partitioner().Partition(g, opts.params())
	if err != nil {
		return nil, fmt.Errorf("failed to partition cluster %s: %w", clusterID, err)
	}

	split := sub.NumClusters() > 1
	out = make(map[string]string, len(sub))
	for doi, s := range sub {
		if split {
			out[doi] = clusterID + "." + strconv.Itoa(s)
		} else {
			out[doi] = clusterID
		}
	}
	p.logger().Info("sub-clustering complete",
		zap.String("cluster", clusterID),
		zap.Int("members", len(members)),
		zap.Int("sub_clusters", sub.NumClusters()))
	return out, nil
}
