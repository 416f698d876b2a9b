package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/papersift/internal/core"
	"github.com/agenthands/papersift/internal/core/community"
	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
	"github.com/agenthands/papersift/internal/corpus"
	"github.com/agenthands/papersift/internal/metrics"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// runFlags are the clustering knobs shared by most commands. Unset flags
// fall back to the [clustering] config section.
type runFlags struct {
	resolution float64
	seed       int64
	unseeded   bool
	useTopics  bool
	algorithm  string
	strategy   string
	workers    int
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.resolution, "resolution", 1.0, "modularity resolution; higher gives more, smaller clusters")
	fs.Int64Var(&f.seed, "seed", 42, "random seed for the optimiser")
	fs.BoolVar(&f.unseeded, "unseeded", false, "do not seed the optimiser (results may vary between runs)")
	fs.BoolVar(&f.useTopics, "use-topics", false, "add topic and subfield names to each paper's entities")
	fs.StringVar(&f.algorithm, "algorithm", "", "community algorithm: modularity or label_propagation")
	fs.StringVar(&f.strategy, "build-strategy", "", "graph build strategy: inverted_index or pairwise")
	fs.IntVar(&f.workers, "workers", 0, "workers for the pairwise build strategy (0 = all CPUs)")
}

func (a *app) options(cmd *cobra.Command, f *runFlags) (core.Options, error) {
	c := a.cfg.Clustering
	opts := core.Options{
		UseTopics:        c.UseTopics,
		Resolution:       c.Resolution,
		Seed:             c.RunSeed(),
		Workers:          c.Workers,
		MinCitationEdges: a.cfg.Validation.MinCitationEdges,
	}
	strategy := c.BuildStrategy

	fs := cmd.Flags()
	if fs.Changed("resolution") {
		opts.Resolution = f.resolution
	}
	if fs.Changed("seed") {
		seed := f.seed
		opts.Seed = &seed
	}
	if f.unseeded {
		opts.Seed = nil
	}
	if fs.Changed("use-topics") {
		opts.UseTopics = f.useTopics
	}
	if fs.Changed("workers") {
		opts.Workers = f.workers
	}
	if f.strategy != "" {
		strategy = f.strategy
	}

	s, err := graph.ParseStrategy(strategy)
	if err != nil {
		return opts, err
	}
	opts.Strategy = s
	if !(opts.Resolution > 0) {
		return opts, model.BadInput("resolution must be positive, got %v", opts.Resolution)
	}
	return opts, nil
}

func (a *app) pipeline(f *runFlags, m *metrics.Collector) (*core.Pipeline, error) {
	name := a.cfg.Clustering.Algorithm
	if f != nil && f.algorithm != "" {
		name = f.algorithm
	}
	p, err := community.New(name)
	if err != nil {
		return nil, err
	}
	return core.NewPipeline(p, a.logger, m), nil
}

// loadPapers reads a corpus and logs every skipped record.
func (a *app) loadPapers(cmd *cobra.Command, path string) ([]model.Paper, error) {
	var (
		res *corpus.LoadResult
		err error
	)
	if path == "-" {
		res, err = corpus.Load(cmd.InOrStdin())
	} else {
		res, err = corpus.LoadFile(path)
	}
	if err != nil {
		return nil, model.BadInput("%v", err)
	}
	for _, s := range res.Skipped {
		a.logger.Warn("record skipped", zap.String("file", path), zap.Int("index", s.Index), zap.String("reason", s.Reason))
	}
	a.logger.Info("papers loaded", zap.String("file", path), zap.Int("papers", len(res.Papers)), zap.Int("skipped", len(res.Skipped)))
	return res.Papers, nil
}

func checkFormat(format string) error {
	if format != formatTable && format != formatJSON {
		return model.BadInput("unknown format %q, want table or json", format)
	}
	return nil
}

func refs(g *graph.Graph, keys []string) []model.PaperRef {
	out := make([]model.PaperRef, 0, len(keys))
	for _, k := range keys {
		out = append(out, model.PaperRef{DOI: k, Title: g.Title(k)})
	}
	return out
}

// truncate shortens s to n runes, marking the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func printRefList(w io.Writer, list []model.PaperRef, limit int) {
	for i, r := range list {
		if i == limit {
			fmt.Fprintf(w, "  ... and %d more\n", len(list)-limit)
			return
		}
		fmt.Fprintf(w, "  - %s\n", truncate(r.Title, 60))
	}
}

func splitIDs(s string) []string {
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return nil
}
