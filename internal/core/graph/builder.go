package graph

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/papersift/internal/core/dedupe"
	"github.com/agenthands/papersift/internal/core/extraction"
	"github.com/agenthands/papersift/internal/core/model"
)

// Strategy selects how pairwise entity overlap is computed. All strategies
// produce identical graphs.
type Strategy string

const (
	// StrategyInvertedIndex counts co-occurrences per entity posting list.
	StrategyInvertedIndex Strategy = "inverted_index"
	// StrategyPairwise compares every unordered pair of papers.
	StrategyPairwise Strategy = "pairwise"
)

// ParseStrategy maps a config value to a Strategy. Empty means the default.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyInvertedIndex:
		return StrategyInvertedIndex, nil
	case StrategyPairwise:
		return StrategyPairwise, nil
	default:
		return "", model.BadInput("unknown build strategy %q", s)
	}
}

type BuildOptions struct {
	UseTopics bool
	Strategy  Strategy
	// Workers bounds pairwise row-block parallelism. Values below 1 use
	// GOMAXPROCS. Ignored by the inverted index strategy.
	Workers int
	// Extractor overrides the default taxonomy.
	Extractor *extraction.Extractor
}

type BuildReport struct {
	Duplicates []model.DuplicatePair
}

// Build extracts entities once per paper and connects every pair of papers
// sharing at least one entity. Repeated DOIs keep their first record.
func Build(papers []model.Paper, opts BuildOptions) (*Graph, BuildReport) {
	deduped := dedupe.Deduplicate(papers)
	report := BuildReport{Duplicates: deduped.Duplicates}

	ex := opts.Extractor
	if ex == nil {
		ex = extraction.NewExtractor(nil)
	}

	g := newGraph(len(deduped.Papers))
	for _, p := range deduped.Papers {
		g.addNode(p.DOI, p.Title, ex.Extract(p, opts.UseTopics))
	}

	switch opts.Strategy {
	case StrategyPairwise:
		g.linkPairwise(opts.Workers)
	default:
		g.linkInvertedIndex()
	}
	return g, report
}

func (g *Graph) linkInvertedIndex() {
	postings := make(map[string][]int)
	var order []string
	for id, ents := range g.entities {
		for _, label := range ents.Labels() {
			if _, ok := postings[label]; !ok {
				order = append(order, label)
			}
			postings[label] = append(postings[label], id)
		}
	}
	for _, label := range order {
		ids := postings[label]
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				g.addWeight(ids[i], ids[j], 1)
			}
		}
	}
}

type overlap struct {
	to     int
	weight int
}

func (g *Graph) linkPairwise(workers int) {
	n := len(g.keys)
	if n < 2 {
		return
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	rows := make([][]overlap, n)

	blockSize := (n + workers - 1) / workers
	var eg errgroup.Group
	eg.SetLimit(workers)
	for start := 0; start < n; start += blockSize {
		end := min(start+blockSize, n)
		eg.Go(func() error {
			for i := start; i < end; i++ {
				for j := i + 1; j < n; j++ {
					if w := g.entities[i].Overlap(g.entities[j]); w > 0 {
						rows[i] = append(rows[i], overlap{to: j, weight: w})
					}
				}
			}
			return nil
		})
	}
	// workers never return an error
	_ = eg.Wait()

	for i, row := range rows {
		for _, o := range row {
			g.addWeight(i, o.to, o.weight)
		}
	}
}
