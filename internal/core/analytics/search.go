package analytics

import (
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/agenthands/papersift/internal/core/extraction"
	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
)

// FindPapersByEntity returns, in graph order, the papers whose extracted
// entities include name. Matching is exact on the canonical label.
func FindPapersByEntity(g *graph.Graph, name string) []string {
	return FindPapersByEntities(g, []string{name}, false)
}

// FindPapersByEntities matches papers carrying all of names, or any of them
// when matchAny is set. Blank names are ignored; no names match nothing.
func FindPapersByEntities(g *graph.Graph, names []string, matchAny bool) []string {
	want := extraction.NewEntitySet(names...)
	out := []string{}
	if want.Len() == 0 {
		return out
	}
	for _, key := range g.Keys() {
		n := g.Entities(key).Overlap(want)
		if (matchAny && n > 0) || n == want.Len() {
			out = append(out, key)
		}
	}
	return out
}

// ExpandFromSeed returns the papers reachable from seed within hops edges,
// in breadth-first order. The seed itself is not included.
func ExpandFromSeed(g *graph.Graph, seed string, hops int) ([]string, error) {
	if hops < 0 {
		return nil, model.BadInput("hops must not be negative, got %d", hops)
	}
	id, ok := g.ID(seed)
	if !ok {
		return nil, model.NotFound(seed)
	}
	out := []string{}
	if hops == 0 {
		return out, nil
	}

	view := g.Gonum()
	var bfs traverse.BreadthFirst
	bfs.Walk(view, view.Node(id), func(n gonum.Node, depth int) bool {
		if depth > hops {
			return true
		}
		if n.ID() != id {
			out = append(out, g.Key(n.ID()))
		}
		return false
	})
	return out, nil
}
