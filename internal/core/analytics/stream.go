package analytics

import (
	"iter"

	"github.com/agenthands/papersift/internal/core/extraction"
	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
)

// StreamStrategy picks the next paper of a guided walk.
type StreamStrategy string

const (
	// Strongest follows the heaviest edge.
	Strongest StreamStrategy = "strongest"
	// Diverse follows the neighbour contributing the most unseen entities.
	Diverse StreamStrategy = "diverse"
)

// ParseStreamStrategy validates a user supplied strategy name.
func ParseStreamStrategy(s string) (StreamStrategy, error) {
	switch StreamStrategy(s) {
	case Strongest, Diverse:
		return StreamStrategy(s), nil
	default:
		return "", model.BadInput("unknown stream strategy %q", s)
	}
}

// Stream walks greedily from seed, yielding the seed first and then one paper
// per hop. The walk never revisits a paper and stops after maxHops steps, when
// no unvisited neighbour is left, or, for Diverse, when no neighbour adds a
// new entity. Ties go to the lexicographically smallest key.
func Stream(g *graph.Graph, seed string, strategy StreamStrategy, maxHops int) (iter.Seq[string], error) {
	if _, err := ParseStreamStrategy(string(strategy)); err != nil {
		return nil, err
	}
	if maxHops < 0 {
		return nil, model.BadInput("max hops must not be negative, got %d", maxHops)
	}
	if !g.Has(seed) {
		return nil, model.NotFound(seed)
	}

	return func(yield func(string) bool) {
		visited := map[string]struct{}{seed: {}}
		seen := extraction.NewEntitySet(g.Entities(seed).Labels()...)
		current := seed
		if !yield(current) {
			return
		}

		for range maxHops {
			next, score := "", 0
			// Neighbors are sorted, so a strict comparison keeps the smallest key.
			for _, nb := range g.Neighbors(current) {
				if _, ok := visited[nb]; ok {
					continue
				}
				var s int
				switch strategy {
				case Strongest:
					s = g.Weight(current, nb)
				case Diverse:
					ents := g.Entities(nb)
					s = ents.Len() - ents.Overlap(seen)
				}
				if next == "" || s > score {
					next, score = nb, s
				}
			}
			if next == "" || (strategy == Diverse && score == 0) {
				return
			}

			visited[next] = struct{}{}
			seen = extraction.NewEntitySet(append(seen.Labels(), g.Entities(next).Labels()...)...)
			current = next
			if !yield(current) {
				return
			}
		}
	}, nil
}

// EntityStream collects Stream into a slice.
func EntityStream(g *graph.Graph, seed string, strategy StreamStrategy, maxHops int) ([]string, error) {
	seq, err := Stream(g, seed, strategy, maxHops)
	if err != nil {
		return nil, err
	}
	var path []string
	for key := range seq {
		path = append(path, key)
	}
	return path, nil
}
