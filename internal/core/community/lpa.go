package community

import (
	"math/rand/v2"

	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
)

// LabelPropagationPartitioner implements weighted asynchronous label
// propagation. It ignores the resolution.
type LabelPropagationPartitioner struct {
	MaxIterations int
}

func NewLabelPropagationPartitioner() *LabelPropagationPartitioner {
	return &LabelPropagationPartitioner{
		MaxIterations: 20,
	}
}

func (d *LabelPropagationPartitioner) Partition(g *graph.Graph, p Params) (model.Assignment, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	n := g.Len()
	if n == 0 {
		return model.Assignment{}, nil
	}
	view := g.Gonum()

	// Each node starts with its own label.
	labels := make([]int64, n)
	order := make([]int64, n)
	for i := range labels {
		labels[i] = int64(i)
		order[i] = int64(i)
	}

	var rng *rand.Rand
	if p.Seed != nil {
		seed := uint64(*p.Seed)
		rng = rand.New(rand.NewPCG(seed, seed))
	}

	for range d.MaxIterations {
		if rng != nil {
			rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		changed := 0
		for _, u := range order {
			neighbors := view.From(u)
			if neighbors.Len() == 0 {
				continue
			}

			weights := make(map[int64]float64)
			best := 0.0
			for neighbors.Next() {
				v := neighbors.Node().ID()
				w, _ := view.Weight(u, v)
				weights[labels[v]] += w
				best = max(best, weights[labels[v]])
			}

			// Keep the current label on a tie, otherwise take the largest.
			if weights[labels[u]] == best {
				continue
			}
			bestLabel := int64(-1)
			for label, w := range weights {
				if w == best && label > bestLabel {
					bestLabel = label
				}
			}
			labels[u] = bestLabel
			changed++
		}

		if changed == 0 {
			break
		}
	}

	byLabel := make(map[int64][]int64)
	for id, label := range labels {
		byLabel[label] = append(byLabel[label], int64(id))
	}
	groups := make([][]int64, 0, len(byLabel))
	for _, members := range byLabel {
		groups = append(groups, members)
	}
	return canonical(g, groups), nil
}
