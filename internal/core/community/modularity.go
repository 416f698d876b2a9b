package community

import (
	"math/rand/v2"

	gcommunity "gonum.org/v1/gonum/graph/community"

	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
)

// ModularityPartitioner maximises resolution-scaled modularity with gonum's
// Louvain optimiser.
type ModularityPartitioner struct{}

func (ModularityPartitioner) Partition(g *graph.Graph, p Params) (model.Assignment, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if g.Len() == 0 {
		return model.Assignment{}, nil
	}
	// The optimiser divides by total edge weight.
	if g.EdgeCount() == 0 {
		return canonical(g, nil), nil
	}

	var src rand.Source
	if p.Seed != nil {
		seed := uint64(*p.Seed)
		src = rand.NewPCG(seed, seed)
	}

	reduced := gcommunity.Modularize(g.Gonum(), p.Resolution, src)
	comms := reduced.Communities()

	groups := make([][]int64, len(comms))
	for i, c := range comms {
		for _, n := range c {
			groups[i] = append(groups[i], n.ID())
		}
	}
	return canonical(g, groups), nil
}
