package community

import (
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	gcommunity "gonum.org/v1/gonum/graph/community"

	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
)

// Partitioner splits a graph into disjoint communities. Every node of g gets
// exactly one id and ids are contiguous from 0.
type Partitioner interface {
	Partition(g *graph.Graph, p Params) (model.Assignment, error)
}

type Params struct {
	// Resolution scales the null model; higher values give more, smaller
	// communities. Must be positive.
	Resolution float64
	// Seed makes randomized optimisers reproducible. Nil means unseeded.
	Seed *int64
}

// WithSeed returns a copy of p seeded with seed.
func (p Params) WithSeed(seed int64) Params {
	p.Seed = &seed
	return p
}

func (p Params) validate() error {
	if !(p.Resolution > 0) {
		return model.BadInput("resolution must be positive, got %v", p.Resolution)
	}
	return nil
}

const (
	AlgorithmModularity       = "modularity"
	AlgorithmLabelPropagation = "label_propagation"
)

// New returns the partitioner registered under name. Empty selects modularity,
// which is Louvain; there is no Leiden implementation behind any name.
func New(name string) (Partitioner, error) {
	switch name {
	case "", AlgorithmModularity, "louvain":
		return ModularityPartitioner{}, nil
	case AlgorithmLabelPropagation, "lpa":
		return NewLabelPropagationPartitioner(), nil
	default:
		return nil, model.BadInput("unknown clustering algorithm %q", name)
	}
}

// canonical numbers groups of node ids 0..k-1 ordered by each group's
// smallest id. Nodes missing from groups become singletons.
func canonical(g *graph.Graph, groups [][]int64) model.Assignment {
	type group struct {
		first   int64
		members []int64
	}
	covered := make(map[int64]struct{}, g.Len())
	ordered := make([]group, 0, len(groups))
	for _, members := range groups {
		if len(members) == 0 {
			continue
		}
		first := members[0]
		for _, id := range members {
			covered[id] = struct{}{}
			first = min(first, id)
		}
		ordered = append(ordered, group{first: first, members: members})
	}
	for id := range int64(g.Len()) {
		if _, ok := covered[id]; !ok {
			ordered = append(ordered, group{first: id, members: []int64{id}})
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].first < ordered[j].first })

	a := make(model.Assignment, g.Len())
	for cid, grp := range ordered {
		for _, id := range grp.members {
			a[g.Key(id)] = cid
		}
	}
	return a
}

// groupsOf inverts an assignment into gonum node groups ordered by cluster id.
func groupsOf(g *graph.Graph, a model.Assignment) [][]gonum.Node {
	ids := a.ClusterIDs()
	pos := make(map[int]int, len(ids))
	for i, cid := range ids {
		pos[cid] = i
	}
	groups := make([][]gonum.Node, len(ids))
	for _, key := range g.Keys() {
		cid, ok := a[key]
		if !ok {
			continue
		}
		id, _ := g.ID(key)
		groups[pos[cid]] = append(groups[pos[cid]], g.Gonum().Node(id))
	}
	return groups
}

// Modularity scores an assignment of g at the given resolution. A graph
// without edges scores 0.
func Modularity(g *graph.Graph, a model.Assignment, resolution float64) float64 {
	if g.EdgeCount() == 0 {
		return 0
	}
	return gcommunity.Q(g.Gonum(), groupsOf(g, a), resolution)
}
