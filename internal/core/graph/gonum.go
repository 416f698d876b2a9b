package graph

import (
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
)

// ID returns the node id of key. Ids are positions in graph order.
func (g *Graph) ID(key string) (int64, bool) {
	id, ok := g.index[key]
	return int64(id), ok
}

// Key returns the key of node id, empty when id is out of range.
func (g *Graph) Key(id int64) string {
	if id < 0 || id >= int64(len(g.keys)) {
		return ""
	}
	return g.keys[id]
}

// Gonum exposes g to gonum algorithms. Node and neighbour iteration follow
// graph order so seeded algorithms are reproducible.
func (g *Graph) Gonum() gonum.WeightedUndirected {
	return weightedView{g: g}
}

type weightedView struct {
	g *Graph
}

var _ gonum.WeightedUndirected = weightedView{}

func (v weightedView) valid(id int64) bool {
	return id >= 0 && id < int64(len(v.g.keys))
}

func (v weightedView) Node(id int64) gonum.Node {
	if !v.valid(id) {
		return nil
	}
	return simple.Node(id)
}

func (v weightedView) Nodes() gonum.Nodes {
	if len(v.g.keys) == 0 {
		return gonum.Empty
	}
	nodes := make([]gonum.Node, len(v.g.keys))
	for i := range nodes {
		nodes[i] = simple.Node(i)
	}
	return iterator.NewOrderedNodes(nodes)
}

func (v weightedView) From(id int64) gonum.Nodes {
	if !v.valid(id) || len(v.g.adj[id]) == 0 {
		return gonum.Empty
	}
	ids := v.g.sortedNeighborIDs(int(id))
	nodes := make([]gonum.Node, len(ids))
	for i, nb := range ids {
		nodes[i] = simple.Node(nb)
	}
	return iterator.NewOrderedNodes(nodes)
}

func (v weightedView) HasEdgeBetween(xid, yid int64) bool {
	if !v.valid(xid) || !v.valid(yid) {
		return false
	}
	_, ok := v.g.adj[xid][int(yid)]
	return ok
}

func (v weightedView) Edge(uid, vid int64) gonum.Edge {
	return v.WeightedEdge(uid, vid)
}

func (v weightedView) EdgeBetween(xid, yid int64) gonum.Edge {
	return v.WeightedEdge(xid, yid)
}

func (v weightedView) WeightedEdgeBetween(xid, yid int64) gonum.WeightedEdge {
	return v.WeightedEdge(xid, yid)
}

func (v weightedView) WeightedEdge(uid, vid int64) gonum.WeightedEdge {
	if !v.HasEdgeBetween(uid, vid) {
		return nil
	}
	return simple.WeightedEdge{
		F: simple.Node(uid),
		T: simple.Node(vid),
		W: float64(v.g.adj[uid][int(vid)]),
	}
}

// Weight reports a zero self weight and no weight for non-adjacent pairs.
func (v weightedView) Weight(xid, yid int64) (float64, bool) {
	if xid == yid {
		return 0, v.valid(xid)
	}
	if !v.HasEdgeBetween(xid, yid) {
		return 0, false
	}
	return float64(v.g.adj[xid][int(yid)]), true
}

// sortByGraphOrder orders keys by their node ids. Unknown keys go last.
func (g *Graph) sortByGraphOrder(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, okA := g.index[keys[i]]
		b, okB := g.index[keys[j]]
		switch {
		case !okA:
			return false
		case !okB:
			return true
		}
		return a < b
	})
}

// InGraphOrder returns a copy of keys sorted by node order.
func (g *Graph) InGraphOrder(keys []string) []string {
	out := append([]string(nil), keys...)
	g.sortByGraphOrder(out)
	return out
}
