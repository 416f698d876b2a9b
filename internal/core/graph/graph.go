package graph

import (
	"sort"

	"github.com/agenthands/papersift/internal/core/extraction"
)

// Graph is an immutable undirected paper graph. Nodes keep first-seen input
// order and every stored edge has a positive integer weight.
type Graph struct {
	keys     []string
	index    map[string]int
	titles   []string
	entities []extraction.EntitySet
	adj      []map[int]int
	edges    int
}

// Edge is one undirected edge. From precedes To in node order.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight int    `json:"weight"`
}

func newGraph(n int) *Graph {
	return &Graph{
		keys:     make([]string, 0, n),
		index:    make(map[string]int, n),
		titles:   make([]string, 0, n),
		entities: make([]extraction.EntitySet, 0, n),
		adj:      make([]map[int]int, 0, n),
	}
}

func (g *Graph) addNode(key, title string, ents extraction.EntitySet) int {
	id := len(g.keys)
	g.keys = append(g.keys, key)
	g.index[key] = id
	g.titles = append(g.titles, title)
	g.entities = append(g.entities, ents)
	g.adj = append(g.adj, make(map[int]int))
	return id
}

// addWeight adds w to the edge between a and b, creating it when needed.
func (g *Graph) addWeight(a, b, w int) {
	if a == b || w <= 0 {
		return
	}
	if _, ok := g.adj[a][b]; !ok {
		g.edges++
	}
	g.adj[a][b] += w
	g.adj[b][a] += w
}

// Assemble builds a graph over keys with the given edges. Edges naming an
// unknown key or a node with itself are ignored; repeated edges keep the
// largest weight.
func Assemble(keys []string, edges []Edge) *Graph {
	g := newGraph(len(keys))
	for _, k := range keys {
		if _, dup := g.index[k]; dup {
			continue
		}
		g.addNode(k, "", extraction.EntitySet{})
	}
	for _, e := range edges {
		a, okA := g.index[e.From]
		b, okB := g.index[e.To]
		if !okA || !okB || a == b || e.Weight <= 0 {
			continue
		}
		if cur, ok := g.adj[a][b]; ok {
			if e.Weight > cur {
				g.adj[a][b] = e.Weight
				g.adj[b][a] = e.Weight
			}
			continue
		}
		g.addWeight(a, b, e.Weight)
	}
	return g
}

func (g *Graph) Len() int { return len(g.keys) }

// Keys returns node keys in graph order.
func (g *Graph) Keys() []string {
	return append([]string(nil), g.keys...)
}

func (g *Graph) Has(key string) bool {
	_, ok := g.index[key]
	return ok
}

// Title returns the title recorded for key, empty for assembled graphs.
func (g *Graph) Title(key string) string {
	if id, ok := g.index[key]; ok {
		return g.titles[id]
	}
	return ""
}

// Entities returns the entity set of key, empty when key is unknown.
func (g *Graph) Entities(key string) extraction.EntitySet {
	if id, ok := g.index[key]; ok {
		return g.entities[id]
	}
	return extraction.EntitySet{}
}

// Weight returns the weight between a and b, zero when they are not adjacent.
func (g *Graph) Weight(a, b string) int {
	ia, okA := g.index[a]
	ib, okB := g.index[b]
	if !okA || !okB {
		return 0
	}
	return g.adj[ia][ib]
}

// Neighbors returns the keys adjacent to key sorted lexicographically.
func (g *Graph) Neighbors(key string) []string {
	id, ok := g.index[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.adj[id]))
	for nb := range g.adj[id] {
		out = append(out, g.keys[nb])
	}
	sort.Strings(out)
	return out
}

// Strength is the sum of weights incident to key.
func (g *Graph) Strength(key string) int {
	id, ok := g.index[key]
	if !ok {
		return 0
	}
	s := 0
	for _, w := range g.adj[id] {
		s += w
	}
	return s
}

func (g *Graph) EdgeCount() int { return g.edges }

// TotalWeight is the sum of all edge weights.
func (g *Graph) TotalWeight() int {
	total := 0
	for id := range g.adj {
		for nb, w := range g.adj[id] {
			if nb > id {
				total += w
			}
		}
	}
	return total
}

// Edges lists every edge once, ordered by the node order of From then To.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for id := range g.adj {
		nbs := g.sortedNeighborIDs(id)
		for _, nb := range nbs {
			if nb <= id {
				continue
			}
			out = append(out, Edge{From: g.keys[id], To: g.keys[nb], Weight: g.adj[id][nb]})
		}
	}
	return out
}

// Subgraph returns the graph induced by keys, in the order keys are given.
// Unknown keys are skipped.
func (g *Graph) Subgraph(keys []string) *Graph {
	sub := newGraph(len(keys))
	for _, k := range keys {
		id, ok := g.index[k]
		if !ok || sub.Has(k) {
			continue
		}
		sub.addNode(k, g.titles[id], g.entities[id])
	}
	for sid, k := range sub.keys {
		id := g.index[k]
		for nb, w := range g.adj[id] {
			if snb, ok := sub.index[g.keys[nb]]; ok && snb > sid {
				sub.addWeight(sid, snb, w)
			}
		}
	}
	return sub
}

func (g *Graph) sortedNeighborIDs(id int) []int {
	out := make([]int, 0, len(g.adj[id]))
	for nb := range g.adj[id] {
		out = append(out, nb)
	}
	sort.Ints(out)
	return out
}
