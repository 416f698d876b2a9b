package community

import (
	"sort"

	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
)

// MaxTopEntities caps CommunitySummary.TopEntities.
const MaxTopEntities = 10

// Summarize describes each community of a: members in graph order and the
// entities most members share. Summaries are sorted by size descending, then
// by cluster id.
func Summarize(g *graph.Graph, a model.Assignment) []model.CommunitySummary {
	members := make(map[int][]string)
	for _, key := range g.Keys() {
		if cid, ok := a[key]; ok {
			members[cid] = append(members[cid], key)
		}
	}

	summaries := make([]model.CommunitySummary, 0, len(members))
	for cid, dois := range members {
		summaries = append(summaries, model.CommunitySummary{
			ClusterID:   cid,
			Size:        len(dois),
			DOIs:        dois,
			TopEntities: topEntities(g, dois, MaxTopEntities),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Size != summaries[j].Size {
			return summaries[i].Size > summaries[j].Size
		}
		return summaries[i].ClusterID < summaries[j].ClusterID
	})
	return summaries
}

// topEntities ranks entities by how many of keys carry them. Ties keep first
// occurrence order.
func topEntities(g *graph.Graph, keys []string, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, key := range keys {
		for _, label := range g.Entities(key).Labels() {
			if _, ok := counts[label]; !ok {
				order = append(order, label)
			}
			counts[label]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	if order == nil {
		return []string{}
	}
	return order
}
