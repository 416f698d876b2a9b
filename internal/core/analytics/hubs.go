package analytics

import (
	"sort"

	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
)

// MaxHubEntities caps the entities listed per hub paper.
const MaxHubEntities = 10

// HubScore is the weighted degree of key.
func HubScore(g *graph.Graph, key string) (int, error) {
	if !g.Has(key) {
		return 0, model.NotFound(key)
	}
	return g.Strength(key), nil
}

// FindHubPapers returns the k papers with the highest hub score. Equal scores
// keep graph order. k <= 0 yields nothing.
func FindHubPapers(g *graph.Graph, k int) []model.HubPaper {
	if k <= 0 || g.Len() == 0 {
		return []model.HubPaper{}
	}
	keys := g.Keys()
	scores := make(map[string]int, len(keys))
	for _, key := range keys {
		scores[key] = g.Strength(key)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return scores[keys[i]] > scores[keys[j]]
	})
	if len(keys) > k {
		keys = keys[:k]
	}

	hubs := make([]model.HubPaper, 0, len(keys))
	for _, key := range keys {
		ents := g.Entities(key).Labels()
		if len(ents) > MaxHubEntities {
			ents = ents[:MaxHubEntities]
		}
		if ents == nil {
			ents = []string{}
		}
		hubs = append(hubs, model.HubPaper{
			DOI:      key,
			Title:    g.Title(key),
			HubScore: scores[key],
			Entities: ents,
		})
	}
	return hubs
}
