package model

import "sort"

// Assignment maps a paper DOI to its cluster id.
type Assignment map[string]int

// NumClusters returns the number of distinct cluster ids.
func (a Assignment) NumClusters() int {
	seen := make(map[int]struct{}, len(a))
	for _, cid := range a {
		seen[cid] = struct{}{}
	}
	return len(seen)
}

// ClusterIDs returns the distinct ids in ascending order.
func (a Assignment) ClusterIDs() []int {
	seen := make(map[int]struct{}, len(a))
	ids := make([]int, 0)
	for _, cid := range a {
		if _, ok := seen[cid]; ok {
			continue
		}
		seen[cid] = struct{}{}
		ids = append(ids, cid)
	}
	sort.Ints(ids)
	return ids
}

type CommunitySummary struct {
	ClusterID   int      `json:"cluster_id"`
	Size        int      `json:"size"`
	DOIs        []string `json:"dois"`
	TopEntities []string `json:"top_entities"`
}

// CommunityLabel is the optional human-readable name of a cluster.
type CommunityLabel struct {
	ClusterID int    `json:"cluster_id"`
	Name      string `json:"name"`
	Summary   string `json:"summary"`
}

// LabelSummary and LabelName are the JSON replies asked of the labelling model.
type LabelSummary struct {
	Summary string `json:"summary"`
}

type LabelName struct {
	Name string `json:"name"`
}
