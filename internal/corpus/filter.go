package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/agenthands/papersift/internal/core/analytics"
	"github.com/agenthands/papersift/internal/core/dedupe"
	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
)

// ClusterIDs maps DOIs to cluster ids as written in clusters.json. Ids are
// kept as strings because sub-clustering produces ids such as "3.1".
type ClusterIDs map[string]string

// UnmarshalJSON accepts both numeric and string ids.
func (c *ClusterIDs) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ClusterIDs, len(raw))
	for doi, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[doi] = s
			continue
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return fmt.Errorf("cluster id of %s: %w", doi, err)
		}
		out[doi] = n.String()
	}
	*c = out
	return nil
}

// MarshalJSON writes integer ids as numbers so files produced by cluster
// keep their shape after a sub-cluster rewrite.
func (c ClusterIDs) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c))
	for doi, s := range c {
		if n, err := strconv.Atoi(s); err == nil && strconv.Itoa(n) == s {
			out[doi] = n
			continue
		}
		out[doi] = s
	}
	return json.Marshal(out)
}

// FromAssignment converts integer cluster ids.
func FromAssignment(a model.Assignment) ClusterIDs {
	out := make(ClusterIDs, len(a))
	for doi, cid := range a {
		out[doi] = strconv.Itoa(cid)
	}
	return out
}

// Assignment converts back to integer ids. Hierarchical ids are rejected.
func (c ClusterIDs) Assignment() (model.Assignment, error) {
	out := make(model.Assignment, len(c))
	for doi, s := range c {
		cid, err := strconv.Atoi(s)
		if err != nil {
			return nil, model.BadInput("cluster id %q of %s is not an integer", s, doi)
		}
		out[doi] = cid
	}
	return out, nil
}

// LoadClusters reads a clusters.json file.
func LoadClusters(path string) (ClusterIDs, error) {
	var c ClusterIDs
	if err := ReadJSON(path, &c); err != nil {
		return nil, err
	}
	return c, nil
}

type FilterOptions struct {
	// Entities keeps papers carrying all of them, or any with MatchAny.
	Entities  []string
	MatchAny  bool
	UseTopics bool

	// ClusterIDs keeps papers whose id in Clusters is listed.
	ClusterIDs []string
	Clusters   ClusterIDs

	// DOIs keeps only listed papers.
	DOIs []string

	// Exclude inverts the final selection.
	Exclude bool
}

// Filter narrows papers by the intersection of the given criteria, keeping
// input order. Criteria left empty do not filter.
func Filter(papers []model.Paper, opts FilterOptions) []model.Paper {
	selected := make(map[string]bool, len(papers))
	for _, p := range papers {
		selected[p.DOI] = true
	}

	if len(opts.Entities) > 0 {
		g, _ := graph.Build(papers, graph.BuildOptions{UseTopics: opts.UseTopics})
		matched := make(map[string]bool)
		for _, doi := range analytics.FindPapersByEntities(g, opts.Entities, opts.MatchAny) {
			matched[doi] = true
		}
		intersect(selected, matched)
	}

	if len(opts.ClusterIDs) > 0 {
		want := make(map[string]bool, len(opts.ClusterIDs))
		for _, id := range opts.ClusterIDs {
			want[strings.TrimSpace(id)] = true
		}
		matched := make(map[string]bool)
		for doi, cid := range opts.Clusters {
			if want[cid] {
				matched[doi] = true
			}
		}
		intersect(selected, matched)
	}

	if len(opts.DOIs) > 0 {
		matched := make(map[string]bool, len(opts.DOIs))
		for _, doi := range opts.DOIs {
			matched[NormalizeDOI(doi)] = true
		}
		intersect(selected, matched)
	}

	var out []model.Paper
	emitted := make(map[string]bool)
	for _, p := range papers {
		if selected[p.DOI] == opts.Exclude || emitted[p.DOI] {
			continue
		}
		emitted[p.DOI] = true
		out = append(out, p)
	}
	return out
}

func intersect(selected, matched map[string]bool) {
	for doi, ok := range selected {
		if ok && !matched[doi] {
			selected[doi] = false
		}
	}
}

// ReadDOIList parses a JSON array of DOIs or one DOI per line.
func ReadDOIList(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read DOI list: %w", err)
	}
	data = bytes.TrimSpace(data)

	var list []string
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &list); err == nil {
			return list, nil
		}
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			list = append(list, line)
		}
	}
	return list, nil
}

// Merge concatenates corpora keeping the first record of every DOI.
func Merge(sets ...[]model.Paper) model.DeduplicationResult {
	var all []model.Paper
	for _, s := range sets {
		all = append(all, s...)
	}
	return dedupe.Deduplicate(all)
}
