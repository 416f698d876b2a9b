package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agenthands/papersift/internal/core/community"
	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
	"github.com/agenthands/papersift/internal/corpus"
)

type browseOptions struct {
	run           runFlags
	list          bool
	clusters      string
	export        string
	full          bool
	format        string
	subCluster    string
	subResolution float64
}

// browseCluster is the JSON form of one cluster in detail view.
type browseCluster struct {
	ClusterID    string           `json:"cluster_id"`
	Size         int              `json:"size"`
	TopEntities  []string         `json:"top_entities"`
	SamplePapers []model.PaperRef `json:"sample_papers,omitempty"`
	DOIs         []string         `json:"dois,omitempty"`
}

const (
	browseSamples = 3
	browseDOIs    = 10
)

func newBrowseCommand(a *app) *cobra.Command {
	o := &browseOptions{}
	cmd := &cobra.Command{
		Use:   "browse <papers.json>",
		Short: "Browse clusters in the terminal",
		Long: `List clusters, show the contents of selected clusters, export their papers,
or split one cluster into sub-clusters.

Examples:
  papersift browse papers.json
  papersift browse papers.json --cluster 0,3 --full
  papersift browse papers.json --cluster 2 --export cluster2.json
  papersift browse papers.json --sub-cluster 1 --sub-resolution 1.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBrowse(cmd, args[0], o)
		},
	}
	o.run.register(cmd)
	cmd.Flags().BoolVar(&o.list, "list", false, "list all clusters (default when nothing else is asked)")
	cmd.Flags().StringVar(&o.clusters, "cluster", "", "comma separated cluster ids to show")
	cmd.Flags().StringVar(&o.export, "export", "", "write the papers of --cluster to this file")
	cmd.Flags().BoolVar(&o.full, "full", false, "show every DOI of a cluster")
	cmd.Flags().StringVar(&o.format, "format", formatTable, "output format: table or json")
	cmd.Flags().StringVar(&o.subCluster, "sub-cluster", "", "split this cluster into sub-clusters")
	cmd.Flags().Float64Var(&o.subResolution, "sub-resolution", 1.0, "resolution used for --sub-cluster")
	return cmd
}

func (a *app) runBrowse(cmd *cobra.Command, input string, o *browseOptions) error {
	if err := checkFormat(o.format); err != nil {
		return err
	}
	if o.export != "" && o.clusters == "" {
		return model.BadInput("--export needs --cluster")
	}
	papers, err := a.loadPapers(cmd, input)
	if err != nil {
		return err
	}
	opts, err := a.options(cmd, &o.run)
	if err != nil {
		return err
	}
	p, err := a.pipeline(&o.run, nil)
	if err != nil {
		return err
	}
	res, err := p.Run(papers, opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if o.list || (o.clusters == "" && o.subCluster == "") {
		if o.format == formatJSON {
			list := make([]browseCluster, 0, len(res.Communities))
			for _, c := range res.Communities {
				list = append(list, browseCluster{ClusterID: strconv.Itoa(c.ClusterID), Size: c.Size, TopEntities: c.TopEntities})
			}
			if err := corpus.EncodeJSON(out, list); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "%d clusters found (%d papers total)\n\n", len(res.Communities), res.Graph.Len())
			for _, c := range res.Communities {
				fmt.Fprintf(out, "Cluster %d (%d papers): %s\n", c.ClusterID, c.Size, topFive(c.TopEntities))
			}
		}
	}

	if o.clusters != "" {
		byID := make(map[string]model.CommunitySummary, len(res.Communities))
		for _, c := range res.Communities {
			byID[strconv.Itoa(c.ClusterID)] = c
		}
		ids := splitIDs(o.clusters)
		if err := a.browseDetail(cmd, res.Graph, byID, ids, o); err != nil {
			return err
		}
		if o.export != "" {
			keep := make(map[string]bool)
			for _, id := range ids {
				for _, doi := range byID[id].DOIs {
					keep[doi] = true
				}
			}
			var selected []model.Paper
			for _, paper := range papers {
				if keep[paper.DOI] {
					selected = append(selected, paper)
					delete(keep, paper.DOI)
				}
			}
			if err := corpus.WritePapersFile(o.export, selected); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Selected %d clusters (%d papers total)\nExported to: %s\n", len(ids), len(selected), o.export)
		}
	}

	if o.subCluster != "" {
		subOpts := opts
		subOpts.Resolution = o.subResolution
		sub, err := p.SubClusterID(papers, corpus.FromAssignment(res.Clusters), o.subCluster, subOpts)
		if err != nil {
			return err
		}
		return printSubClusters(cmd, res.Graph, o.subCluster, sub, o.format)
	}
	return nil
}

func (a *app) browseDetail(cmd *cobra.Command, g *graph.Graph, byID map[string]model.CommunitySummary, ids []string, o *browseOptions) error {
	out := cmd.OutOrStdout()
	var detail []browseCluster
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "Cluster %s: not found\n", id)
			continue
		}
		dois := c.DOIs
		if !o.full {
			dois = dois[:min(browseDOIs, len(dois))]
		}
		samples := refs(g, c.DOIs[:min(browseSamples, len(c.DOIs))])

		if o.format == formatJSON {
			detail = append(detail, browseCluster{ClusterID: id, Size: c.Size, TopEntities: c.TopEntities, SamplePapers: samples, DOIs: dois})
			continue
		}
		fmt.Fprintf(out, "\nCluster %s: %d papers\n", id, c.Size)
		fmt.Fprintf(out, "Top Entities: %s\n", strings.Join(c.TopEntities, ", "))
		fmt.Fprintln(out, "\nSample Papers:")
		for i, s := range samples {
			fmt.Fprintf(out, "  %d. %q\n", i+1, truncate(s.Title, 70))
		}
		suffix := ""
		if !o.full && len(c.DOIs) > browseDOIs {
			suffix = fmt.Sprintf(" (use --full for all %d)", len(c.DOIs))
		}
		fmt.Fprintf(out, "\nDOIs:%s\n", suffix)
		for _, doi := range dois {
			fmt.Fprintf(out, "  - %s\n", doi)
		}
		if !o.full && len(c.DOIs) > browseDOIs {
			fmt.Fprintf(out, "  ... (%d more)\n", len(c.DOIs)-browseDOIs)
		}
	}
	if o.format == formatJSON {
		if detail == nil {
			detail = []browseCluster{}
		}
		return corpus.EncodeJSON(out, detail)
	}
	return nil
}

// printSubClusters summarises sub-clusters largest first.
func printSubClusters(cmd *cobra.Command, g *graph.Graph, parent string, sub map[string]string, format string) error {
	members := make(map[string][]string)
	for _, key := range g.InGraphOrder(mapKeys(sub)) {
		members[sub[key]] = append(members[sub[key]], key)
	}
	ids := mapKeys(members)
	slices.SortFunc(ids, func(x, y string) int {
		if c := cmp.Compare(len(members[y]), len(members[x])); c != 0 {
			return c
		}
		return cmp.Compare(x, y)
	})

	list := make([]browseCluster, 0, len(ids))
	for _, id := range ids {
		sg := g.Subgraph(members[id])
		summary := community.Summarize(sg, zeroAssignment(members[id]))
		top := []string{}
		if len(summary) > 0 {
			top = summary[0].TopEntities
		}
		list = append(list, browseCluster{ClusterID: id, Size: len(members[id]), TopEntities: top})
	}

	out := cmd.OutOrStdout()
	if format == formatJSON {
		return corpus.EncodeJSON(out, list)
	}
	fmt.Fprintf(out, "\nSub-clusters of cluster %s (%d papers):\n\n", parent, len(sub))
	for _, c := range list {
		fmt.Fprintf(out, "  Sub-cluster %s (%d papers): %s\n", c.ClusterID, c.Size, topFive(c.TopEntities))
	}
	return nil
}

func zeroAssignment(keys []string) model.Assignment {
	a := make(model.Assignment, len(keys))
	for _, k := range keys {
		a[k] = 0
	}
	return a
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func topFive(entities []string) string {
	return strings.Join(entities[:min(5, len(entities))], ", ")
}
