package cli

import (
	"fmt"
	"maps"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/corpus"
)

type subclusterOptions struct {
	run          runFlags
	cluster      string
	clustersFrom string
	output       string
	format       string
}

func newSubclusterCommand(a *app) *cobra.Command {
	o := &subclusterOptions{}
	cmd := &cobra.Command{
		Use:   "subcluster <papers.json>",
		Short: "Split one cluster into sub-clusters with ids like 3.0, 3.1",
		Long: `Re-cluster the members of one cluster on their own. Members get hierarchical
ids "<cluster>.<sub>"; when the cluster does not split they keep their id.
With -o, writes subclusters.json and an updated clusters.json.

Examples:
  papersift subcluster papers.json --cluster 3 --clusters-from out/clusters.json
  papersift subcluster papers.json --cluster 3.1 --clusters-from out/clusters.json -o out/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSubcluster(cmd, args[0], o)
		},
	}
	o.run.register(cmd)
	cmd.Flags().StringVar(&o.cluster, "cluster", "", "cluster id to split")
	cmd.Flags().StringVar(&o.clustersFrom, "clusters-from", "", "clusters.json produced by the cluster command")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "directory for subclusters.json and the updated clusters.json")
	cmd.Flags().StringVar(&o.format, "format", formatTable, "output format: table or json")
	_ = cmd.MarkFlagRequired("cluster")
	_ = cmd.MarkFlagRequired("clusters-from")
	return cmd
}

func (a *app) runSubcluster(cmd *cobra.Command, input string, o *subclusterOptions) error {
	if err := checkFormat(o.format); err != nil {
		return err
	}
	papers, err := a.loadPapers(cmd, input)
	if err != nil {
		return err
	}
	clusters, err := corpus.LoadClusters(o.clustersFrom)
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

	sub, err := p.SubClusterID(papers, clusters, o.cluster, opts)
	if err != nil {
		return err
	}

	if o.output != "" {
		updated := maps.Clone(clusters)
		maps.Copy(updated, sub)
		for _, f := range []struct {
			name string
			v    any
		}{{corpus.SubclustersFile, sub}, {corpus.ClustersFile, updated}} {
			path := filepath.Join(o.output, f.name)
			if err := corpus.WriteJSON(path, f.v); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved: %s\n", path)
		}
	}

	if o.format == formatJSON {
		return corpus.EncodeJSON(cmd.OutOrStdout(), sub)
	}
	g, _ := graph.Build(papers, graph.BuildOptions{UseTopics: opts.UseTopics})
	return printSubClusters(cmd, g, o.cluster, sub, o.format)
}
