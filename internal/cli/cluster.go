package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agenthands/papersift/internal/core"
	"github.com/agenthands/papersift/internal/corpus"
)

type clusterOptions struct {
	run      runFlags
	output   string
	validate bool
	label    bool
	labelTop int
}

func newClusterCommand(a *app) *cobra.Command {
	o := &clusterOptions{}
	cmd := &cobra.Command{
		Use:   "cluster <papers.json>",
		Short: "Cluster papers and write clusters.json and communities.json",
		Long: `Cluster papers by shared title entities.

Writes clusters.json (doi -> cluster id) and communities.json to the output
directory. With --validate, also writes validation_report.json and
confidence.json when the corpus has enough citation links.

Examples:
  papersift cluster papers.json -o out/
  papersift cluster papers.json -o out/ --resolution 1.5 --validate
  cat papers.json | papersift cluster - -o out/ --use-topics`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCluster(cmd, args[0], o)
		},
	}
	o.run.register(cmd)
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output directory")
	cmd.Flags().BoolVar(&o.validate, "validate", false, "cross-check clusters against citation structure")
	cmd.Flags().BoolVar(&o.label, "label", false, "name communities with the configured LLM and write labels.json")
	cmd.Flags().IntVar(&o.labelTop, "label-top", 10, "label only the largest N communities (0 = all)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) runCluster(cmd *cobra.Command, input string, o *clusterOptions) error {
	papers, err := a.loadPapers(cmd, input)
	if err != nil {
		return err
	}
	opts, err := a.options(cmd, &o.run)
	if err != nil {
		return err
	}
	opts.Validate = o.validate

	p, err := a.pipeline(&o.run, nil)
	if err != nil {
		return err
	}
	res, err := p.Run(papers, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Graph: %d papers, %d edges\n", res.Graph.Len(), res.Graph.EdgeCount())
	fmt.Fprintf(out, "Found %d clusters (modularity %.3f)\n", res.Clusters.NumClusters(), res.Modularity)

	write := func(name string, v any) error {
		path := filepath.Join(o.output, name)
		if err := corpus.WriteJSON(path, v); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved: %s\n", path)
		return nil
	}
	if err := write(corpus.ClustersFile, res.Clusters); err != nil {
		return err
	}
	if err := write(corpus.CommunitiesFile, res.Communities); err != nil {
		return err
	}

	switch {
	case res.ValidationSkipped:
		fmt.Fprintln(out, "Warning: insufficient citation data for validation")
	case res.Report != nil:
		r := res.Report
		fmt.Fprintf(out, "ARI: %.3f\nNMI: %.3f\n", r.ARI, r.NMI)
		fmt.Fprintf(out, "Confidence: high=%d medium=%d low=%d\n",
			r.ConfidenceSummary.High, r.ConfidenceSummary.Medium, r.ConfidenceSummary.Low)
		fmt.Fprintln(out, r.Interpretation)
		if err := write(corpus.ReportFile, r); err != nil {
			return err
		}
		if err := write(corpus.ConfidenceFile, r.Confidence); err != nil {
			return err
		}
	}

	if o.label {
		labels, err := a.labelCommunities(cmd, res, o.labelTop)
		if err != nil {
			return err
		}
		if err := write(corpus.LabelsFile, labels); err != nil {
			return err
		}
	}
	return nil
}

// largest returns the first n communities, which are already ordered by size.
func largest(res *core.Result, n int) *core.Result {
	if n <= 0 || n >= len(res.Communities) {
		return res
	}
	cp := *res
	cp.Communities = res.Communities[:n]
	return &cp
}
