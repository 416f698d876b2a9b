package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/papersift/internal/core/model"
	"github.com/agenthands/papersift/internal/driver"
)

type exportOptions struct {
	run       runFlags
	label     bool
	labelTop  int
	deleteRun string
	showRun   string
}

// openDriver is swapped in tests.
var openDriver = func(cmd *cobra.Command, a *app) (driver.GraphDriver, error) {
	return driver.NewMemgraphDriver(cmd.Context(), a.cfg.Memgraph, a.logger)
}

func newExportCommand(a *app) *cobra.Command {
	o := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export [papers.json]",
		Short: "Write papers, communities and links into Memgraph or Neo4j",
		Long: `Cluster papers and write them as a property graph:
(:Paper), (:Community), [:SHARES_ENTITIES {weight}], [:HAS_MEMBER] and [:CITES].
Every node carries the run_id printed at the end, so a run can be removed
again with --delete.

Connection settings come from the [memgraph] config section or
MEMGRAPH_URI, MEMGRAPH_USER and MEMGRAPH_PASSWORD.

Examples:
  papersift export papers.json --resolution 1.2
  papersift export papers.json --label
  papersift export --show 6f1c2a9e-6d0b-4d9e-9a51-0d1f2b3c4d5e
  papersift export --delete 6f1c2a9e-6d0b-4d9e-9a51-0d1f2b3c4d5e`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(cmd, args, o)
		},
	}
	o.run.register(cmd)
	cmd.Flags().BoolVar(&o.label, "label", false, "name communities with the configured LLM before export")
	cmd.Flags().IntVar(&o.labelTop, "label-top", 10, "label only the largest N communities (0 = all)")
	cmd.Flags().StringVar(&o.deleteRun, "delete", "", "delete the nodes of this run id instead of exporting")
	cmd.Flags().StringVar(&o.showRun, "show", "", "list the stored communities of this run id instead of exporting")
	cmd.MarkFlagsMutuallyExclusive("delete", "show")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, args []string, o *exportOptions) error {
	if o.deleteRun == "" && o.showRun == "" && len(args) == 0 {
		return model.BadInput("export needs a papers file, --show or --delete")
	}

	d, err := openDriver(cmd, a)
	if err != nil {
		return err
	}
	defer d.Close(cmd.Context())
	e := driver.NewExporter(d, a.logger)

	if o.deleteRun != "" {
		if err := e.DeleteRun(cmd.Context(), o.deleteRun); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", o.deleteRun)
		return nil
	}
	if o.showRun != "" {
		stored, err := e.RunCommunities(cmd.Context(), o.showRun)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Run %s: %d communities\n", o.showRun, len(stored))
		for _, c := range stored {
			fmt.Fprintf(w, "  Cluster %d (%d papers) %s\n", c.ClusterID, c.Size, c.Name)
		}
		return nil
	}

	papers, err := a.loadPapers(cmd, args[0])
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

	var labels []model.CommunityLabel
	if o.label {
		if labels, err = a.labelCommunities(cmd, res, o.labelTop); err != nil {
			return err
		}
	}

	if err := d.BuildIndices(cmd.Context()); err != nil {
		a.logger.Warn("failed to build indices", zap.Error(err))
	}
	out, err := e.Export(cmd.Context(), driver.Snapshot{
		Graph:       res.Graph,
		Clusters:    res.Clusters,
		Communities: res.Communities,
		Labels:      labels,
		Papers:      papers,
		Modularity:  res.Modularity,
		Resolution:  opts.Resolution,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Exported %d papers, %d communities, %d entity edges, %d citation links\n",
		out.Papers, out.Communities, out.EntityEdges, out.CitationLinks)
	fmt.Fprintf(w, "Run: %s\n", out.RunID)
	return nil
}
