package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agenthands/papersift/internal/core/analytics"
	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
	"github.com/agenthands/papersift/internal/corpus"
)

type findOptions struct {
	entities  []string
	matchAny  bool
	hubs      int
	format    string
	useTopics bool
}

func newFindCommand(a *app) *cobra.Command {
	o := &findOptions{}
	cmd := &cobra.Command{
		Use:   "find <papers.json>",
		Short: "Find papers by entity, or the top hub papers",
		Long: `Find papers whose entity set contains the given entities, or list the papers
with the highest hub score (summed shared-entity weight).

Examples:
  papersift find papers.json --entity CRISPR
  papersift find papers.json --entity mouse --entity organoid
  papersift find papers.json --hubs 10 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFind(cmd, args[0], o)
		},
	}
	cmd.Flags().StringArrayVar(&o.entities, "entity", nil, "entity to look for (repeatable; all must match)")
	cmd.Flags().BoolVar(&o.matchAny, "any", false, "match papers carrying any of the entities")
	cmd.Flags().IntVar(&o.hubs, "hubs", 0, "list the top N hub papers")
	cmd.Flags().StringVar(&o.format, "format", formatTable, "output format: table or json")
	cmd.Flags().BoolVar(&o.useTopics, "use-topics", false, "add topic and subfield names to each paper's entities")
	cmd.MarkFlagsMutuallyExclusive("entity", "hubs")
	cmd.MarkFlagsOneRequired("entity", "hubs")
	return cmd
}

func (a *app) runFind(cmd *cobra.Command, input string, o *findOptions) error {
	if err := checkFormat(o.format); err != nil {
		return err
	}
	if o.hubs < 0 {
		return model.BadInput("--hubs must not be negative")
	}
	papers, err := a.loadPapers(cmd, input)
	if err != nil {
		return err
	}
	g, _ := graph.Build(papers, graph.BuildOptions{UseTopics: o.useTopics || a.cfg.Clustering.UseTopics})
	out := cmd.OutOrStdout()

	if o.hubs > 0 {
		hubs := analytics.FindHubPapers(g, o.hubs)
		if o.format == formatJSON {
			return corpus.EncodeJSON(out, hubs)
		}
		fmt.Fprintf(out, "Top %d entity hub papers:\n", o.hubs)
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for i, h := range hubs {
			fmt.Fprintf(out, "%2d. [%4d] %s\n", i+1, h.HubScore, truncate(h.Title, 50))
			fmt.Fprintf(out, "    Entities: %s\n", strings.Join(h.Entities[:min(5, len(h.Entities))], ", "))
		}
		return nil
	}

	found := refs(g, analytics.FindPapersByEntities(g, o.entities, o.matchAny))
	if o.format == formatJSON {
		return corpus.EncodeJSON(out, found)
	}
	fmt.Fprintf(out, "Papers containing '%s': %d\n", strings.Join(o.entities, "', '"), len(found))
	printRefList(out, found, 20)
	return nil
}
