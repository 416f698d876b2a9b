package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/papersift/internal/core"
	"github.com/agenthands/papersift/internal/core/model"
	"github.com/agenthands/papersift/internal/core/summary"
	"github.com/agenthands/papersift/internal/corpus"
	"github.com/agenthands/papersift/internal/llm"
)

type labelOptions struct {
	run    runFlags
	output string
	top    int
}

func newLabelCommand(a *app) *cobra.Command {
	o := &labelOptions{}
	cmd := &cobra.Command{
		Use:   "label <papers.json>",
		Short: "Name and describe communities with an LLM",
		Long: `Cluster papers, then ask the configured LLM ([llm] config section) for a
short name and a summary of each community, built from its top entities and
member titles. Entity extraction itself never uses the LLM.

Examples:
  papersift label papers.json --top 5
  LLM_PROVIDER=ollama LLM_MODEL=llama3 papersift label papers.json -o out/labels.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLabel(cmd, args[0], o)
		},
	}
	o.run.register(cmd)
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write labels to this file instead of stdout")
	cmd.Flags().IntVar(&o.top, "top", 10, "label only the largest N communities (0 = all)")
	return cmd
}

func (a *app) runLabel(cmd *cobra.Command, input string, o *labelOptions) error {
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

	labels, err := a.labelCommunities(cmd, res, o.top)
	if err != nil {
		return err
	}
	if o.output != "" {
		if err := corpus.WriteJSON(o.output, labels); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved: %s\n", o.output)
		return nil
	}
	return corpus.EncodeJSON(cmd.OutOrStdout(), labels)
}

// newLLM is swapped in tests.
var newLLM = func(cmd *cobra.Command, a *app) (llm.LLMClient, error) {
	return llm.NewClient(cmd.Context(), a.cfg.LLM, a.logger)
}

func (a *app) labelCommunities(cmd *cobra.Command, res *core.Result, top int) ([]model.CommunityLabel, error) {
	client, err := newLLM(cmd, a)
	if err != nil {
		return nil, err
	}
	l := summary.NewLabeler(client, a.cfg.Labeling, a.logger)
	sel := largest(res, top)
	return l.Label(cmd.Context(), sel.Graph, sel.Communities)
}
