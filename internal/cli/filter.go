package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agenthands/papersift/internal/corpus"
)

type filterOptions struct {
	run          runFlags
	entities     []string
	entityAny    bool
	clusters     string
	clustersFrom string
	dois         string
	exclude      bool
	format       string
	output       string
}

func newFilterCommand(a *app) *cobra.Command {
	o := &filterOptions{}
	cmd := &cobra.Command{
		Use:   "filter <papers.json>",
		Short: "Select papers by entity, cluster or DOI list",
		Long: `Keep the papers matching every given criterion, in input order. Records are
written back with all their original fields.

Examples:
  papersift filter papers.json --entity CRISPR --entity mouse
  papersift filter papers.json --cluster 0,2 --clusters-from out/clusters.json -o subset.json
  papersift filter papers.json --dois reviewed.txt --exclude`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFilter(cmd, args[0], o)
		},
	}
	o.run.register(cmd)
	cmd.Flags().StringArrayVar(&o.entities, "entity", nil, "entity to filter by (repeatable)")
	cmd.Flags().BoolVar(&o.entityAny, "entity-any", false, "keep papers with any of the entities instead of all")
	cmd.Flags().StringVar(&o.clusters, "cluster", "", "comma separated cluster ids to keep")
	cmd.Flags().StringVar(&o.clustersFrom, "clusters-from", "", "clusters.json to read cluster ids from (default: cluster now)")
	cmd.Flags().StringVar(&o.dois, "dois", "", "file with DOIs to keep (JSON array or one per line)")
	cmd.Flags().BoolVar(&o.exclude, "exclude", false, "invert the selection")
	cmd.Flags().StringVar(&o.format, "format", formatJSON, "output format: json or table")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (a *app) runFilter(cmd *cobra.Command, input string, o *filterOptions) error {
	if err := checkFormat(o.format); err != nil {
		return err
	}
	papers, err := a.loadPapers(cmd, input)
	if err != nil {
		return err
	}
	opts, err := a.options(cmd, &o.run)
	if err != nil {
		return err
	}

	fo := corpus.FilterOptions{
		Entities:  o.entities,
		MatchAny:  o.entityAny,
		UseTopics: opts.UseTopics,
		Exclude:   o.exclude,
	}

	if o.clusters != "" {
		fo.ClusterIDs = splitIDs(o.clusters)
		if o.clustersFrom != "" {
			if fo.Clusters, err = corpus.LoadClusters(o.clustersFrom); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Clustering on-the-fly with resolution=%g\n", opts.Resolution)
			p, err := a.pipeline(&o.run, nil)
			if err != nil {
				return err
			}
			res, err := p.Run(papers, opts)
			if err != nil {
				return err
			}
			fo.Clusters = corpus.FromAssignment(res.Clusters)
		}
	}

	if o.dois != "" {
		f, err := os.Open(o.dois)
		if err != nil {
			return fmt.Errorf("failed to open DOI list '%s': %w", o.dois, err)
		}
		fo.DOIs, err = corpus.ReadDOIList(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	filtered := corpus.Filter(papers, fo)

	var buf bytes.Buffer
	if o.format == formatJSON {
		if err := corpus.WritePapers(&buf, filtered); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(&buf, "Filtered: %d papers (from %d total)\n", len(filtered), len(papers))
		for i, p := range filtered {
			if i == 20 {
				fmt.Fprintf(&buf, "  ... and %d more\n", len(filtered)-20)
				break
			}
			fmt.Fprintf(&buf, "  - %s\n", truncate(p.Title, 60))
		}
	}

	if o.output == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := writeFile(o.output, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %d papers to %s\n", len(filtered), o.output)
	return nil
}
