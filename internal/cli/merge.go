package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/papersift/internal/core/model"
	"github.com/agenthands/papersift/internal/corpus"
)

func newMergeCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "merge <papers.json>... -o <merged.json>",
		Short:   "Merge paper files, keeping the first record of every DOI",
		Example: `  papersift merge batch1.json batch2.json -o all.json`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sets [][]model.Paper
			total := 0
			for _, path := range args {
				papers, err := a.loadPapers(cmd, path)
				if err != nil {
					return err
				}
				total += len(papers)
				sets = append(sets, papers)
			}

			merged := corpus.Merge(sets...)
			for _, d := range merged.Duplicates {
				a.logger.Debug("duplicate dropped", zap.String("doi", d.DOI), zap.Int("index", d.DuplicateIndex))
			}
			if err := corpus.WritePapersFile(output, merged.Papers); err != nil {
				return err
			}

			errOut := cmd.ErrOrStderr()
			fmt.Fprintf(errOut, "Merged %d files: %d papers -> %d unique\n", len(args), total, len(merged.Papers))
			if n := len(merged.Duplicates); n > 0 {
				fmt.Fprintf(errOut, "  Removed %d duplicates\n", n)
			}
			fmt.Fprintf(errOut, "Saved: %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
