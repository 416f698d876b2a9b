package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/papersift/internal/core/dedupe"
	"github.com/agenthands/papersift/internal/corpus"
)

func newDedupeCommand(a *app) *cobra.Command {
	var (
		output        string
		keepNonPapers bool
		keepPreprints bool
		report        bool
	)
	cmd := &cobra.Command{
		Use:   "dedupe <papers.json> -o <clean.json>",
		Short: "Remove non-paper DOIs and preprints that have a published version",
		Example: `  papersift dedupe papers.json -o clean.json
  papersift dedupe papers.json -o clean.json --keep-non-papers --report`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			papers, err := a.loadPapers(cmd, args[0])
			if err != nil {
				return err
			}

			result := dedupe.Clean(papers, dedupe.CleanOptions{
				RemoveNonPapers: !keepNonPapers,
				DedupePreprints: !keepPreprints,
			})
			a.logger.Debug("dedupe finished",
				zap.Int("input", result.Stats.TotalInput),
				zap.Int("output", result.Stats.FinalCount),
				zap.Int("preprint_duplicates", result.Stats.RemovedPreprintDuplicates))

			if err := corpus.WritePapersFile(output, result.Papers); err != nil {
				return err
			}

			s := result.Stats
			errOut := cmd.ErrOrStderr()
			fmt.Fprintf(errOut, "Input: %d papers\n", s.TotalInput)
			fmt.Fprintf(errOut, "Output: %d papers\n", s.FinalCount)
			if removed := s.Removed(); removed > 0 {
				fmt.Fprintf(errOut, "Removed: %d entries\n", removed)
				for _, line := range []struct {
					label string
					n     int
				}{
					{"Datasets (zenodo/figshare/etc)", s.RemovedDatasets},
					{"Supplementary files", s.RemovedSupplementary},
					{"Editorial/recommendations", s.RemovedEditorial},
					{"Conference abstracts", s.RemovedConferenceAbstract},
					{"Preprint duplicates", s.RemovedPreprintDuplicates},
					{"Other non-papers", s.RemovedOther},
				} {
					if line.n > 0 {
						fmt.Fprintf(errOut, "  - %s: %d\n", line.label, line.n)
					}
				}
			}

			if report {
				fmt.Fprintln(errOut, "\nDOI Type Distribution (input):")
				types := make([]string, 0, len(s.DOITypes))
				for t := range s.DOITypes {
					types = append(types, string(t))
				}
				slices.Sort(types)
				for _, t := range types {
					fmt.Fprintf(errOut, "  %s: %d\n", t, s.DOITypes[dedupe.DOIType(t)])
				}
			}

			fmt.Fprintf(errOut, "\nSaved: %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&keepNonPapers, "keep-non-papers", false, "keep dataset, supplementary and editorial DOIs")
	cmd.Flags().BoolVar(&keepPreprints, "no-preprint-dedupe", false, "keep preprints even when a journal version is present")
	cmd.Flags().BoolVar(&report, "report", false, "print the DOI type distribution of the input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
