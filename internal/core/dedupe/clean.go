package dedupe

import (
	"strings"
	"unicode"

	"github.com/agenthands/papersift/internal/core/model"
)

// TitleSimilarityThreshold is the Jaccard or containment score at which a
// preprint title is taken to name the same work as a journal title.
const TitleSimilarityThreshold = 0.85

var titleNoise = map[string]struct{}{
	"preprint": {}, "published": {}, "version": {}, "revised": {}, "updated": {},
	"v1": {}, "v2": {}, "v3": {}, "v4": {},
}

// CleanOptions selects the cleaning steps. The zero value runs nothing;
// DefaultCleanOptions runs both.
type CleanOptions struct {
	RemoveNonPapers  bool
	DedupePreprints  bool
	SimilarityCutoff float64 // 0 means TitleSimilarityThreshold
}

func DefaultCleanOptions() CleanOptions {
	return CleanOptions{RemoveNonPapers: true, DedupePreprints: true}
}

// CleanStats counts what Clean removed. DOITypes covers the input.
type CleanStats struct {
	TotalInput                int             `json:"total_input"`
	FinalCount                int             `json:"final_count"`
	RemovedDatasets           int             `json:"removed_datasets"`
	RemovedSupplementary      int             `json:"removed_supplementary"`
	RemovedEditorial          int             `json:"removed_editorial"`
	RemovedConferenceAbstract int             `json:"removed_conference_abstract"`
	RemovedOther              int             `json:"removed_other"`
	RemovedPreprintDuplicates int             `json:"removed_preprint_duplicates"`
	DOITypes                  map[DOIType]int `json:"doi_types"`
}

// Removed is the number of input records missing from the output.
func (s CleanStats) Removed() int {
	return s.TotalInput - s.FinalCount
}

type CleanResult struct {
	Papers []model.Paper
	Stats  CleanStats
}

// Clean drops records whose DOI is not a research paper and then preprints
// already published under a journal DOI. Input order is preserved.
func Clean(papers []model.Paper, opts CleanOptions) CleanResult {
	stats := CleanStats{
		TotalInput: len(papers),
		DOITypes:   make(map[DOIType]int),
	}

	working := make([]model.Paper, 0, len(papers))
	for _, p := range papers {
		t := ClassifyDOI(p.DOI)
		stats.DOITypes[t]++
		if !opts.RemoveNonPapers || t.IsResearch() {
			working = append(working, p)
			continue
		}
		switch t {
		case DOIDataset:
			stats.RemovedDatasets++
		case DOISupplementary:
			stats.RemovedSupplementary++
		case DOIEditorial:
			stats.RemovedEditorial++
		case DOIConferenceAbstract:
			stats.RemovedConferenceAbstract++
		default:
			stats.RemovedOther++
		}
	}

	if opts.DedupePreprints {
		before := len(working)
		working = DeduplicatePreprints(working, opts.SimilarityCutoff)
		stats.RemovedPreprintDuplicates = before - len(working)
	}

	stats.FinalCount = len(working)
	return CleanResult{Papers: working, Stats: stats}
}

// DeduplicatePreprints removes every preprint whose title matches some
// journal title in the same set. A threshold <= 0 uses
// TitleSimilarityThreshold.
func DeduplicatePreprints(papers []model.Paper, threshold float64) []model.Paper {
	if threshold <= 0 {
		threshold = TitleSimilarityThreshold
	}

	var journals []map[string]struct{}
	preprint := make([]bool, len(papers))
	for i, p := range papers {
		switch ClassifyDOI(p.DOI) {
		case DOIPreprint:
			preprint[i] = true
		case DOIJournal:
			if words := titleWords(p.Title); len(words) > 0 {
				journals = append(journals, words)
			}
		}
	}

	out := make([]model.Paper, 0, len(papers))
	for i, p := range papers {
		if preprint[i] && publishedElsewhere(titleWords(p.Title), journals, threshold) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func publishedElsewhere(words map[string]struct{}, journals []map[string]struct{}, threshold float64) bool {
	if len(words) == 0 {
		return false
	}
	for _, j := range journals {
		if titleSimilarity(words, j) >= threshold {
			return true
		}
	}
	return false
}

// TitlesMatch reports whether two titles name the same work.
func TitlesMatch(a, b string, threshold float64) bool {
	return titleSimilarity(titleWords(a), titleWords(b)) >= threshold
}

// titleSimilarity is the containment score, overlap over the smaller set.
// It is never below the Jaccard score, so one cutoff covers both. Fewer
// than two shared words scores zero.
func titleSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for w := range a {
		if _, ok := b[w]; ok {
			shared++
		}
	}
	if shared < 2 {
		return 0
	}
	return float64(shared) / float64(min(len(a), len(b)))
}

func titleWords(title string) map[string]struct{} {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(title))

	words := make(map[string]struct{})
	for _, w := range strings.Fields(cleaned) {
		if _, noise := titleNoise[w]; !noise {
			words[w] = struct{}{}
		}
	}
	return words
}
