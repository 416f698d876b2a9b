package dedupe

import (
	"github.com/agenthands/papersift/internal/core/model"
)

// Deduplicate keeps the first record of every DOI and reports the rest.
// Input order is preserved.
func Deduplicate(papers []model.Paper) model.DeduplicationResult {
	result := model.DeduplicationResult{
		Papers: make([]model.Paper, 0, len(papers)),
	}
	firstSeen := make(map[string]int, len(papers))

	for i, p := range papers {
		if orig, ok := firstSeen[p.DOI]; ok {
			result.Duplicates = append(result.Duplicates, model.DuplicatePair{
				DOI:            p.DOI,
				OriginalIndex:  orig,
				DuplicateIndex: i,
			})
			continue
		}
		firstSeen[p.DOI] = i
		result.Papers = append(result.Papers, p)
	}
	return result
}

// Keys returns the DOIs of papers in order.
func Keys(papers []model.Paper) []string {
	keys := make([]string, len(papers))
	for i, p := range papers {
		keys[i] = p.DOI
	}
	return keys
}
