package model

// DuplicatePair records a dropped record whose DOI was already seen.
type DuplicatePair struct {
	DOI            string `json:"doi"`
	OriginalIndex  int    `json:"original_index"`  // position of the kept record
	DuplicateIndex int    `json:"duplicate_index"` // position of the dropped record
}

type DeduplicationResult struct {
	Papers     []Paper         `json:"papers"`
	Duplicates []DuplicatePair `json:"duplicates"`
}
