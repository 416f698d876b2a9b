package model

import "encoding/json"

// Paper is one corpus record. Only DOI and Title are required; the rest is
// produced by the upstream enrichment step and may be absent.
type Paper struct {
	DOI             string   `json:"doi" validate:"required"`
	Title           string   `json:"title" validate:"required"`
	ReferencedWorks []string `json:"referenced_works,omitempty"`
	Topics          []Topic  `json:"topics,omitempty"`

	// Raw is the record exactly as it was read, so it can be written back
	// without dropping fields the core does not model (abstract, openalex_id).
	Raw json.RawMessage `json:"-"`
}

type Topic struct {
	DisplayName string   `json:"display_name"`
	Subfield    Subfield `json:"subfield"`
}

type Subfield struct {
	DisplayName string `json:"display_name"`
}

// PaperRef is the short form used in listings.
type PaperRef struct {
	DOI   string `json:"doi"`
	Title string `json:"title"`
}
