package model

type HubPaper struct {
	DOI      string   `json:"doi"`
	Title    string   `json:"title,omitempty"`
	HubScore int      `json:"hub_score"`
	Entities []string `json:"entities"`
}
