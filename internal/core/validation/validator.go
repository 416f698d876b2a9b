package validation

import (
	"fmt"

	"github.com/agenthands/papersift/internal/core/community"
	"github.com/agenthands/papersift/internal/core/dedupe"
	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
)

// DefaultMinCitationEdges is the citation edge count below which a corpus is
// considered to carry no usable citation signal.
const DefaultMinCitationEdges = 10

const (
	StrongAgreement   = "Strong agreement: Entity clusters align well with citation patterns."
	ModerateAgreement = "Moderate agreement: Entity and citation views capture partially overlapping structure."
	WeakAgreement     = "Weak agreement: Entity and citation views capture different aspects of the collection."
)

type ConfidenceSummary struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type Report struct {
	ARI                 float64           `json:"ari"`
	NMI                 float64           `json:"nmi"`
	NumPapers           int               `json:"num_papers"`
	NumEntityClusters   int               `json:"num_entity_clusters"`
	NumCitationClusters int               `json:"num_citation_clusters"`
	ConfidenceSummary   ConfidenceSummary `json:"confidence_summary"`
	Interpretation      string            `json:"interpretation"`

	// Confidence maps each DOI to its score; written separately.
	Confidence map[string]float64 `json:"-"`
	// CitationClusters is the partition of the citation graph.
	CitationClusters model.Assignment `json:"-"`
}

// Validator cross-checks an entity partition against citation structure.
type Validator struct {
	Partitioner      community.Partitioner
	Params           community.Params
	MinCitationEdges int
}

func NewValidator(p community.Partitioner, params community.Params) *Validator {
	return &Validator{
		Partitioner:      p,
		Params:           params,
		MinCitationEdges: DefaultMinCitationEdges,
	}
}

// CitationGraph links two corpus papers when either references the other.
// References outside the corpus and self references are dropped; every edge
// has weight 1.
func CitationGraph(papers []model.Paper) *graph.Graph {
	unique := dedupe.Deduplicate(papers).Papers
	keys := dedupe.Keys(unique)
	inCorpus := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		inCorpus[k] = struct{}{}
	}

	var edges []graph.Edge
	for _, p := range unique {
		for _, ref := range p.ReferencedWorks {
			if _, ok := inCorpus[ref]; !ok || ref == p.DOI {
				continue
			}
			edges = append(edges, graph.Edge{From: p.DOI, To: ref, Weight: 1})
		}
	}
	return graph.Assemble(keys, edges)
}

func (v *Validator) minEdges() int {
	if v.MinCitationEdges > 0 {
		return v.MinCitationEdges
	}
	return DefaultMinCitationEdges
}

// HasCitationData reports whether papers carry enough internal citation
// edges to validate against.
func (v *Validator) HasCitationData(papers []model.Paper) bool {
	return CitationGraph(papers).EdgeCount() >= v.minEdges()
}

// GenerateReport compares clusters with a partition of the citation graph.
// It returns model.ErrInsufficientData, and computes nothing, when the
// corpus fails HasCitationData.
func (v *Validator) GenerateReport(clusters model.Assignment, papers []model.Paper) (*Report, error) {
	cg := CitationGraph(papers)
	if n := cg.EdgeCount(); n < v.minEdges() {
		return nil, fmt.Errorf("%w: %d citation edges, need %d", model.ErrInsufficientData, n, v.minEdges())
	}
	if v.Partitioner == nil {
		return nil, model.BadInput("validator has no partitioner")
	}

	citation, err := v.Partitioner.Partition(cg, v.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to partition citation graph: %w", err)
	}

	ari := ARI(clusters, citation)
	confidence := Confidence(clusters, cg)
	return &Report{
		ARI:                 ari,
		NMI:                 NMI(clusters, citation),
		NumPapers:           len(clusters),
		NumEntityClusters:   clusters.NumClusters(),
		NumCitationClusters: citation.NumClusters(),
		ConfidenceSummary:   Bucket(confidence),
		Interpretation:      Interpret(ari),
		Confidence:          confidence,
		CitationClusters:    citation,
	}, nil
}

// Confidence scores each clustered paper by the fraction of its other
// cluster members that share a citation edge with it. Papers alone in their
// cluster score 1.
func Confidence(clusters model.Assignment, citations *graph.Graph) map[string]float64 {
	members := make(map[int][]string)
	for doi, cid := range clusters {
		members[cid] = append(members[cid], doi)
	}

	scores := make(map[string]float64, len(clusters))
	for doi, cid := range clusters {
		others := len(members[cid]) - 1
		if others == 0 {
			scores[doi] = 1
			continue
		}
		linked := 0
		for _, other := range members[cid] {
			if other != doi && citations.Weight(doi, other) > 0 {
				linked++
			}
		}
		scores[doi] = float64(linked) / float64(others)
	}
	return scores
}

// Bucket counts scores as high (> 0.5), medium (0.2 to 0.5) or low (< 0.2).
func Bucket(scores map[string]float64) ConfidenceSummary {
	var s ConfidenceSummary
	for _, c := range scores {
		switch {
		case c > 0.5:
			s.High++
		case c >= 0.2:
			s.Medium++
		default:
			s.Low++
		}
	}
	return s
}

// Interpret maps an ARI value to a fixed sentence.
func Interpret(ari float64) string {
	switch {
	case ari > 0.5:
		return StrongAgreement
	case ari >= 0.2:
		return ModerateAgreement
	default:
		return WeakAgreement
	}
}
