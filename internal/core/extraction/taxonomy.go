package extraction

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Category string

const (
	Method   Category = "method"
	Organism Category = "organism"
	Concept  Category = "concept"
	Dataset  Category = "dataset"
	// Term is a capitalized title token that no taxonomy entry covers.
	Term Category = "term"
)

//go:embed taxonomy.yaml
var defaultTaxonomyYAML []byte

type taxonomyFile struct {
	Categories []struct {
		Name  string   `yaml:"name"`
		Terms []string `yaml:"terms"`
	} `yaml:"categories"`
	Stopwords []string `yaml:"stopwords"`
}

// Taxonomy is the read-only table of known terms per category plus the
// stopwords excluded from capitalized-term extraction.
type Taxonomy struct {
	order     []Category
	terms     map[Category][]string
	stopwords map[string]struct{}
}

// ParseTaxonomy reads a taxonomy document. Terms are stored in canonical form
// and duplicates within a category are dropped.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy: %w", err)
	}

	t := &Taxonomy{
		terms:     make(map[Category][]string, len(f.Categories)),
		stopwords: make(map[string]struct{}, len(f.Stopwords)),
	}
	for _, c := range f.Categories {
		cat := Category(strings.ToLower(strings.TrimSpace(c.Name)))
		if cat == "" {
			return nil, fmt.Errorf("taxonomy category without name")
		}
		if _, dup := t.terms[cat]; dup {
			return nil, fmt.Errorf("taxonomy category %q declared twice", cat)
		}
		seen := make(map[string]struct{}, len(c.Terms))
		terms := make([]string, 0, len(c.Terms))
		for _, raw := range c.Terms {
			term := normalizeText(raw)
			if term == "" {
				continue
			}
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			terms = append(terms, term)
		}
		t.order = append(t.order, cat)
		t.terms[cat] = terms
	}
	for _, w := range f.Stopwords {
		t.stopwords[Canonical(w)] = struct{}{}
	}
	return t, nil
}

var defaultTaxonomy = sync.OnceValue(func() *Taxonomy {
	t, err := ParseTaxonomy(defaultTaxonomyYAML)
	if err != nil {
		panic(err)
	}
	return t
})

// DefaultTaxonomy returns the embedded taxonomy, parsed on first use.
func DefaultTaxonomy() *Taxonomy {
	return defaultTaxonomy()
}

// Categories returns the categories in declaration order.
func (t *Taxonomy) Categories() []Category {
	return append([]Category(nil), t.order...)
}

// Terms returns the canonical terms of a category.
func (t *Taxonomy) Terms(c Category) []string {
	return append([]string(nil), t.terms[c]...)
}

func (t *Taxonomy) IsStopword(word string) bool {
	_, ok := t.stopwords[Canonical(word)]
	return ok
}
