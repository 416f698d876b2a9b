package extraction

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/agenthands/papersift/internal/core/model"
)

// minTermRunes is the shortest capitalized token kept as an entity.
const minTermRunes = 3

type Extractor struct {
	Taxonomy *Taxonomy
}

func NewExtractor(t *Taxonomy) *Extractor {
	if t == nil {
		t = DefaultTaxonomy()
	}
	return &Extractor{Taxonomy: t}
}

var defaultExtractor = sync.OnceValue(func() *Extractor {
	return NewExtractor(DefaultTaxonomy())
})

// Extract runs the default extractor.
func Extract(p model.Paper, useTopics bool) EntitySet {
	return defaultExtractor().Extract(p, useTopics)
}

// Extract derives the entity set of a paper. Taxonomy matches come first in
// category order, then capitalized title terms, then topic names.
func (e *Extractor) Extract(p model.Paper, useTopics bool) EntitySet {
	var set EntitySet

	for _, m := range e.MatchTitle(p.Title) {
		set.add(m.Label)
	}

	if useTopics {
		for _, t := range p.Topics {
			set.add(t.DisplayName)
			set.add(t.Subfield.DisplayName)
		}
	}
	return set
}

// Match is one entity found in a title.
type Match struct {
	Label    string
	Category Category
}

// MatchTitle returns the title's entities with their categories, without
// duplicates, in extraction order.
func (e *Extractor) MatchTitle(title string) []Match {
	var (
		matches []Match
		seen    = make(map[string]struct{})
	)
	emit := func(label string, c Category) {
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}
		matches = append(matches, Match{Label: label, Category: c})
	}

	text := normalizeText(title)
	for _, c := range e.Taxonomy.order {
		for _, term := range e.Taxonomy.terms[c] {
			if containsTerm(text, term) {
				emit(term, c)
			}
		}
	}

	for _, tok := range strings.FieldsFunc(title, func(r rune) bool { return !isTokenRune(r) }) {
		tok = strings.Trim(tok, "-")
		first, _ := utf8.DecodeRuneInString(tok)
		if !unicode.IsUpper(first) || utf8.RuneCountInString(tok) < minTermRunes {
			continue
		}
		if e.Taxonomy.IsStopword(tok) {
			continue
		}
		emit(Canonical(tok), Term)
	}
	return matches
}

// isTokenRune reports whether r belongs inside a word. Hyphens are word
// characters, so "crispr-like" is a single token and never matches "crispr".
func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-'
}

// normalizeText lowercases and collapses whitespace runs to one space.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// containsTerm reports whether term occurs in text flanked by non-token
// characters or the ends of text. Both arguments must be normalized.
func containsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	from := 0
	for from <= len(text) {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isTokenRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isTokenRune(r)
}
