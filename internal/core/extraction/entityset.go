package extraction

import "strings"

// Canonical is the identity of an entity label.
func Canonical(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// EntitySet is an insertion-ordered set of canonical labels. The order carries
// no meaning beyond making tie-breaks reproducible.
type EntitySet struct {
	labels []string
	index  map[string]struct{}
}

// NewEntitySet canonicalizes labels and drops empties and repeats.
func NewEntitySet(labels ...string) EntitySet {
	var s EntitySet
	for _, l := range labels {
		s.add(l)
	}
	return s
}

func (s *EntitySet) add(label string) {
	label = Canonical(label)
	if label == "" {
		return
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[label]; ok {
		return
	}
	s.index[label] = struct{}{}
	s.labels = append(s.labels, label)
}

func (s EntitySet) Len() int { return len(s.labels) }

func (s EntitySet) Has(label string) bool {
	_, ok := s.index[Canonical(label)]
	return ok
}

// Labels returns a copy of the labels in insertion order.
func (s EntitySet) Labels() []string {
	return append([]string(nil), s.labels...)
}

// Overlap returns |s ∩ other|.
func (s EntitySet) Overlap(other EntitySet) int {
	small, large := s, other
	if small.Len() > large.Len() {
		small, large = large, small
	}
	n := 0
	for _, l := range small.labels {
		if _, ok := large.index[l]; ok {
			n++
		}
	}
	return n
}
