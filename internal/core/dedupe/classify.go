package dedupe

import (
	"regexp"
	"strings"
)

// DOIType is the kind of work a DOI most likely points at.
type DOIType string

const (
	DOIJournal            DOIType = "journal"
	DOIPreprint           DOIType = "preprint"
	DOIDataset            DOIType = "dataset"
	DOISupplementary      DOIType = "supplementary"
	DOIEditorial          DOIType = "editorial"
	DOIConferenceAbstract DOIType = "conference_abstract"
	DOIBookChapter        DOIType = "book_chapter"
	DOIOther              DOIType = "other"
)

// IsResearch reports whether the type carries research content.
func (t DOIType) IsResearch() bool {
	switch t {
	case DOIJournal, DOIPreprint, DOIBookChapter:
		return true
	}
	return false
}

var (
	// .s001, _suppl1, .supp1, or s1/s2 appended straight onto an id.
	supplementarySuffix = regexp.MustCompile(`\.s\d{3,4}$|_suppl\d*$|\.supp\d*$|[a-z\d]s\d{1,2}$`)
	// eLife decision letters and author responses.
	editorialSuffix = regexp.MustCompile(`\.sa\d+$`)
	elifeSubArticle = regexp.MustCompile(`^10\.7554/elife\.\d+\.\d{3,}$`)
	// bioRxiv and medRxiv; other 10.1101 DOIs are CSHL journals.
	biorxiv      = regexp.MustCompile(`^10\.1101/(?:\d{4}\.\d{2}\.\d{2}\.\d+|\d{6,})$`)
	bookChapter  = regexp.MustCompile(`^10\.1007/978-|^10\.1016/b978-|^10\.1201/|^10\.1002/978|^10\.1515/978|^10\.4018/978-`)
	highRegistry = regexp.MustCompile(`^10\.\d{5,}/`)
)

var preprintPrefixes = []string{
	"10.48550/arxiv.",
	"10.2139/ssrn.",
	"10.26434/chemrxiv",
	"10.21203/rs.",
	"10.31219/osf.io/",
	"10.7287/peerj.preprints.",
	"10.20944/preprints",
	"10.31223/",
	"10.31235/osf.io/",
	"10.31224/osf.io/",
	"10.26226/morressier.",
}

var datasetPrefixes = []string{
	"10.5281/zenodo.",
	"10.6084/m9.figshare.",
	"10.17632/",
	"10.17605/osf.io/",
	"10.5061/dryad.",
	"10.5523/bris.",
	"10.5518/",
	"10.4233/uuid:",
	"10.24355/dbbs.",
	"10.7910/dvn/",
	"10.5282/edm/",
	"10.15468/",
	"10.48321/",
	"10.22032/dbt.",
	"10.26153/tsw/",
	"10.14264/",
}

var editorialPrefixes = []string{
	"10.3410/f.",
	"10.5256/f1000research.",
	"10.7490/f1000research.",
}

// ClassifyDOI buckets a DOI by its registrant prefix and suffix shape.
// Suffix rules win over prefix rules; anything unrecognised under a
// four digit registrant is treated as a journal article.
func ClassifyDOI(doi string) DOIType {
	d := strings.ToLower(strings.TrimSpace(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/"} {
		d = strings.TrimPrefix(d, prefix)
	}
	if d == "" {
		return DOIOther
	}

	switch {
	case supplementarySuffix.MatchString(d):
		return DOISupplementary
	case editorialSuffix.MatchString(d), hasAnyPrefix(d, editorialPrefixes):
		return DOIEditorial
	case hasAnyPrefix(d, datasetPrefixes):
		return DOIDataset
	}

	if strings.HasPrefix(d, "10.1101/") {
		if biorxiv.MatchString(d) {
			return DOIPreprint
		}
	} else if hasAnyPrefix(d, preprintPrefixes) {
		return DOIPreprint
	}

	switch {
	case elifeSubArticle.MatchString(d):
		return DOIEditorial
	case bookChapter.MatchString(d):
		return DOIBookChapter
	case highRegistry.MatchString(d):
		return DOIOther
	}
	return DOIJournal
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
