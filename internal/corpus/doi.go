package corpus

import "strings"

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"doi:",
}

// NormalizeDOI strips resolver prefixes and surrounding space, leaving the
// bare "10.xxxx/..." form. Case is preserved.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range doiPrefixes {
		if len(doi) >= len(prefix) && strings.EqualFold(doi[:len(prefix)], prefix) {
			return strings.TrimSpace(doi[len(prefix):])
		}
	}
	return doi
}
