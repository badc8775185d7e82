package domain

import "strings"

const (
	DefaultSearchTerm = "Software Developer"
	DefaultLocation   = "Remote"
)

type SearchCriteria struct {
	Term     string   `json:"term"`
	Location string   `json:"location"`
	Keywords []string `json:"keywords"`
}

// NewSearchCriteria applies the defaults: empty term and location fall back to
// DefaultSearchTerm and DefaultLocation, empty keywords fall back to the term.
// keywords is a comma-separated list.
func NewSearchCriteria(term, location, keywords string) SearchCriteria {
	term = strings.TrimSpace(term)
	if term == "" {
		term = DefaultSearchTerm
	}
	location = strings.TrimSpace(location)
	if location == "" {
		location = DefaultLocation
	}
	kw := SplitTerms(keywords)
	if len(kw) == 0 {
		kw = SplitTerms(term)
	}
	return SearchCriteria{Term: term, Location: location, Keywords: kw}
}

// LocationTerms splits the location on commas.
func (c SearchCriteria) LocationTerms() []string { return SplitTerms(c.Location) }

// SplitTerms splits on commas, trims, lowercases and drops empties.
func SplitTerms(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
