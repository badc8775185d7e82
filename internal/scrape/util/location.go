package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var locationSelectors = []string{
	".location",
	".opening .location",
	".job__location",
	"[data-testid='job-location']",
	"[data-testid='location']",
	"[itemprop='jobLocation']",
	"[data-qa='location']",
	".posting-categories .location",
}

func LooksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return strings.Contains(l, "view") || strings.Contains(l, "apply")
}

// FindLocation tries known location elements, then the og:description meta,
// then a "Location:" label anywhere in the text of sel.
func FindLocation(sel *goquery.Selection) string {
	for _, css := range locationSelectors {
		if t := CleanText(sel.Find(css).First().Text()); t != "" {
			return NormalizeLocation(t)
		}
	}

	if v, ok := sel.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if loc := LabeledLocation(v); loc != "" {
			return NormalizeLocation(loc)
		}
	}

	if loc := LabeledLocation(sel.Text()); loc != "" {
		return NormalizeLocation(loc)
	}
	return ""
}

// LabeledLocation returns the text after a "Location:" style label, cut at the
// first line or column break.
func LabeledLocation(s string) string {
	low := strings.ToLower(s)

	for _, lab := range []string{"job location:", "locations:", "location:"} {
		i := strings.Index(low, lab)
		if i < 0 || i+len(lab) > len(s) {
			continue
		}
		rest := s[i+len(lab):]
		for _, cut := range []string{"\n", "\r", " | ", " · "} {
			if j := strings.Index(rest, cut); j >= 0 {
				rest = rest[:j]
			}
		}
		rest = CleanText(rest)
		if rest != "" && len(rest) <= 80 {
			return rest
		}
	}
	return ""
}
