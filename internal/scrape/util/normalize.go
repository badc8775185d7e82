package util

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeLocation strips "Location:" labels and drops repeated comma parts.
func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	for _, label := range []string{"Location:", "LOCATION:", "Locations:", "LOCATIONS:"} {
		loc = strings.TrimPrefix(loc, label)
	}
	loc = strings.TrimSpace(loc)

	seen := map[string]bool{}
	var out []string
	for _, p := range strings.Split(loc, ",") {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

var jobTypes = []struct{ needle, label string }{
	{"full-time", "Full-time"},
	{"full time", "Full-time"},
	{"part-time", "Part-time"},
	{"part time", "Part-time"},
	{"contract", "Contract"},
	{"temporary", "Temporary"},
	{"internship", "Internship"},
}

// InferJobType returns the first employment type mentioned in any snippet, or "".
func InferJobType(snippets ...string) string {
	for _, s := range snippets {
		l := strings.ToLower(s)
		for _, jt := range jobTypes {
			if strings.Contains(l, jt.needle) {
				return jt.label
			}
		}
	}
	return ""
}

// MatchesTerm reports whether any word of the search term appears in any field.
// API sources return everything they have, so this keeps their output on topic.
func MatchesTerm(term string, fields ...string) bool {
	words := strings.Fields(strings.ToLower(term))
	if len(words) == 0 {
		return true
	}
	for _, f := range fields {
		lf := strings.ToLower(f)
		for _, w := range words {
			if strings.Contains(lf, w) {
				return true
			}
		}
	}
	return false
}

// HTMLText flattens an HTML fragment to clean text. Plain text passes through.
func HTMLText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return CleanText(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return CleanText(fragment)
	}
	return CleanText(doc.Text())
}

// Clip shortens s to max runes and marks the cut with "...".
func Clip(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max])) + "..."
}
