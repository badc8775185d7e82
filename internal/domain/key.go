package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DedupKey folds case, applies NFKC and collapses whitespace so that
// "Senior  Engineer" at "ACME" and "senior engineer" at "acme" collide.
func DedupKey(title, company string) string {
	return foldField(title) + "|" + foldField(company)
}

func foldField(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}
