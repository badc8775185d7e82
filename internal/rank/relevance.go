// Package rank scores canonical records and orders them into the final ranking.
package rank

import (
	"strings"

	"jobscout-engine/internal/domain"
)

const (
	titleHit    = 15
	companyHit  = 8
	summaryHit  = 5
	locationHit = 7
	seniorBonus = 5
	juniorBonus = 3
	remoteBonus = 8
	salaryKnown = 10
)

var (
	seniorMarkers = []string{"senior", "lead", "principal"}
	juniorMarkers = []string{"junior", "entry", "intern"}
	remoteMarkers = []string{"remote", "work from home"}
)

type tier struct {
	min   float64
	bonus int
}

// highest first
var salaryTiers = []tier{
	{150000, 15},
	{120000, 12},
	{90000, 8},
	{60000, 5},
}

// Relevance is the additive baseline score of rec against c. It depends on
// nothing but its arguments.
func Relevance(rec domain.JobRecord, c domain.SearchCriteria) int {
	title := strings.ToLower(rec.Title)
	company := strings.ToLower(rec.Company)
	summary := strings.ToLower(rec.Summary)
	location := strings.ToLower(rec.Location)

	score := 0
	for _, kw := range domain.SplitTerms(strings.Join(c.Keywords, ",")) {
		if strings.Contains(title, kw) {
			score += titleHit
		}
		if strings.Contains(company, kw) {
			score += companyHit
		}
		if strings.Contains(summary, kw) {
			score += summaryHit
		}
	}
	for _, lt := range c.LocationTerms() {
		if strings.Contains(location, lt) {
			score += locationHit
		}
	}

	switch {
	case containsAny(title, seniorMarkers):
		score += seniorBonus
	case containsAny(title, juniorMarkers):
		score += juniorBonus
	}

	if containsAny(location, remoteMarkers) {
		score += remoteBonus
	}

	if rec.HasSalary() {
		score += salaryKnown + SalaryTierBonus(rec.SalaryNumeric)
	}
	return score
}

// SalaryTierBonus returns the bonus of the highest tier amount reaches.
func SalaryTierBonus(amount float64) int {
	for _, t := range salaryTiers {
		if amount >= t.min {
			return t.bonus
		}
	}
	return 0
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
