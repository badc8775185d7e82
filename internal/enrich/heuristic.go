package enrich

import (
	"context"
	"strings"

	"jobscout-engine/internal/domain"
)

// Heuristic scores career potential offline from the title, summary,
// company and salary of each record.
type Heuristic struct{}

func (Heuristic) Name() string { return "heuristic" }

var (
	modernTech = []string{"ai", "machine learning", "cloud", "aws", "kubernetes", "react", "python"}
	bigTech    = []string{"google", "microsoft", "amazon", "apple", "meta", "netflix"}
)

func (h Heuristic) Enrich(ctx context.Context, recs []domain.JobRecord, _ domain.SearchCriteria) (Result, error) {
	scores := make(map[string]float64, len(recs))
	for _, r := range recs {
		if err := ctx.Err(); err != nil {
			return Result{Scores: scores}, err
		}
		scores[r.Key()] = float64(CareerScore(r))
	}
	return Result{Scores: scores}, nil
}

// CareerScore is the heuristic score of one record, capped at 100.
func CareerScore(r domain.JobRecord) int {
	title := strings.ToLower(r.Title)
	summary := strings.ToLower(r.Summary)
	company := strings.ToLower(r.Company)

	score := 0
	switch {
	case containsAny(title, "senior", "lead", "principal"):
		score += 15
	case containsAny(title, "mid", "intermediate"):
		score += 10
	}

	for _, tech := range modernTech {
		if strings.Contains(title, tech) || strings.Contains(summary, tech) {
			score += 5
		}
	}

	if containsAny(company, bigTech...) {
		score += 20
	}

	if r.HasSalary() {
		switch s := r.SalaryNumeric; {
		case s >= 200000:
			score += 25
		case s >= 150000:
			score += 20
		case s >= 120000:
			score += 15
		case s >= 90000:
			score += 10
		case s >= 60000:
			score += 5
		}
	}
	return min(score, 100)
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
