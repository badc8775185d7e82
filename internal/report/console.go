package report

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const TopN = 15

// PrintTop prints the first n jobs as a fixed-width table.
func PrintTop(w io.Writer, jobs []domain.JobRecord, n int, enriched bool) {
	rule := strings.Repeat("-", 110)
	fmt.Fprintf(w, "TOP %d JOBS\n%s\n", min(n, len(jobs)), rule)
	if enriched {
		fmt.Fprintf(w, "%-4s %-8s %-6s %-30s %-20s %-15s %-20s\n", "Rank", "Final", "Career", "Title", "Company", "Location", "Salary")
	} else {
		fmt.Fprintf(w, "%-4s %-6s %-30s %-20s %-15s %-20s\n", "Rank", "Score", "Title", "Company", "Location", "Salary")
	}
	fmt.Fprintln(w, rule)

	for i, j := range jobs {
		if i == n {
			break
		}
		title, company := util.Clip(j.Title, 27), util.Clip(j.Company, 17)
		loc, salary := util.Clip(j.Location, 12), util.Clip(j.Salary, 17)
		if enriched {
			career := 0.0
			if j.EnrichmentScore != nil {
				career = *j.EnrichmentScore
			}
			fmt.Fprintf(w, "%-4d %-8.1f %-6.0f %-30s %-20s %-15s %-20s\n", j.Rank, j.FinalScore, career, title, company, loc, salary)
		} else {
			fmt.Fprintf(w, "%-4d %-6d %-30s %-20s %-15s %-20s\n", j.Rank, j.RelevanceScore, title, company, loc, salary)
		}
	}
}

type Stats struct {
	Jobs         int      `json:"jobs"`
	Sources      []string `json:"sources"`
	AvgScore     float64  `json:"avg_score"`
	MaxScore     float64  `json:"max_score"`
	AvgCareer    float64  `json:"avg_career,omitempty"`
	WithSalary   int      `json:"with_salary"`
	AvgSalary    float64  `json:"avg_salary"`
	MinSalary    float64  `json:"min_salary"`
	MaxSalary    float64  `json:"max_salary"`
	HighSalary   int      `json:"high_salary"`
	MidSalary    int      `json:"mid_salary"`
	EntrySalary  int      `json:"entry_salary"`
	Remote       int      `json:"remote"`
	TopCompanies []string `json:"top_companies"`
	// SalaryInfo counts jobs publishing any salary text, parseable or not.
	SalaryInfo int `json:"salary_info"`
}

// ComputeStats summarizes jobs. Scores are final scores; career averages
// cover the enriched records only.
func ComputeStats(jobs []domain.JobRecord) Stats {
	s := Stats{Jobs: len(jobs)}
	if len(jobs) == 0 {
		return s
	}

	seen := map[string]bool{}
	companies := map[string]int{}
	var scoreSum, careerSum, salarySum float64
	careers := 0
	s.MinSalary = -1

	for _, j := range jobs {
		if !seen[j.Source] {
			seen[j.Source] = true
			s.Sources = append(s.Sources, j.Source)
		}
		companies[j.Company]++

		scoreSum += j.FinalScore
		s.MaxScore = max(s.MaxScore, j.FinalScore)
		if j.EnrichmentScore != nil {
			careerSum += *j.EnrichmentScore
			careers++
		}

		if j.Salary != domain.NotSpecified {
			s.SalaryInfo++
		}
		if j.HasSalary() {
			s.WithSalary++
			salarySum += j.SalaryNumeric
			s.MaxSalary = max(s.MaxSalary, j.SalaryNumeric)
			if s.MinSalary < 0 || j.SalaryNumeric < s.MinSalary {
				s.MinSalary = j.SalaryNumeric
			}
			switch {
			case j.SalaryNumeric >= 120000:
				s.HighSalary++
			case j.SalaryNumeric >= 80000:
				s.MidSalary++
			default:
				s.EntrySalary++
			}
		}
		if strings.Contains(strings.ToLower(j.Location), "remote") {
			s.Remote++
		}
	}

	s.AvgScore = scoreSum / float64(len(jobs))
	if careers > 0 {
		s.AvgCareer = careerSum / float64(careers)
	}
	if s.WithSalary > 0 {
		s.AvgSalary = salarySum / float64(s.WithSalary)
	} else {
		s.MinSalary = 0
	}

	names := slices.Collect(maps.Keys(companies))
	slices.SortFunc(names, func(a, b string) int {
		return cmp.Or(cmp.Compare(companies[b], companies[a]), cmp.Compare(a, b))
	})
	s.TopCompanies = names[:min(5, len(names))]
	return s
}

func PrintStats(w io.Writer, s Stats) {
	if s.Jobs == 0 {
		fmt.Fprintln(w, "No jobs found. Try different search criteria.")
		return
	}
	fmt.Fprintln(w, "SEARCH STATISTICS")
	fmt.Fprintf(w, "  Sources used: %s\n", strings.Join(s.Sources, ", "))
	fmt.Fprintf(w, "  Average score: %.1f\n", s.AvgScore)
	fmt.Fprintf(w, "  Highest score: %.1f\n", s.MaxScore)
	if s.AvgCareer > 0 {
		fmt.Fprintf(w, "  Average career potential: %.1f\n", s.AvgCareer)
	}
	fmt.Fprintf(w, "  Jobs with salary info: %d (%.1f%%)\n", s.SalaryInfo, 100*float64(s.SalaryInfo)/float64(s.Jobs))
	if s.WithSalary > 0 {
		fmt.Fprintf(w, "  Average salary: $%s\n", thousands(s.AvgSalary))
		fmt.Fprintf(w, "  Salary range: $%s - $%s\n", thousands(s.MinSalary), thousands(s.MaxSalary))
		fmt.Fprintf(w, "  High salary (>=$120k): %d jobs\n", s.HighSalary)
		fmt.Fprintf(w, "  Mid salary ($80k-$120k): %d jobs\n", s.MidSalary)
		fmt.Fprintf(w, "  Entry salary (<$80k): %d jobs\n", s.EntrySalary)
	}
	fmt.Fprintf(w, "  Remote jobs: %d\n", s.Remote)
	fmt.Fprintf(w, "  Top companies: %s\n", strings.Join(s.TopCompanies, ", "))
}

var printer = message.NewPrinter(language.English)

// thousands renders 1234567.8 as "1,234,568".
func thousands(f float64) string { return printer.Sprintf("%.0f", f) }
