// Package report turns a finished run into files and console output: a CSV
// of the ranked jobs, an insights text file, a top-N table and statistics.
package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/rank"
)

var (
	baseColumns   = []string{"rank", "relevance_score", "title", "company", "location", "salary", "salary_numeric", "job_type", "summary", "url", "source", "scraped_at"}
	enrichColumns = []string{"ai_career_score", "final_ai_score", "ai_rank"}
)

// Columns is the CSV header. With enrichment, "rank" is the baseline rank and
// "ai_rank" the final one.
func Columns(enriched bool) []string {
	if !enriched {
		return baseColumns
	}
	out := make([]string, 0, len(baseColumns)+len(enrichColumns))
	out = append(out, baseColumns[:2]...)
	out = append(out, enrichColumns...)
	return append(out, baseColumns[2:]...)
}

// WriteCSV writes jobs in their final order.
func WriteCSV(w io.Writer, jobs []domain.JobRecord, enriched bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns(enriched)); err != nil {
		return err
	}

	baseline := map[string]int{}
	if enriched {
		for i, j := range rank.TopK(jobs, len(jobs)) {
			baseline[j.Key()] = i + 1
		}
	}

	for _, j := range jobs {
		row := []string{strconv.Itoa(j.Rank), strconv.Itoa(j.RelevanceScore)}
		if enriched {
			career := 0.0
			if j.EnrichmentScore != nil {
				career = *j.EnrichmentScore
			}
			row[0] = strconv.Itoa(baseline[j.Key()])
			row = append(row, num(career), num(j.FinalScore), strconv.Itoa(j.Rank))
		}
		row = append(row,
			j.Title, j.Company, j.Location, j.Salary, num(j.SalaryNumeric), j.JobType,
			j.Summary, j.URL, j.Source, j.ScrapedAt.Format(time.DateTime),
		)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
