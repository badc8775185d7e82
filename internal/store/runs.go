package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobscout-engine/internal/collect"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/pipeline"
)

type Run struct {
	ID         int64           `json:"id"`
	Term       string          `json:"term"`
	Location   string          `json:"location"`
	Keywords   []string        `json:"keywords"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Collected  int             `json:"collected"`
	Duplicates int             `json:"duplicates"`
	Kept       int             `json:"kept"`
	Enrichment string          `json:"enrichment,omitempty"`
	Insights   string          `json:"insights,omitempty"`
	Sources    json.RawMessage `json:"sources"`
}

// SaveRun writes a finished run and its ranked jobs in one transaction and
// returns the run id.
func SaveRun(ctx context.Context, db *sql.DB, res pipeline.Result) (int64, error) {
	sum := res.Summary
	sources, err := json.Marshal(nonNil(sum.Sources))
	if err != nil {
		return 0, fmt.Errorf("encode sources: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	r, err := tx.ExecContext(ctx, `
INSERT INTO runs(term, location, keywords, started_at, finished_at, collected, duplicates, kept, enrichment, insights, sources)
VALUES(?,?,?,?,?,?,?,?,?,?,?);`,
		sum.Criteria.Term, sum.Criteria.Location, strings.Join(sum.Criteria.Keywords, ","),
		sum.StartedAt.UTC().Format(time.RFC3339), sum.FinishedAt.UTC().Format(time.RFC3339),
		sum.Collected, sum.Duplicates, sum.Kept, sum.Enrichment, res.Insights, string(sources))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_jobs(run_id, rank, title, company, location, salary, salary_numeric, job_type, summary, url, source, scraped_at, relevance_score, enrichment_score, final_score)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, j := range res.Jobs {
		var enr sql.NullFloat64
		if j.EnrichmentScore != nil {
			enr = sql.NullFloat64{Float64: *j.EnrichmentScore, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			id, j.Rank, j.Title, j.Company, j.Location, j.Salary, j.SalaryNumeric, j.JobType, j.Summary,
			j.URL, j.Source, j.ScrapedAt.UTC().Format(time.RFC3339), j.RelevanceScore, enr, j.FinalScore,
		); err != nil {
			return 0, fmt.Errorf("insert job rank %d: %w", j.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func nonNil(in []collect.SourceCount) []collect.SourceCount {
	if in == nil {
		return []collect.SourceCount{}
	}
	return in
}

// ListRuns returns the newest runs first.
func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]Run, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, term, location, keywords, started_at, finished_at, collected, duplicates, kept, enrichment, insights, sources
FROM runs
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var (
			r                 Run
			keywords, sources string
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.Term, &r.Location, &keywords, &started, &finished,
			&r.Collected, &r.Duplicates, &r.Kept, &r.Enrichment, &r.Insights, &sources); err != nil {
			return nil, err
		}
		r.Keywords = domain.SplitTerms(keywords)
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		r.Sources = json.RawMessage(sources)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunJobs returns the jobs of one run in rank order. A missing run yields
// sql.ErrNoRows.
func RunJobs(ctx context.Context, db *sql.DB, runID int64) ([]domain.JobRecord, error) {
	var term, location string
	err := db.QueryRowContext(ctx, `SELECT term, location FROM runs WHERE id = ?;`, runID).Scan(&term, &location)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
SELECT rank, title, company, location, salary, salary_numeric, job_type, summary, url, source, scraped_at, relevance_score, enrichment_score, final_score
FROM run_jobs
WHERE run_id = ?
ORDER BY rank ASC;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.JobRecord{}
	for rows.Next() {
		var (
			j       domain.JobRecord
			scraped string
			enr     sql.NullFloat64
		)
		if err := rows.Scan(&j.Rank, &j.Title, &j.Company, &j.Location, &j.Salary, &j.SalaryNumeric, &j.JobType,
			&j.Summary, &j.URL, &j.Source, &scraped, &j.RelevanceScore, &enr, &j.FinalScore); err != nil {
			return nil, err
		}
		j.ScrapedAt, _ = time.Parse(time.RFC3339, scraped)
		if enr.Valid {
			v := enr.Float64
			j.EnrichmentScore = &v
		}
		j.SearchTerm, j.SearchLocation = term, location
		out = append(out, j)
	}
	return out, rows.Err()
}

// CleanupOldRuns deletes runs started before now-age, jobs included.
func CleanupOldRuns(ctx context.Context, db *sql.DB, age time.Duration) (deleted int64, err error) {
	cutoff := time.Now().UTC().Add(-age).Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup old runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
