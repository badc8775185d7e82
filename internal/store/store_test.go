package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"jobscout-engine/internal/collect"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "jobscout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func result(started time.Time) pipeline.Result {
	enr := 72.0
	return pipeline.Result{
		Jobs: []domain.JobRecord{
			{Rank: 1, Title: "Go Engineer", Company: "Acme", Location: "Remote", Salary: "$150,000", SalaryNumeric: 150000,
				JobType: "Full-time", URL: "https://acme.example/1", Source: "Indeed", ScrapedAt: started,
				RelevanceScore: 40, EnrichmentScore: &enr, FinalScore: 52.8},
			{Rank: 2, Title: "Chef", Company: "Diner", Location: "Paris", Salary: domain.NotSpecified,
				JobType: domain.NotSpecified, URL: domain.NotSpecified, Source: "Remotive", ScrapedAt: started,
				RelevanceScore: 3, FinalScore: 3},
		},
		Insights: "steady demand",
		Summary: pipeline.Summary{
			Criteria:   domain.NewSearchCriteria("go", "Remote", "go, cloud"),
			Sources:    []collect.SourceCount{{Source: "Indeed", Records: 1}, {Source: "LinkedIn", Err: errors.New("blocked")}},
			Collected:  3,
			Duplicates: 1,
			Kept:       2,
			Enrichment: "heuristic",
			StartedAt:  started,
			FinishedAt: started.Add(time.Minute),
		},
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTemp(t)
	require.NoError(t, Migrate(db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, SchemaVersion, v)
}

func TestMigrateRejectsNewerSchema(t *testing.T) {
	db := openTemp(t)
	_, err := db.Pool.Exec(`PRAGMA user_version = 99;`)
	require.NoError(t, err)
	assert.ErrorContains(t, Migrate(db.Pool), "newer than this build")
}

func TestSaveAndReadRun(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := SaveRun(ctx, db.Pool, result(started))
	require.NoError(t, err)

	runs, err := ListRuns(ctx, db.Pool, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	r := runs[0]
	assert.Equal(t, id, r.ID)
	assert.Equal(t, "go", r.Term)
	assert.Equal(t, []string{"go", "cloud"}, r.Keywords)
	assert.Equal(t, started, r.StartedAt)
	assert.Equal(t, 2, r.Kept)
	assert.Equal(t, "steady demand", r.Insights)
	assert.JSONEq(t, `[{"source":"Indeed","phase":"primary","records":1,"took_ms":0},
		{"source":"LinkedIn","phase":"primary","records":0,"error":"blocked","took_ms":0}]`, string(r.Sources))

	jobs, err := RunJobs(ctx, db.Pool, id)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Go Engineer", jobs[0].Title)
	require.NotNil(t, jobs[0].EnrichmentScore)
	assert.Equal(t, 72.0, *jobs[0].EnrichmentScore)
	assert.Equal(t, "go", jobs[0].SearchTerm)
	assert.Nil(t, jobs[1].EnrichmentScore)
	assert.Equal(t, 2, jobs[1].Rank)
}

func TestRunJobsMissingRun(t *testing.T) {
	db := openTemp(t)
	_, err := RunJobs(context.Background(), db.Pool, 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCleanupOldRuns(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	oldID, err := SaveRun(ctx, db.Pool, result(time.Now().Add(-100*24*time.Hour)))
	require.NoError(t, err)
	_, err = SaveRun(ctx, db.Pool, result(time.Now()))
	require.NoError(t, err)

	n, err := CleanupOldRuns(ctx, db.Pool, 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var left int
	require.NoError(t, db.Pool.QueryRow(`SELECT COUNT(*) FROM run_jobs WHERE run_id = ?;`, oldID).Scan(&left))
	assert.Zero(t, left)

	require.NoError(t, Checkpoint(ctx, db.Pool))
}
