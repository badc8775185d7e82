package store

import (
	"database/sql"
	"fmt"
)

// migrations[i] moves the schema from user_version i to i+1.
var migrations = []string{
	`
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  term TEXT NOT NULL,
  location TEXT NOT NULL,
  keywords TEXT NOT NULL DEFAULT '',
  started_at TEXT NOT NULL,
  finished_at TEXT NOT NULL,
  collected INTEGER NOT NULL DEFAULT 0,
  duplicates INTEGER NOT NULL DEFAULT 0,
  kept INTEGER NOT NULL DEFAULT 0,
  enrichment TEXT NOT NULL DEFAULT '',
  insights TEXT NOT NULL DEFAULT '',
  sources TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS run_jobs (
  run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  rank INTEGER NOT NULL,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  location TEXT NOT NULL,
  salary TEXT NOT NULL,
  salary_numeric REAL NOT NULL DEFAULT 0,
  job_type TEXT NOT NULL,
  summary TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL,
  source TEXT NOT NULL,
  scraped_at TEXT NOT NULL,
  relevance_score INTEGER NOT NULL DEFAULT 0,
  enrichment_score REAL,
  final_score REAL NOT NULL DEFAULT 0,
  PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`,
}

// SchemaVersion is the user_version Migrate brings a database to.
var SchemaVersion = len(migrations)

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v > len(migrations) {
		return fmt.Errorf("database schema v%d is newer than this build (v%d)", v, len(migrations))
	}

	for i := v; i < len(migrations); i++ {
		if _, err := tx.Exec(migrations[i]); err != nil {
			return fmt.Errorf("schema v%d: %w", i+1, err)
		}
	}
	if v < len(migrations) {
		if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d;`, len(migrations))); err != nil {
			return err
		}
	}

	return tx.Commit()
}
