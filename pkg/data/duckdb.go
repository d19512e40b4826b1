package data

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb/v2"
)

func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id VARCHAR PRIMARY KEY,
			specialization VARCHAR,
			started_at TIMESTAMP,
			finished_at TIMESTAMP,
			succeeded INTEGER,
			failed INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			run_id VARCHAR,
			module VARCHAR,
			lesson VARCHAR,
			error VARCHAR,
			recorded_at TIMESTAMP
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

// Repository stores download runs and their per-lesson outcomes.
type Repository struct {
	db *sql.DB
}

var duckDB *sql.DB

func NewDuckDBRepository() *Repository {
	if duckDB == nil {
		db, err := InitDuckDB("rocketseat.db")
		if err != nil {
			log.Fatal(err)
		}
		duckDB = db
	}

	return &Repository{db: duckDB}
}

func (r *Repository) SaveRun(run *Run) error {
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO runs (id, specialization, started_at, finished_at, succeeded, failed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Specialization, run.StartedAt, run.FinishedAt, run.Succeeded, run.Failed,
	)
	return err
}

func (r *Repository) SaveOutcome(runID string, o *Outcome) error {
	_, err := r.db.Exec(
		`INSERT INTO outcomes (run_id, module, lesson, error, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		runID, o.Module, o.Lesson, o.Err, o.Timestamp,
	)
	return err
}

func (r *Repository) ListRuns() ([]*Run, error) {
	rows, err := r.db.Query(
		`SELECT id, specialization, started_at, finished_at, succeeded, failed
		 FROM runs ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		if err := rows.Scan(&run.ID, &run.Specialization, &run.StartedAt, &run.FinishedAt, &run.Succeeded, &run.Failed); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *Repository) ListOutcomes(runID string) ([]*Outcome, error) {
	rows, err := r.db.Query(
		`SELECT module, lesson, error, recorded_at FROM outcomes WHERE run_id = ? ORDER BY recorded_at`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []*Outcome
	for rows.Next() {
		o := &Outcome{}
		if err := rows.Scan(&o.Module, &o.Lesson, &o.Err, &o.Timestamp); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
