package data

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := InitDuckDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to init DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &Repository{db: db}
}

func TestInitDuckDBCreatesTables(t *testing.T) {
	repo := setupTestDB(t)

	var tableCount int
	err := repo.db.QueryRow(`SELECT COUNT(*) FROM information_schema.tables WHERE table_name IN ('runs', 'outcomes')`).Scan(&tableCount)
	if err != nil {
		t.Fatalf("Failed to query tables: %v", err)
	}
	if tableCount != 2 {
		t.Errorf("Expected 2 tables, got %d", tableCount)
	}
}

func TestInitDuckDBCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := InitDuckDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize DB with nested path: %v", err)
	}
	db.Close()
}

func TestSaveAndListRuns(t *testing.T) {
	repo := setupTestDB(t)

	started := time.Date(2025, 8, 30, 14, 0, 0, 0, time.UTC)
	run := &Run{
		ID:             "run-1",
		Specialization: "Formação Node.js",
		StartedAt:      started,
		FinishedAt:     started.Add(10 * time.Minute),
		Succeeded:      5,
		Failed:         1,
	}

	if err := repo.SaveRun(run); err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}

	// Saving again with updated counters must replace, not duplicate.
	run.Succeeded = 6
	if err := repo.SaveRun(run); err != nil {
		t.Fatalf("Failed to re-save run: %v", err)
	}

	runs, err := repo.ListRuns()
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}
	if runs[0].Specialization != "Formação Node.js" {
		t.Errorf("Unexpected specialization: %q", runs[0].Specialization)
	}
	if runs[0].Succeeded != 6 {
		t.Errorf("Expected 6 successes after replace, got %d", runs[0].Succeeded)
	}
}

func TestSaveAndListOutcomes(t *testing.T) {
	repo := setupTestDB(t)

	now := time.Now().UTC().Truncate(time.Second)
	outcomes := []*Outcome{
		{Module: "Fundamentos", Lesson: "Introdução", Timestamp: now},
		{Module: "Fundamentos", Lesson: "APIs REST", Err: "yt-dlp exited with code 1", Timestamp: now.Add(time.Minute)},
	}

	for _, o := range outcomes {
		if err := repo.SaveOutcome("run-1", o); err != nil {
			t.Fatalf("Failed to save outcome: %v", err)
		}
	}

	got, err := repo.ListOutcomes("run-1")
	if err != nil {
		t.Fatalf("Failed to list outcomes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 outcomes, got %d", len(got))
	}
	if !got[0].Success() {
		t.Error("Expected first outcome to be a success")
	}
	if got[1].Success() {
		t.Error("Expected second outcome to be a failure")
	}
	if got[1].Err != "yt-dlp exited with code 1" {
		t.Errorf("Unexpected error text: %q", got[1].Err)
	}

	other, err := repo.ListOutcomes("run-2")
	if err != nil {
		t.Fatalf("Failed to list outcomes for other run: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Expected no outcomes for run-2, got %d", len(other))
	}
}
