package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// MergeConfig configures the merge operation.
type MergeConfig struct {
	// SourcePaths are the database files to merge from.
	SourcePaths []string
	// DestPath is the destination database file.
	DestPath string
}

// MergeStats tracks merge operation statistics.
type MergeStats struct {
	RunsMerged       int
	ResultsMerged    int
	SourcesProcessed int
}

// Merge combines multiple result databases into one. A run already present
// in the destination is skipped with its results.
func Merge(cfg MergeConfig) (*MergeStats, error) {
	if len(cfg.SourcePaths) == 0 {
		return nil, fmt.Errorf("no source databases specified")
	}
	if cfg.DestPath == "" {
		return nil, fmt.Errorf("destination path is required")
	}

	destDB, err := openDB(cfg.DestPath)
	if err != nil {
		return nil, fmt.Errorf("opening destination database: %w", err)
	}
	defer destDB.Close()

	stats := &MergeStats{}
	for _, sourcePath := range cfg.SourcePaths {
		sourceStats, err := mergeFrom(destDB, sourcePath)
		if err != nil {
			return stats, fmt.Errorf("merging from %s: %w", sourcePath, err)
		}
		stats.RunsMerged += sourceStats.RunsMerged
		stats.ResultsMerged += sourceStats.ResultsMerged
		stats.SourcesProcessed++
	}
	return stats, nil
}

// mergeFrom copies runs and results from a source database to the destination.
func mergeFrom(destDB *sql.DB, sourcePath string) (*MergeStats, error) {
	sourceDB, err := openSource(sourcePath)
	if err != nil {
		return nil, err
	}
	defer sourceDB.Close()

	runs, err := (&SQLiteStore{db: sourceDB}).GetRuns()
	if err != nil {
		return nil, err
	}

	tx, err := destDB.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stats := &MergeStats{}
	for _, run := range runs {
		res, err := tx.Exec("INSERT OR IGNORE INTO runs (id, created_at, source) VALUES (?, ?, ?)",
			run.ID, run.CreatedAt.UTC().Format(time.RFC3339), run.Source)
		if err != nil {
			return nil, fmt.Errorf("inserting run: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			continue
		}
		stats.RunsMerged++

		n, err := mergeResults(tx, sourceDB, run.ID)
		if err != nil {
			return nil, fmt.Errorf("merging run %s: %w", run.ID, err)
		}
		stats.ResultsMerged += n
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return stats, nil
}

// openSource opens an existing database read-only. Unlike openDB it never
// creates the file or its schema.
func openSource(path string) (*sql.DB, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening source database: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("opening source database: %s is a directory", path)
	}
	db, err := sql.Open(driverName, "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening source database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// mergeResults re-inserts a run's results so field rows get fresh result ids.
func mergeResults(tx *sql.Tx, sourceDB *sql.DB, runID string) (int, error) {
	rows, err := sourceDB.Query("SELECT result_json FROM results WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return count, err
		}
		var rr types.RecordResult
		if err := json.Unmarshal([]byte(resultJSON), &rr); err != nil {
			return count, fmt.Errorf("unmarshaling result: %w", err)
		}
		if err := insertResult(tx, runID, &rr); err != nil {
			return count, err
		}
		count++
	}
	return count, rows.Err()
}
