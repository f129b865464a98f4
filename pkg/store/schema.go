package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// CreateSchema creates the database schema if it doesn't exist.
func CreateSchema(db *sql.DB) error {
	if err := createSchemaVersionTable(db); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}
	if err := createRunsTable(db); err != nil {
		return fmt.Errorf("creating runs table: %w", err)
	}
	if err := createResultsTable(db); err != nil {
		return fmt.Errorf("creating results table: %w", err)
	}
	if err := createFieldResultsTable(db); err != nil {
		return fmt.Errorf("creating field_results table: %w", err)
	}
	return nil
}

func createSchemaVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion)
		return err
	}
	return nil
}

func createRunsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY NOT NULL,
			created_at TEXT NOT NULL,
			source TEXT NOT NULL
		)
	`)
	return err
}

// results holds each record result as JSON, in insertion order.
func createResultsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			record_id TEXT NOT NULL,
			result_json TEXT NOT NULL
		)
	`)
	return err
}

// field_results flattens one row per field for aggregate queries.
func createFieldResultsTable(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS field_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			result_id INTEGER NOT NULL REFERENCES results(id),
			run_id TEXT NOT NULL REFERENCES runs(id),
			field TEXT NOT NULL,
			original TEXT NOT NULL,
			match_type TEXT NOT NULL,
			brand TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			filtered INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		)
	`); err != nil {
		return err
	}
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_field_results_run ON field_results (run_id, field)`)
	return err
}
