package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
	_ "modernc.org/sqlite"
)

// driverName is the database/sql name registered by modernc.org/sqlite.
const driverName = "sqlite"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// openDB opens path and initializes the schema.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return db, nil
}

// CreateRun records a new run. Creating an existing run is a no-op.
func (s *SQLiteStore) CreateRun(run *Run) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO runs (id, created_at, source) VALUES (?, ?, ?)",
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339), run.Source)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// AddResults appends results to a run in one transaction.
func (s *SQLiteStore) AddResults(runID string, results []*types.RecordResult) error {
	if _, err := s.GetRun(runID); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rr := range results {
		if err := insertResult(tx, runID, rr); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// insertResult stores one record result and its per-field rows.
func insertResult(tx *sql.Tx, runID string, rr *types.RecordResult) error {
	resultJSON, err := json.Marshal(rr)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	res, err := tx.Exec("INSERT INTO results (run_id, record_id, result_json) VALUES (?, ?, ?)",
		runID, rr.ID, string(resultJSON))
	if err != nil {
		return fmt.Errorf("inserting result: %w", err)
	}
	resultID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading result id: %w", err)
	}

	for _, f := range types.Fields {
		mr := rr.Get(f)
		if mr == nil {
			continue
		}
		var brand, model string
		if mr.Matched != nil {
			brand, model = mr.Matched.Brand, mr.Matched.Model
		}
		_, err := tx.Exec(`
			INSERT INTO field_results (result_id, run_id, field, original, match_type, brand, model, filtered, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			resultID,
			runID,
			string(f),
			mr.Original,
			string(mr.MatchType),
			brand,
			model,
			mr.Filtered,
			mr.Error,
		)
		if err != nil {
			return fmt.Errorf("inserting %s field result: %w", f, err)
		}
	}
	return nil
}

// GetRun retrieves one run.
func (s *SQLiteStore) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow("SELECT id, created_at, source FROM runs WHERE id = ?", runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// GetRuns retrieves every run, oldest first.
func (s *SQLiteStore) GetRuns() ([]*Run, error) {
	rows, err := s.db.Query("SELECT id, created_at, source FROM runs ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// GetResults retrieves a run's results in insertion order.
func (s *SQLiteStore) GetResults(runID string) ([]*types.RecordResult, error) {
	if _, err := s.GetRun(runID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query("SELECT result_json FROM results WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	results := []*types.RecordResult{}
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		var rr types.RecordResult
		if err := json.Unmarshal([]byte(resultJSON), &rr); err != nil {
			return nil, fmt.Errorf("unmarshaling result: %w", err)
		}
		results = append(results, &rr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return results, nil
}

// Summary aggregates a run with SQL over field_results.
func (s *SQLiteStore) Summary(runID string) (*Summary, error) {
	if _, err := s.GetRun(runID); err != nil {
		return nil, err
	}

	sum := &Summary{RunID: runID}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM results WHERE run_id = ?", runID).Scan(&sum.Records); err != nil {
		return nil, fmt.Errorf("counting results: %w", err)
	}

	fields := make(map[types.Field]*FieldSummary, len(types.Fields))
	for _, f := range types.Fields {
		sum.Fields = append(sum.Fields, FieldSummary{Field: f, ByMatchType: make(map[types.MatchType]int)})
	}
	for i := range sum.Fields {
		fields[sum.Fields[i].Field] = &sum.Fields[i]
	}

	if err := s.countFields(runID, fields); err != nil {
		return nil, err
	}
	if err := s.countBrands(runID, fields); err != nil {
		return nil, err
	}
	return sum, nil
}

func (s *SQLiteStore) countFields(runID string, fields map[types.Field]*FieldSummary) error {
	rows, err := s.db.Query(`
		SELECT field, match_type, filtered, error != '', COUNT(*)
		FROM field_results
		WHERE run_id = ?
		GROUP BY field, match_type, filtered, error != ''
	`, runID)
	if err != nil {
		return fmt.Errorf("querying field counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var field, matchType string
		var filtered, failed bool
		var n int
		if err := rows.Scan(&field, &matchType, &filtered, &failed, &n); err != nil {
			return fmt.Errorf("scanning field counts: %w", err)
		}
		if fs, ok := fields[types.Field(field)]; ok {
			fs.add(types.MatchType(matchType), filtered, failed, n)
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) countBrands(runID string, fields map[types.Field]*FieldSummary) error {
	rows, err := s.db.Query(`
		SELECT field, brand, COUNT(*)
		FROM field_results
		WHERE run_id = ? AND brand != '' AND match_type != ?
		GROUP BY field, brand
	`, runID, string(types.MatchUnmatched))
	if err != nil {
		return fmt.Errorf("querying brand counts: %w", err)
	}
	defer rows.Close()

	brands := make(map[types.Field]map[string]int)
	for rows.Next() {
		var field, brand string
		var n int
		if err := rows.Scan(&field, &brand, &n); err != nil {
			return fmt.Errorf("scanning brand counts: %w", err)
		}
		f := types.Field(field)
		if brands[f] == nil {
			brands[f] = make(map[string]int)
		}
		brands[f][brand] = n
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for f, counts := range brands {
		if fs, ok := fields[f]; ok {
			fs.Brands = sortBrands(counts)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var createdAt string
	if err := row.Scan(&run.ID, &createdAt, &run.Source); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing run time: %w", err)
	}
	run.CreatedAt = t
	return &run, nil
}
