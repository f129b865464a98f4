// Package store persists batch matching runs and their per-record results.
package store

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// Store provides persistence for match results.
// This interface abstracts the underlying storage implementation,
// allowing for different backends (SQLite, in-memory).
type Store interface {
	// CreateRun records a new run.
	CreateRun(run *Run) error

	// AddResults appends results to a run, preserving their order.
	AddResults(runID string, results []*types.RecordResult) error

	// GetRun retrieves one run.
	GetRun(runID string) (*Run, error)

	// GetRuns retrieves every run, oldest first.
	GetRuns() ([]*Run, error)

	// GetResults retrieves a run's results in insertion order.
	GetResults(runID string) ([]*types.RecordResult, error)

	// Summary aggregates a run's results per field.
	Summary(runID string) (*Summary, error)

	// Close releases the store.
	Close() error
}

// Run is one batch matching invocation.
type Run struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	// Source describes the input, e.g. a file path or "stdin".
	Source string `json:"source"`
}

// NewRun creates a run with a fresh ID.
func NewRun(source string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Source:    source,
	}
}

// Config for store initialization.
type Config struct {
	// Path is the database file path.
	// Empty or ":memory:" selects the in-memory store.
	Path string
}

// New creates a store. File paths use SQLite.
func New(cfg Config) (Store, error) {
	if cfg.Path == "" || cfg.Path == ":memory:" {
		return NewMemory(), nil
	}
	return NewSQLite(cfg.Path)
}
