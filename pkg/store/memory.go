package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

// MemoryStore implements Store using in-memory data structures.
type MemoryStore struct {
	mu      sync.RWMutex
	runs    map[string]*Run
	results map[string][]*types.RecordResult // keyed by run ID
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		runs:    make(map[string]*Run),
		results: make(map[string][]*types.RecordResult),
	}
}

// CreateRun records a new run. Creating an existing run is a no-op.
func (m *MemoryStore) CreateRun(run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; exists {
		return nil
	}
	r := *run
	m.runs[run.ID] = &r
	return nil
}

// AddResults appends results to a run.
func (m *MemoryStore) AddResults(runID string, results []*types.RecordResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[runID]; !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	m.results[runID] = append(m.results[runID], results...)
	return nil
}

// GetRun retrieves one run.
func (m *MemoryStore) GetRun(runID string) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	r := *run
	return &r, nil
}

// GetRuns retrieves every run, oldest first.
func (m *MemoryStore) GetRuns() ([]*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Run, 0, len(m.runs))
	for _, run := range m.runs {
		r := *run
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetResults retrieves a run's results.
func (m *MemoryStore) GetResults(runID string) ([]*types.RecordResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.runs[runID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	// Return a copy to avoid external modifications
	result := make([]*types.RecordResult, len(m.results[runID]))
	copy(result, m.results[runID])
	return result, nil
}

// Summary aggregates a run's results.
func (m *MemoryStore) Summary(runID string) (*Summary, error) {
	results, err := m.GetResults(runID)
	if err != nil {
		return nil, err
	}
	return Summarize(runID, results), nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
