// Package memstore provides process-local, mutex-guarded implementations of
// the RunStore, ConsumerStore, and RecordErrorStore ports, mirroring the
// teacher's mutex-guarded in-memory idiom (internal/engine/executor.go's
// resultsMu-guarded results map) generalized from a single run's results to
// durable-for-the-process operational state.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/ports"
)

// RunStore is an in-memory ports.RunStore keyed by run ID.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*run.Run
}

// NewRunStore constructs an empty RunStore.
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]*run.Run)}
}

// Create registers a new run, failing if its ID is already taken.
func (s *RunStore) Create(_ context.Context, r *run.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[r.RunID]; exists {
		return fmt.Errorf("memstore: run %s already exists", r.RunID)
	}
	clone := *r
	s.runs[r.RunID] = &clone
	return nil
}

// Get returns the run for runID, or an error if absent.
func (s *RunStore) Get(_ context.Context, runID string) (*run.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("memstore: run %s not found", runID)
	}
	clone := *r
	return &clone, nil
}

// Update overwrites the stored run with r's current state.
func (s *RunStore) Update(_ context.Context, r *run.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[r.RunID]; !exists {
		return fmt.Errorf("memstore: run %s not found", r.RunID)
	}
	clone := *r
	s.runs[r.RunID] = &clone
	return nil
}

// ListByPipeline returns every run for pipelineID in indeterminate order.
func (s *RunStore) ListByPipeline(_ context.Context, pipelineID string) ([]*run.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*run.Run
	for _, r := range s.runs {
		if r.PipelineID == pipelineID {
			clone := *r
			out = append(out, &clone)
		}
	}
	return out, nil
}

var _ ports.RunStore = (*RunStore)(nil)
