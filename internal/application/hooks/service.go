// Package hooks implements the Hook Service: an ordered interceptor chain
// run around fixed pipeline lifecycle and step-boundary stages. Its
// registration-order idiom is carried from the teacher's EventPublisher
// Subscribe/handler-list pattern, generalized from one event type per
// handler to one stage carrying a mutable record sequence through the
// chain.
package hooks

import (
	"context"
	"fmt"
	"sync"

	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/domain/record"
)

// Stage identifies one point in the hook service's fixed stage set.
type Stage string

// Pipeline lifecycle stages.
const (
	StagePipelineStarted   Stage = "PIPELINE_STARTED"
	StagePipelineCompleted Stage = "PIPELINE_COMPLETED"
	StagePipelineFailed    Stage = "PIPELINE_FAILED"
)

// Error-path stages.
const (
	StageOnError      Stage = "ON_ERROR"
	StageOnRetry      Stage = "ON_RETRY"
	StageOnDeadLetter Stage = "ON_DEAD_LETTER"
)

// BeforeStage returns the BEFORE_<X> stage for a processing step kind.
func BeforeStage(kind pipeline.StepKind) Stage {
	return Stage("BEFORE_" + string(kind))
}

// AfterStage returns the AFTER_<X> stage for a processing step kind.
func AfterStage(kind pipeline.StepKind) Stage {
	return Stage("AFTER_" + string(kind))
}

// Interceptor observes or mutates the record sequence flowing through a
// stage. Observational stages (pipeline lifecycle, terminal step kinds)
// invoke interceptors but discard the returned sequence.
type Interceptor func(ctx context.Context, def *pipeline.PipelineDefinition, records []record.Record) ([]record.Record, error)

// Service runs ordered interceptor chains at fixed stages around each step.
// Registration order is total and deterministic per pipeline+stage; an
// interceptor that returns an error aborts the chain and surfaces as a step
// failure. Safe for concurrent use: registration and running may race
// across goroutines launched by the parallel orchestrator, guarded by a
// single RWMutex.
type Service struct {
	mu    sync.RWMutex
	chain map[Stage][]Interceptor
}

// NewService constructs an empty Hook Service.
func NewService() *Service {
	return &Service{chain: make(map[Stage][]Interceptor)}
}

// Register appends an interceptor to stage's chain, in call order.
func (s *Service) Register(stage Stage, interceptor Interceptor) {
	if interceptor == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chain[stage] = append(s.chain[stage], interceptor)
}

// Run invokes all registered interceptors for stage in registration order,
// for observation stages where record mutation is not allowed (terminal
// stages, pipeline lifecycle). The records argument is informational only;
// the chain's return value is discarded.
func (s *Service) Run(ctx context.Context, def *pipeline.PipelineDefinition, stage Stage, records []record.Record) error {
	_, err := s.runChain(ctx, def, stage, records)
	return err
}

// RunInterceptors invokes all registered interceptors for stage in
// registration order and returns the (possibly mutated) record sequence.
// Each interceptor receives the current sequence and returns a new one;
// subsequent interceptors see the transformation. runID and pipelineID are
// accepted for interceptors that need to correlate across calls but are not
// otherwise used by the chain itself.
func (s *Service) RunInterceptors(ctx context.Context, def *pipeline.PipelineDefinition, stage Stage, records []record.Record, runID, pipelineID string) ([]record.Record, error) {
	return s.runChain(ctx, def, stage, records)
}

func (s *Service) runChain(ctx context.Context, def *pipeline.PipelineDefinition, stage Stage, records []record.Record) ([]record.Record, error) {
	s.mu.RLock()
	chain := append([]Interceptor(nil), s.chain[stage]...)
	s.mu.RUnlock()

	current := records
	for i, interceptor := range chain {
		next, err := interceptor(ctx, def, current)
		if err != nil {
			return current, fmt.Errorf("hook %s[%d]: %w", stage, i, err)
		}
		current = next
	}
	return current, nil
}
