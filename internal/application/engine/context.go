package engine

import (
	"context"
	"sync"

	"github.com/oronts/datahub/internal/domain/checkpoint"
	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/ports"
)

// ExecutorContext is the Run's per-execution mutable state: its checkpoint,
// aggregated metrics, and cancellation probe (spec §2 component 3). The
// orchestrator and strategies borrow it for the duration of one run;
// concurrent writers (parallel-mode steps) are serialized by mu for the
// metrics/resume-state fields below, and by the checkpoint's own lock for
// cp (the Gate Controller reads and writes cp directly through Checkpoint(),
// outside of mu), matching the concurrency model's guarantee that updates
// are safe under bounded parallel execution (spec §5).
type ExecutorContext struct {
	RunID      string
	PipelineID string

	store ports.CheckpointStore
	cp    *checkpoint.Checkpoint

	cancelRequested func() bool

	mu      sync.Mutex
	metrics *run.Metrics

	completed map[string]bool
	outputs   map[string][]record.Record
	branches  map[string]record.BranchOutput
}

// NewExecutorContext constructs an ExecutorContext for one run.
func NewExecutorContext(runID, pipelineID string, store ports.CheckpointStore, cp *checkpoint.Checkpoint, metrics *run.Metrics, cancelRequested func() bool) *ExecutorContext {
	if cp == nil {
		cp = checkpoint.New()
	}
	if metrics == nil {
		metrics = &run.Metrics{}
	}
	return &ExecutorContext{
		RunID:           runID,
		PipelineID:      pipelineID,
		store:           store,
		cp:              cp,
		metrics:         metrics,
		cancelRequested: cancelRequested,
		completed:       make(map[string]bool),
		outputs:         make(map[string][]record.Record),
		branches:        make(map[string]record.BranchOutput),
	}
}

// Checkpoint returns the run's checkpoint.
func (c *ExecutorContext) Checkpoint() *checkpoint.Checkpoint {
	return c.cp
}

// Metrics returns the run's aggregate metrics.
func (c *ExecutorContext) Metrics() *run.Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// MarkCheckpointDirty flags the checkpoint for persistence without changing
// any data; idempotent.
func (c *ExecutorContext) MarkCheckpointDirty() {
	c.cp.MarkDirty()
}

// PersistCheckpoint writes the checkpoint through the configured store iff
// it is dirty. A nil store is a valid no-op configuration (checkpointing is
// opt-in for callers that don't need resume).
func (c *ExecutorContext) PersistCheckpoint(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	return c.store.Save(ctx, c.RunID, c.cp)
}

// OnCancelRequested probes whether the run's supervisor has asked for
// cancellation. A nil probe always reports false.
func (c *ExecutorContext) OnCancelRequested() bool {
	if c.cancelRequested == nil {
		return false
	}
	return c.cancelRequested()
}

// RecordOutcome folds one record-level success/failure into the running
// `__pipelineStats` a THRESHOLD gate consults, and marks the checkpoint
// dirty.
func (c *ExecutorContext) RecordOutcome(success bool) {
	if success {
		c.cp.AddStats(1, 0)
	} else {
		c.cp.AddStats(0, 1)
	}
}

// AddOutcomes folds succeeded/failed record counts into the run's
// `__pipelineStats` a THRESHOLD gate consults, in one checkpoint write
// instead of one per record.
func (c *ExecutorContext) AddOutcomes(succeeded, failed int) {
	if succeeded == 0 && failed == 0 {
		return
	}
	c.cp.AddStats(succeeded, failed)
}

// AddDetail appends a StepDetail to the run's metrics under mu, serializing
// concurrent writers from parallel-mode steps.
func (c *ExecutorContext) AddDetail(detail run.StepDetail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.AddDetail(detail)
}

// AddProcessed folds n additional extracted records into metrics.Processed.
func (c *ExecutorContext) AddProcessed(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.Processed += n
}

// AddCounters folds per-kind throughput deltas into the run's counters.
func (c *ExecutorContext) AddCounters(delta run.Counters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.Counters.Extracted += delta.Extracted
	c.metrics.Counters.Transformed += delta.Transformed
	c.metrics.Counters.Validated += delta.Validated
	c.metrics.Counters.Enriched += delta.Enriched
	c.metrics.Counters.Routed += delta.Routed
	c.metrics.Counters.Loaded += delta.Loaded
	c.metrics.Counters.Rejected += delta.Rejected
	c.metrics.Counters.Gated += delta.Gated
}

// RecordStepOutput remembers a completed step's output so a later resume of
// the same ExecutorContext (after a GATE pause, spec §4.6) can skip
// re-executing it and feed its recorded output straight to its successors.
func (c *ExecutorContext) RecordStepOutput(key string, records []record.Record, branches record.BranchOutput) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed[key] = true
	c.outputs[key] = records
	if branches != nil {
		c.branches[key] = branches
	}
}

// IsCompleted reports whether key has already run to completion on this
// ExecutorContext.
func (c *ExecutorContext) IsCompleted(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed[key]
}

// CompletedState returns copies of every previously recorded step output and
// branch set, plus the set of completed step keys, for an orchestrator to
// seed a resumed run with.
func (c *ExecutorContext) CompletedState() (map[string][]record.Record, map[string]record.BranchOutput, map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	outputs := make(map[string][]record.Record, len(c.outputs))
	for k, v := range c.outputs {
		outputs[k] = v
	}
	branches := make(map[string]record.BranchOutput, len(c.branches))
	for k, v := range c.branches {
		branches[k] = v
	}
	completed := make(map[string]bool, len(c.completed))
	for k, v := range c.completed {
		completed[k] = v
	}
	return outputs, branches, completed
}
