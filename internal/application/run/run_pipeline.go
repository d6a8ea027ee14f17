package run

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/oronts/datahub/internal/application/engine"
	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/ports"
)

// RunPipeline loads the pipeline definition named by pipelineID (the
// ConfigLoader's `path` argument doubles as the pipeline identifier: a
// separate pipeline-ID-to-path registry is an external concern this
// package does not model), executes it start to finish, and returns once
// the run reaches COMPLETED, FAILED, PAUSED, or CANCELLED.
func (s *Service) RunPipeline(ctx context.Context, pipelineID string) (Result, error) {
	def, err := s.deps.Configs.Load(ctx, pipelineID)
	if err != nil {
		return failed(fmt.Sprintf("load pipeline %s: %v", pipelineID, err)), nil
	}

	runID := s.deps.NewID()
	r := &run.Run{
		RunID:      runID,
		PipelineID: pipelineID,
		Status:     run.StatusPending,
		StartedAt:  s.deps.Now(),
	}
	if err := s.deps.Runs.Create(ctx, r); err != nil {
		return failed(fmt.Sprintf("create run record: %v", err)), nil
	}

	return s.execute(ctx, r, def), nil
}

// execute transitions r to RUNNING, drives the appropriate orchestrator to
// completion or pause, and persists the resulting state. It is shared by
// RunPipeline (fresh start) and ApproveGate (resume).
func (s *Service) execute(ctx context.Context, r *run.Run, def *pipeline.PipelineDefinition) Result {
	if err := r.Transition(run.StatusRunning); err != nil {
		return failed(err.Error())
	}
	if err := s.deps.Runs.Update(ctx, r); err != nil {
		return failed(fmt.Sprintf("update run record: %v", err))
	}
	s.publish(ctx, ports.EventPipelineStarted, map[string]interface{}{"runId": r.RunID, "pipelineId": r.PipelineID})

	lr, ok := s.getLive(r.RunID)
	var execCtx *engine.ExecutorContext
	var flag *int32
	if ok {
		execCtx = lr.execCtx
		s.mu.Lock()
		flag = s.cancelFlags[r.RunID]
		s.mu.Unlock()
	} else {
		cp, err := s.deps.Checkpoints.Load(ctx, r.RunID)
		if err != nil {
			return failed(fmt.Sprintf("load checkpoint: %v", err))
		}
		flag = s.newCancelFlag(r.RunID)
		execCtx = engine.NewExecutorContext(r.RunID, r.PipelineID, s.deps.Checkpoints, cp, nil, s.cancelRequested(flag))
		s.setLive(r.RunID, &liveRun{execCtx: execCtx, def: def})
	}

	var metrics *run.Metrics
	var runErr error
	if def.HasEdges() {
		metrics, runErr = s.deps.Graph.Run(ctx, def, execCtx, r.RunID, r.PipelineID)
	} else {
		metrics, runErr = s.deps.Linear.Run(ctx, def, execCtx, r.RunID, r.PipelineID)
	}

	if err := execCtx.PersistCheckpoint(ctx); err != nil && s.deps.Logger != nil {
		s.deps.Logger.Warn(ctx, "run: persist checkpoint failed", "run_id", r.RunID, "error", err)
	}

	return s.finalize(ctx, r, metrics, runErr, flag)
}

func (s *Service) finalize(ctx context.Context, r *run.Run, metrics *run.Metrics, runErr error, flag *int32) Result {
	r.Metrics = *metrics

	cancelled := flag != nil && atomic.LoadInt32(flag) == 1

	switch {
	case runErr != nil:
		r.Error = runErr.Error()
		_ = r.Transition(run.StatusFailed)
		s.deps.Runs.Update(ctx, r)
		s.clearLive(r.RunID)
		s.publish(ctx, ports.EventPipelineFailed, map[string]interface{}{"runId": r.RunID, "pipelineId": r.PipelineID, "reason": r.Error})
		return failed(fmt.Sprintf("run %s failed: %v", r.RunID, runErr))

	case cancelled:
		_ = r.Transition(run.StatusCancelRequested)
		_ = r.Transition(run.StatusCancelled)
		s.deps.Runs.Update(ctx, r)
		s.clearLive(r.RunID)
		return ok(fmt.Sprintf("run %s cancelled", r.RunID))

	case metrics.Paused:
		_ = r.Transition(run.StatusPaused)
		s.deps.Runs.Update(ctx, r)
		return ok(fmt.Sprintf("run %s paused at step %s", r.RunID, metrics.PausedAtStep))

	default:
		_ = r.Transition(run.StatusCompleted)
		s.deps.Runs.Update(ctx, r)
		s.clearLive(r.RunID)
		s.publish(ctx, ports.EventPipelineCompleted, map[string]interface{}{"runId": r.RunID, "pipelineId": r.PipelineID, "processed": metrics.Processed, "succeeded": metrics.Succeeded, "failed": metrics.Failed})
		return ok(fmt.Sprintf("run %s completed", r.RunID))
	}
}
