package run

import (
	"context"
	"fmt"

	"github.com/oronts/datahub/internal/application/gate"
	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/ports"
)

// ApproveGate resolves a PAUSED run's gate at stepKey and resumes execution
// from the gate step's recorded pending records, replaying the orchestrator
// over whatever steps follow it (spec §4.4, §8 "idempotent resume").
// Resume requires the run's executor context to still be live in this
// Service instance: a gate paused by a prior process is not resumable after
// a restart, since only the gate's own checkpoint entry (not every
// completed step's output) survives a process boundary.
func (s *Service) ApproveGate(ctx context.Context, runID, stepKey string) (Result, error) {
	r, lr, failure := s.loadPausedRun(ctx, runID)
	if failure != nil {
		return *failure, nil
	}

	gp, err := s.deps.Gate.Approve(lr.execCtx, stepKey)
	if err != nil {
		if err == gate.ErrNoPendingGate || err == gate.ErrGateMismatch {
			return failed(err.Error()), nil
		}
		return failed(fmt.Sprintf("approve gate: %v", err)), nil
	}

	lr.execCtx.RecordStepOutput(stepKey, gp.PendingRecords, nil)
	return s.execute(ctx, r, lr.def), nil
}

// RejectGate resolves a PAUSED run's gate at stepKey and cancels the run
// outright (spec §7 "Gate rejection: terminates the run as CANCELLED, not
// FAILED").
func (s *Service) RejectGate(ctx context.Context, runID, stepKey string) (Result, error) {
	r, lr, failure := s.loadPausedRun(ctx, runID)
	if failure != nil {
		return *failure, nil
	}

	if _, err := s.deps.Gate.Reject(lr.execCtx, stepKey); err != nil {
		if err == gate.ErrNoPendingGate || err == gate.ErrGateMismatch {
			return failed(err.Error()), nil
		}
		return failed(fmt.Sprintf("reject gate: %v", err)), nil
	}

	if err := r.Transition(run.StatusCancelled); err != nil {
		return failed(err.Error()), nil
	}
	_ = s.deps.Runs.Update(ctx, r)
	s.clearLive(runID)
	s.publish(ctx, ports.EventPipelineRunCancelled, map[string]interface{}{"runId": runID, "stepKey": stepKey})

	return ok(fmt.Sprintf("run %s cancelled via gate rejection at %s", runID, stepKey)), nil
}

func (s *Service) loadPausedRun(ctx context.Context, runID string) (*run.Run, *liveRun, *Result) {
	r, err := s.deps.Runs.Get(ctx, runID)
	if err != nil {
		f := failed(fmt.Sprintf("run %s not found", runID))
		return nil, nil, &f
	}
	if r.Status != run.StatusPaused {
		f := failed(fmt.Sprintf("run %s is not paused (status %s)", runID, r.Status))
		return nil, nil, &f
	}
	lr, ok := s.getLive(runID)
	if !ok {
		f := failed(fmt.Sprintf("run %s has no live execution context to resume", runID))
		return nil, nil, &f
	}
	return r, lr, nil
}
