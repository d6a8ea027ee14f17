package run

import (
	"context"
	"fmt"

	"github.com/oronts/datahub/internal/domain/run"
)

// CancelRun flags runID for cooperative cancellation (spec §5): the flag is
// observed by the running RunPipeline/ApproveGate call between steps, which
// transitions the run through CANCEL_REQUESTED to CANCELLED and returns.
// CancelRun itself does not block for that to happen.
func (s *Service) CancelRun(ctx context.Context, runID string) (Result, error) {
	r, err := s.deps.Runs.Get(ctx, runID)
	if err != nil {
		return failed(fmt.Sprintf("run %s not found", runID)), nil
	}
	if r.Status == run.StatusPaused {
		return failed(fmt.Sprintf("run %s is paused awaiting gate approval; use RejectGate to cancel it", runID)), nil
	}
	if !r.IsActive() {
		return failed(fmt.Sprintf("run %s is already in terminal status %s", runID, r.Status)), nil
	}

	if !s.requestCancel(runID) {
		return failed(fmt.Sprintf("run %s has no active execution to cancel", runID)), nil
	}

	if err := r.Transition(run.StatusCancelRequested); err == nil {
		_ = s.deps.Runs.Update(ctx, r)
	}

	return ok(fmt.Sprintf("cancellation requested for run %s", runID)), nil
}
