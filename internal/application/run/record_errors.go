package run

import (
	"context"
	"fmt"

	"github.com/oronts/datahub/internal/domain/record"
)

// RetryError applies patch as a shallow merge onto a quarantined record's
// payload, clears its dead-letter flag, and appends an audit row (spec §6
// "retryError(errorId, patch?)"). The patched record does not automatically
// re-enter the loader framework; a supervisory layer re-submits it as part
// of a fresh or resumed run and, once that resubmission succeeds, calls
// ResolveError to terminate the error's lifecycle.
func (s *Service) RetryError(ctx context.Context, errorID string, patch record.Record, userID string) (Result, error) {
	e, err := s.deps.Errors.Get(ctx, errorID)
	if err != nil {
		return failed(fmt.Sprintf("record error %s not found", errorID)), nil
	}

	auditID := s.deps.NewID()
	e.Retry(auditID, userID, patch, s.deps.Now())

	if err := s.deps.Errors.Update(ctx, e); err != nil {
		return failed(fmt.Sprintf("persist retried record error: %v", err)), nil
	}

	return ok(fmt.Sprintf("record error %s retried", errorID)), nil
}

// MarkDeadLetter sets or clears a quarantined record's dead-letter flag.
func (s *Service) MarkDeadLetter(ctx context.Context, errorID string, deadLetter bool) (Result, error) {
	e, err := s.deps.Errors.Get(ctx, errorID)
	if err != nil {
		return failed(fmt.Sprintf("record error %s not found", errorID)), nil
	}

	e.MarkDeadLetter(deadLetter)

	if err := s.deps.Errors.Update(ctx, e); err != nil {
		return failed(fmt.Sprintf("persist record error: %v", err)), nil
	}

	if deadLetter {
		return ok(fmt.Sprintf("record error %s marked as dead letter", errorID)), nil
	}
	return ok(fmt.Sprintf("record error %s cleared from dead letter", errorID)), nil
}

// ResolveError terminates a quarantined record's lifecycle by unmarking it:
// the caller has confirmed the (possibly retried) payload was successfully
// reprocessed, so the error no longer needs attention (spec §3 "terminated
// by unmark").
func (s *Service) ResolveError(ctx context.Context, errorID string) (Result, error) {
	e, err := s.deps.Errors.Get(ctx, errorID)
	if err != nil {
		return failed(fmt.Sprintf("record error %s not found", errorID)), nil
	}

	e.Unmark()

	if err := s.deps.Errors.Update(ctx, e); err != nil {
		return failed(fmt.Sprintf("persist record error: %v", err)), nil
	}

	return ok(fmt.Sprintf("record error %s resolved", errorID)), nil
}
