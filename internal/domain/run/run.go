package run

import "time"

// Run is one execution of a pipeline definition.
type Run struct {
	RunID           string
	PipelineID      string
	Status          Status
	StartedAt       time.Time
	FinishedAt      time.Time
	StartedByUserID string
	Metrics         Metrics
	Error           string
}

// Transition moves the run to the target status, validating it against the
// run state machine first.
func (r *Run) Transition(to Status) error {
	if err := ValidateTransition(r.Status, to); err != nil {
		return err
	}
	r.Status = to
	if to.IsTerminal() {
		r.FinishedAt = time.Now()
	}
	return nil
}

// IsActive reports whether the run has not yet reached a terminal status.
func (r *Run) IsActive() bool {
	return !r.Status.IsTerminal()
}
