// Package rungate implements the GATE step's state machine and the pure
// threshold decision it evaluates against a run's checkpoint stats.
package rungate

import (
	"fmt"

	"github.com/oronts/datahub/internal/domain/checkpoint"
)

// State is one state of a GATE step.
type State string

const (
	StateOpen         State = "OPEN"
	StateEvaluating   State = "EVALUATING"
	StateAutoApproved State = "AUTO_APPROVED"
	StatePaused       State = "PAUSED"
	StateApproved     State = "APPROVED"
	StateRejected     State = "REJECTED"
	StateExpired      State = "EXPIRED"
)

// ApprovalType selects the gate's evaluation policy.
type ApprovalType string

const (
	ApprovalManual    ApprovalType = "MANUAL"
	ApprovalThreshold ApprovalType = "THRESHOLD"
	ApprovalTimeout   ApprovalType = "TIMEOUT"
)

// Policy is a GATE step's config, as documented in the step config schema.
type Policy struct {
	ApprovalType          ApprovalType
	ErrorThresholdPercent *float64
	TimeoutSeconds        int
	PreviewCount          int
	NotifyWebhook         string
	NotifyEmail           string
}

// EffectivePreviewCount returns PreviewCount with the documented default of
// 10 applied.
func (p Policy) EffectivePreviewCount() int {
	if p.PreviewCount <= 0 {
		return 10
	}
	return p.PreviewCount
}

// allowedTransitions mirrors the state machine in the component design:
// OPEN → EVALUATING on first entry; EVALUATING → AUTO_APPROVED or PAUSED;
// PAUSED → APPROVED or REJECTED. EXPIRED is reachable only from PAUSED by a
// background sweeper, which this implementation does not run (see the
// TIMEOUT handling note in Evaluate).
var allowedTransitions = map[State]map[State]bool{
	StateOpen: {
		StateEvaluating: true,
	},
	StateEvaluating: {
		StateAutoApproved: true,
		StatePaused:       true,
	},
	StatePaused: {
		StateApproved: true,
		StateRejected: true,
		StateExpired:  true,
	},
}

// ValidateTransition returns an error unless to is reachable from from.
func ValidateTransition(from, to State) error {
	if allowedTransitions[from][to] {
		return nil
	}
	return fmt.Errorf("rungate: invalid transition %s -> %s", from, to)
}

// Evaluate decides whether a GATE step auto-approves or pauses, implementing
// property 9: THRESHOLD auto-approves iff errorThresholdPercent is unset, OR
// the total processed count is zero, OR the error rate is strictly below
// the threshold. MANUAL always pauses. TIMEOUT is currently materialized as
// PAUSED; the gate Controller in internal/application/gate writes its
// expiresAt checkpoint entry.
func Evaluate(policy Policy, stats checkpoint.PipelineStats) State {
	switch policy.ApprovalType {
	case ApprovalThreshold:
		total := stats.ErrorCount + stats.SuccessCount
		// total == 0 covers both a genuinely empty batch and stats that were
		// never recorded (missing vs. present-but-zero are indistinguishable
		// here); both auto-approve per property 9 / S6 rather than pausing.
		if policy.ErrorThresholdPercent == nil || total == 0 {
			return StateAutoApproved
		}
		rate := 100 * float64(stats.ErrorCount) / float64(total)
		if rate < *policy.ErrorThresholdPercent {
			return StateAutoApproved
		}
		return StatePaused
	case ApprovalTimeout:
		return StatePaused
	default:
		return StatePaused
	}
}
