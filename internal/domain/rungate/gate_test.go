package rungate_test

import (
	"testing"

	"github.com/oronts/datahub/internal/domain/checkpoint"
	"github.com/oronts/datahub/internal/domain/rungate"
	"github.com/stretchr/testify/assert"
)

func pct(v float64) *float64 { return &v }

func TestEvaluateManualAlwaysPauses(t *testing.T) {
	state := rungate.Evaluate(rungate.Policy{ApprovalType: rungate.ApprovalManual}, checkpoint.PipelineStats{})
	assert.Equal(t, rungate.StatePaused, state)
}

func TestEvaluateThresholdUnsetAutoApproves(t *testing.T) {
	state := rungate.Evaluate(rungate.Policy{ApprovalType: rungate.ApprovalThreshold}, checkpoint.PipelineStats{ErrorCount: 5, SuccessCount: 5})
	assert.Equal(t, rungate.StateAutoApproved, state)
}

func TestEvaluateThresholdNoRecordsAutoApproves(t *testing.T) {
	state := rungate.Evaluate(rungate.Policy{ApprovalType: rungate.ApprovalThreshold, ErrorThresholdPercent: pct(5)}, checkpoint.PipelineStats{})
	assert.Equal(t, rungate.StateAutoApproved, state)
}

func TestEvaluateThresholdBelowAutoApproves(t *testing.T) {
	state := rungate.Evaluate(rungate.Policy{ApprovalType: rungate.ApprovalThreshold, ErrorThresholdPercent: pct(5)}, checkpoint.PipelineStats{ErrorCount: 2, SuccessCount: 98})
	assert.Equal(t, rungate.StateAutoApproved, state)
}

func TestEvaluateThresholdAtOrAbovePauses(t *testing.T) {
	state := rungate.Evaluate(rungate.Policy{ApprovalType: rungate.ApprovalThreshold, ErrorThresholdPercent: pct(5)}, checkpoint.PipelineStats{ErrorCount: 5, SuccessCount: 95})
	assert.Equal(t, rungate.StatePaused, state)
}

func TestEvaluateTimeoutPauses(t *testing.T) {
	state := rungate.Evaluate(rungate.Policy{ApprovalType: rungate.ApprovalTimeout}, checkpoint.PipelineStats{})
	assert.Equal(t, rungate.StatePaused, state)
}

func TestValidateTransition(t *testing.T) {
	assert.NoError(t, rungate.ValidateTransition(rungate.StateOpen, rungate.StateEvaluating))
	assert.NoError(t, rungate.ValidateTransition(rungate.StatePaused, rungate.StateApproved))
	assert.Error(t, rungate.ValidateTransition(rungate.StateOpen, rungate.StateApproved))
}
