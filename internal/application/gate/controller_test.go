package gate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oronts/datahub/internal/application/engine"
	"github.com/oronts/datahub/internal/application/gate"
	"github.com/oronts/datahub/internal/domain/checkpoint"
	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/domain/record"
)

func newExecCtx() *engine.ExecutorContext {
	return engine.NewExecutorContext("run-1", "pipe-1", nil, nil, nil, nil)
}

func TestEvaluateManualPausesAndRecordsCheckpoint(t *testing.T) {
	c := gate.NewController()
	execCtx := newExecCtx()
	input := []record.Record{{}, {}, {}}

	outcome, err := c.Evaluate(nil, "run-1", "pipe-1", pipeline.StepDefinition{Key: "gate1"}, execCtx, input)
	require.NoError(t, err)
	assert.True(t, outcome.ShouldPause)
	assert.Len(t, outcome.Preview, 3)

	gp, ok := execCtx.Checkpoint().GatePause("gate1")
	require.True(t, ok)
	assert.Equal(t, "gate1", gp.StepKey)
	assert.Equal(t, 3, gp.PendingRecordCount)
}

func TestEvaluateThresholdAutoApprovesWithoutPausing(t *testing.T) {
	c := gate.NewController()
	execCtx := newExecCtx()
	execCtx.Checkpoint().SetStats(checkpoint.PipelineStats{SuccessCount: 98, ErrorCount: 2})

	cfg := map[string]interface{}{"approvalType": "THRESHOLD", "errorThresholdPercent": 5.0}
	outcome, err := c.Evaluate(nil, "run-1", "pipe-1", pipeline.StepDefinition{Key: "gate1", Config: cfg}, execCtx, nil)
	require.NoError(t, err)
	assert.False(t, outcome.ShouldPause)

	_, ok := execCtx.Checkpoint().GatePause("gate1")
	assert.False(t, ok)
}

func TestEvaluateThresholdPausesWhenAtOrAboveThreshold(t *testing.T) {
	c := gate.NewController()
	execCtx := newExecCtx()
	execCtx.Checkpoint().SetStats(checkpoint.PipelineStats{SuccessCount: 95, ErrorCount: 5})

	cfg := map[string]interface{}{"approvalType": "THRESHOLD", "errorThresholdPercent": 5.0}
	outcome, err := c.Evaluate(nil, "run-1", "pipe-1", pipeline.StepDefinition{Key: "gate1", Config: cfg}, execCtx, nil)
	require.NoError(t, err)
	assert.True(t, outcome.ShouldPause)
}

func TestEvaluateTimeoutWritesGateTimeoutEntry(t *testing.T) {
	c := gate.NewController()
	execCtx := newExecCtx()

	cfg := map[string]interface{}{"approvalType": "TIMEOUT", "timeoutSeconds": 60}
	outcome, err := c.Evaluate(nil, "run-1", "pipe-1", pipeline.StepDefinition{Key: "gate1", Config: cfg}, execCtx, nil)
	require.NoError(t, err)
	assert.True(t, outcome.ShouldPause)

	v, ok := execCtx.Checkpoint().Get(checkpoint.GateTimeoutKey("gate1"))
	require.True(t, ok)
	gt, ok := v.(checkpoint.GateTimeout)
	require.True(t, ok)
	assert.Equal(t, "gate1", gt.StepKey)
	assert.True(t, gt.ExpiresAt.After(time.Now()))
}

func TestApproveClearsGatePauseAndTimeout(t *testing.T) {
	c := gate.NewController()
	execCtx := newExecCtx()
	input := []record.Record{{}}

	cfg := map[string]interface{}{"approvalType": "TIMEOUT", "timeoutSeconds": 60}
	_, err := c.Evaluate(nil, "run-1", "pipe-1", pipeline.StepDefinition{Key: "gate1", Config: cfg}, execCtx, input)
	require.NoError(t, err)

	gp, err := c.Approve(execCtx, "gate1")
	require.NoError(t, err)
	assert.Len(t, gp.PendingRecords, 1)

	_, ok := execCtx.Checkpoint().GatePause("gate1")
	assert.False(t, ok)
	_, ok = execCtx.Checkpoint().Get(checkpoint.GateTimeoutKey("gate1"))
	assert.False(t, ok)
}

func TestRejectAndUnknownStepErrors(t *testing.T) {
	c := gate.NewController()
	execCtx := newExecCtx()

	_, err := c.Reject(execCtx, "missing")
	assert.ErrorIs(t, err, gate.ErrNoPendingGate)

	_, err = c.Evaluate(nil, "run-1", "pipe-1", pipeline.StepDefinition{Key: "gate1"}, execCtx, nil)
	require.NoError(t, err)

	gp, err := c.Reject(execCtx, "gate1")
	require.NoError(t, err)
	assert.Equal(t, "gate1", gp.StepKey)
}
