package run_test

import (
	"testing"

	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/domain/run"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTransition(t *testing.T) {
	r := &run.Run{RunID: "r1", Status: run.StatusPending}
	require.NoError(t, r.Transition(run.StatusRunning))
	assert.Equal(t, run.StatusRunning, r.Status)

	require.NoError(t, r.Transition(run.StatusCompleted))
	assert.True(t, r.Status.IsTerminal())
	assert.False(t, r.FinishedAt.IsZero())
}

func TestRunTransitionRejectsInvalid(t *testing.T) {
	r := &run.Run{RunID: "r1", Status: run.StatusPending}
	assert.Error(t, r.Transition(run.StatusCompleted))
}

func TestMetricsAddDetail(t *testing.T) {
	m := &run.Metrics{}
	m.AddDetail(run.StepDetail{StepKey: "load", Type: pipeline.StepLoad, OK: 3, Fail: 1})
	m.AddDetail(run.StepDetail{StepKey: "gate", Type: pipeline.StepGate, ShouldPause: true})

	assert.Equal(t, 3, m.Succeeded)
	assert.Equal(t, 1, m.Failed)
	assert.True(t, m.Paused)
	assert.Equal(t, "gate", m.PausedAtStep)
	assert.Len(t, m.Details, 2)
}
