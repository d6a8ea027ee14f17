package run_test

import (
	"testing"

	"github.com/oronts/datahub/internal/domain/run"
	"github.com/stretchr/testify/assert"
)

func TestValidateTransitionHappyPaths(t *testing.T) {
	cases := []struct {
		from, to run.Status
	}{
		{run.StatusPending, run.StatusRunning},
		{run.StatusRunning, run.StatusPaused},
		{run.StatusPaused, run.StatusRunning},
		{run.StatusPaused, run.StatusCancelled},
		{run.StatusRunning, run.StatusCancelRequested},
		{run.StatusCancelRequested, run.StatusCancelled},
		{run.StatusRunning, run.StatusCompleted},
		{run.StatusRunning, run.StatusFailed},
		{run.StatusRunning, run.StatusTimeout},
	}
	for _, tc := range cases {
		assert.NoError(t, run.ValidateTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidateTransitionRejectsTerminalExit(t *testing.T) {
	assert.Error(t, run.ValidateTransition(run.StatusCompleted, run.StatusRunning))
	assert.Error(t, run.ValidateTransition(run.StatusFailed, run.StatusPaused))
}

func TestValidateTransitionRejectsSkips(t *testing.T) {
	assert.Error(t, run.ValidateTransition(run.StatusPending, run.StatusCompleted))
	assert.Error(t, run.ValidateTransition(run.StatusPaused, run.StatusFailed))
}
