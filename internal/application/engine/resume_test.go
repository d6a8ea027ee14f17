package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applicationengine "github.com/oronts/datahub/internal/application/engine"
	applicationgate "github.com/oronts/datahub/internal/application/gate"
	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/infrastructure/memstore"
	"github.com/oronts/datahub/internal/ports"
)

type stubSinkExecutor struct {
	calls int
}

func (s *stubSinkExecutor) Execute(_ context.Context, req ports.ExecutorRequest) (ports.ExecutorResponse, error) {
	s.calls++
	return ports.ExecutorResponse{OK: len(req.Input), Output: req.Input}, nil
}

func linearGateDefinition() *pipeline.PipelineDefinition {
	return &pipeline.PipelineDefinition{
		Version: 1,
		Name:    "gate-resume",
		Steps: []pipeline.StepDefinition{
			{Key: "trigger1", Type: pipeline.StepTrigger},
			{Key: "gate1", Type: pipeline.StepGate},
			{Key: "sink1", Type: pipeline.StepSink, Config: map[string]interface{}{"adapterCode": "stub-sink"}},
		},
	}
}

func TestLinearOrchestratorPausesAtGateAndResumesAfterApproval(t *testing.T) {
	executors := memstore.NewExecutorRegistry()
	sink := &stubSinkExecutor{}
	require.NoError(t, executors.Register("stub-sink", sink))

	gateController := applicationgate.NewController()
	deps := applicationengine.OrchestratorDeps{
		Topology:   applicationengine.NewTopology(),
		Dispatcher: applicationengine.NewDispatcher(nil),
		Executors:  executors,
		Gate:       gateController,
	}
	linear := applicationengine.NewLinearOrchestrator(deps)

	def := linearGateDefinition()
	execCtx := applicationengine.NewExecutorContext("run-1", "gate-resume", nil, nil, nil, nil)

	metrics, err := linear.Run(context.Background(), def, execCtx, "run-1", "gate-resume")
	require.NoError(t, err)
	assert.True(t, metrics.Paused)
	assert.Equal(t, "gate1", metrics.PausedAtStep)
	assert.Equal(t, 0, sink.calls, "sink must not run before the gate is approved")
	assert.True(t, execCtx.IsCompleted("trigger1"))
	assert.True(t, execCtx.IsCompleted("gate1"))
	assert.False(t, execCtx.IsCompleted("sink1"))

	gp, err := gateController.Approve(execCtx, "gate1")
	require.NoError(t, err)
	execCtx.RecordStepOutput("gate1", gp.PendingRecords, nil)

	metrics, err = linear.Run(context.Background(), def, execCtx, "run-1", "gate-resume")
	require.NoError(t, err)
	assert.False(t, metrics.Paused)
	assert.Equal(t, 1, sink.calls, "resume must execute the sink exactly once")

	triggerRuns := 0
	for _, d := range metrics.Details {
		if d.StepKey == "trigger1" {
			triggerRuns++
		}
	}
	assert.Equal(t, 1, triggerRuns, "trigger1 must not be replayed on resume")
}

func TestGraphOrchestratorPausesAtGateAndResumesAfterApproval(t *testing.T) {
	executors := memstore.NewExecutorRegistry()
	sink := &stubSinkExecutor{}
	require.NoError(t, executors.Register("stub-sink", sink))

	gateController := applicationgate.NewController()
	deps := applicationengine.OrchestratorDeps{
		Topology:   applicationengine.NewTopology(),
		Dispatcher: applicationengine.NewDispatcher(nil),
		Executors:  executors,
		Gate:       gateController,
	}
	graph := applicationengine.NewGraphOrchestrator(deps)

	def := linearGateDefinition()
	def.Edges = []pipeline.Edge{
		{From: "trigger1", To: "gate1"},
		{From: "gate1", To: "sink1"},
	}

	execCtx := applicationengine.NewExecutorContext("run-2", "gate-resume", nil, nil, nil, nil)

	metrics, err := graph.Run(context.Background(), def, execCtx, "run-2", "gate-resume")
	require.NoError(t, err)
	assert.True(t, metrics.Paused)
	assert.Equal(t, 0, sink.calls)

	gp, err := gateController.Approve(execCtx, "gate1")
	require.NoError(t, err)
	execCtx.RecordStepOutput("gate1", gp.PendingRecords, nil)

	metrics, err = graph.Run(context.Background(), def, execCtx, "run-2", "gate-resume")
	require.NoError(t, err)
	assert.False(t, metrics.Paused)
	assert.Equal(t, 1, sink.calls)
}

func TestCancelRequestedStopsLinearOrchestratorBetweenSteps(t *testing.T) {
	executors := memstore.NewExecutorRegistry()
	sink := &stubSinkExecutor{}
	require.NoError(t, executors.Register("stub-sink", sink))

	cancelled := true
	deps := applicationengine.OrchestratorDeps{
		Topology:   applicationengine.NewTopology(),
		Dispatcher: applicationengine.NewDispatcher(nil),
		Executors:  executors,
		Gate:       applicationgate.NewController(),
	}
	linear := applicationengine.NewLinearOrchestrator(deps)

	def := linearGateDefinition()
	execCtx := applicationengine.NewExecutorContext("run-3", "gate-resume", nil, nil, nil, func() bool { return cancelled })

	metrics, err := linear.Run(context.Background(), def, execCtx, "run-3", "gate-resume")
	require.NoError(t, err)
	assert.Empty(t, metrics.Details, "no step should execute once cancellation is already requested")
	assert.Equal(t, 0, sink.calls)
}
