package run_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oronts/datahub/internal/application/engine"
	applicationgate "github.com/oronts/datahub/internal/application/gate"
	applicationrun "github.com/oronts/datahub/internal/application/run"
	"github.com/oronts/datahub/internal/domain/checkpoint"
	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/domain/recorderror"
	"github.com/oronts/datahub/internal/infrastructure/memstore"
	"github.com/oronts/datahub/internal/ports"
)

type fakeConfigLoader struct {
	defs map[string]*pipeline.PipelineDefinition
}

func (f *fakeConfigLoader) Load(_ context.Context, path string) (*pipeline.PipelineDefinition, error) {
	def, ok := f.defs[path]
	if !ok {
		return nil, assert.AnError
	}
	return def, nil
}

func (f *fakeConfigLoader) Validate(context.Context, string) error { return nil }

type memCheckpointStore struct {
	data map[string]*checkpoint.Checkpoint
}

func newMemCheckpointStore() *memCheckpointStore {
	return &memCheckpointStore{data: make(map[string]*checkpoint.Checkpoint)}
}

func (m *memCheckpointStore) Load(_ context.Context, runID string) (*checkpoint.Checkpoint, error) {
	if cp, ok := m.data[runID]; ok {
		return cp, nil
	}
	return checkpoint.New(), nil
}

func (m *memCheckpointStore) Save(_ context.Context, runID string, cp *checkpoint.Checkpoint) error {
	m.data[runID] = cp
	cp.ClearDirty()
	return nil
}

type stubSinkExecutor struct{ calls int }

func (s *stubSinkExecutor) Execute(_ context.Context, req ports.ExecutorRequest) (ports.ExecutorResponse, error) {
	s.calls++
	return ports.ExecutorResponse{OK: len(req.Input), Output: req.Input}, nil
}

func newTestService(t *testing.T, defs map[string]*pipeline.PipelineDefinition) (*applicationrun.Service, *stubSinkExecutor, *memstore.RunStore, *memstore.RecordErrorStore) {
	t.Helper()
	executors := memstore.NewExecutorRegistry()
	sink := &stubSinkExecutor{}
	require.NoError(t, executors.Register("stub-sink", sink))

	gateController := applicationgate.NewController()
	deps := engine.OrchestratorDeps{
		Topology:   engine.NewTopology(),
		Dispatcher: engine.NewDispatcher(nil),
		Executors:  executors,
		Gate:       gateController,
	}

	runStore := memstore.NewRunStore()
	errorStore := memstore.NewRecordErrorStore()

	svc := applicationrun.NewService(applicationrun.Dependencies{
		Runs:        runStore,
		Consumers:   memstore.NewConsumerStore(),
		Errors:      errorStore,
		Checkpoints: newMemCheckpointStore(),
		Configs:     &fakeConfigLoader{defs: defs},
		Gate:        gateController,
		Graph:       engine.NewGraphOrchestrator(deps),
		Linear:      engine.NewLinearOrchestrator(deps),
	})
	return svc, sink, runStore, errorStore
}

func sinkOnlyDefinition() *pipeline.PipelineDefinition {
	return &pipeline.PipelineDefinition{
		Version: 1,
		Name:    "sink-only",
		Steps: []pipeline.StepDefinition{
			{Key: "trigger1", Type: pipeline.StepTrigger},
			{Key: "sink1", Type: pipeline.StepSink, Config: map[string]interface{}{"adapterCode": "stub-sink"}},
		},
	}
}

func gateDefinition() *pipeline.PipelineDefinition {
	return &pipeline.PipelineDefinition{
		Version: 1,
		Name:    "gated",
		Steps: []pipeline.StepDefinition{
			{Key: "trigger1", Type: pipeline.StepTrigger},
			{Key: "gate1", Type: pipeline.StepGate},
			{Key: "sink1", Type: pipeline.StepSink, Config: map[string]interface{}{"adapterCode": "stub-sink"}},
		},
	}
}

func TestRunPipelineCompletesAndCallsSinkOnce(t *testing.T) {
	svc, sink, _, _ := newTestService(t, map[string]*pipeline.PipelineDefinition{"sink-only": sinkOnlyDefinition()})

	res, err := svc.RunPipeline(context.Background(), "sink-only")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, sink.calls)
}

func TestRunPipelineUnknownPathFails(t *testing.T) {
	svc, _, _, _ := newTestService(t, map[string]*pipeline.PipelineDefinition{})

	res, err := svc.RunPipeline(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestRunPipelinePausesAtGateAndApproveResumes(t *testing.T) {
	svc, sink, runStore, _ := newTestService(t, map[string]*pipeline.PipelineDefinition{"gated": gateDefinition()})

	res, err := svc.RunPipeline(context.Background(), "gated")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "paused at step gate1")
	assert.Equal(t, 0, sink.calls)

	runID := findLiveRunID(t, runStore, "gated")

	res, err = svc.ApproveGate(context.Background(), runID, "gate1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "completed")
	assert.Equal(t, 1, sink.calls)
}

func TestRunPipelineRejectGateCancelsRun(t *testing.T) {
	svc, sink, runStore, _ := newTestService(t, map[string]*pipeline.PipelineDefinition{"gated": gateDefinition()})

	_, err := svc.RunPipeline(context.Background(), "gated")
	require.NoError(t, err)

	runID := findLiveRunID(t, runStore, "gated")

	res, err := svc.RejectGate(context.Background(), runID, "gate1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 0, sink.calls)

	_, err = svc.ApproveGate(context.Background(), runID, "gate1")
	require.NoError(t, err)
}

func TestCancelRunRejectsTerminalRun(t *testing.T) {
	svc, _, runStore, _ := newTestService(t, map[string]*pipeline.PipelineDefinition{"sink-only": sinkOnlyDefinition()})

	_, err := svc.RunPipeline(context.Background(), "sink-only")
	require.NoError(t, err)

	runID := findLiveRunID(t, runStore, "sink-only")

	res, err := svc.CancelRun(context.Background(), runID)
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestRetryErrorAndMarkDeadLetter(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)

	res, err := svc.RetryError(context.Background(), "missing", record.Record{}, "user-1")
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = svc.MarkDeadLetter(context.Background(), "missing", true)
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = svc.ResolveError(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestResolveErrorMarksRecordResolved(t *testing.T) {
	svc, _, _, errorStore := newTestService(t, nil)

	e := recorderror.New("e1", "r1", "load", "duplicate", "DUPLICATE", record.Record{}, time.Now())
	require.NoError(t, errorStore.Create(context.Background(), &e))

	res, err := svc.ResolveError(context.Background(), "e1")
	require.NoError(t, err)
	assert.True(t, res.Success)

	stored, err := errorStore.Get(context.Background(), "e1")
	require.NoError(t, err)
	assert.True(t, stored.Resolved)
}

func TestStartAndStopConsumerWithoutBroker(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)

	res, err := svc.StartConsumer(context.Background(), "pipe-1")
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = svc.StartConsumer(context.Background(), "pipe-1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, "already active")

	res, err = svc.StopConsumer(context.Background(), "pipe-1")
	require.NoError(t, err)
	assert.True(t, res.Success)
}

// findLiveRunID recovers the run ID RunPipeline generated by listing runs
// for pipelineID; tests never see the generated ID directly since
// RunPipeline's Result carries only a human-readable message.
func findLiveRunID(t *testing.T, runStore *memstore.RunStore, pipelineID string) string {
	t.Helper()
	runs, err := runStore.ListByPipeline(context.Background(), pipelineID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	return runs[0].RunID
}
