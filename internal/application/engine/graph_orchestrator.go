package engine

import (
	"context"
	"sync"

	"github.com/oronts/datahub/internal/application/hooks"
	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/ports"
)

// OrchestratorDeps bundles every collaborator a step dispatch needs for the
// duration of a run; both the Graph and Linear Orchestrators share it.
type OrchestratorDeps struct {
	Topology          ports.TopologyBuilder
	Dispatcher        *Dispatcher
	Hooks             *hooks.Service
	Events            ports.EventPublisher
	StepLog           ports.StepLogSink
	Executors         ports.ExecutorRegistry
	Loaders           ports.LoaderRegistry
	IdempotencyFilter ports.IdempotencyFilter
	Gate              GateEvaluator
	OnRecordError     RecordErrorReporter
	Logger            ports.Logger
}

type stepOutcome struct {
	stepKey string
	result  StrategyResult
	err     error
}

// GraphOrchestrator executes a pipeline's explicit DAG: sequential or
// bounded-parallel, honoring GATE pauses, cancellation, and the parallel
// mode's error policy (spec §4.3), generalizing the teacher's level-barrier
// Execute loop (internal/engine/executor.go) into a live ready-queue
// scheduler.
type GraphOrchestrator struct {
	deps OrchestratorDeps
}

// NewGraphOrchestrator constructs a GraphOrchestrator over deps.
func NewGraphOrchestrator(deps OrchestratorDeps) *GraphOrchestrator {
	return &GraphOrchestrator{deps: deps}
}

// Run executes def's DAG to completion, to a GATE pause, or to cancellation,
// returning the run's accumulated metrics.
func (o *GraphOrchestrator) Run(ctx context.Context, def *pipeline.PipelineDefinition, execCtx *ExecutorContext, runID, pipelineID string) (*run.Metrics, error) {
	topo, err := o.deps.Topology.Build(*def)
	if err != nil {
		return execCtx.Metrics(), err
	}

	parallel := def.EffectiveParallelExecution()
	if parallel.Enabled {
		return o.runParallel(ctx, def, execCtx, topo, parallel, runID, pipelineID)
	}
	return o.runSequential(ctx, def, execCtx, topo, runID, pipelineID)
}

func (o *GraphOrchestrator) runSequential(ctx context.Context, def *pipeline.PipelineDefinition, execCtx *ExecutorContext, topo ports.Topology, runID, pipelineID string) (*run.Metrics, error) {
	steps := indexSteps(def.Steps)
	indegree, queue, outputs, branches, done := initRunState(def, topo, execCtx)

	completed, total := done, len(def.Steps)

	for len(queue) > 0 {
		if execCtx.OnCancelRequested() {
			publishRunEvent(o.deps, ctx, runID, pipelineID, ports.EventPipelineRunCancelled, nil)
			return execCtx.Metrics(), nil
		}

		key := queue[0]
		queue = queue[1:]
		step, ok := steps[key]
		if !ok {
			continue
		}

		input := gatherInput(key, topo, outputs, branches)
		sctx := strategyContextFor(o.deps, ctx, def, *step, input, execCtx, runID, pipelineID)
		result, err := o.deps.Dispatcher.Dispatch(sctx)
		if err != nil {
			execCtx.AddOutcomes(0, 1)
			return execCtx.Metrics(), err
		}

		foldStrategyResult(execCtx, result)
		outputs[key] = result.Records
		if result.Branches != nil {
			branches[key] = result.Branches
		}
		execCtx.RecordStepOutput(key, result.Records, result.Branches)
		completed++
		publishProgressEvent(o.deps, ctx, runID, pipelineID, completed, total, key, execCtx.Metrics())

		if result.Detail.ShouldPause {
			execCtx.MarkCheckpointDirty()
			publishRunEvent(o.deps, ctx, runID, pipelineID, ports.EventPipelinePaused, map[string]interface{}{"stepKey": key})
			return execCtx.Metrics(), nil
		}

		for _, succ := range topo.Successors[key] {
			indegree[succ]--
			if indegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	return execCtx.Metrics(), nil
}

func (o *GraphOrchestrator) runParallel(ctx context.Context, def *pipeline.PipelineDefinition, execCtx *ExecutorContext, topo ports.Topology, parallel pipeline.ParallelExecution, runID, pipelineID string) (*run.Metrics, error) {
	steps := indexSteps(def.Steps)
	indegree, queue, outputs, branches, done := initRunState(def, topo, execCtx)

	var mu sync.Mutex
	resultCh := make(chan stepOutcome)

	inFlight := 0
	completed, total := done, len(def.Steps)
	var firstErr error
	paused := false
	cancelled := false

	launch := func(key string) {
		step := steps[key]
		mu.Lock()
		input := gatherInput(key, topo, outputs, branches)
		mu.Unlock()
		sctx := strategyContextFor(o.deps, ctx, def, *step, input, execCtx, runID, pipelineID)
		inFlight++
		go func() {
			result, err := o.deps.Dispatcher.Dispatch(sctx)
			resultCh <- stepOutcome{stepKey: key, result: result, err: err}
		}()
	}

	for {
		cancelled = execCtx.OnCancelRequested()
		if !cancelled && !paused && firstErr == nil {
			for len(queue) > 0 && inFlight < parallel.MaxConcurrentSteps {
				key := queue[0]
				queue = queue[1:]
				launch(key)
			}
		}
		if inFlight == 0 {
			break
		}

		outcome := <-resultCh
		inFlight--

		if outcome.err != nil {
			execCtx.AddOutcomes(0, 1)
			if parallel.ErrorPolicy == pipeline.BestEffort {
				if o.deps.Logger != nil {
					o.deps.Logger.Warn(ctx, "graph orchestrator: step failed", "step_key", outcome.stepKey, "error", outcome.err)
				}
			} else if firstErr == nil {
				firstErr = outcome.err
			}
			continue
		}

		foldStrategyResult(execCtx, outcome.result)
		mu.Lock()
		outputs[outcome.stepKey] = outcome.result.Records
		if outcome.result.Branches != nil {
			branches[outcome.stepKey] = outcome.result.Branches
		}
		mu.Unlock()
		execCtx.RecordStepOutput(outcome.stepKey, outcome.result.Records, outcome.result.Branches)
		completed++
		publishProgressEvent(o.deps, ctx, runID, pipelineID, completed, total, outcome.stepKey, execCtx.Metrics())

		if outcome.result.Detail.ShouldPause {
			paused = true
			execCtx.MarkCheckpointDirty()
			publishRunEvent(o.deps, ctx, runID, pipelineID, ports.EventPipelinePaused, map[string]interface{}{"stepKey": outcome.stepKey})
			continue
		}

		if cancelled || firstErr != nil {
			continue
		}

		mu.Lock()
		for _, succ := range topo.Successors[outcome.stepKey] {
			indegree[succ]--
			if indegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
		mu.Unlock()
	}

	if cancelled {
		publishRunEvent(o.deps, ctx, runID, pipelineID, ports.EventPipelineRunCancelled, nil)
		return execCtx.Metrics(), nil
	}
	if firstErr != nil {
		return execCtx.Metrics(), firstErr
	}
	return execCtx.Metrics(), nil
}

// initRunState builds the ready-queue scheduling state for one Run call,
// honoring any steps execCtx already recorded as completed on a prior call
// (a GATE pause followed by approval, spec §4.6): completed steps are
// skipped and their recorded output seeds the outputs/branches maps so
// gatherInput still sees them, matching the "replay from the paused step
// with its approved records" resume contract.
func initRunState(def *pipeline.PipelineDefinition, topo ports.Topology, execCtx *ExecutorContext) (map[string]int, []string, map[string][]record.Record, map[string]record.BranchOutput, int) {
	outputs, branches, doneSet := execCtx.CompletedState()
	indegree := cloneIndegree(topo.Indegree)
	for key := range doneSet {
		for _, succ := range topo.Successors[key] {
			indegree[succ]--
		}
	}

	var queue []string
	for _, step := range def.Steps {
		if doneSet[step.Key] {
			continue
		}
		if indegree[step.Key] == 0 {
			queue = append(queue, step.Key)
		}
	}

	return indegree, queue, outputs, branches, len(doneSet)
}

func indexSteps(steps []pipeline.StepDefinition) map[string]*pipeline.StepDefinition {
	out := make(map[string]*pipeline.StepDefinition, len(steps))
	for i := range steps {
		out[steps[i].Key] = &steps[i]
	}
	return out
}

func cloneIndegree(indegree map[string]int) map[string]int {
	out := make(map[string]int, len(indegree))
	for k, v := range indegree {
		out[k] = v
	}
	return out
}

// gatherInput concatenates, in predecessor-edge order, each predecessor's
// output: the branch-matching sequence when the predecessor produced a
// BranchOutput and the edge names a branch, the flattened branch set when
// it doesn't, or the full output sequence otherwise (spec §4.3 "Gathering
// input for a step").
func gatherInput(step string, topo ports.Topology, outputs map[string][]record.Record, branches map[string]record.BranchOutput) []record.Record {
	preds := topo.Predecessors[step]
	if len(preds) == 0 {
		return nil
	}
	var input []record.Record
	for _, edge := range preds {
		if bo, ok := branches[edge.From]; ok {
			if edge.Branch != "" {
				input = append(input, bo[edge.Branch]...)
			} else {
				input = append(input, bo.Flatten()...)
			}
			continue
		}
		input = append(input, outputs[edge.From]...)
	}
	return input
}

func strategyContextFor(deps OrchestratorDeps, ctx context.Context, def *pipeline.PipelineDefinition, step pipeline.StepDefinition, input []record.Record, execCtx *ExecutorContext, runID, pipelineID string) StrategyContext {
	return StrategyContext{
		Ctx:               ctx,
		Definition:        def,
		Step:              step,
		Input:             input,
		ExecCtx:           execCtx,
		Hooks:             deps.Hooks,
		Events:            deps.Events,
		StepLog:           deps.StepLog,
		Executors:         deps.Executors,
		Loaders:           deps.Loaders,
		IdempotencyFilter: deps.IdempotencyFilter,
		Gate:              deps.Gate,
		RunID:             runID,
		PipelineID:        pipelineID,
		OnRecordError:     deps.OnRecordError,
	}
}

func foldStrategyResult(execCtx *ExecutorContext, result StrategyResult) {
	execCtx.AddDetail(result.Detail)
	execCtx.AddProcessed(result.Processed)
	execCtx.AddCounters(result.CounterDelta)
	execCtx.AddOutcomes(result.Succeeded, result.Failed)
}

func publishProgressEvent(deps OrchestratorDeps, ctx context.Context, runID, pipelineID string, completed, total int, stepKey string, metrics *run.Metrics) {
	if deps.Events == nil {
		return
	}
	percent := 0
	if total > 0 {
		percent = completed * 100 / total
	}
	payload := map[string]interface{}{
		"runId":      runID,
		"pipelineId": pipelineID,
		"completed":  completed,
		"total":      total,
		"percent":    percent,
		"stepKey":    stepKey,
		"processed":  metrics.Processed,
		"failed":     metrics.Failed,
	}
	_ = deps.Events.Publish(ctx, simpleEvent{eventType: ports.EventPipelineRunProgress, payload: payload})
}

func publishRunEvent(deps OrchestratorDeps, ctx context.Context, runID, pipelineID, eventType string, extra map[string]interface{}) {
	if deps.Events == nil {
		return
	}
	payload := map[string]interface{}{"runId": runID, "pipelineId": pipelineID}
	for k, v := range extra {
		payload[k] = v
	}
	_ = deps.Events.Publish(ctx, simpleEvent{eventType: eventType, payload: payload})
}
