package engine

import (
	"context"
	"time"

	"github.com/oronts/datahub/internal/application/hooks"
	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/ports"
	datahuberrors "github.com/oronts/datahub/pkg/errors"
)

// RecordErrorReporter quarantines one per-record failure, classifying it
// recoverable/dead-letter and persisting it for later retry. Strategies
// never decide persistence; they only report through this seam (spec
// §4.2's `onRecordError` callback), which carries the run and step
// identifying the failure since the reporter is shared across every run an
// OrchestratorDeps instance ever executes.
type RecordErrorReporter func(ctx context.Context, runID, stepKey string, rec record.Record, message, code string)

// GateEvaluator is the Gate Controller's seam into the GATE strategy,
// avoiding an import cycle between this package and application/gate.
type GateEvaluator interface {
	Evaluate(ctx context.Context, runID, pipelineID string, step pipeline.StepDefinition, execCtx *ExecutorContext, input []record.Record) (GateOutcome, error)
}

// GateOutcome is the Gate Controller's decision for one GATE step
// invocation.
type GateOutcome struct {
	ShouldPause bool
	Preview     []record.Record
}

// StrategyContext carries everything one step invocation needs: the
// request context, definition, current step, input records, executor
// context, hook service, event bus, step-log sink, run/pipeline ids, and
// the record-error reporting seam (spec §4.2).
type StrategyContext struct {
	Ctx        context.Context
	Definition *pipeline.PipelineDefinition
	Step       pipeline.StepDefinition
	Input      []record.Record
	ExecCtx    *ExecutorContext

	Hooks   *hooks.Service
	Events  ports.EventPublisher
	StepLog ports.StepLogSink

	Executors         ports.ExecutorRegistry
	Loaders           ports.LoaderRegistry
	IdempotencyFilter ports.IdempotencyFilter
	Gate              GateEvaluator

	RunID      string
	PipelineID string

	OnRecordError RecordErrorReporter
}

func (s StrategyContext) stepLogOrNoop() ports.StepLogSink {
	if s.StepLog == nil {
		return ports.NoOpStepLogSink{}
	}
	return s.StepLog
}

func (s StrategyContext) reportRecordError(rec record.Record, message, code string) {
	if s.OnRecordError == nil {
		return
	}
	s.OnRecordError(s.Ctx, s.RunID, s.Step.Key, rec, message, code)
}

// StrategyResult is one step's normalized outcome (spec §4.2 "StrategyResult
// contract").
type StrategyResult struct {
	Records      []record.Record
	Branches     record.BranchOutput
	Processed    int
	Succeeded    int
	Failed       int
	Detail       run.StepDetail
	CounterDelta run.Counters
	Event        ports.DomainEvent
}

// Strategy encapsulates one step kind's before-hook, executor call,
// after-hook, event emission, and step-log callbacks (spec §2 component 4).
type Strategy interface {
	Execute(sctx StrategyContext) (StrategyResult, error)
}

// mutatingKinds run a before/after hook pair that may rewrite the record
// sequence; every other kind runs the same pair observationally, discarding any
// returned mutation (spec §4.1).
var mutatingKinds = map[pipeline.StepKind]bool{
	pipeline.StepExtract:   true,
	pipeline.StepTransform: true,
	pipeline.StepValidate:  true,
	pipeline.StepEnrich:    true,
	pipeline.StepRoute:     true,
}

func runHookStage(sctx StrategyContext, stage hooks.Stage, records []record.Record) ([]record.Record, error) {
	if sctx.Hooks == nil {
		return records, nil
	}
	if mutatingKinds[sctx.Step.Type] {
		return sctx.Hooks.RunInterceptors(sctx.Ctx, sctx.Definition, stage, records, sctx.RunID, sctx.PipelineID)
	}
	if err := sctx.Hooks.Run(sctx.Ctx, sctx.Definition, stage, records); err != nil {
		return records, err
	}
	return records, nil
}

func runExecutor(sctx StrategyContext, input []record.Record) (ports.ExecutorResponse, error) {
	if sctx.Executors == nil {
		return ports.ExecutorResponse{}, datahuberrors.NewExecutionError(sctx.Step.Key, &domainExecutorMissingError{adapterCode: sctx.Step.AdapterCode()})
	}
	exec, err := sctx.Executors.Get(sctx.Step.AdapterCode())
	if err != nil {
		return ports.ExecutorResponse{}, datahuberrors.NewExecutionError(sctx.Step.Key, err)
	}
	resp, err := exec.Execute(sctx.Ctx, ports.ExecutorRequest{
		Definition: sctx.Definition,
		Step:       sctx.Step,
		RunID:      sctx.RunID,
		Input:      input,
	})
	if err != nil {
		return resp, datahuberrors.NewExecutionError(sctx.Step.Key, err)
	}
	return resp, nil
}

type domainExecutorMissingError struct {
	adapterCode string
}

func (e *domainExecutorMissingError) Error() string {
	return "engine: no executor registered for adapter code " + e.adapterCode
}

func newDetail(step pipeline.StepDefinition, start time.Time) run.StepDetail {
	return run.StepDetail{
		StepKey:     step.Key,
		Type:        step.Type,
		AdapterCode: step.AdapterCode(),
		DurationMs:  time.Since(start).Milliseconds(),
	}
}

func logStart(sctx StrategyContext) {
	sctx.stepLogOrNoop().OnStepStart(sctx.Ctx, sctx.RunID, sctx.Step.Key, len(sctx.Input))
}

func logComplete(sctx StrategyContext, durationMs int64, ok, fail int) {
	sctx.stepLogOrNoop().OnStepComplete(sctx.Ctx, sctx.RunID, sctx.Step.Key, durationMs, ok, fail)
}

func logFailed(sctx StrategyContext, err error) {
	sctx.stepLogOrNoop().OnStepFailed(sctx.Ctx, sctx.RunID, sctx.Step.Key, err)
}

func publish(sctx StrategyContext, eventType string, payload map[string]interface{}) {
	if sctx.Events == nil {
		return
	}
	merged := make(map[string]interface{}, len(payload)+3)
	for k, v := range payload {
		merged[k] = v
	}
	merged["stepKey"] = sctx.Step.Key
	merged["runId"] = sctx.RunID
	merged["pipelineId"] = sctx.PipelineID
	_ = sctx.Events.Publish(sctx.Ctx, simpleEvent{eventType: eventType, payload: merged})
}

type simpleEvent struct {
	eventType string
	payload   interface{}
}

func (e simpleEvent) EventType() string   { return e.eventType }
func (e simpleEvent) Payload() interface{} { return e.payload }
