package engine

import (
	"context"

	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/ports"
)

// LinearOrchestrator executes a pipeline with no declared edges: steps run
// in declaration order, each step's input is the previous step's output
// (spec §2, "no edges present ⇒ declaration order").
type LinearOrchestrator struct {
	deps OrchestratorDeps
}

// NewLinearOrchestrator constructs a LinearOrchestrator over deps.
func NewLinearOrchestrator(deps OrchestratorDeps) *LinearOrchestrator {
	return &LinearOrchestrator{deps: deps}
}

// Run executes def's steps in order, to completion, to a GATE pause, or to
// cancellation.
func (o *LinearOrchestrator) Run(ctx context.Context, def *pipeline.PipelineDefinition, execCtx *ExecutorContext, runID, pipelineID string) (*run.Metrics, error) {
	var input []record.Record
	total := len(def.Steps)

	for i, step := range def.Steps {
		if execCtx.IsCompleted(step.Key) {
			outputs, branches, _ := execCtx.CompletedState()
			if bo, ok := branches[step.Key]; ok {
				input = bo.Flatten()
			} else {
				input = outputs[step.Key]
			}
			continue
		}

		if execCtx.OnCancelRequested() {
			publishRunEvent(o.deps, ctx, runID, pipelineID, ports.EventPipelineRunCancelled, nil)
			return execCtx.Metrics(), nil
		}

		sctx := strategyContextFor(o.deps, ctx, def, step, input, execCtx, runID, pipelineID)
		result, err := o.deps.Dispatcher.Dispatch(sctx)
		if err != nil {
			execCtx.AddOutcomes(0, 1)
			return execCtx.Metrics(), err
		}

		foldStrategyResult(execCtx, result)
		execCtx.RecordStepOutput(step.Key, result.Records, result.Branches)
		publishProgressEvent(o.deps, ctx, runID, pipelineID, i+1, total, step.Key, execCtx.Metrics())

		if result.Detail.ShouldPause {
			execCtx.MarkCheckpointDirty()
			publishRunEvent(o.deps, ctx, runID, pipelineID, ports.EventPipelinePaused, map[string]interface{}{"stepKey": step.Key})
			return execCtx.Metrics(), nil
		}

		if result.Branches != nil {
			input = result.Branches.Flatten()
		} else {
			input = result.Records
		}
	}

	return execCtx.Metrics(), nil
}
