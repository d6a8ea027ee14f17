package engine

import (
	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/ports"
)

// Dispatcher maps step kind to strategy and normalizes results for the
// orchestrator (spec §2 component 5), the same table-lookup idiom the
// teacher used for its plugin registry's `Get(stepType)`.
type Dispatcher struct {
	strategies map[pipeline.StepKind]Strategy
	logger     ports.Logger
}

// NewDispatcher constructs a Dispatcher with the built-in strategy for
// every step kind wired in.
func NewDispatcher(logger ports.Logger) *Dispatcher {
	d := &Dispatcher{strategies: make(map[pipeline.StepKind]Strategy), logger: logger}
	d.Register(pipeline.StepTrigger, &TriggerStrategy{})
	d.Register(pipeline.StepExtract, &ExtractStrategy{})
	d.Register(pipeline.StepTransform, &TransformStrategy{})
	d.Register(pipeline.StepValidate, &ValidateStrategy{})
	d.Register(pipeline.StepEnrich, &EnrichStrategy{})
	d.Register(pipeline.StepRoute, &RouteStrategy{})
	d.Register(pipeline.StepLoad, &LoadStrategy{})
	d.Register(pipeline.StepExport, &TerminalStrategy{eventType: ports.EventRecordExported})
	d.Register(pipeline.StepFeed, &TerminalStrategy{eventType: ports.EventFeedGenerated})
	d.Register(pipeline.StepSink, &TerminalStrategy{eventType: ports.EventRecordIndexed})
	d.Register(pipeline.StepGate, &GateStrategy{})
	return d
}

// Register overrides or adds the strategy used for kind.
func (d *Dispatcher) Register(kind pipeline.StepKind, strategy Strategy) {
	d.strategies[kind] = strategy
}

// Dispatch resolves the strategy for sctx.Step.Type and runs it. Unknown
// kinds are passed through with an `unhandled` detail flag and a warning
// log, preserving forward compatibility with step kinds this build doesn't
// know about yet.
func (d *Dispatcher) Dispatch(sctx StrategyContext) (StrategyResult, error) {
	strategy, ok := d.strategies[sctx.Step.Type]
	if !ok {
		if d.logger != nil {
			d.logger.Warn(sctx.Ctx, "dispatcher: unhandled step kind", "step_key", sctx.Step.Key, "type", sctx.Step.Type)
		}
		return StrategyResult{
			Records: sctx.Input,
			Detail: run.StepDetail{
				StepKey: sctx.Step.Key,
				Type:    sctx.Step.Type,
				Error:   "unhandled step kind",
			},
		}, nil
	}
	return strategy.Execute(sctx)
}
