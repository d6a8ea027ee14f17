package engine

import (
	"time"

	"github.com/oronts/datahub/internal/application/hooks"
	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/ports"
)

// TransformStrategy implements the TRANSFORM step kind: 1:1 input→output by
// default; counters.transformed tracks outputs (spec §4.2).
type TransformStrategy struct{}

func (s *TransformStrategy) Execute(sctx StrategyContext) (StrategyResult, error) {
	return runOneToOneStrategy(sctx, ports.EventRecordTransformed, nil, func(delta int) run.Counters {
		return run.Counters{Transformed: delta}
	})
}

// EnrichStrategy implements the ENRICH step kind: 1:1 input→output by
// default; counters.enriched tracks outputs. Its RECORD_TRANSFORMED event
// carries an optional `stage: ENRICH` discriminator per spec §4.6.
type EnrichStrategy struct{}

func (s *EnrichStrategy) Execute(sctx StrategyContext) (StrategyResult, error) {
	return runOneToOneStrategy(sctx, ports.EventRecordTransformed, map[string]interface{}{"stage": "ENRICH"}, func(delta int) run.Counters {
		return run.Counters{Enriched: delta}
	})
}

// runOneToOneStrategy is the shared skeleton for TRANSFORM/ENRICH: run the
// before hook, invoke the executor, run the after hook, emit the step's
// event, record a first input/output sample via the step-log sink, and
// report the resulting counter delta.
func runOneToOneStrategy(sctx StrategyContext, eventType string, extraPayload map[string]interface{}, counterDelta func(int) run.Counters) (StrategyResult, error) {
	start := time.Now()
	logStart(sctx)

	input, err := runHookStage(sctx, hooks.BeforeStage(sctx.Step.Type), sctx.Input)
	if err != nil {
		logFailed(sctx, err)
		return StrategyResult{}, err
	}

	resp, err := runExecutor(sctx, input)
	if err != nil {
		logFailed(sctx, err)
		return StrategyResult{}, err
	}

	out, err := runHookStage(sctx, hooks.AfterStage(sctx.Step.Type), resp.Output)
	if err != nil {
		logFailed(sctx, err)
		return StrategyResult{}, err
	}

	if len(input) > 0 && len(out) > 0 {
		sctx.stepLogOrNoop().OnTransformMapping(sctx.Ctx, sctx.RunID, sctx.Step.Key, firstOf(input), firstOf(out))
	}

	duration := time.Since(start).Milliseconds()
	detail := newDetail(sctx.Step, start)
	detail.Out = len(out)
	detail.OK = len(out)

	logComplete(sctx, duration, len(out), 0)
	publish(sctx, eventType, mergePayload(map[string]interface{}{"count": len(out)}, extraPayload))

	return StrategyResult{
		Records:      out,
		Detail:       detail,
		CounterDelta: counterDelta(len(out)),
	}, nil
}

func firstOf(records []record.Record) record.Record {
	if len(records) == 0 {
		return nil
	}
	return records[0]
}

func mergePayload(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	if len(extra) == 0 {
		return base
	}
	merged := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
