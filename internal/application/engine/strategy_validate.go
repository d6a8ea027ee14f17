package engine

import (
	"time"

	"github.com/oronts/datahub/internal/application/hooks"
	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/ports"
)

// ValidateStrategy implements the VALIDATE step kind: output ≤ input; drops
// do not fail the run, each is reported through onRecordError with a reason
// (spec §4.2).
type ValidateStrategy struct{}

func (s *ValidateStrategy) Execute(sctx StrategyContext) (StrategyResult, error) {
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

	dropped := len(input) - len(out)
	if dropped > 0 {
		reportValidationDrops(sctx, input, out)
	}

	duration := time.Since(start).Milliseconds()
	detail := newDetail(sctx.Step, start)
	detail.Out = len(out)
	detail.OK = len(out)
	detail.Fail = resp.Fail

	logComplete(sctx, duration, len(out), resp.Fail)
	publish(sctx, ports.EventRecordValidated, map[string]interface{}{"count": len(out), "dropped": dropped})

	return StrategyResult{
		Records:      out,
		Processed:    len(input),
		Succeeded:    len(out),
		Failed:       resp.Fail,
		Detail:       detail,
		CounterDelta: run.Counters{Validated: len(out)},
	}, nil
}

// reportValidationDrops reports every record present in before but absent
// from after: each output record, in order, is matched to the next unmatched
// input record with equal field values, and every unmatched input is reported.
func reportValidationDrops(sctx StrategyContext, before, after []record.Record) {
	keep := make([]bool, len(before))
	consumed := 0
	for _, out := range after {
		for i := consumed; i < len(before); i++ {
			if keep[i] {
				continue
			}
			if recordsEqual(before[i], out) {
				keep[i] = true
				consumed = i + 1
				break
			}
		}
	}
	for i, rec := range before {
		if !keep[i] {
			sctx.reportRecordError(rec, "record failed validation", "VALIDATION_FAILED")
		}
	}
}

func recordsEqual(a, b record.Record) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || av.String() != bv.String() {
			return false
		}
	}
	return true
}
