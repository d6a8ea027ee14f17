package engine

import (
	"time"

	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/ports"
)

// GateStrategy implements the GATE step kind by delegating the approval
// decision to the Gate Controller through the GateEvaluator seam (spec
// §4.2, §4.4).
type GateStrategy struct{}

func (s *GateStrategy) Execute(sctx StrategyContext) (StrategyResult, error) {
	start := time.Now()
	logStart(sctx)

	outcome := GateOutcome{}
	if sctx.Gate != nil {
		var err error
		outcome, err = sctx.Gate.Evaluate(sctx.Ctx, sctx.RunID, sctx.PipelineID, sctx.Step, sctx.ExecCtx, sctx.Input)
		if err != nil {
			logFailed(sctx, err)
			return StrategyResult{}, err
		}
	}

	duration := time.Since(start).Milliseconds()
	detail := newDetail(sctx.Step, start)
	detail.Out = len(sctx.Input)
	detail.OK = len(sctx.Input)
	detail.ShouldPause = outcome.ShouldPause
	detail.Paused = outcome.ShouldPause

	logComplete(sctx, duration, len(sctx.Input), 0)
	if outcome.ShouldPause {
		publish(sctx, ports.EventGateApprovalRequested, map[string]interface{}{"previewCount": len(outcome.Preview)})
	}

	return StrategyResult{
		Records:      sctx.Input,
		Processed:    len(sctx.Input),
		Succeeded:    len(sctx.Input),
		Detail:       detail,
		CounterDelta: run.Counters{Gated: len(sctx.Input)},
	}, nil
}
