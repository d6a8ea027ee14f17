package engine

import (
	"time"

	"github.com/oronts/datahub/internal/application/hooks"
	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/ports"
)

// ExtractStrategy implements the EXTRACT step kind: no input records; output
// length updates counters.extracted; emits RECORD_EXTRACTED (spec §4.2).
type ExtractStrategy struct{}

func (s *ExtractStrategy) Execute(sctx StrategyContext) (StrategyResult, error) {
	start := time.Now()
	logStart(sctx)

	if _, err := runHookStage(sctx, hooks.BeforeStage(sctx.Step.Type), nil); err != nil {
		logFailed(sctx, err)
		return StrategyResult{}, err
	}

	resp, err := runExecutor(sctx, nil)
	if err != nil {
		logFailed(sctx, err)
		return StrategyResult{}, err
	}

	out, err := runHookStage(sctx, hooks.AfterStage(sctx.Step.Type), resp.Output)
	if err != nil {
		logFailed(sctx, err)
		return StrategyResult{}, err
	}

	sctx.stepLogOrNoop().OnExtractData(sctx.Ctx, sctx.RunID, sctx.Step.Key, out)

	duration := time.Since(start).Milliseconds()
	detail := newDetail(sctx.Step, start)
	detail.Out = len(out)
	detail.OK = len(out)

	logComplete(sctx, duration, len(out), 0)
	publish(sctx, ports.EventRecordExtracted, map[string]interface{}{"count": len(out)})

	return StrategyResult{
		Records:      out,
		Processed:    len(out),
		Detail:       detail,
		CounterDelta: run.Counters{Extracted: len(out)},
	}, nil
}
