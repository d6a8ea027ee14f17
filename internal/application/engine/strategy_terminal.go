package engine

import (
	"time"

	"github.com/oronts/datahub/internal/application/hooks"
)

// TerminalStrategy implements the shared EXPORT/FEED/SINK contract: output
// is discarded after the step; returns (ok, fail) and an optional
// outputPath for FEED (spec §4.2). Before/after hooks run observationally.
type TerminalStrategy struct {
	eventType string
}

func (s *TerminalStrategy) Execute(sctx StrategyContext) (StrategyResult, error) {
	start := time.Now()
	logStart(sctx)

	if _, err := runHookStage(sctx, hooks.BeforeStage(sctx.Step.Type), sctx.Input); err != nil {
		logFailed(sctx, err)
		return StrategyResult{}, err
	}

	resp, err := runExecutor(sctx, sctx.Input)
	if err != nil {
		logFailed(sctx, err)
		return StrategyResult{}, err
	}

	if _, err := runHookStage(sctx, hooks.AfterStage(sctx.Step.Type), resp.Output); err != nil {
		logFailed(sctx, err)
		return StrategyResult{}, err
	}

	duration := time.Since(start).Milliseconds()
	detail := newDetail(sctx.Step, start)
	detail.OK = resp.OK
	detail.Fail = resp.Fail

	logComplete(sctx, duration, resp.OK, resp.Fail)
	payload := map[string]interface{}{"ok": resp.OK, "fail": resp.Fail}
	if resp.OutputPath != "" {
		payload["outputPath"] = resp.OutputPath
	}
	publish(sctx, s.eventType, payload)

	return StrategyResult{
		Processed: len(sctx.Input),
		Succeeded: resp.OK,
		Failed:    resp.Fail,
		Detail:    detail,
	}, nil
}
