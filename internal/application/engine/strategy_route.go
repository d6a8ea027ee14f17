package engine

import (
	"time"

	"github.com/oronts/datahub/internal/application/hooks"
	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/domain/run"
)

// RouteStrategy implements the ROUTE step kind: produces a branch map;
// the total count across branches updates counters.routed; no event is
// emitted (spec §4.2).
type RouteStrategy struct{}

func (s *RouteStrategy) Execute(sctx StrategyContext) (StrategyResult, error) {
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

	// Run AFTER_ROUTE per branch, not over the flattened set, so a mutating
	// interceptor's output lands back in the branch a successor actually
	// reads (gatherInput keys Branches by name, not by flattened position).
	branches := make(record.BranchOutput, len(resp.Branches))
	for name, recs := range resp.Branches {
		hooked, err := runHookStage(sctx, hooks.AfterStage(sctx.Step.Type), recs)
		if err != nil {
			logFailed(sctx, err)
			return StrategyResult{}, err
		}
		branches[name] = hooked
	}

	total := branches.Total()
	duration := time.Since(start).Milliseconds()
	detail := newDetail(sctx.Step, start)
	detail.Out = total
	detail.OK = total
	detail.Branches = branchCounts(branches)

	logComplete(sctx, duration, total, 0)

	return StrategyResult{
		Records:      branches.Flatten(),
		Branches:     branches,
		Processed:    len(input),
		Succeeded:    total,
		Detail:       detail,
		CounterDelta: run.Counters{Routed: total},
	}, nil
}

func branchCounts(branches record.BranchOutput) map[string]int {
	if len(branches) == 0 {
		return nil
	}
	counts := make(map[string]int, len(branches))
	for name, records := range branches {
		counts[name] = len(records)
	}
	return counts
}
