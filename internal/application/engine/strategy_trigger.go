package engine

import (
	"time"

	"github.com/oronts/datahub/internal/ports"
)

// TriggerStrategy implements the TRIGGER step kind: a no-op at step level
// that emits a skipped detail (spec §4.2).
type TriggerStrategy struct{}

func (s *TriggerStrategy) Execute(sctx StrategyContext) (StrategyResult, error) {
	start := time.Now()
	logStart(sctx)

	duration := time.Since(start).Milliseconds()
	detail := newDetail(sctx.Step, start)

	logComplete(sctx, duration, 0, 0)
	publish(sctx, ports.EventStepSkipped, nil)

	return StrategyResult{
		Records: sctx.Input,
		Detail:  detail,
	}, nil
}
