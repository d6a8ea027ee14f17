package ports

import (
	"context"

	"github.com/oronts/datahub/internal/domain/record"
)

// StepLogSink is an optional durable audit of per-step timing, input/output
// samples, and transform mappings. Every callback is fire-and-forget from
// the strategy's point of view: a callback error is logged and swallowed,
// never surfaced as a step failure.
type StepLogSink interface {
	OnStepStart(ctx context.Context, runID, stepKey string, inputSize int)
	OnStepComplete(ctx context.Context, runID, stepKey string, durationMs int64, ok, fail int)
	OnStepFailed(ctx context.Context, runID, stepKey string, err error)
	OnExtractData(ctx context.Context, runID, stepKey string, sample []record.Record)
	OnLoadData(ctx context.Context, runID, stepKey string, sample []record.Record)
	OnTransformMapping(ctx context.Context, runID, stepKey string, input, output record.Record)
}

// NoOpStepLogSink is the zero-cost default used when no sink is configured.
type NoOpStepLogSink struct{}

func (NoOpStepLogSink) OnStepStart(context.Context, string, string, int)                     {}
func (NoOpStepLogSink) OnStepComplete(context.Context, string, string, int64, int, int)       {}
func (NoOpStepLogSink) OnStepFailed(context.Context, string, string, error)                   {}
func (NoOpStepLogSink) OnExtractData(context.Context, string, string, []record.Record)        {}
func (NoOpStepLogSink) OnLoadData(context.Context, string, string, []record.Record)           {}
func (NoOpStepLogSink) OnTransformMapping(context.Context, string, string, record.Record, record.Record) {
}
