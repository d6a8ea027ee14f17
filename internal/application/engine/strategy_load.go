package engine

import (
	"time"

	"github.com/oronts/datahub/internal/application/hooks"
	"github.com/oronts/datahub/internal/application/loader"
	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/ports"
)

// LoadStrategy implements the LOAD step kind: idempotency filtering, then
// the Entity Loader Framework's base loop; returns (ok, fail), increments
// counters.loaded/counters.rejected, and emits RECORD_LOADED (spec §4.2).
type LoadStrategy struct{}

func (s *LoadStrategy) Execute(sctx StrategyContext) (StrategyResult, error) {
	start := time.Now()
	logStart(sctx)

	input, err := runHookStage(sctx, hooks.BeforeStage(sctx.Step.Type), sctx.Input)
	if err != nil {
		logFailed(sctx, err)
		return StrategyResult{}, err
	}

	if sctx.IdempotencyFilter != nil {
		input, err = sctx.IdempotencyFilter.Filter(sctx.Ctx, sctx.Definition, sctx.Step, input)
		if err != nil {
			logFailed(sctx, err)
			return StrategyResult{}, err
		}
	}

	if sctx.Loaders == nil {
		logFailed(sctx, &domainExecutorMissingError{adapterCode: sctx.Step.AdapterCode()})
		return StrategyResult{}, &domainExecutorMissingError{adapterCode: sctx.Step.AdapterCode()}
	}
	entityLoader, err := sctx.Loaders.Get(sctx.Step.AdapterCode())
	if err != nil {
		logFailed(sctx, err)
		return StrategyResult{}, err
	}

	opts := loadOptionsFromConfig(sctx.Step.Config)
	outcome, loaded, err := loader.Run(sctx.Ctx, entityLoader, input, opts, func(rec record.Record, message, code string) {
		sctx.reportRecordError(rec, message, code)
	})
	if err != nil {
		logFailed(sctx, err)
		return StrategyResult{}, err
	}

	out, err := runHookStage(sctx, hooks.AfterStage(sctx.Step.Type), loaded)
	if err != nil {
		logFailed(sctx, err)
		return StrategyResult{}, err
	}

	sctx.stepLogOrNoop().OnLoadData(sctx.Ctx, sctx.RunID, sctx.Step.Key, out)

	duration := time.Since(start).Milliseconds()
	detail := newDetail(sctx.Step, start)
	detail.Out = len(out)
	detail.OK = outcome.Succeeded
	detail.Fail = outcome.Failed

	logComplete(sctx, duration, outcome.Succeeded, outcome.Failed)
	publish(sctx, ports.EventRecordLoaded, map[string]interface{}{
		"ok":      outcome.Succeeded,
		"fail":    outcome.Failed,
		"created": outcome.Created,
		"updated": outcome.Updated,
		"skipped": outcome.Skipped,
	})

	return StrategyResult{
		Records:      out,
		Processed:    len(input),
		Succeeded:    outcome.Succeeded,
		Failed:       outcome.Failed,
		Detail:       detail,
		CounterDelta: run.Counters{Loaded: outcome.Succeeded, Rejected: outcome.Failed},
	}, nil
}

func loadOptionsFromConfig(config map[string]interface{}) loader.Options {
	opts := loader.Options{Operation: ports.OpUpsert}
	if config == nil {
		return opts
	}
	if v, ok := config["operation"].(string); ok && v != "" {
		opts.Operation = ports.LoaderOperation(v)
	}
	if v, ok := config["lookupFields"].([]interface{}); ok {
		for _, f := range v {
			if s, ok := f.(string); ok {
				opts.LookupFields = append(opts.LookupFields, s)
			}
		}
	}
	if v, ok := config["skipDuplicates"].(bool); ok {
		opts.SkipDuplicates = v
	}
	if v, ok := config["dryRun"].(bool); ok {
		opts.DryRun = v
	}
	if v, ok := config["updateOnlyFields"].([]interface{}); ok {
		for _, f := range v {
			if s, ok := f.(string); ok {
				opts.UpdateOnlyFields = append(opts.UpdateOnlyFields, s)
			}
		}
	}
	return opts
}
