package loader

import (
	"context"

	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/ports"
)

// LookupHelper composes ports.LookupStrategy implementations and tries them
// in declared order, returning the first match (spec §4.5 "Lookup Helper").
type LookupHelper struct {
	strategies map[string]ports.LookupStrategy
}

// NewLookupHelper builds a LookupHelper from named strategies; a lookup
// field with no registered strategy is silently skipped, matching the
// framework's tolerance for declaring lookup fields a given loader doesn't
// implement a strategy for.
func NewLookupHelper(strategies ...ports.LookupStrategy) *LookupHelper {
	h := &LookupHelper{strategies: make(map[string]ports.LookupStrategy, len(strategies))}
	for _, s := range strategies {
		h.strategies[s.Name()] = s
	}
	return h
}

// Resolve tries each of lookupFields in order, skipping a field when the
// record has no value for it, the value is null, or no strategy is
// registered for it. The first strategy to report a match wins.
func (h *LookupHelper) Resolve(ctx context.Context, rec record.Record, lookupFields []string) (*ports.ExistingEntity, error) {
	for _, field := range lookupFields {
		value, ok := rec.Get(field)
		if !ok || value.IsNull() {
			continue
		}
		strategy, ok := h.strategies[field]
		if !ok {
			continue
		}
		existing, err := strategy.Resolve(ctx, rec, field)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}
	return nil, nil
}
