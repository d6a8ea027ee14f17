// Package idempotency implements the LOAD step's idempotency filter: batch
// deduplication against a pipeline-declared key, orthogonal to the
// duplicate detection a concrete EntityLoader performs against its backend
// (spec §4.5).
package idempotency

import (
	"context"

	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/ports"
)

// Filter drops records sharing a fingerprint already seen earlier in the
// same batch. The fingerprint field is read from the LOAD step's config
// under `idempotencyKey`; a step with no configured key is a no-op (every
// record passes through unfiltered), since key derivation is an external
// concern this module does not otherwise define (spec §9 Design Notes).
type Filter struct{}

// NewFilter constructs the default Filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Filter implements ports.IdempotencyFilter.
func (f *Filter) Filter(_ context.Context, _ *pipeline.PipelineDefinition, step pipeline.StepDefinition, batch []record.Record) ([]record.Record, error) {
	key := idempotencyKey(step.Config)
	if key == "" {
		return batch, nil
	}

	seen := make(map[string]struct{}, len(batch))
	out := make([]record.Record, 0, len(batch))
	for _, rec := range batch {
		value, ok := rec.Get(key)
		if !ok || value.IsNull() {
			out = append(out, rec)
			continue
		}
		fingerprint := value.String()
		if _, dup := seen[fingerprint]; dup {
			continue
		}
		seen[fingerprint] = struct{}{}
		out = append(out, rec)
	}
	return out, nil
}

func idempotencyKey(config map[string]interface{}) string {
	if config == nil {
		return ""
	}
	if v, ok := config["idempotencyKey"].(string); ok {
		return v
	}
	return ""
}

var _ ports.IdempotencyFilter = (*Filter)(nil)
