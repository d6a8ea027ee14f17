package ports

import (
	"context"

	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/domain/record"
)

// IdempotencyFilter drops duplicate records from a LOAD batch immediately
// before the loader framework runs, based on a pipeline-declared
// idempotency key. The key derivation itself is an external concern (spec
// §9 Open Questions); this interface only fixes the contract: given a batch
// and the definition, return a possibly-shortened batch preserving order.
type IdempotencyFilter interface {
	Filter(ctx context.Context, def *pipeline.PipelineDefinition, step pipeline.StepDefinition, batch []record.Record) ([]record.Record, error)
}
