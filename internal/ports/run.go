package ports

import (
	"context"

	"github.com/oronts/datahub/internal/domain/run"
)

// RunStore persists Run lifecycle state across the operational commands of
// spec §6 (runPipeline, cancelRun, approveGate, rejectGate, consumers).
// Implementations must be safe for concurrent use.
type RunStore interface {
	Create(ctx context.Context, r *run.Run) error
	Get(ctx context.Context, runID string) (*run.Run, error)
	Update(ctx context.Context, r *run.Run) error
	ListByPipeline(ctx context.Context, pipelineID string) ([]*run.Run, error)
}

// ConsumerStore persists the lifecycle toggle and counters of a trigger
// pipeline's queue consumer across StartConsumer/StopConsumer calls.
type ConsumerStore interface {
	Get(ctx context.Context, pipelineCode string) (*run.Consumer, error)
	Save(ctx context.Context, c *run.Consumer) error
}
