package ports

import (
	"context"

	"github.com/oronts/datahub/internal/domain/checkpoint"
)

// CheckpointStore persists a run's Checkpoint with optimistic,
// write-when-dirty serialization. It is deliberately decoupled from the
// orchestrator's own in-memory maps (spec §9 Design Notes).
type CheckpointStore interface {
	// Load returns the stored checkpoint for runID, or a fresh empty one if
	// none exists yet.
	Load(ctx context.Context, runID string) (*checkpoint.Checkpoint, error)

	// Save persists cp if and only if cp.Dirty is true, then clears the
	// dirty bit on success.
	Save(ctx context.Context, runID string, cp *checkpoint.Checkpoint) error
}
