package ports

import (
	"context"

	"github.com/oronts/datahub/internal/domain/recorderror"
)

// RecordErrorStore persists quarantined per-record failures and their retry
// audit trail, backing the retryError/markDeadLetter operational commands
// of spec §6. Implementations must be safe for concurrent use.
type RecordErrorStore interface {
	Create(ctx context.Context, e *recorderror.RecordError) error
	Get(ctx context.Context, errorID string) (*recorderror.RecordError, error)
	Update(ctx context.Context, e *recorderror.RecordError) error
	ListByRun(ctx context.Context, runID string) ([]*recorderror.RecordError, error)
}
