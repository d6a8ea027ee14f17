package memstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oronts/datahub/internal/domain/run"
	"github.com/oronts/datahub/internal/infrastructure/memstore"
)

func TestRunStoreCreateGetUpdate(t *testing.T) {
	store := memstore.NewRunStore()
	ctx := context.Background()

	r := &run.Run{RunID: "run-1", PipelineID: "pipe-1", Status: run.StatusPending}
	require.NoError(t, store.Create(ctx, r))
	assert.Error(t, store.Create(ctx, r), "duplicate run ID must fail")

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.StatusPending, got.Status)

	got.Status = run.StatusRunning
	require.NoError(t, store.Update(ctx, got))

	reread, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.StatusRunning, reread.Status)

	assert.Error(t, store.Update(ctx, &run.Run{RunID: "missing"}))
}

func TestRunStoreGetReturnsIndependentCopy(t *testing.T) {
	store := memstore.NewRunStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &run.Run{RunID: "run-1", Status: run.StatusPending}))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	got.Status = run.StatusFailed

	reread, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.StatusPending, reread.Status, "mutating a returned copy must not affect the stored run")
}

func TestRunStoreGetMissing(t *testing.T) {
	store := memstore.NewRunStore()
	_, err := store.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestRunStoreListByPipeline(t *testing.T) {
	store := memstore.NewRunStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &run.Run{RunID: "run-1", PipelineID: "pipe-a"}))
	require.NoError(t, store.Create(ctx, &run.Run{RunID: "run-2", PipelineID: "pipe-a"}))
	require.NoError(t, store.Create(ctx, &run.Run{RunID: "run-3", PipelineID: "pipe-b"}))

	runs, err := store.ListByPipeline(ctx, "pipe-a")
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
