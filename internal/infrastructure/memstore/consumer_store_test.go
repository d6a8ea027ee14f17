package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oronts/datahub/internal/infrastructure/memstore"
)

func TestConsumerStoreGetCreatesInactiveOnFirstUse(t *testing.T) {
	store := memstore.NewConsumerStore()
	ctx := context.Background()

	c, err := store.Get(ctx, "pipe-1")
	require.NoError(t, err)
	assert.Equal(t, "pipe-1", c.PipelineCode)
	assert.False(t, c.IsActive)
}

func TestConsumerStoreSavePersistsState(t *testing.T) {
	store := memstore.NewConsumerStore()
	ctx := context.Background()

	c, err := store.Get(ctx, "pipe-1")
	require.NoError(t, err)
	c.Start()
	c.RecordMessage(true, time.Now())
	require.NoError(t, store.Save(ctx, c))

	reread, err := store.Get(ctx, "pipe-1")
	require.NoError(t, err)
	assert.True(t, reread.IsActive)
	assert.Equal(t, 1, reread.MessagesProcessed)
}

func TestConsumerStoreGetReturnsIndependentCopy(t *testing.T) {
	store := memstore.NewConsumerStore()
	ctx := context.Background()

	c, err := store.Get(ctx, "pipe-1")
	require.NoError(t, err)
	c.Start()

	reread, err := store.Get(ctx, "pipe-1")
	require.NoError(t, err)
	assert.False(t, reread.IsActive, "mutating a returned copy must not affect the stored consumer")
}
