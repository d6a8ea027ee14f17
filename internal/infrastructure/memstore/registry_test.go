package memstore_test

import (
	"context"
	"testing"

	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/infrastructure/memstore"
	"github.com/oronts/datahub/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExecutor struct{}

func (stubExecutor) Execute(context.Context, ports.ExecutorRequest) (ports.ExecutorResponse, error) {
	return ports.ExecutorResponse{}, nil
}

type stubLoader struct{}

func (stubLoader) Preprocess(context.Context, []record.Record) ([]record.Record, error) {
	return nil, nil
}
func (stubLoader) Validate(context.Context, record.Record, ports.LoaderOperation) ports.ValidationResult {
	return ports.ValidationResult{Valid: true}
}
func (stubLoader) FindExisting(context.Context, record.Record, []string) (*ports.ExistingEntity, error) {
	return nil, nil
}
func (stubLoader) CreateEntity(context.Context, record.Record) (string, error) { return "id-1", nil }
func (stubLoader) UpdateEntity(context.Context, string, record.Record, []string) error {
	return nil
}
func (stubLoader) FieldSchema() ports.FieldSchema                      { return ports.FieldSchema{} }
func (stubLoader) DuplicateMessage(ports.ExistingEntity) string { return "duplicate" }

func TestExecutorRegistryRegisterAndGet(t *testing.T) {
	reg := memstore.NewExecutorRegistry()

	require.NoError(t, reg.Register("csv-extract", stubExecutor{}))

	got, err := reg.Get("csv-extract")
	require.NoError(t, err)
	assert.NotNil(t, got)

	_, err = reg.Get("unknown")
	assert.Error(t, err)
}

func TestExecutorRegistryRejectsDuplicateAndEmpty(t *testing.T) {
	reg := memstore.NewExecutorRegistry()
	require.NoError(t, reg.Register("csv-extract", stubExecutor{}))

	assert.Error(t, reg.Register("csv-extract", stubExecutor{}))
	assert.Error(t, reg.Register("", stubExecutor{}))
	assert.Error(t, reg.Register("nil-executor", nil))
}

func TestLoaderRegistryRegisterAndGet(t *testing.T) {
	reg := memstore.NewLoaderRegistry()

	require.NoError(t, reg.Register("products", stubLoader{}))

	got, err := reg.Get("products")
	require.NoError(t, err)
	assert.NotNil(t, got)

	_, err = reg.Get("unknown")
	assert.Error(t, err)
}

func TestLoaderRegistryRejectsDuplicateAndEmpty(t *testing.T) {
	reg := memstore.NewLoaderRegistry()
	require.NoError(t, reg.Register("products", stubLoader{}))

	assert.Error(t, reg.Register("products", stubLoader{}))
	assert.Error(t, reg.Register("", stubLoader{}))
	assert.Error(t, reg.Register("nil-loader", nil))
}
