package hooks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oronts/datahub/internal/application/hooks"
	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/domain/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInterceptorsAppliesInRegistrationOrder(t *testing.T) {
	svc := hooks.NewService()
	var order []string

	svc.Register(hooks.BeforeStage(pipeline.StepTransform), func(ctx context.Context, def *pipeline.PipelineDefinition, records []record.Record) ([]record.Record, error) {
		order = append(order, "first")
		return append(records, record.Record{"tag": record.String("first")}), nil
	})
	svc.Register(hooks.BeforeStage(pipeline.StepTransform), func(ctx context.Context, def *pipeline.PipelineDefinition, records []record.Record) ([]record.Record, error) {
		order = append(order, "second")
		return append(records, record.Record{"tag": record.String("second")}), nil
	})

	out, err := svc.RunInterceptors(context.Background(), &pipeline.PipelineDefinition{}, hooks.BeforeStage(pipeline.StepTransform), nil, "run-1", "pipe-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Len(t, out, 2)
}

func TestRunInterceptorsAbortsChainOnError(t *testing.T) {
	svc := hooks.NewService()
	called := false

	svc.Register(hooks.StageOnError, func(ctx context.Context, def *pipeline.PipelineDefinition, records []record.Record) ([]record.Record, error) {
		return records, errors.New("boom")
	})
	svc.Register(hooks.StageOnError, func(ctx context.Context, def *pipeline.PipelineDefinition, records []record.Record) ([]record.Record, error) {
		called = true
		return records, nil
	})

	_, err := svc.RunInterceptors(context.Background(), &pipeline.PipelineDefinition{}, hooks.StageOnError, nil, "", "")
	require.Error(t, err)
	assert.False(t, called)
}

func TestRunIsObservationalOnly(t *testing.T) {
	svc := hooks.NewService()
	var seen int
	svc.Register(hooks.StagePipelineCompleted, func(ctx context.Context, def *pipeline.PipelineDefinition, records []record.Record) ([]record.Record, error) {
		seen = len(records)
		return nil, nil
	})

	err := svc.Run(context.Background(), &pipeline.PipelineDefinition{}, hooks.StagePipelineCompleted, []record.Record{{}, {}})
	require.NoError(t, err)
	assert.Equal(t, 2, seen)
}
