package pipeline_test

import (
	"testing"

	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearDefinition() pipeline.PipelineDefinition {
	return pipeline.PipelineDefinition{
		Version: 1,
		Name:    "products-import",
		Steps: []pipeline.StepDefinition{
			{Key: "extract", Type: pipeline.StepExtract, Name: "Extract CSV"},
			{Key: "transform", Type: pipeline.StepTransform, Name: "Map fields"},
			{Key: "validate", Type: pipeline.StepValidate, Name: "Require fields"},
			{Key: "load", Type: pipeline.StepLoad, Name: "Upsert products"},
		},
	}
}

func TestPipelineDefinitionValidate_Linear(t *testing.T) {
	def := linearDefinition()
	assert.False(t, def.HasEdges())
	require.NoError(t, def.Validate())
}

func TestPipelineDefinitionValidate_DuplicateKey(t *testing.T) {
	def := linearDefinition()
	def.Steps = append(def.Steps, pipeline.StepDefinition{Key: "extract", Type: pipeline.StepExtract})
	err := def.Validate()
	require.Error(t, err)

	var domainErr *pipeline.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, pipeline.ErrCodeDuplicate, domainErr.Code)
}

func TestPipelineDefinitionValidate_DanglingEdge(t *testing.T) {
	def := linearDefinition()
	def.Edges = []pipeline.Edge{{ID: "e1", From: "extract", To: "ghost"}}
	err := def.Validate()
	require.Error(t, err)

	var domainErr *pipeline.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, pipeline.ErrCodeDependency, domainErr.Code)
}

func TestPipelineDefinitionValidate_CycleDetected(t *testing.T) {
	def := linearDefinition()
	def.Edges = []pipeline.Edge{
		{ID: "e1", From: "extract", To: "transform"},
		{ID: "e2", From: "transform", To: "validate"},
		{ID: "e3", From: "validate", To: "extract"},
	}
	err := def.Validate()
	require.Error(t, err)

	var domainErr *pipeline.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, pipeline.ErrCodeCycle, domainErr.Code)
}

func TestGetStep(t *testing.T) {
	def := linearDefinition()
	step, err := def.GetStep("transform")
	require.NoError(t, err)
	assert.Equal(t, pipeline.StepTransform, step.Type)

	_, err = def.GetStep("missing")
	require.Error(t, err)
}

func TestEffectiveParallelExecutionDefaults(t *testing.T) {
	def := linearDefinition()
	p := def.EffectiveParallelExecution()
	assert.Equal(t, 4, p.MaxConcurrentSteps)
	assert.Equal(t, pipeline.FailFast, p.ErrorPolicy)
}
