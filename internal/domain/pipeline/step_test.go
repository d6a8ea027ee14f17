package pipeline_test

import (
	"testing"

	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepDefinitionValidate(t *testing.T) {
	step := pipeline.StepDefinition{Key: "extract", Type: pipeline.StepExtract}
	require.NoError(t, step.Validate())

	bad := pipeline.StepDefinition{Key: "has space", Type: pipeline.StepExtract}
	assert.Error(t, bad.Validate())

	unknown := pipeline.StepDefinition{Key: "x", Type: "NOT_A_KIND"}
	assert.Error(t, unknown.Validate())
}

func TestStepDefinitionAdapterCode(t *testing.T) {
	step := pipeline.StepDefinition{
		Key:    "load",
		Type:   pipeline.StepLoad,
		Config: map[string]interface{}{"adapterCode": "productUpsert"},
	}
	assert.Equal(t, "productUpsert", step.AdapterCode())

	empty := pipeline.StepDefinition{Key: "gate", Type: pipeline.StepGate}
	assert.Equal(t, "", empty.AdapterCode())
}

func TestStepDefinitionIsProcessingKind(t *testing.T) {
	assert.True(t, pipeline.StepDefinition{Type: pipeline.StepLoad}.IsProcessingKind())
	assert.False(t, pipeline.StepDefinition{Type: pipeline.StepGate}.IsProcessingKind())
	assert.False(t, pipeline.StepDefinition{Type: pipeline.StepTrigger}.IsProcessingKind())
}
