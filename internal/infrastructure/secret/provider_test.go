package secret_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oronts/datahub/internal/infrastructure/secret"
	"github.com/oronts/datahub/internal/ports"
)

func TestResolveInlineReturnsValueVerbatim(t *testing.T) {
	p := secret.NewProvider()
	v, err := p.Resolve(context.Background(), ports.SecretRef{Kind: ports.SecretInline, InlineValue: "shh"})
	require.NoError(t, err)
	assert.Equal(t, "shh", v)
}

func TestResolveEnvReadsProcessEnvironment(t *testing.T) {
	t.Setenv("DATAHUB_TEST_SECRET", "topsecret")
	p := secret.NewProvider()

	v, err := p.Resolve(context.Background(), ports.SecretRef{Kind: ports.SecretEnv, EnvName: "DATAHUB_TEST_SECRET"})
	require.NoError(t, err)
	assert.Equal(t, "topsecret", v)
}

func TestResolveEnvRejectsInvalidName(t *testing.T) {
	p := secret.NewProvider()
	_, err := p.Resolve(context.Background(), ports.SecretRef{Kind: ports.SecretEnv, EnvName: "not-a-valid-name"})
	assert.Error(t, err)
}

func TestResolveEnvMissingVariable(t *testing.T) {
	p := secret.NewProvider()
	_, err := p.Resolve(context.Background(), ports.SecretRef{Kind: ports.SecretEnv, EnvName: "DATAHUB_DEFINITELY_UNSET"})
	assert.Error(t, err)
}

func TestResolveUnknownKind(t *testing.T) {
	p := secret.NewProvider()
	_, err := p.Resolve(context.Background(), ports.SecretRef{Kind: ports.SecretKind("BOGUS")})
	assert.Error(t, err)
}
