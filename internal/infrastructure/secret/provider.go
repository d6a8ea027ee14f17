// Package secret implements ports.SecretProvider for the two secret kinds a
// step's adapter config may reference: an inline encrypted value or the
// name of an environment variable.
package secret

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/oronts/datahub/internal/ports"
)

var envNamePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Provider resolves ports.SecretRef values. INLINE values are returned
// as-is (decryption, if any, is the caller's key-management concern); ENV
// values are read from the process environment after validating the name
// against the documented pattern.
type Provider struct{}

// NewProvider constructs the default Provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Resolve implements ports.SecretProvider.
func (p *Provider) Resolve(_ context.Context, ref ports.SecretRef) (string, error) {
	switch ref.Kind {
	case ports.SecretInline:
		return ref.InlineValue, nil
	case ports.SecretEnv:
		if !envNamePattern.MatchString(ref.EnvName) {
			return "", fmt.Errorf("secret: env name %q does not match ^[A-Z][A-Z0-9_]*$", ref.EnvName)
		}
		value, ok := os.LookupEnv(ref.EnvName)
		if !ok {
			return "", fmt.Errorf("secret: environment variable %s is not set", ref.EnvName)
		}
		return value, nil
	default:
		return "", fmt.Errorf("secret: unknown secret kind %q", ref.Kind)
	}
}

var _ ports.SecretProvider = (*Provider)(nil)
