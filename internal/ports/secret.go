package ports

import "context"

// SecretKind enumerates how a secret's value is resolved.
type SecretKind string

const (
	// SecretInline stores an encrypted value directly.
	SecretInline SecretKind = "INLINE"
	// SecretEnv references an environment variable by name.
	SecretEnv SecretKind = "ENV"
)

// SecretRef is a reference to a secret value: either an inline encrypted
// blob or the name of an environment variable, matching
// `^[A-Z][A-Z0-9_]*$`.
type SecretRef struct {
	Kind        SecretKind
	InlineValue string
	EnvName     string
}

// SecretProvider resolves a SecretRef into its plaintext value at executor
// construction time. The storage backend for INLINE values is an external
// collaborator not specified here.
type SecretProvider interface {
	Resolve(ctx context.Context, ref SecretRef) (string, error)
}
