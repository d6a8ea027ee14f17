package ports

import (
	"context"

	"github.com/oronts/datahub/internal/domain/record"
)

// LoaderOperation is one of the write operations the Entity Loader
// Framework supports; the set a concrete loader accepts is declared by the
// loader itself.
type LoaderOperation string

const (
	OpCreate LoaderOperation = "CREATE"
	OpUpdate LoaderOperation = "UPDATE"
	OpUpsert LoaderOperation = "UPSERT"
	OpDelete LoaderOperation = "DELETE"
)

// ValidationResult is the Validation Builder's fluent accumulator output.
type ValidationResult struct {
	Valid    bool
	Errors   []FieldIssue
	Warnings []FieldIssue
}

// FieldIssue is one field-level validation finding with a stable code
// (REQUIRED, INVALID_FORMAT, INVALID_VALUE).
type FieldIssue struct {
	Field   string
	Code    string
	Message string
}

// ExistingEntity is what a Lookup Helper strategy returns when it finds a
// match for a record's lookup fields.
type ExistingEntity struct {
	ID     string
	Record record.Record
}

// EntityLoader is the small interface every destination loader (products,
// variants, customers, orders, inventory, ...) implements once; the Entity
// Loader Framework's base loop is concrete and parameterizes over this
// interface rather than duplicating the loop per entity kind.
type EntityLoader interface {
	// Preprocess runs once over the full input batch before the per-record
	// loop (e.g. idempotency-adjacent normalization specific to this
	// entity kind).
	Preprocess(ctx context.Context, records []record.Record) ([]record.Record, error)

	// Validate checks a single record against this entity's field schema
	// for the given operation.
	Validate(ctx context.Context, rec record.Record, op LoaderOperation) ValidationResult

	// FindExisting resolves an existing entity using the caller-declared
	// lookupFields, trying lookup strategies in declared order.
	FindExisting(ctx context.Context, rec record.Record, lookupFields []string) (*ExistingEntity, error)

	// CreateEntity persists a new entity and returns its ID.
	CreateEntity(ctx context.Context, rec record.Record) (string, error)

	// UpdateEntity patches an existing entity, restricted to
	// updateOnlyFields when non-empty.
	UpdateEntity(ctx context.Context, id string, rec record.Record, updateOnlyFields []string) error

	// FieldSchema describes the fields this entity validates, used by the
	// Validation Builder to decide which required-for-create checks apply.
	FieldSchema() FieldSchema

	// DuplicateMessage returns the deterministic message used when a
	// CREATE finds an existing match and skipDuplicates is false.
	DuplicateMessage(existing ExistingEntity) string
}

// FieldSchema declares which fields are required on create and which are
// treated as address/email fields for built-in Validation Builder checks.
type FieldSchema struct {
	RequiredOnCreate []string
	AddressFields    []string
	EmailFields      []string
}

// LookupStrategy resolves an existing entity by one declared lookup
// field. The Lookup Helper composes strategies in the caller's declared
// order and returns the first match.
type LookupStrategy interface {
	Name() string
	Resolve(ctx context.Context, rec record.Record, field string) (*ExistingEntity, error)
}

// LoaderRegistry resolves an EntityLoader by the step config's
// `adapterCode`, mirroring ExecutorRegistry's role for the LOAD step kind.
// Implementations must be safe for concurrent use.
type LoaderRegistry interface {
	Register(adapterCode string, loader EntityLoader) error
	Get(adapterCode string) (EntityLoader, error)
}
