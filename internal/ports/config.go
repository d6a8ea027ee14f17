package ports

import (
	"context"

	"github.com/oronts/datahub/internal/domain/pipeline"
)

// ConfigLoader loads pipeline definitions from an external source such as
// the filesystem, an embedded asset, or a remote service. Implementations
// must be deterministic, respect context cancellation, and translate
// infrastructure failures into domain-friendly error codes.
//
// Error mapping expectations:
//   - io/fs.ErrNotExist → ErrCodeNotFound
//   - schema or YAML parsing failures → ErrCodeValidation
//   - context cancellation/deadline → ErrCodeCancelled or ErrCodeTimeout
//   - unexpected I/O issues → ErrCodeInternal with wrapped cause
//
// ConfigLoader is consumed exclusively by application-layer use cases;
// domain packages never depend on concrete infrastructure concerns.
type ConfigLoader interface {
	// Load materializes a fully validated pipeline definition, accepting
	// either its canonical or visual wire form.
	Load(ctx context.Context, path string) (*pipeline.PipelineDefinition, error)

	// Validate performs a lightweight syntactic check without instantiating
	// the whole definition.
	Validate(ctx context.Context, path string) error
}
