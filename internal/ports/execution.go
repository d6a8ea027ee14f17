package ports

import (
	"context"

	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/domain/record"
)

// ExecutorRequest is the input a Step Strategy hands to the external
// executor it resolves for a step's adapterCode. The concrete adapter
// (a CSV parser, an HTTP client, the backend catalog's product writer, ...)
// is out of scope here; only the stable call shape is defined.
type ExecutorRequest struct {
	Definition *pipeline.PipelineDefinition
	Step       pipeline.StepDefinition
	RunID      string
	Input      []record.Record
}

// ExecutorResponse is the external executor's result, normalized by the
// strategy into a StrategyResult.
type ExecutorResponse struct {
	Output     []record.Record
	Branches   record.BranchOutput
	OK         int
	Fail       int
	OutputPath string
}

// StepExecutor is the external collaborator a strategy invokes to actually
// extract, transform, load, or export data. Implementations must respect
// ctx cancellation and report per-record failures through ExecutorResponse's
// OK/Fail counts rather than aborting the whole call on the first bad
// record; a non-nil error means the call itself failed, not that some
// records within it did.
type StepExecutor interface {
	Execute(ctx context.Context, req ExecutorRequest) (ExecutorResponse, error)
}

// ExecutorRegistry resolves a StepExecutor by the step config's
// `adapterCode`. It is the Step Dispatcher's seam into concrete,
// out-of-scope adapter implementations — the same role the teacher's
// plugin registry played for concrete system-configuration steps, adapted
// to key on adapter code instead of step type. Registries must be safe for
// concurrent use.
type ExecutorRegistry interface {
	Register(adapterCode string, executor StepExecutor) error
	Get(adapterCode string) (StepExecutor, error)
}

// TopologyBuilder computes predecessors, indegrees, and the initial
// ready-set for a pipeline's DAG. It is the Graph Orchestrator's sole
// collaborator for determining execution order.
type TopologyBuilder interface {
	Build(def pipeline.PipelineDefinition) (Topology, error)
}

// Topology is the precomputed shape the Graph Orchestrator schedules from.
type Topology struct {
	Predecessors map[string][]pipeline.Edge
	Successors   map[string][]string
	Indegree     map[string]int
	ReadyOrder   []string
}
