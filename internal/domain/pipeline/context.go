package pipeline

// ErrorPolicy governs how the Graph Orchestrator's parallel mode reacts to a
// step failure.
type ErrorPolicy string

const (
	// FailFast surfaces the first error as a run failure once the in-flight
	// set drains.
	FailFast ErrorPolicy = "FAIL_FAST"
	// BestEffort logs each failure and continues, yielding whichever
	// successes complete.
	BestEffort ErrorPolicy = "BEST_EFFORT"
)

const defaultMaxConcurrentSteps = 4

// ParallelExecution configures the Graph Orchestrator's concurrency mode.
type ParallelExecution struct {
	Enabled            bool
	MaxConcurrentSteps int
	ErrorPolicy        ErrorPolicy
}

// ApplyDefaults fills in the documented defaults: maxConcurrentSteps=4,
// FAIL_FAST policy.
func (p ParallelExecution) ApplyDefaults() ParallelExecution {
	out := p
	if out.MaxConcurrentSteps <= 0 {
		out.MaxConcurrentSteps = defaultMaxConcurrentSteps
	}
	if out.ErrorPolicy == "" {
		out.ErrorPolicy = FailFast
	}
	return out
}

// PipelineContext carries per-run configuration attached to a pipeline
// definition: free-form variables plus the parallel-execution policy.
type PipelineContext struct {
	Variables         map[string]interface{}
	ParallelExecution ParallelExecution
}

// Clone returns a defensive copy.
func (c PipelineContext) Clone() PipelineContext {
	vars := make(map[string]interface{}, len(c.Variables))
	for k, v := range c.Variables {
		vars[k] = v
	}
	return PipelineContext{
		Variables:         vars,
		ParallelExecution: c.ParallelExecution,
	}
}
