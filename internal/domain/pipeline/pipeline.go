package pipeline

// PipelineDefinition is the immutable plan for a run: read-only once
// authored, referenced by every step of a run's lifetime.
type PipelineDefinition struct {
	Version      int
	Name         string
	Steps        []StepDefinition
	Edges        []Edge
	Context      PipelineContext
	Capabilities []string
	Trigger      map[string]interface{}
}

// Validate ensures the definition satisfies its structural invariants: step
// keys unique, edges reference existing keys, and (if edges are present) the
// graph is acyclic.
func (p PipelineDefinition) Validate() error {
	if p.Version <= 0 {
		return newValidationError("pipeline version must be positive", nil)
	}
	if len(p.Steps) == 0 {
		return newValidationError("pipeline requires at least one step", nil)
	}

	seen := make(map[string]struct{}, len(p.Steps))
	for _, step := range p.Steps {
		if err := step.Validate(); err != nil {
			return err
		}
		if _, ok := seen[step.Key]; ok {
			return newDuplicateError(step.Key)
		}
		seen[step.Key] = struct{}{}
	}

	for _, edge := range p.Edges {
		if err := edge.Validate(); err != nil {
			return err
		}
		if _, ok := seen[edge.From]; !ok {
			return newDependencyError("edge references unknown step", map[string]interface{}{"step_key": edge.From})
		}
		if _, ok := seen[edge.To]; !ok {
			return newDependencyError("edge references unknown step", map[string]interface{}{"step_key": edge.To})
		}
	}

	if p.HasEdges() {
		return p.detectCycle()
	}
	return nil
}

// HasEdges reports whether the pipeline declares an explicit graph; linear
// execution applies iff edges is empty or absent.
func (p PipelineDefinition) HasEdges() bool {
	return len(p.Edges) > 0
}

func (p PipelineDefinition) detectCycle() error {
	predecessors := make(map[string][]string, len(p.Steps))
	for _, step := range p.Steps {
		predecessors[step.Key] = nil
	}
	for _, edge := range p.Edges {
		predecessors[edge.To] = append(predecessors[edge.To], edge.From)
	}

	visited := make(map[string]bool, len(p.Steps))
	stack := make(map[string]bool, len(p.Steps))
	var path []string

	var visit func(string) *DomainError
	visit = func(key string) *DomainError {
		visited[key] = true
		stack[key] = true
		path = append(path, key)

		for _, pred := range predecessors[key] {
			if !visited[pred] {
				if err := visit(pred); err != nil {
					return err
				}
			} else if stack[pred] {
				cycle := append([]string(nil), path...)
				cycle = append(cycle, pred)
				return newCycleError(cycle)
			}
		}

		stack[key] = false
		path = path[:len(path)-1]
		return nil
	}

	for _, step := range p.Steps {
		if !visited[step.Key] {
			if err := visit(step.Key); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetStep retrieves a step by key.
func (p PipelineDefinition) GetStep(key string) (*StepDefinition, error) {
	for i := range p.Steps {
		if p.Steps[i].Key == key {
			step := p.Steps[i]
			return &step, nil
		}
	}
	return nil, newDomainError(ErrCodeNotFound, "step not found", nil, map[string]interface{}{"step_key": key})
}

// EffectiveParallelExecution returns the pipeline's parallel-execution
// policy with defaults applied.
func (p PipelineDefinition) EffectiveParallelExecution() ParallelExecution {
	return p.Context.ParallelExecution.ApplyDefaults()
}

// Clone returns a defensive copy of the pipeline.
func (p PipelineDefinition) Clone() PipelineDefinition {
	steps := make([]StepDefinition, len(p.Steps))
	copy(steps, p.Steps)
	edges := make([]Edge, len(p.Edges))
	copy(edges, p.Edges)
	capabilities := make([]string, len(p.Capabilities))
	copy(capabilities, p.Capabilities)

	return PipelineDefinition{
		Version:      p.Version,
		Name:         p.Name,
		Steps:        steps,
		Edges:        edges,
		Context:      p.Context.Clone(),
		Capabilities: capabilities,
		Trigger:      p.Trigger,
	}
}
