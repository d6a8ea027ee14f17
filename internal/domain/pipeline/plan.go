package pipeline

import "fmt"

// ExecutionLevel groups step keys that can execute concurrently: no key in
// a level depends, directly or transitively, on another key in the same
// level.
type ExecutionLevel struct {
	Level    int
	StepKeys []string
}

// ExecutionPlan is a topologically-sorted view of a pipeline's DAG, used for
// dry-run preview and plan validation; the Graph Orchestrator itself
// schedules from a live ready-queue rather than from this precomputed plan.
type ExecutionPlan struct {
	Levels     []ExecutionLevel
	TotalSteps int
}

// Validate ensures the plan is coherent with the pipeline definition: every
// step appears exactly once, and no step is scheduled before a step it
// depends on.
func (p ExecutionPlan) Validate(def PipelineDefinition) error {
	if len(p.Levels) == 0 {
		return newValidationError("execution plan must contain at least one level", nil)
	}

	seen := make(map[string]struct{})
	for _, level := range p.Levels {
		if len(level.StepKeys) == 0 {
			return newValidationError("execution level must contain steps", map[string]interface{}{"level": level.Level})
		}
		for _, key := range level.StepKeys {
			if _, ok := seen[key]; ok {
				return newDependencyError("step appears in multiple execution levels", map[string]interface{}{"step_key": key})
			}
			seen[key] = struct{}{}
		}
	}

	for _, step := range def.Steps {
		if _, ok := seen[step.Key]; !ok {
			return newDependencyError("plan missing step", map[string]interface{}{"step_key": step.Key})
		}
	}

	levelIndex := make(map[string]int, len(seen))
	for _, level := range p.Levels {
		for _, key := range level.StepKeys {
			levelIndex[key] = level.Level
		}
	}

	for _, edge := range def.Edges {
		if levelIndex[edge.From] > levelIndex[edge.To] {
			return newDependencyError("predecessor scheduled after successor", map[string]interface{}{
				"from": edge.From,
				"to":   edge.To,
			})
		}
	}

	return nil
}

// LevelForStep returns the level index for the provided step key.
func (p ExecutionPlan) LevelForStep(stepKey string) (int, error) {
	for _, level := range p.Levels {
		for _, key := range level.StepKeys {
			if key == stepKey {
				return level.Level, nil
			}
		}
	}
	return 0, fmt.Errorf("step %s not present in execution plan", stepKey)
}
