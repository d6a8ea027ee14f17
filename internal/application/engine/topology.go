// Package engine implements the Executor Context, Step Strategies and
// Dispatcher, and the Graph/Linear Orchestrators (spec §4.2–§4.3),
// generalizing the teacher's Kahn's-algorithm DAG (internal/engine/dag.go)
// from static per-level batches to a live predecessor/indegree/ready-set
// topology a scheduler consumes incrementally.
package engine

import (
	"sort"

	"github.com/oronts/datahub/internal/domain/pipeline"
	"github.com/oronts/datahub/internal/ports"
)

// Topology computes predecessors, successors, indegrees, and the initial
// ready-set for a pipeline's DAG (spec §4.3 step 1).
type Topology struct{}

// NewTopology constructs the default TopologyBuilder implementation.
func NewTopology() *Topology {
	return &Topology{}
}

// Build implements ports.TopologyBuilder.
func (t *Topology) Build(def pipeline.PipelineDefinition) (ports.Topology, error) {
	predecessors := make(map[string][]pipeline.Edge, len(def.Steps))
	successors := make(map[string][]string, len(def.Steps))
	indegree := make(map[string]int, len(def.Steps))

	for _, step := range def.Steps {
		indegree[step.Key] = 0
	}
	for _, edge := range def.Edges {
		predecessors[edge.To] = append(predecessors[edge.To], edge)
		successors[edge.From] = append(successors[edge.From], edge.To)
		indegree[edge.To]++
	}

	var ready []string
	for _, step := range def.Steps {
		if indegree[step.Key] == 0 {
			ready = append(ready, step.Key)
		}
	}
	// Ready order follows declaration order (the pipeline's step order),
	// giving a deterministic, reproducible launch sequence for equally
	// ready steps (spec §4.3 tie-breaking).
	declOrder := make(map[string]int, len(def.Steps))
	for i, step := range def.Steps {
		declOrder[step.Key] = i
	}
	sort.SliceStable(ready, func(i, j int) bool {
		return declOrder[ready[i]] < declOrder[ready[j]]
	})

	return ports.Topology{
		Predecessors: predecessors,
		Successors:   successors,
		Indegree:     indegree,
		ReadyOrder:   ready,
	}, nil
}

var _ ports.TopologyBuilder = (*Topology)(nil)
