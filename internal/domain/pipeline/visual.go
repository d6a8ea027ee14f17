package pipeline

// VisualNode is one box in the dashboard's graph editor: a step plus its
// presentation-agnostic config, keyed the same way a canonical step is.
type VisualNode struct {
	ID   string
	Data VisualNodeData
}

// VisualNodeData carries the step's kind, display name, and opaque config.
type VisualNodeData struct {
	Type   StepKind
	Name   string
	Config map[string]interface{}
}

// VisualEdge is the visual editor's rendering of a dependency: `source` and
// `target` instead of the canonical form's `from`/`to`.
type VisualEdge struct {
	ID     string
	Source string
	Target string
	Branch string
}

// VisualDefinition is the dashboard's wire format for a pipeline: the same
// information as PipelineDefinition, shaped for a node/edge graph editor.
type VisualDefinition struct {
	Version      int
	Nodes        []VisualNode
	Edges        []VisualEdge
	Context      PipelineContext
	Capabilities []string
	Trigger      map[string]interface{}
}

// ToVisual converts a canonical definition into its visual-editor form.
// Each step becomes a node keyed by the step's key; edges carry over
// unchanged except for the source/target field rename. If the canonical
// definition has no edges, the visual form has none either — ToCanonical is
// responsible for synthesizing the implied linear chain on the way back.
func (p PipelineDefinition) ToVisual() VisualDefinition {
	nodes := make([]VisualNode, len(p.Steps))
	for i, step := range p.Steps {
		nodes[i] = VisualNode{
			ID: step.Key,
			Data: VisualNodeData{
				Type:   step.Type,
				Name:   step.Name,
				Config: step.Config,
			},
		}
	}

	edges := make([]VisualEdge, len(p.Edges))
	for i, edge := range p.Edges {
		edges[i] = VisualEdge{
			ID:     edge.ID,
			Source: edge.From,
			Target: edge.To,
			Branch: edge.Branch,
		}
	}

	return VisualDefinition{
		Version:      p.Version,
		Nodes:        nodes,
		Edges:        edges,
		Context:      p.Context.Clone(),
		Capabilities: append([]string(nil), p.Capabilities...),
		Trigger:      p.Trigger,
	}
}

// ToCanonical converts a visual definition back into canonical form. Each
// node becomes a step keyed by node.ID; node.Data.Config's `adapterCode` is
// preserved as-is (it is opaque to this conversion). Edges map
// source→from, target→to. If the visual definition carries no edges, a
// linear chain through the nodes in declaration order is synthesized so the
// pipeline remains executable by the Linear Orchestrator's declaration-order
// contract.
func (v VisualDefinition) ToCanonical() PipelineDefinition {
	steps := make([]StepDefinition, len(v.Nodes))
	for i, node := range v.Nodes {
		steps[i] = StepDefinition{
			Key:    node.ID,
			Type:   node.Data.Type,
			Name:   node.Data.Name,
			Config: node.Data.Config,
		}
	}

	var edges []Edge
	if len(v.Edges) > 0 {
		edges = make([]Edge, len(v.Edges))
		for i, edge := range v.Edges {
			edges[i] = Edge{
				ID:     edge.ID,
				From:   edge.Source,
				To:     edge.Target,
				Branch: edge.Branch,
			}
		}
	} else {
		edges = synthesizeLinearChain(steps)
	}

	return PipelineDefinition{
		Version:      v.Version,
		Steps:        steps,
		Edges:        edges,
		Context:      v.Context.Clone(),
		Capabilities: append([]string(nil), v.Capabilities...),
		Trigger:      v.Trigger,
	}
}

// synthesizeLinearChain produces the implicit edge set for an edge-less
// pipeline: step[i] → step[i+1] in declaration order.
func synthesizeLinearChain(steps []StepDefinition) []Edge {
	if len(steps) < 2 {
		return nil
	}
	edges := make([]Edge, 0, len(steps)-1)
	for i := 0; i < len(steps)-1; i++ {
		edges = append(edges, Edge{
			ID:   steps[i].Key + "->" + steps[i+1].Key,
			From: steps[i].Key,
			To:   steps[i+1].Key,
		})
	}
	return edges
}
