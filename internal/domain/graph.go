package domain

import "time"

// Edge is a connection resolved to concrete ports.
type Edge struct {
	Index      int    `json:"index"`
	Source     string `json:"source"`
	SourcePort string `json:"sourcePort"`
	Target     string `json:"target"`
	TargetPort string `json:"targetPort"`
}

type GraphNode struct {
	Definition NodeDefinition
	InEdges    []Edge
	OutEdges   []Edge
}

// ExecutionGraph is the validated, acyclic form of a WorkflowDefinition. It is
// never modified after the builder returns it.
type ExecutionGraph struct {
	WorkflowID string
	Settings   WorkflowSettings
	Order      []string
	Nodes      map[string]*GraphNode
	InDegree   map[string]int
	Dependents map[string][]string
	Sources    []string
	Sinks      []string
}

func (g *ExecutionGraph) Node(id string) (*GraphNode, bool) {
	n, ok := g.Nodes[id]
	return n, ok
}

func (g *ExecutionGraph) IsSource(id string) bool {
	return g.InDegree[id] == 0
}

func (g *ExecutionGraph) IsSink(id string) bool {
	n, ok := g.Nodes[id]
	return ok && len(n.OutEdges) == 0
}

func (g *ExecutionGraph) Size() int {
	return len(g.Order)
}

// InputPorts returns the ports the node consumes. Undeclared ports are derived
// from incoming edges and are required.
func (g *ExecutionGraph) InputPorts(id string) []PortDefinition {
	n, ok := g.Nodes[id]
	if !ok {
		return nil
	}
	if len(n.Definition.Inputs) > 0 {
		return n.Definition.Inputs
	}

	seen := make(map[string]bool)
	var ports []PortDefinition
	for _, e := range n.InEdges {
		if seen[e.TargetPort] {
			continue
		}
		seen[e.TargetPort] = true
		ports = append(ports, PortDefinition{ID: e.TargetPort, Required: true, Multiple: true})
	}
	return ports
}

// RunOptions are the knobs of one scheduler run. Zero values fall back to the
// engine configuration.
type RunOptions struct {
	ExecutionID    string
	WorkflowID     string
	UserID         string
	TriggerType    string
	MaxParallelism int
	ErrorMode      ErrorMode
	NodeTimeout    time.Duration
	RetryCount     int
	RetryDelay     time.Duration
}
