package graph

import (
	"log/slog"

	"github.com/eleven-am/flowrun/internal/domain"
)

type visitState uint8

const (
	unvisited visitState = iota
	onStack
	done
)

// Builder turns a WorkflowDefinition into a validated ExecutionGraph.
type Builder struct {
	logger *slog.Logger
}

func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With("component", "graph-builder")}
}

// Build validates the definition and computes adjacency, in-degree, sources and
// sinks. It never returns a partially built graph.
func (b *Builder) Build(def *domain.WorkflowDefinition) (*domain.ExecutionGraph, error) {
	if def == nil || len(def.Nodes) == 0 {
		return nil, &domain.GraphError{Kind: domain.GraphErrEmptyWorkflow}
	}

	g := &domain.ExecutionGraph{
		WorkflowID: def.ID,
		Settings:   def.Settings,
		Order:      make([]string, 0, len(def.Nodes)),
		Nodes:      make(map[string]*domain.GraphNode, len(def.Nodes)),
		InDegree:   make(map[string]int, len(def.Nodes)),
		Dependents: make(map[string][]string, len(def.Nodes)),
	}

	for _, node := range def.Nodes {
		if _, exists := g.Nodes[node.ID]; exists {
			return nil, &domain.GraphError{Kind: domain.GraphErrDuplicateNode, NodeID: node.ID}
		}
		g.Nodes[node.ID] = &domain.GraphNode{Definition: node}
		g.Order = append(g.Order, node.ID)
		g.InDegree[node.ID] = 0
	}

	for i, conn := range def.Connections {
		source, ok := g.Nodes[conn.Source]
		if !ok {
			return nil, &domain.GraphError{Kind: domain.GraphErrDanglingEdge, NodeID: conn.Source}
		}
		target, ok := g.Nodes[conn.Target]
		if !ok {
			return nil, &domain.GraphError{Kind: domain.GraphErrDanglingEdge, NodeID: conn.Target}
		}

		edge := domain.Edge{
			Index:      i,
			Source:     conn.Source,
			SourcePort: conn.SourcePort(),
			Target:     conn.Target,
			TargetPort: conn.TargetPort(),
		}
		if !source.Definition.HasOutputPort(edge.SourcePort) {
			return nil, &domain.GraphError{Kind: domain.GraphErrUnknownPort, NodeID: edge.Source, Port: edge.SourcePort}
		}
		if !target.Definition.HasInputPort(edge.TargetPort) {
			return nil, &domain.GraphError{Kind: domain.GraphErrUnknownPort, NodeID: edge.Target, Port: edge.TargetPort}
		}

		source.OutEdges = append(source.OutEdges, edge)
		target.InEdges = append(target.InEdges, edge)
		g.InDegree[edge.Target]++
		if !contains(g.Dependents[edge.Source], edge.Target) {
			g.Dependents[edge.Source] = append(g.Dependents[edge.Source], edge.Target)
		}
	}

	if path := findCycle(g); path != nil {
		b.logger.Debug("workflow graph has a cycle", "workflow_id", def.ID, "path", path)
		return nil, &domain.GraphError{Kind: domain.GraphErrCycleDetected, NodeID: path[0], Path: path}
	}

	for _, id := range g.Order {
		if g.InDegree[id] == 0 {
			g.Sources = append(g.Sources, id)
		}
		if len(g.Nodes[id].OutEdges) == 0 {
			g.Sinks = append(g.Sinks, id)
		}
	}

	b.logger.Debug("workflow graph built",
		"workflow_id", def.ID,
		"nodes", len(g.Order),
		"edges", len(def.Connections),
		"sources", len(g.Sources),
		"sinks", len(g.Sinks))

	return g, nil
}

// findCycle runs a depth-first search with an explicit recursion stack. The
// returned path starts and ends with the same node.
func findCycle(g *domain.ExecutionGraph) []string {
	state := make(map[string]visitState, len(g.Order))

	type frame struct {
		id   string
		next int
	}

	for _, root := range g.Order {
		if state[root] != unvisited {
			continue
		}

		stack := []frame{{id: root}}
		state[root] = onStack

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := g.Dependents[top.id]

			if top.next >= len(deps) {
				state[top.id] = done
				stack = stack[:len(stack)-1]
				continue
			}

			child := deps[top.next]
			top.next++

			switch state[child] {
			case unvisited:
				state[child] = onStack
				stack = append(stack, frame{id: child})
			case onStack:
				path := []string{}
				start := 0
				for i, f := range stack {
					if f.id == child {
						start = i
						break
					}
				}
				for _, f := range stack[start:] {
					path = append(path, f.id)
				}
				return append(path, child)
			}
		}
	}

	return nil
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
