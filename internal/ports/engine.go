package ports

import (
	"context"

	"github.com/eleven-am/flowrun/internal/domain"
)

type GraphBuilderPort interface {
	Build(def *domain.WorkflowDefinition) (*domain.ExecutionGraph, error)
}

// EnginePort runs one graph to completion. It always returns a finalized record.
type EnginePort interface {
	Run(ctx context.Context, graph *domain.ExecutionGraph, input map[string]interface{}, opts domain.RunOptions) *domain.ExecutionRecord
	Cancel(executionID string) bool
	ActiveExecutions() []string
	GetMetrics() domain.ExecutionMetrics
}
