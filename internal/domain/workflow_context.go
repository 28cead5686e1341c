package domain

import (
	"context"
	"time"
)

type contextKey string

const WorkflowContextKey contextKey = "flowrun:workflow_context"

// WorkflowContext is attached to the context handed to every handler invocation.
type WorkflowContext struct {
	ExecutionID string
	WorkflowID  string
	UserID      string
	NodeID      string
	NodeType    string
	Attempt     int
	StartedAt   time.Time
}

func WithWorkflowContext(ctx context.Context, workflowCtx *WorkflowContext) context.Context {
	return context.WithValue(ctx, WorkflowContextKey, workflowCtx)
}

func GetWorkflowContext(ctx context.Context) (*WorkflowContext, bool) {
	workflowCtx, ok := ctx.Value(WorkflowContextKey).(*WorkflowContext)
	return workflowCtx, ok
}
