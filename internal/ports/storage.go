package ports

import (
	"context"

	"github.com/eleven-am/flowrun/internal/domain"
)

// ExecutionStore persists finalized execution records.
type ExecutionStore interface {
	SaveExecution(ctx context.Context, record *domain.ExecutionRecord) error
	GetExecution(ctx context.Context, executionID string) (*domain.ExecutionRecord, error)
	// ListExecutions returns the newest records first.
	ListExecutions(ctx context.Context, workflowID string, limit int) ([]*domain.ExecutionRecord, error)
	// ExecutionStats counts a user's executions. An empty workflowID counts all workflows.
	ExecutionStats(ctx context.Context, userID, workflowID string) (*domain.ExecutionStats, error)
}

type WorkflowStore interface {
	GetWorkflow(ctx context.Context, workflowID string) (*domain.WorkflowDefinition, error)
	SaveWorkflow(ctx context.Context, def *domain.WorkflowDefinition) error
}

type CredentialStore interface {
	GetCredential(ctx context.Context, credentialID string) (*domain.Credential, error)
	SaveCredential(ctx context.Context, credential *domain.Credential) error
	DeleteCredential(ctx context.Context, credentialID string) error
}
