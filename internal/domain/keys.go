package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	ExecutionPrefix         = "execution:record:"
	WorkflowExecutionPrefix = "execution:by-workflow:"
	WorkflowPrefix          = "workflow:definition:"
	CredentialPrefix        = "credential:"
)

// ExecutionKey builds the canonical key for an execution record
func ExecutionKey(id string) string {
	return fmt.Sprintf("%s%s", ExecutionPrefix, id)
}

// WorkflowExecutionIndexPrefix is the prefix for all index entries of one workflow.
// The id is length-prefixed so no workflow's prefix can begin another's.
func WorkflowExecutionIndexPrefix(workflowID string) string {
	return fmt.Sprintf("%s%d:%s:", WorkflowExecutionPrefix, len(workflowID), workflowID)
}

// WorkflowExecutionIndexKey sorts newest first under a forward prefix scan
func WorkflowExecutionIndexKey(workflowID string, startedAt time.Time, executionID string) string {
	inverted := uint64(math.MaxInt64 - startedAt.UnixNano())
	return fmt.Sprintf("%s%020d:%s", WorkflowExecutionIndexPrefix(workflowID), inverted, executionID)
}

func WorkflowKey(id string) string {
	return fmt.Sprintf("%s%s", WorkflowPrefix, id)
}

func CredentialKey(id string) string {
	return fmt.Sprintf("%s%s", CredentialPrefix, id)
}
