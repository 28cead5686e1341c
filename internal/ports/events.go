package ports

import (
	"github.com/eleven-am/flowrun/internal/domain"
)

type EventManager interface {
	PublishWorkflowStarted(event *domain.WorkflowStartedEvent)
	PublishWorkflowCompleted(event *domain.WorkflowCompletedEvent)
	PublishWorkflowFailed(event *domain.WorkflowErrorEvent)
	PublishWorkflowCancelled(event *domain.WorkflowCancelledEvent)
	PublishNodeStarted(event *domain.NodeStartedEvent)
	PublishNodeCompleted(event *domain.NodeCompletedEvent)
	PublishNodeError(event *domain.NodeErrorEvent)
	PublishNodeSkipped(event *domain.NodeSkippedEvent)

	OnWorkflowStarted(handler func(event *domain.WorkflowStartedEvent)) error
	OnWorkflowCompleted(handler func(event *domain.WorkflowCompletedEvent)) error
	OnWorkflowFailed(handler func(event *domain.WorkflowErrorEvent)) error
	OnWorkflowCancelled(handler func(event *domain.WorkflowCancelledEvent)) error
	OnNodeStarted(handler func(event *domain.NodeStartedEvent)) error
	OnNodeCompleted(handler func(event *domain.NodeCompletedEvent)) error
	OnNodeError(handler func(event *domain.NodeErrorEvent)) error
	OnNodeSkipped(handler func(event *domain.NodeSkippedEvent)) error
}
