package engine

import (
	"time"

	"github.com/eleven-am/flowrun/internal/domain"
)

// Lifecycle publishing for one run. A nil event manager turns these into no-ops.

func (s *scheduler) publishStarted() {
	if s.engine.events == nil {
		return
	}
	s.engine.events.PublishWorkflowStarted(&domain.WorkflowStartedEvent{
		ExecutionID: s.opts.ExecutionID,
		WorkflowID:  s.opts.WorkflowID,
		UserID:      s.opts.UserID,
		TriggerType: s.opts.TriggerType,
		SourceNodes: append([]string(nil), s.graph.Sources...),
		StartedAt:   time.Now(),
		Input:       s.input,
	})
}

func (s *scheduler) publishNodeStarted(node domain.NodeDefinition) {
	if s.engine.events == nil {
		return
	}
	s.engine.events.PublishNodeStarted(&domain.NodeStartedEvent{
		ExecutionID: s.opts.ExecutionID,
		WorkflowID:  s.opts.WorkflowID,
		NodeID:      node.ID,
		NodeType:    node.Type,
		Attempt:     1,
		StartedAt:   time.Now(),
	})
}

func (s *scheduler) publishNodeCompleted(id string, output domain.Payload, duration time.Duration) {
	if s.engine.events == nil {
		return
	}
	s.engine.events.PublishNodeCompleted(&domain.NodeCompletedEvent{
		ExecutionID: s.opts.ExecutionID,
		WorkflowID:  s.opts.WorkflowID,
		NodeID:      id,
		NodeType:    s.graph.Nodes[id].Definition.Type,
		Output:      output.Clone(),
		FiredPorts:  output.Ports(),
		CompletedAt: time.Now(),
		Duration:    duration,
	})
}

func (s *scheduler) publishNodeError(id string, err error, attempts int, duration time.Duration) {
	if s.engine.events == nil {
		return
	}
	event := &domain.NodeErrorEvent{
		ExecutionID: s.opts.ExecutionID,
		WorkflowID:  s.opts.WorkflowID,
		NodeID:      id,
		NodeType:    s.graph.Nodes[id].Definition.Type,
		Error:       err.Error(),
		Attempts:    attempts,
		FailedAt:    time.Now(),
		Duration:    duration,
	}
	if nodeErr, ok := domain.AsNodeError(err); ok {
		event.ErrorKind = nodeErr.Kind
	}
	s.engine.events.PublishNodeError(event)
}

func (s *scheduler) publishNodeSkipped(id string, reason domain.SkipReason) {
	if s.engine.events == nil {
		return
	}
	s.engine.events.PublishNodeSkipped(&domain.NodeSkippedEvent{
		ExecutionID: s.opts.ExecutionID,
		WorkflowID:  s.opts.WorkflowID,
		NodeID:      id,
		Reason:      reason,
		SkippedAt:   time.Now(),
	})
}

func (s *scheduler) publishCompleted(record *domain.ExecutionRecord, executed []string) {
	if s.engine.events == nil {
		return
	}
	s.engine.events.PublishWorkflowCompleted(&domain.WorkflowCompletedEvent{
		ExecutionID:   record.ID,
		WorkflowID:    record.WorkflowID,
		Output:        record.OutputData,
		CompletedAt:   finishedAt(record),
		ExecutedNodes: executed,
		Duration:      record.Duration(),
	})
}

func (s *scheduler) publishFailed(record *domain.ExecutionRecord, failed []string) {
	if s.engine.events == nil {
		return
	}
	s.engine.events.PublishWorkflowFailed(&domain.WorkflowErrorEvent{
		ExecutionID: record.ID,
		WorkflowID:  record.WorkflowID,
		Error:       record.ErrorMessage,
		FailedNodes: failed,
		FailedAt:    finishedAt(record),
		Duration:    record.Duration(),
	})
}

func (s *scheduler) publishCancelled(record *domain.ExecutionRecord) {
	if s.engine.events == nil {
		return
	}
	s.engine.events.PublishWorkflowCancelled(&domain.WorkflowCancelledEvent{
		ExecutionID: record.ID,
		WorkflowID:  record.WorkflowID,
		CancelledAt: finishedAt(record),
		Reason:      record.ErrorMessage,
	})
}

func finishedAt(record *domain.ExecutionRecord) time.Time {
	if record.FinishedAt != nil {
		return *record.FinishedAt
	}
	return time.Now()
}
