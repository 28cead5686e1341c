package domain

import (
	"runtime"
	"strconv"
	"time"
)

type WorkflowStartedEvent struct {
	ExecutionID string                 `json:"execution_id"`
	WorkflowID  string                 `json:"workflow_id"`
	UserID      string                 `json:"user_id"`
	TriggerType string                 `json:"trigger_type"`
	SourceNodes []string               `json:"source_nodes"`
	StartedAt   time.Time              `json:"started_at"`
	Input       map[string]interface{} `json:"input,omitempty"`
}

type WorkflowCompletedEvent struct {
	ExecutionID   string             `json:"execution_id"`
	WorkflowID    string             `json:"workflow_id"`
	Output        map[string]Payload `json:"output"`
	CompletedAt   time.Time          `json:"completed_at"`
	ExecutedNodes []string           `json:"executed_nodes"`
	Duration      time.Duration      `json:"duration"`
}

type WorkflowErrorEvent struct {
	ExecutionID string        `json:"execution_id"`
	WorkflowID  string        `json:"workflow_id"`
	Error       string        `json:"error"`
	FailedNodes []string      `json:"failed_nodes"`
	FailedAt    time.Time     `json:"failed_at"`
	Duration    time.Duration `json:"duration"`
}

type WorkflowCancelledEvent struct {
	ExecutionID string    `json:"execution_id"`
	WorkflowID  string    `json:"workflow_id"`
	CancelledAt time.Time `json:"cancelled_at"`
	Reason      string    `json:"reason,omitempty"`
}

type NodeStartedEvent struct {
	ExecutionID string    `json:"execution_id"`
	WorkflowID  string    `json:"workflow_id"`
	NodeID      string    `json:"node_id"`
	NodeType    string    `json:"node_type"`
	Attempt     int       `json:"attempt"`
	StartedAt   time.Time `json:"started_at"`
}

type NodeCompletedEvent struct {
	ExecutionID string        `json:"execution_id"`
	WorkflowID  string        `json:"workflow_id"`
	NodeID      string        `json:"node_id"`
	NodeType    string        `json:"node_type"`
	Output      Payload       `json:"output"`
	FiredPorts  []string      `json:"fired_ports,omitempty"`
	CompletedAt time.Time     `json:"completed_at"`
	Duration    time.Duration `json:"duration"`
}

type NodeErrorEvent struct {
	ExecutionID string        `json:"execution_id"`
	WorkflowID  string        `json:"workflow_id"`
	NodeID      string        `json:"node_id"`
	NodeType    string        `json:"node_type"`
	Error       string        `json:"error"`
	ErrorKind   NodeErrorKind `json:"error_kind"`
	Attempts    int           `json:"attempts"`
	FailedAt    time.Time     `json:"failed_at"`
	Duration    time.Duration `json:"duration"`
}

type NodeSkippedEvent struct {
	ExecutionID string     `json:"execution_id"`
	WorkflowID  string     `json:"workflow_id"`
	NodeID      string     `json:"node_id"`
	Reason      SkipReason `json:"reason"`
	SkippedAt   time.Time  `json:"skipped_at"`
}

type WorkflowPanicError struct {
	ExecutionID string      `json:"execution_id"`
	NodeID      string      `json:"node_id"`
	PanicValue  interface{} `json:"panic_value"`
	StackTrace  string      `json:"stack_trace"`
	Timestamp   time.Time   `json:"timestamp"`
	RecoveredAt string      `json:"recovered_at"`
}

func (wpe *WorkflowPanicError) Error() string {
	return "node execution panicked: " + wpe.NodeID
}

func NewPanicError(executionID, nodeID string, panicValue interface{}) *WorkflowPanicError {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)

	_, file, line, _ := runtime.Caller(2)

	return &WorkflowPanicError{
		ExecutionID: executionID,
		NodeID:      nodeID,
		PanicValue:  panicValue,
		StackTrace:  string(buf[:n]),
		Timestamp:   time.Now(),
		RecoveredAt: file + ":" + strconv.Itoa(line),
	}
}
