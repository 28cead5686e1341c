package domain

import (
	"time"
)

// Payload maps a port name to the value carried on that port.
type Payload map[string]interface{}

func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (p Payload) Ports() []string {
	ports := make([]string, 0, len(p))
	for k := range p {
		ports = append(ports, k)
	}
	return ports
}

type NodeStatus string

const (
	NodeStatusPending   NodeStatus = "pending"
	NodeStatusReady     NodeStatus = "ready"
	NodeStatusRunning   NodeStatus = "running"
	NodeStatusSucceeded NodeStatus = "succeeded"
	NodeStatusFailed    NodeStatus = "failed"
	NodeStatusSkipped   NodeStatus = "skipped"
)

func (s NodeStatus) IsTerminal() bool {
	return s == NodeStatusSucceeded || s == NodeStatusFailed || s == NodeStatusSkipped
}

type SkipReason string

const (
	SkipReasonNone           SkipReason = ""
	SkipReasonBranchNotTaken SkipReason = "branch_not_taken"
	SkipReasonUpstreamFailed SkipReason = "upstream_failed"
	SkipReasonStopped        SkipReason = "execution_stopped"
	SkipReasonCancelled      SkipReason = "cancelled"
)

// IsFailure reports whether the skip was caused by a failure rather than by branching.
func (r SkipReason) IsFailure() bool {
	return r == SkipReasonUpstreamFailed || r == SkipReasonStopped
}

type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusSuccess   ExecutionStatus = "success"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusSuccess || s == ExecutionStatusFailed || s == ExecutionStatusCancelled
}

// NodeRuntimeState is the per-run state of one node.
type NodeRuntimeState struct {
	NodeID     string        `json:"nodeId"`
	NodeType   string        `json:"nodeType"`
	Status     NodeStatus    `json:"status"`
	Input      Payload       `json:"input,omitempty"`
	Output     Payload       `json:"output,omitempty"`
	Error      string        `json:"error,omitempty"`
	ErrorKind  NodeErrorKind `json:"errorKind,omitempty"`
	SkipReason SkipReason    `json:"skipReason,omitempty"`
	Attempts   int           `json:"attempts"`
	StartedAt  *time.Time    `json:"startedAt,omitempty"`
	FinishedAt *time.Time    `json:"finishedAt,omitempty"`
}

func (s NodeRuntimeState) Duration() time.Duration {
	if s.StartedAt == nil || s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(*s.StartedAt)
}

type LogEvent string

const (
	LogEventExecutionStarted  LogEvent = "execution_started"
	LogEventNodeReady         LogEvent = "node_ready"
	LogEventNodeStarted       LogEvent = "node_started"
	LogEventNodeAttemptFailed LogEvent = "node_attempt_failed"
	LogEventNodeSucceeded     LogEvent = "node_succeeded"
	LogEventNodeFailed        LogEvent = "node_failed"
	LogEventNodeSkipped       LogEvent = "node_skipped"
	LogEventExecutionFinished LogEvent = "execution_finished"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogEntry is one immutable line of an execution's audit log.
type LogEntry struct {
	Sequence   int64      `json:"sequence"`
	Level      LogLevel   `json:"level"`
	Event      LogEvent   `json:"event"`
	NodeID     string     `json:"nodeId,omitempty"`
	Status     string     `json:"status,omitempty"`
	Message    string     `json:"message"`
	Attempt    int        `json:"attempt,omitempty"`
	Output     Payload    `json:"output,omitempty"`
	Error      string     `json:"error,omitempty"`
	SkipReason SkipReason `json:"skipReason,omitempty"`
	DurationMs int64      `json:"durationMs,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// ExecutionRecord matches the persisted Execution entity shape.
type ExecutionRecord struct {
	ID           string                      `json:"id"`
	WorkflowID   string                      `json:"workflowId"`
	UserID       string                      `json:"userId"`
	TriggerType  string                      `json:"triggerType,omitempty"`
	Status       ExecutionStatus             `json:"status"`
	InputData    map[string]interface{}      `json:"inputData,omitempty"`
	OutputData   map[string]Payload          `json:"outputData,omitempty"`
	ErrorMessage string                      `json:"errorMessage,omitempty"`
	Logs         []LogEntry                  `json:"logs"`
	Nodes        map[string]NodeRuntimeState `json:"nodes,omitempty"`
	StartedAt    time.Time                   `json:"startedAt"`
	FinishedAt   *time.Time                  `json:"finishedAt,omitempty"`
	DurationMs   int64                       `json:"duration"`
}

func (r *ExecutionRecord) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}

// NodeLogs returns the entries for one node in the order they were appended.
func (r *ExecutionRecord) NodeLogs(nodeID string) []LogEntry {
	var out []LogEntry
	for _, entry := range r.Logs {
		if entry.NodeID == nodeID {
			out = append(out, entry)
		}
	}
	return out
}

func (r *ExecutionRecord) CountEvents(nodeID string, event LogEvent) int {
	count := 0
	for _, entry := range r.Logs {
		if entry.NodeID == nodeID && entry.Event == event {
			count++
		}
	}
	return count
}

// RunResult is what the workflow service receives back from a run.
type RunResult struct {
	ExecutionID string             `json:"executionId"`
	Status      ExecutionStatus    `json:"status"`
	OutputData  map[string]Payload `json:"outputData,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// ExecutionStats counts stored executions of one user by status.
type ExecutionStats struct {
	Total     int `json:"total"`
	Success   int `json:"success"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
	Running   int `json:"running"`
	Pending   int `json:"pending"`
}

// Add counts one execution.
func (s *ExecutionStats) Add(status ExecutionStatus) {
	s.Total++
	switch status {
	case ExecutionStatusSuccess:
		s.Success++
	case ExecutionStatusFailed:
		s.Failed++
	case ExecutionStatusCancelled:
		s.Cancelled++
	case ExecutionStatusRunning:
		s.Running++
	case ExecutionStatusPending:
		s.Pending++
	}
}

type TriggerType string

const (
	TriggerManual   TriggerType = "manual"
	TriggerSchedule TriggerType = "schedule"
	TriggerWebhook  TriggerType = "webhook"
)
