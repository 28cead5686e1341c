package engine

import (
	"sync"
	"time"

	"github.com/eleven-am/flowrun/internal/domain"
)

// Recorder is the append-only log of one execution. It is safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	now       func() time.Time
	record    domain.ExecutionRecord
	lastStamp map[string]time.Time
	sequence  int64
	finalized bool
}

func NewRecorder(executionID, workflowID, userID, triggerType string, input map[string]interface{}) *Recorder {
	return newRecorderWithClock(executionID, workflowID, userID, triggerType, input, time.Now)
}

func newRecorderWithClock(executionID, workflowID, userID, triggerType string, input map[string]interface{}, now func() time.Time) *Recorder {
	return &Recorder{
		now: now,
		record: domain.ExecutionRecord{
			ID:          executionID,
			WorkflowID:  workflowID,
			UserID:      userID,
			TriggerType: triggerType,
			Status:      domain.ExecutionStatusPending,
			InputData:   input,
			Logs:        make([]domain.LogEntry, 0, 16),
			Nodes:       make(map[string]domain.NodeRuntimeState),
		},
		lastStamp: make(map[string]time.Time),
	}
}

func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return domain.ErrRecordFinalized
	}

	r.record.Status = domain.ExecutionStatusRunning
	entry := r.appendLocked(domain.LogEntry{
		Level:   domain.LogLevelInfo,
		Event:   domain.LogEventExecutionStarted,
		Status:  string(domain.ExecutionStatusRunning),
		Message: "execution started",
	})
	r.record.StartedAt = entry.Timestamp
	return nil
}

// RegisterNode seeds the runtime state of a node in the pending state.
func (r *Recorder) RegisterNode(nodeID, nodeType string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return
	}
	r.record.Nodes[nodeID] = domain.NodeRuntimeState{
		NodeID:   nodeID,
		NodeType: nodeType,
		Status:   domain.NodeStatusPending,
	}
}

func (r *Recorder) RecordReady(nodeID string, input domain.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return domain.ErrRecordFinalized
	}

	state := r.record.Nodes[nodeID]
	state.Status = domain.NodeStatusReady
	state.Input = input.Clone()
	r.record.Nodes[nodeID] = state

	r.appendLocked(domain.LogEntry{
		Level:   domain.LogLevelDebug,
		Event:   domain.LogEventNodeReady,
		NodeID:  nodeID,
		Status:  string(domain.NodeStatusReady),
		Message: "node ready",
	})
	return nil
}

func (r *Recorder) RecordNodeStart(nodeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return domain.ErrRecordFinalized
	}

	entry := r.appendLocked(domain.LogEntry{
		Level:   domain.LogLevelInfo,
		Event:   domain.LogEventNodeStarted,
		NodeID:  nodeID,
		Status:  string(domain.NodeStatusRunning),
		Message: "node started",
		Attempt: 1,
	})

	state := r.record.Nodes[nodeID]
	state.Status = domain.NodeStatusRunning
	startedAt := entry.Timestamp
	state.StartedAt = &startedAt
	r.record.Nodes[nodeID] = state
	return nil
}

func (r *Recorder) RecordAttempt(nodeID string, attempt int, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return domain.ErrRecordFinalized
	}

	state := r.record.Nodes[nodeID]
	state.Attempts = attempt
	r.record.Nodes[nodeID] = state

	r.appendLocked(domain.LogEntry{
		Level:   domain.LogLevelWarn,
		Event:   domain.LogEventNodeAttemptFailed,
		NodeID:  nodeID,
		Status:  string(domain.NodeStatusRunning),
		Message: "node attempt failed",
		Attempt: attempt,
		Error:   errorString(err),
	})
	return nil
}

// RecordNodeEnd closes a node that ran. err is nil on success.
func (r *Recorder) RecordNodeEnd(nodeID string, output domain.Payload, attempts int, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return domain.ErrRecordFinalized
	}

	state := r.record.Nodes[nodeID]
	entry := domain.LogEntry{
		NodeID:  nodeID,
		Attempt: attempts,
	}

	if err == nil {
		state.Status = domain.NodeStatusSucceeded
		state.Output = output.Clone()
		entry.Level = domain.LogLevelInfo
		entry.Event = domain.LogEventNodeSucceeded
		entry.Message = "node succeeded"
		entry.Output = state.Output
	} else {
		state.Status = domain.NodeStatusFailed
		state.Error = err.Error()
		if nodeErr, ok := domain.AsNodeError(err); ok {
			state.ErrorKind = nodeErr.Kind
		}
		entry.Level = domain.LogLevelError
		entry.Event = domain.LogEventNodeFailed
		entry.Message = "node failed"
		entry.Error = state.Error
	}
	entry.Status = string(state.Status)

	stamped := r.appendLocked(entry)
	finishedAt := stamped.Timestamp
	state.FinishedAt = &finishedAt
	state.Attempts = attempts
	if state.StartedAt != nil {
		r.record.Logs[len(r.record.Logs)-1].DurationMs = finishedAt.Sub(*state.StartedAt).Milliseconds()
	}
	r.record.Nodes[nodeID] = state
	return nil
}

func (r *Recorder) RecordSkipped(nodeID string, reason domain.SkipReason) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return domain.ErrRecordFinalized
	}

	stamped := r.appendLocked(domain.LogEntry{
		Level:      domain.LogLevelInfo,
		Event:      domain.LogEventNodeSkipped,
		NodeID:     nodeID,
		Status:     string(domain.NodeStatusSkipped),
		Message:    "node skipped",
		SkipReason: reason,
	})

	state := r.record.Nodes[nodeID]
	state.Status = domain.NodeStatusSkipped
	state.SkipReason = reason
	finishedAt := stamped.Timestamp
	state.FinishedAt = &finishedAt
	r.record.Nodes[nodeID] = state
	return nil
}

// Finalize closes the record and returns a copy of it. Any later append fails
// with ErrRecordFinalized.
func (r *Recorder) Finalize(status domain.ExecutionStatus, output map[string]domain.Payload, err error) (*domain.ExecutionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return nil, domain.ErrRecordFinalized
	}

	level := domain.LogLevelInfo
	if status != domain.ExecutionStatusSuccess {
		level = domain.LogLevelError
	}

	entry := r.appendLocked(domain.LogEntry{
		Level:   level,
		Event:   domain.LogEventExecutionFinished,
		Status:  string(status),
		Message: "execution finished",
		Error:   errorString(err),
	})

	if r.record.StartedAt.IsZero() {
		r.record.StartedAt = entry.Timestamp
	}
	finishedAt := entry.Timestamp
	r.record.Status = status
	r.record.OutputData = output
	r.record.ErrorMessage = errorString(err)
	r.record.FinishedAt = &finishedAt
	r.record.DurationMs = finishedAt.Sub(r.record.StartedAt).Milliseconds()
	r.record.Logs[len(r.record.Logs)-1].DurationMs = r.record.DurationMs
	r.finalized = true

	return r.snapshotLocked(), nil
}

// Snapshot returns a copy of the record as it stands.
func (r *Recorder) Snapshot() *domain.ExecutionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshotLocked()
}

func (r *Recorder) Finalized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.finalized
}

// appendLocked stamps the entry and appends it. Timestamps are kept strictly
// increasing per node and for the execution as a whole.
func (r *Recorder) appendLocked(entry domain.LogEntry) domain.LogEntry {
	stamp := r.now()
	if last, ok := r.lastStamp[entry.NodeID]; ok && !stamp.After(last) {
		stamp = last.Add(time.Nanosecond)
	}
	r.lastStamp[entry.NodeID] = stamp

	r.sequence++
	entry.Sequence = r.sequence
	entry.Timestamp = stamp
	r.record.Logs = append(r.record.Logs, entry)
	return entry
}

func (r *Recorder) snapshotLocked() *domain.ExecutionRecord {
	out := r.record
	out.Logs = append([]domain.LogEntry(nil), r.record.Logs...)
	out.Nodes = make(map[string]domain.NodeRuntimeState, len(r.record.Nodes))
	for id, state := range r.record.Nodes {
		out.Nodes[id] = state
	}
	if r.record.OutputData != nil {
		out.OutputData = make(map[string]domain.Payload, len(r.record.OutputData))
		for id, payload := range r.record.OutputData {
			out.OutputData[id] = payload.Clone()
		}
	}
	return &out
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
