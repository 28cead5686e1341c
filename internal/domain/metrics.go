package domain

import (
	"sync/atomic"
	"time"
)

type ExecutionMetrics struct {
	ExecutionsStarted   int64 `json:"executions_started"`
	ExecutionsSucceeded int64 `json:"executions_succeeded"`
	ExecutionsFailed    int64 `json:"executions_failed"`
	ExecutionsCancelled int64 `json:"executions_cancelled"`

	NodesExecuted  int64 `json:"nodes_executed"`
	NodesSucceeded int64 `json:"nodes_succeeded"`
	NodesFailed    int64 `json:"nodes_failed"`
	NodesSkipped   int64 `json:"nodes_skipped"`
	NodesTimedOut  int64 `json:"nodes_timed_out"`
	NodesRetried   int64 `json:"nodes_retried"`
	NodesPanicked  int64 `json:"nodes_panicked"`

	TotalExecutionTimeNs int64 `json:"total_execution_time_ns"`
	NodeExecutionCount   int64 `json:"node_execution_count"`
}

func NewExecutionMetrics() *ExecutionMetrics {
	return &ExecutionMetrics{}
}

func (m *ExecutionMetrics) IncrementExecutionsStarted() {
	atomic.AddInt64(&m.ExecutionsStarted, 1)
}

// RecordExecutionFinished counts a terminal execution under its status.
func (m *ExecutionMetrics) RecordExecutionFinished(status ExecutionStatus) {
	switch status {
	case ExecutionStatusSuccess:
		atomic.AddInt64(&m.ExecutionsSucceeded, 1)
	case ExecutionStatusFailed:
		atomic.AddInt64(&m.ExecutionsFailed, 1)
	case ExecutionStatusCancelled:
		atomic.AddInt64(&m.ExecutionsCancelled, 1)
	}
}

func (m *ExecutionMetrics) IncrementNodesExecuted() {
	atomic.AddInt64(&m.NodesExecuted, 1)
}

func (m *ExecutionMetrics) IncrementNodesSucceeded() {
	atomic.AddInt64(&m.NodesSucceeded, 1)
}

func (m *ExecutionMetrics) IncrementNodesFailed() {
	atomic.AddInt64(&m.NodesFailed, 1)
}

func (m *ExecutionMetrics) IncrementNodesSkipped() {
	atomic.AddInt64(&m.NodesSkipped, 1)
}

func (m *ExecutionMetrics) IncrementNodesTimedOut() {
	atomic.AddInt64(&m.NodesTimedOut, 1)
}

func (m *ExecutionMetrics) IncrementNodesRetried() {
	atomic.AddInt64(&m.NodesRetried, 1)
}

func (m *ExecutionMetrics) IncrementNodesPanicked() {
	atomic.AddInt64(&m.NodesPanicked, 1)
}

func (m *ExecutionMetrics) AddExecutionTime(duration time.Duration) {
	atomic.AddInt64(&m.TotalExecutionTimeNs, int64(duration))
	atomic.AddInt64(&m.NodeExecutionCount, 1)
}

func (m *ExecutionMetrics) GetSnapshot() ExecutionMetrics {
	return ExecutionMetrics{
		ExecutionsStarted:    atomic.LoadInt64(&m.ExecutionsStarted),
		ExecutionsSucceeded:  atomic.LoadInt64(&m.ExecutionsSucceeded),
		ExecutionsFailed:     atomic.LoadInt64(&m.ExecutionsFailed),
		ExecutionsCancelled:  atomic.LoadInt64(&m.ExecutionsCancelled),
		NodesExecuted:        atomic.LoadInt64(&m.NodesExecuted),
		NodesSucceeded:       atomic.LoadInt64(&m.NodesSucceeded),
		NodesFailed:          atomic.LoadInt64(&m.NodesFailed),
		NodesSkipped:         atomic.LoadInt64(&m.NodesSkipped),
		NodesTimedOut:        atomic.LoadInt64(&m.NodesTimedOut),
		NodesRetried:         atomic.LoadInt64(&m.NodesRetried),
		NodesPanicked:        atomic.LoadInt64(&m.NodesPanicked),
		TotalExecutionTimeNs: atomic.LoadInt64(&m.TotalExecutionTimeNs),
		NodeExecutionCount:   atomic.LoadInt64(&m.NodeExecutionCount),
	}
}

func (m *ExecutionMetrics) GetAverageExecutionTime() time.Duration {
	totalNs := atomic.LoadInt64(&m.TotalExecutionTimeNs)
	count := atomic.LoadInt64(&m.NodeExecutionCount)

	if count == 0 {
		return 0
	}

	return time.Duration(totalNs / count)
}
