package workflow

import (
	"testing"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func AssertNodeStatus(t *testing.T, record *domain.ExecutionRecord, nodeID string, expected domain.NodeStatus) {
	t.Helper()

	require.NotNil(t, record)
	state, ok := record.Nodes[nodeID]
	require.True(t, ok, "node %s missing from record", nodeID)
	assert.Equal(t, expected, state.Status, "node %s", nodeID)
}

func AssertSkipped(t *testing.T, record *domain.ExecutionRecord, nodeID string, reason domain.SkipReason) {
	t.Helper()

	AssertNodeStatus(t, record, nodeID, domain.NodeStatusSkipped)
	assert.Equal(t, reason, record.Nodes[nodeID].SkipReason, "node %s", nodeID)
}

// AssertFinalized checks the invariants every finalized record carries.
func AssertFinalized(t *testing.T, record *domain.ExecutionRecord) {
	t.Helper()

	require.NotNil(t, record)
	assert.True(t, record.Status.IsTerminal(), "status %s is not terminal", record.Status)
	require.NotNil(t, record.FinishedAt)
	assert.False(t, record.FinishedAt.Before(record.StartedAt))

	for id, state := range record.Nodes {
		assert.True(t, state.Status.IsTerminal(), "node %s left in %s", id, state.Status)
	}

	for i := 1; i < len(record.Logs); i++ {
		assert.Greater(t, record.Logs[i].Sequence, record.Logs[i-1].Sequence)
	}
}

// AssertMonotonicPerNode checks that each node's log timestamps never go backwards.
func AssertMonotonicPerNode(t *testing.T, record *domain.ExecutionRecord) {
	t.Helper()

	for id := range record.Nodes {
		logs := record.NodeLogs(id)
		for i := 1; i < len(logs); i++ {
			assert.True(t, logs[i].Timestamp.After(logs[i-1].Timestamp),
				"node %s entry %d not after entry %d", id, i, i-1)
		}
	}
}

func StartedOnce(t *testing.T, record *domain.ExecutionRecord, nodeID string) {
	t.Helper()

	assert.Equal(t, 1, record.CountEvents(nodeID, domain.LogEventNodeStarted), "node %s", nodeID)
}
