package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/testutil/workflow"
)

func frozenClock() func() time.Time {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return fixed }
}

func TestRecorder_TimestampsStrictlyIncreaseUnderFrozenClock(t *testing.T) {
	r := newRecorderWithClock("exec-1", "wf-1", "user-1", "manual", nil, frozenClock())
	require.NoError(t, r.Start())
	r.RegisterNode("A", "echo")

	require.NoError(t, r.RecordReady("A", domain.Payload{"main": 1}))
	require.NoError(t, r.RecordNodeStart("A"))
	require.NoError(t, r.RecordAttempt("A", 1, errors.New("first")))
	require.NoError(t, r.RecordNodeEnd("A", domain.Payload{"main": 2}, 2, nil))

	record, err := r.Finalize(domain.ExecutionStatusSuccess, map[string]domain.Payload{"A": {"main": 2}}, nil)
	require.NoError(t, err)

	workflow.AssertFinalized(t, record)
	workflow.AssertMonotonicPerNode(t, record)

	logs := record.NodeLogs("A")
	require.Len(t, logs, 4)
	assert.Equal(t, domain.LogEventNodeReady, logs[0].Event)
	assert.Equal(t, domain.LogEventNodeStarted, logs[1].Event)
	assert.Equal(t, domain.LogEventNodeAttemptFailed, logs[2].Event)
	assert.Equal(t, "first", logs[2].Error)
	assert.Equal(t, domain.LogEventNodeSucceeded, logs[3].Event)

	execLogs := record.NodeLogs("")
	require.Len(t, execLogs, 2)
	assert.True(t, execLogs[1].Timestamp.After(execLogs[0].Timestamp))

	state := record.Nodes["A"]
	assert.Equal(t, domain.NodeStatusSucceeded, state.Status)
	assert.Equal(t, 2, state.Attempts)
	require.NotNil(t, state.StartedAt)
	require.NotNil(t, state.FinishedAt)
	assert.True(t, state.FinishedAt.After(*state.StartedAt))
}

func TestRecorder_RejectsAppendsAfterFinalize(t *testing.T) {
	r := NewRecorder("exec-1", "wf-1", "user-1", "manual", nil)
	require.NoError(t, r.Start())
	r.RegisterNode("A", "echo")

	_, err := r.Finalize(domain.ExecutionStatusFailed, nil, errors.New("boom"))
	require.NoError(t, err)
	assert.True(t, r.Finalized())

	before := len(r.Snapshot().Logs)

	assert.ErrorIs(t, r.RecordReady("A", nil), domain.ErrRecordFinalized)
	assert.ErrorIs(t, r.RecordNodeStart("A"), domain.ErrRecordFinalized)
	assert.ErrorIs(t, r.RecordAttempt("A", 1, nil), domain.ErrRecordFinalized)
	assert.ErrorIs(t, r.RecordNodeEnd("A", nil, 1, nil), domain.ErrRecordFinalized)
	assert.ErrorIs(t, r.RecordSkipped("A", domain.SkipReasonStopped), domain.ErrRecordFinalized)
	assert.ErrorIs(t, r.Start(), domain.ErrRecordFinalized)

	_, err = r.Finalize(domain.ExecutionStatusSuccess, nil, nil)
	assert.ErrorIs(t, err, domain.ErrRecordFinalized)

	snapshot := r.Snapshot()
	assert.Len(t, snapshot.Logs, before)
	assert.Equal(t, domain.ExecutionStatusFailed, snapshot.Status)
	assert.Equal(t, "boom", snapshot.ErrorMessage)
}

func TestRecorder_FailureCarriesErrorKind(t *testing.T) {
	r := NewRecorder("exec-1", "wf-1", "user-1", "manual", nil)
	require.NoError(t, r.Start())
	r.RegisterNode("A", "echo")

	nodeErr := domain.NewNodeError(domain.NodeErrTimeout, "A", "too slow", nil)
	require.NoError(t, r.RecordNodeStart("A"))
	require.NoError(t, r.RecordNodeEnd("A", nil, 1, nodeErr))

	state := r.Snapshot().Nodes["A"]
	assert.Equal(t, domain.NodeStatusFailed, state.Status)
	assert.Equal(t, domain.NodeErrTimeout, state.ErrorKind)
	assert.Equal(t, nodeErr.Error(), state.Error)
}

func TestRecorder_SnapshotIsACopy(t *testing.T) {
	r := NewRecorder("exec-1", "wf-1", "user-1", "manual", nil)
	require.NoError(t, r.Start())
	r.RegisterNode("A", "echo")

	snapshot := r.Snapshot()
	snapshot.Logs[0].Message = "tampered"
	snapshot.Nodes["A"] = domain.NodeRuntimeState{Status: domain.NodeStatusFailed}

	fresh := r.Snapshot()
	assert.Equal(t, "execution started", fresh.Logs[0].Message)
	assert.Equal(t, domain.NodeStatusPending, fresh.Nodes["A"].Status)
}

func TestRecorder_SkippedNode(t *testing.T) {
	r := NewRecorder("exec-1", "wf-1", "user-1", "manual", nil)
	require.NoError(t, r.Start())
	r.RegisterNode("B", "echo")

	require.NoError(t, r.RecordSkipped("B", domain.SkipReasonBranchNotTaken))

	state := r.Snapshot().Nodes["B"]
	assert.Equal(t, domain.NodeStatusSkipped, state.Status)
	assert.Equal(t, domain.SkipReasonBranchNotTaken, state.SkipReason)
	assert.Nil(t, state.StartedAt)
	assert.NotNil(t, state.FinishedAt)
}
