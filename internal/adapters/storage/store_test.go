package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
)

type store interface {
	ports.ExecutionStore
	ports.WorkflowStore
	ports.CredentialStore
	Close() error
}

func stores(t *testing.T) map[string]store {
	t.Helper()

	badgerStore, err := OpenBadger(domain.StorageConfig{Backend: domain.StorageBadger, InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = badgerStore.Close() })

	return map[string]store{
		"badger": badgerStore,
		"memory": NewMemoryStore(0),
	}
}

func testRecord(id, workflowID string, startedAt time.Time) *domain.ExecutionRecord {
	finished := startedAt.Add(time.Second)
	return &domain.ExecutionRecord{
		ID:          id,
		WorkflowID:  workflowID,
		UserID:      "user-1",
		TriggerType: "manual",
		Status:      domain.ExecutionStatusSuccess,
		InputData:   map[string]interface{}{"x": "1"},
		OutputData:  map[string]domain.Payload{"B": {"main": "done"}},
		Logs: []domain.LogEntry{
			{Sequence: 1, Event: domain.LogEventExecutionStarted, Timestamp: startedAt},
			{Sequence: 2, Event: domain.LogEventExecutionFinished, Timestamp: finished},
		},
		Nodes: map[string]domain.NodeRuntimeState{
			"B": {NodeID: "B", NodeType: "echo", Status: domain.NodeStatusSucceeded, Attempts: 1},
		},
		StartedAt:  startedAt,
		FinishedAt: &finished,
		DurationMs: 1000,
	}
}

func TestStores_ExecutionRoundTrip(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			record := testRecord("exec-1", "wf-1", base)
			require.NoError(t, s.SaveExecution(ctx, record))

			got, err := s.GetExecution(ctx, "exec-1")
			require.NoError(t, err)
			assert.Equal(t, record.ID, got.ID)
			assert.Equal(t, record.Status, got.Status)
			assert.Equal(t, "done", got.OutputData["B"]["main"])
			assert.Len(t, got.Logs, 2)
			assert.Equal(t, domain.NodeStatusSucceeded, got.Nodes["B"].Status)
			assert.True(t, record.StartedAt.Equal(got.StartedAt))

			got.Status = domain.ExecutionStatusFailed
			again, err := s.GetExecution(ctx, "exec-1")
			require.NoError(t, err)
			assert.Equal(t, domain.ExecutionStatusSuccess, again.Status)

			_, err = s.GetExecution(ctx, "nope")
			assert.ErrorIs(t, err, domain.ErrNotFound)

			assert.Error(t, s.SaveExecution(ctx, &domain.ExecutionRecord{}))
		})
	}
}

func TestStores_ListExecutionsNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 5; i++ {
				require.NoError(t, s.SaveExecution(ctx, testRecord(fmt.Sprintf("exec-%d", i), "wf-1", base.Add(time.Duration(i)*time.Minute))))
			}
			require.NoError(t, s.SaveExecution(ctx, testRecord("other", "wf-2", base.Add(time.Hour))))

			all, err := s.ListExecutions(ctx, "wf-1", 0)
			require.NoError(t, err)
			require.Len(t, all, 5)
			assert.Equal(t, "exec-4", all[0].ID)
			assert.Equal(t, "exec-0", all[4].ID)

			limited, err := s.ListExecutions(ctx, "wf-1", 2)
			require.NoError(t, err)
			require.Len(t, limited, 2)
			assert.Equal(t, []string{"exec-4", "exec-3"}, []string{limited[0].ID, limited[1].ID})

			none, err := s.ListExecutions(ctx, "wf-missing", 10)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestStores_Workflows(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			def := &domain.WorkflowDefinition{
				ID:      "wf-1",
				Name:    "demo",
				OwnerID: "user-1",
				Nodes:   []domain.NodeDefinition{{ID: "A", Type: "echo", Parameters: map[string]interface{}{"k": "v"}}},
			}
			require.NoError(t, s.SaveWorkflow(ctx, def))

			got, err := s.GetWorkflow(ctx, "wf-1")
			require.NoError(t, err)
			assert.Equal(t, "demo", got.Name)
			assert.Equal(t, "v", got.Nodes[0].Parameters["k"])

			_, err = s.GetWorkflow(ctx, "wf-2")
			assert.ErrorIs(t, err, domain.ErrNotFound)

			assert.Error(t, s.SaveWorkflow(ctx, &domain.WorkflowDefinition{}))
		})
	}
}

func TestStores_Credentials(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			cred := &domain.Credential{ID: "cred-1", Name: "api", Type: domain.CredentialTypeAPI, OwnerID: "user-1", EncryptedData: []byte{1, 2, 3}}
			require.NoError(t, s.SaveCredential(ctx, cred))

			got, err := s.GetCredential(ctx, "cred-1")
			require.NoError(t, err)
			assert.Equal(t, []byte{1, 2, 3}, got.EncryptedData)
			assert.Equal(t, "user-1", got.OwnerID)

			require.NoError(t, s.DeleteCredential(ctx, "cred-1"))
			_, err = s.GetCredential(ctx, "cred-1")
			assert.ErrorIs(t, err, domain.ErrNotFound)
			assert.ErrorIs(t, s.DeleteCredential(ctx, "cred-1"), domain.ErrNotFound)
		})
	}
}

func TestMemoryStore_ExecutionTTL(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Hour)
	s.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, s.SaveExecution(ctx, testRecord("exec-1", "wf-1", now)))

	_, err := s.GetExecution(ctx, "exec-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = s.GetExecution(ctx, "exec-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := s.ListExecutions(ctx, "wf-1", 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStores_ExecutionStats(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			save := func(id, workflowID, userID string, status domain.ExecutionStatus) {
				record := testRecord(id, workflowID, base)
				record.UserID = userID
				record.Status = status
				require.NoError(t, s.SaveExecution(ctx, record))
			}

			save("e1", "wf-1", "user-1", domain.ExecutionStatusSuccess)
			save("e2", "wf-1", "user-1", domain.ExecutionStatusFailed)
			save("e3", "wf-2", "user-1", domain.ExecutionStatusSuccess)
			save("e4", "wf-2", "user-1", domain.ExecutionStatusCancelled)
			save("e5", "wf-1", "user-2", domain.ExecutionStatusSuccess)

			all, err := s.ExecutionStats(ctx, "user-1", "")
			require.NoError(t, err)
			assert.Equal(t, domain.ExecutionStats{Total: 4, Success: 2, Failed: 1, Cancelled: 1}, *all)

			one, err := s.ExecutionStats(ctx, "user-1", "wf-1")
			require.NoError(t, err)
			assert.Equal(t, domain.ExecutionStats{Total: 2, Success: 1, Failed: 1}, *one)

			none, err := s.ExecutionStats(ctx, "user-3", "")
			require.NoError(t, err)
			assert.Zero(t, none.Total)
		})
	}
}

func TestStores_ListExecutionsSeparatesColonIDs(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.SaveExecution(ctx, testRecord("exec-a", "a", base)))
			require.NoError(t, s.SaveExecution(ctx, testRecord("exec-a0", "a:0", base.Add(time.Minute))))

			records, err := s.ListExecutions(ctx, "a", 0)
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, "exec-a", records[0].ID)

			stats, err := s.ExecutionStats(ctx, "user-1", "a")
			require.NoError(t, err)
			assert.Equal(t, 1, stats.Total)
		})
	}
}
