package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/xjson"
)

type storedExecution struct {
	record    *domain.ExecutionRecord
	expiresAt time.Time
}

// MemoryStore implements the same ports as BadgerStore without persistence.
// Values are deep-copied in and out so callers never share state with it.
type MemoryStore struct {
	mu          sync.RWMutex
	ttl         time.Duration
	now         func() time.Time
	executions  map[string]storedExecution
	workflows   map[string]*domain.WorkflowDefinition
	credentials map[string]*domain.Credential
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:         ttl,
		now:         time.Now,
		executions:  make(map[string]storedExecution),
		workflows:   make(map[string]*domain.WorkflowDefinition),
		credentials: make(map[string]*domain.Credential),
	}
}

func (s *MemoryStore) SaveExecution(ctx context.Context, record *domain.ExecutionRecord) error {
	if record == nil || record.ID == "" {
		return domain.NewValidationError("execution record requires an id", domain.ErrInvalidInput)
	}

	var copied domain.ExecutionRecord
	if err := xjson.RoundTrip(record, &copied); err != nil {
		return domain.NewStorageError("encode execution", err, domain.WithExecutionID(record.ID))
	}

	stored := storedExecution{record: &copied}
	if s.ttl > 0 {
		stored.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.executions[record.ID] = stored
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetExecution(ctx context.Context, executionID string) (*domain.ExecutionRecord, error) {
	s.mu.RLock()
	stored, ok := s.executions[executionID]
	s.mu.RUnlock()

	if !ok || s.expired(stored) {
		return nil, domain.NewStorageError(domain.ExecutionKey(executionID)+" not found", domain.ErrNotFound)
	}
	return copyRecord(stored.record)
}

func (s *MemoryStore) ListExecutions(ctx context.Context, workflowID string, limit int) ([]*domain.ExecutionRecord, error) {
	s.mu.RLock()
	matches := make([]*domain.ExecutionRecord, 0)
	for _, stored := range s.executions {
		if stored.record.WorkflowID == workflowID && !s.expired(stored) {
			matches = append(matches, stored.record)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].StartedAt.Equal(matches[j].StartedAt) {
			return matches[i].StartedAt.After(matches[j].StartedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]*domain.ExecutionRecord, 0, len(matches))
	for _, record := range matches {
		copied, err := copyRecord(record)
		if err != nil {
			return nil, err
		}
		out = append(out, copied)
	}
	return out, nil
}

func (s *MemoryStore) ExecutionStats(ctx context.Context, userID, workflowID string) (*domain.ExecutionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.ExecutionStats{}
	for _, stored := range s.executions {
		record := stored.record
		if s.expired(stored) || record.UserID != userID {
			continue
		}
		if workflowID != "" && record.WorkflowID != workflowID {
			continue
		}
		stats.Add(record.Status)
	}
	return stats, nil
}

func (s *MemoryStore) GetWorkflow(ctx context.Context, workflowID string) (*domain.WorkflowDefinition, error) {
	s.mu.RLock()
	def, ok := s.workflows[workflowID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.NewStorageError(domain.WorkflowKey(workflowID)+" not found", domain.ErrNotFound)
	}

	var out domain.WorkflowDefinition
	if err := xjson.RoundTrip(def, &out); err != nil {
		return nil, domain.NewStorageError("decode workflow", err)
	}
	return &out, nil
}

func (s *MemoryStore) SaveWorkflow(ctx context.Context, def *domain.WorkflowDefinition) error {
	if def == nil || def.ID == "" {
		return domain.NewValidationError("workflow definition requires an id", domain.ErrInvalidInput)
	}

	var copied domain.WorkflowDefinition
	if err := xjson.RoundTrip(def, &copied); err != nil {
		return domain.NewStorageError("encode workflow", err)
	}

	s.mu.Lock()
	s.workflows[def.ID] = &copied
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetCredential(ctx context.Context, credentialID string) (*domain.Credential, error) {
	s.mu.RLock()
	cred, ok := s.credentials[credentialID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.NewStorageError(domain.CredentialKey(credentialID)+" not found", domain.ErrNotFound)
	}

	out := *cred
	out.EncryptedData = append([]byte(nil), cred.EncryptedData...)
	return &out, nil
}

func (s *MemoryStore) SaveCredential(ctx context.Context, credential *domain.Credential) error {
	if credential == nil || credential.ID == "" {
		return domain.NewValidationError("credential requires an id", domain.ErrInvalidInput)
	}

	copied := *credential
	copied.EncryptedData = append([]byte(nil), credential.EncryptedData...)

	s.mu.Lock()
	s.credentials[credential.ID] = &copied
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeleteCredential(ctx context.Context, credentialID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.credentials[credentialID]; !ok {
		return domain.NewStorageError("credential not found", domain.ErrNotFound, domain.WithDetail("credential_id", credentialID))
	}
	delete(s.credentials, credentialID)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) expired(stored storedExecution) bool {
	return !stored.expiresAt.IsZero() && !s.now().Before(stored.expiresAt)
}

func copyRecord(record *domain.ExecutionRecord) (*domain.ExecutionRecord, error) {
	var out domain.ExecutionRecord
	if err := xjson.RoundTrip(record, &out); err != nil {
		return nil, domain.NewStorageError("decode execution", err, domain.WithExecutionID(record.ID))
	}
	return &out, nil
}
