package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/xjson"
)

// BadgerStore keeps executions, workflows and credentials in one badger
// database. Execution records expire after the configured TTL.
type BadgerStore struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

func OpenBadger(config domain.StorageConfig, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "badger-store")

	opts := badger.DefaultOptions(config.DataDir)
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(&badgerLogger{logger: logger}).WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, domain.NewStorageError("open badger", err, domain.WithDetail("data_dir", config.DataDir))
	}

	logger.Info("badger store opened", "data_dir", config.DataDir, "in_memory", config.InMemory)
	return NewBadgerStore(db, config.ExecutionTTL, logger), nil
}

func NewBadgerStore(db *badger.DB, ttl time.Duration, logger *slog.Logger) *BadgerStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgerStore{db: db, ttl: ttl, logger: logger}
}

func (s *BadgerStore) SaveExecution(ctx context.Context, record *domain.ExecutionRecord) error {
	if record == nil || record.ID == "" {
		return domain.NewValidationError("execution record requires an id", domain.ErrInvalidInput)
	}

	data, err := xjson.Marshal(record)
	if err != nil {
		return domain.NewStorageError("encode execution", err, domain.WithExecutionID(record.ID))
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.SetEntry(s.entry(domain.ExecutionKey(record.ID), data)); err != nil {
			return err
		}
		index := domain.WorkflowExecutionIndexKey(record.WorkflowID, record.StartedAt, record.ID)
		return txn.SetEntry(s.entry(index, []byte(record.ID)))
	})
	if err != nil {
		s.logger.Error("failed to save execution", "execution_id", record.ID, "error", err)
		return domain.NewStorageError("save execution", err, domain.WithExecutionID(record.ID))
	}

	s.logger.Debug("execution saved", "execution_id", record.ID, "workflow_id", record.WorkflowID, "bytes", len(data))
	return nil
}

func (s *BadgerStore) GetExecution(ctx context.Context, executionID string) (*domain.ExecutionRecord, error) {
	var record domain.ExecutionRecord
	if err := s.read(domain.ExecutionKey(executionID), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *BadgerStore) ListExecutions(ctx context.Context, workflowID string, limit int) ([]*domain.ExecutionRecord, error) {
	prefix := []byte(domain.WorkflowExecutionIndexPrefix(workflowID))
	records := make([]*domain.ExecutionRecord, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(records) >= limit {
				break
			}

			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			item, err := txn.Get([]byte(domain.ExecutionKey(string(id))))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			var record domain.ExecutionRecord
			if err := item.Value(func(val []byte) error {
				return xjson.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			records = append(records, &record)
		}
		return nil
	})
	if err != nil {
		return nil, domain.NewStorageError("list executions", err, domain.WithWorkflowID(workflowID))
	}

	return records, nil
}

// ExecutionStats scans the workflow index when a workflow is given and every
// execution record otherwise.
func (s *BadgerStore) ExecutionStats(ctx context.Context, userID, workflowID string) (*domain.ExecutionStats, error) {
	stats := &domain.ExecutionStats{}
	count := func(val []byte) error {
		var record struct {
			UserID string                 `json:"userId"`
			Status domain.ExecutionStatus `json:"status"`
		}
		if err := xjson.Unmarshal(val, &record); err != nil {
			return err
		}
		if record.UserID == userID {
			stats.Add(record.Status)
		}
		return nil
	}

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(domain.ExecutionPrefix)
		indexed := workflowID != ""
		if indexed {
			prefix = []byte(domain.WorkflowExecutionIndexPrefix(workflowID))
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			if indexed {
				id, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				item, err = txn.Get([]byte(domain.ExecutionKey(string(id))))
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				if err != nil {
					return err
				}
			}
			if err := item.Value(count); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, domain.NewStorageError("execution stats", err, domain.WithWorkflowID(workflowID))
	}
	return stats, nil
}

func (s *BadgerStore) GetWorkflow(ctx context.Context, workflowID string) (*domain.WorkflowDefinition, error) {
	var def domain.WorkflowDefinition
	if err := s.read(domain.WorkflowKey(workflowID), &def); err != nil {
		return nil, err
	}
	return &def, nil
}

func (s *BadgerStore) SaveWorkflow(ctx context.Context, def *domain.WorkflowDefinition) error {
	if def == nil || def.ID == "" {
		return domain.NewValidationError("workflow definition requires an id", domain.ErrInvalidInput)
	}
	return s.write(domain.WorkflowKey(def.ID), def)
}

func (s *BadgerStore) GetCredential(ctx context.Context, credentialID string) (*domain.Credential, error) {
	var cred domain.Credential
	if err := s.read(domain.CredentialKey(credentialID), &cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (s *BadgerStore) SaveCredential(ctx context.Context, credential *domain.Credential) error {
	if credential == nil || credential.ID == "" {
		return domain.NewValidationError("credential requires an id", domain.ErrInvalidInput)
	}
	return s.write(domain.CredentialKey(credential.ID), credential)
}

func (s *BadgerStore) DeleteCredential(ctx context.Context, credentialID string) error {
	key := []byte(domain.CredentialKey(credentialID))
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.NewStorageError("credential not found", domain.ErrNotFound, domain.WithDetail("credential_id", credentialID))
	}
	if err != nil {
		return domain.NewStorageError("delete credential", err, domain.WithDetail("credential_id", credentialID))
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) entry(key string, value []byte) *badger.Entry {
	e := badger.NewEntry([]byte(key), value)
	if s.ttl > 0 {
		e = e.WithTTL(s.ttl)
	}
	return e
}

func (s *BadgerStore) write(key string, v interface{}) error {
	data, err := xjson.Marshal(v)
	if err != nil {
		return domain.NewStorageError("encode "+key, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return domain.NewStorageError("write "+key, err)
	}
	return nil
}

func (s *BadgerStore) read(key string, out interface{}) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return xjson.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.NewStorageError(key+" not found", domain.ErrNotFound)
	}
	if err != nil {
		return domain.NewStorageError("read "+key, err)
	}
	return nil
}

// badgerLogger routes badger's printf-style logging into slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
