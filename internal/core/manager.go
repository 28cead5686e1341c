package core

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/eleven-am/flowrun/internal/adapters/credentials"
	"github.com/eleven-am/flowrun/internal/adapters/engine"
	"github.com/eleven-am/flowrun/internal/adapters/events"
	"github.com/eleven-am/flowrun/internal/adapters/graph"
	"github.com/eleven-am/flowrun/internal/adapters/node_registry"
	"github.com/eleven-am/flowrun/internal/adapters/nodes"
	"github.com/eleven-am/flowrun/internal/adapters/storage"
	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
)

const version = "1.0.0"

// Components lets callers replace any adapter. Nil fields are built from the
// config.
type Components struct {
	Executions  ports.ExecutionStore
	Workflows   ports.WorkflowStore
	Credentials ports.CredentialStore
	Cipher      ports.SecretCipher
	Registry    ports.NodeRegistryPort
	Events      *events.Manager
}

// Manager is the workflow service facade: it loads definitions, builds graphs,
// runs them and persists the records.
type Manager struct {
	config     *domain.Config
	logger     *slog.Logger
	structured *ports.StructuredLogger

	executions  ports.ExecutionStore
	workflows   ports.WorkflowStore
	credentials ports.CredentialStore
	cipher      ports.SecretCipher
	registry    ports.NodeRegistryPort
	builder     ports.GraphBuilderPort
	engine      *engine.Engine
	events      *events.Manager

	closers []func() error
}

func NewWithConfig(config *domain.Config) (*Manager, error) {
	return NewWithComponents(config, Components{})
}

func NewWithComponents(config *domain.Config, components Components) (*Manager, error) {
	if config == nil {
		config = domain.DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := config.Logger.With("component", "flowrun")
	m := &Manager{
		config:      config,
		logger:      logger,
		structured:  ports.NewStructuredLogger(config.Logger, "flowrun", version),
		executions:  components.Executions,
		workflows:   components.Workflows,
		credentials: components.Credentials,
		cipher:      components.Cipher,
		registry:    components.Registry,
		events:      components.Events,
	}

	if err := m.initStorage(); err != nil {
		return nil, err
	}

	if m.cipher == nil && config.Credentials.EncryptionKey != "" {
		cipher, err := credentials.NewAESCipher(config.Credentials)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.cipher = cipher
	}

	if m.registry == nil {
		registry := node_registry.NewAdapter(config.Logger)
		if err := nodes.RegisterBuiltins(registry, config.HTTP, config.Logger); err != nil {
			m.Close()
			return nil, err
		}
		m.registry = registry
	}

	if m.events == nil {
		m.events = events.NewManager(config.Logger)
	}

	resolver := credentials.NewResolver(m.credentials, m.cipher,
		ports.NewStructuredLogger(config.Logger, "credential-resolver", version))

	m.builder = graph.NewBuilder(config.Logger)
	m.engine = engine.NewEngine(config.Engine, m.registry, resolver, m.events, config.Logger)

	logger.Info("workflow manager ready",
		"storage_backend", string(config.Storage.Backend),
		"max_parallelism", config.Engine.MaxParallelism,
		"registered_nodes", m.registry.GetNodeCount(),
		"credentials_enabled", m.cipher != nil)

	return m, nil
}

func (m *Manager) initStorage() error {
	if m.executions != nil && m.workflows != nil && m.credentials != nil {
		return nil
	}

	var executions ports.ExecutionStore
	var workflows ports.WorkflowStore
	var creds ports.CredentialStore

	switch m.config.Storage.Backend {
	case domain.StorageBadger:
		store, err := storage.OpenBadger(m.config.Storage, m.config.Logger)
		if err != nil {
			return err
		}
		m.closers = append(m.closers, store.Close)
		executions, workflows, creds = store, store, store
	default:
		store := storage.NewMemoryStore(m.config.Storage.ExecutionTTL)
		executions, workflows, creds = store, store, store
	}

	if m.executions == nil {
		m.executions = executions
	}
	if m.workflows == nil {
		m.workflows = workflows
	}
	if m.credentials == nil {
		m.credentials = creds
	}
	return nil
}

func (m *Manager) RegisterNode(node ports.NodePort) error {
	return m.registry.RegisterNode(node)
}

func (m *Manager) UnregisterNode(nodeType string) error {
	return m.registry.UnregisterNode(nodeType)
}

func (m *Manager) ListNodes() []string {
	return m.registry.ListNodes()
}

// SaveWorkflow validates the definition's graph before storing it.
func (m *Manager) SaveWorkflow(ctx context.Context, def *domain.WorkflowDefinition) error {
	if _, err := m.builder.Build(def); err != nil {
		return err
	}
	return m.workflows.SaveWorkflow(ctx, def)
}

func (m *Manager) GetWorkflow(ctx context.Context, workflowID string) (*domain.WorkflowDefinition, error) {
	return m.workflows.GetWorkflow(ctx, workflowID)
}

func (m *Manager) SaveCredential(ctx context.Context, id, name string, credType domain.CredentialType, ownerID string, data map[string]interface{}) (*domain.Credential, error) {
	cred, err := credentials.Seal(m.cipher, id, name, credType, ownerID, data)
	if err != nil {
		return nil, err
	}
	if err := m.credentials.SaveCredential(ctx, cred); err != nil {
		return nil, err
	}

	m.structured.LogSecurity("credential_write", ownerID, "save", id, true, map[string]interface{}{"type": string(credType)})
	return cred, nil
}

func (m *Manager) DeleteCredential(ctx context.Context, credentialID string) error {
	return m.credentials.DeleteCredential(ctx, credentialID)
}

// Run loads a stored workflow and executes it for userID. A workflow owned by
// someone else is reported as not found.
func (m *Manager) Run(ctx context.Context, workflowID, userID string, input map[string]interface{}) (*domain.RunResult, error) {
	return m.RunWithOptions(ctx, workflowID, input, domain.RunOptions{UserID: userID})
}

func (m *Manager) RunWithOptions(ctx context.Context, workflowID string, input map[string]interface{}, opts domain.RunOptions) (*domain.RunResult, error) {
	def, err := m.workflows.GetWorkflow(ctx, workflowID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewResourceError("workflow not found", domain.ErrWorkflowNotFound, domain.WithWorkflowID(workflowID))
		}
		return nil, err
	}

	if def.OwnerID != "" && def.OwnerID != opts.UserID {
		m.structured.LogSecurity("workflow_access", opts.UserID, "run", workflowID, false, map[string]interface{}{"reason": "owner_mismatch"})
		return nil, domain.NewResourceError("workflow not found", domain.ErrWorkflowNotFound, domain.WithWorkflowID(workflowID))
	}
	if !def.Enabled() {
		return nil, domain.NewPermissionError("workflow is not active", domain.ErrWorkflowInactive, domain.WithWorkflowID(workflowID))
	}

	return m.RunDefinition(ctx, def, input, opts)
}

// RunDefinition executes a definition the caller already holds. Graph errors
// abort before any node runs; the failed execution is still persisted.
func (m *Manager) RunDefinition(ctx context.Context, def *domain.WorkflowDefinition, input map[string]interface{}, opts domain.RunOptions) (*domain.RunResult, error) {
	if opts.ExecutionID == "" {
		opts.ExecutionID = uuid.NewString()
	}
	if def != nil && opts.WorkflowID == "" {
		opts.WorkflowID = def.ID
	}

	op := m.structured.WithOperation("run_workflow", opts.ExecutionID)
	log := m.structured.WithExecution(opts.ExecutionID, opts.WorkflowID)

	g, err := m.builder.Build(def)
	if err != nil {
		op.Fail("workflow graph rejected", err, "workflow_id", opts.WorkflowID)
		record := m.rejectedRecord(opts, input, err)
		m.persist(ctx, record, log)
		return resultFrom(record), err
	}

	log.Info("running workflow", "user_id", opts.UserID, "nodes", g.Size())
	record := m.engine.Run(ctx, g, input, opts)
	m.persist(ctx, record, log)

	op.Complete("workflow run finished", "status", string(record.Status), "duration_ms", record.DurationMs)
	return resultFrom(record), nil
}

func (m *Manager) rejectedRecord(opts domain.RunOptions, input map[string]interface{}, cause error) *domain.ExecutionRecord {
	trigger := opts.TriggerType
	if trigger == "" {
		trigger = m.config.Engine.DefaultTriggerType
	}
	if trigger == "" {
		trigger = string(domain.TriggerManual)
	}

	recorder := engine.NewRecorder(opts.ExecutionID, opts.WorkflowID, opts.UserID, trigger, input)
	if err := recorder.Start(); err != nil {
		m.logger.Warn("failed to start rejected record", "error", err)
	}
	record, err := recorder.Finalize(domain.ExecutionStatusFailed, nil, cause)
	if err != nil {
		return recorder.Snapshot()
	}
	return record
}

// persist writes the record even when the run's context was cancelled.
func (m *Manager) persist(ctx context.Context, record *domain.ExecutionRecord, log *ports.ExecutionLogger) {
	if err := m.executions.SaveExecution(context.WithoutCancel(ctx), record); err != nil {
		log.Error("failed to persist execution record", "error", err)
	}
}

func (m *Manager) Cancel(executionID string) bool {
	return m.engine.Cancel(executionID)
}

func (m *Manager) ActiveExecutions() []string {
	return m.engine.ActiveExecutions()
}

func (m *Manager) GetExecution(ctx context.Context, executionID string) (*domain.ExecutionRecord, error) {
	record, err := m.executions.GetExecution(ctx, executionID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewResourceError("execution not found", domain.ErrExecutionNotFound, domain.WithExecutionID(executionID))
		}
		return nil, err
	}
	return record, nil
}

// ListExecutions returns the newest executions of a workflow first.
func (m *Manager) ListExecutions(ctx context.Context, workflowID string, limit int) ([]*domain.ExecutionRecord, error) {
	if limit <= 0 {
		limit = m.config.Storage.ListLimit
	}
	return m.executions.ListExecutions(ctx, workflowID, limit)
}

// GetExecutionStats counts a user's stored executions by status, optionally
// restricted to one workflow. Unlike GetMetrics it survives restarts.
func (m *Manager) GetExecutionStats(ctx context.Context, userID, workflowID string) (*domain.ExecutionStats, error) {
	if userID == "" {
		return nil, domain.NewValidationError("user id is required", domain.ErrInvalidInput)
	}
	return m.executions.ExecutionStats(ctx, userID, workflowID)
}

func (m *Manager) GetMetrics() domain.ExecutionMetrics {
	return m.engine.GetMetrics()
}

func (m *Manager) GetPanicMetrics() engine.PanicMetrics {
	return m.engine.GetPanicMetrics()
}

func (m *Manager) Events() *events.Manager {
	return m.events
}

func (m *Manager) Close() error {
	var errs []error
	for _, closer := range m.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}

func resultFrom(record *domain.ExecutionRecord) *domain.RunResult {
	return &domain.RunResult{
		ExecutionID: record.ID,
		Status:      record.Status,
		OutputData:  record.OutputData,
		Error:       record.ErrorMessage,
	}
}
