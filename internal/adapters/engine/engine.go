package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
)

// Engine interprets execution graphs. Each call to Run owns its graph and
// runtime state; the engine itself only tracks which runs can be cancelled.
type Engine struct {
	config         domain.EngineConfig
	registry       ports.NodeRegistryPort
	executor       *NodeExecutor
	events         ports.EventManager
	logger         *slog.Logger
	metrics        *domain.ExecutionMetrics
	metricsTracker *MetricsTracker

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

func NewEngine(config domain.EngineConfig, registry ports.NodeRegistryPort, resolver ports.CredentialResolverPort, events ports.EventManager, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	metrics := domain.NewExecutionMetrics()
	tracker := NewMetricsTracker()

	return &Engine{
		config:         config,
		registry:       registry,
		executor:       NewNodeExecutor(config, resolver, metrics, tracker, logger),
		events:         events,
		logger:         logger.With("component", "engine"),
		metrics:        metrics,
		metricsTracker: tracker,
		active:         make(map[string]context.CancelFunc),
	}
}

// Run executes the graph with the given initial input and always returns a
// finalized record, whatever happens to individual nodes.
func (e *Engine) Run(ctx context.Context, graph *domain.ExecutionGraph, input map[string]interface{}, opts domain.RunOptions) *domain.ExecutionRecord {
	opts = e.resolveOptions(graph, opts)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	e.active[opts.ExecutionID] = cancel
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.active, opts.ExecutionID)
		e.mu.Unlock()
	}()

	e.logger.Debug("starting execution",
		"execution_id", opts.ExecutionID,
		"workflow_id", opts.WorkflowID,
		"nodes", graph.Size(),
		"max_parallelism", opts.MaxParallelism,
		"error_mode", opts.ErrorMode)

	return newScheduler(e, graph, input, opts).run(runCtx)
}

// Cancel stops a running execution. It reports whether the execution was found.
func (e *Engine) Cancel(executionID string) bool {
	e.mu.Lock()
	cancel, ok := e.active[executionID]
	e.mu.Unlock()

	if !ok {
		return false
	}

	e.logger.Info("cancelling execution", "execution_id", executionID)
	cancel()
	return true
}

func (e *Engine) ActiveExecutions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(e.active))
	for id := range e.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e *Engine) GetMetrics() domain.ExecutionMetrics {
	return e.metrics.GetSnapshot()
}

func (e *Engine) GetPanicMetrics() PanicMetrics {
	return e.metricsTracker.GetPanicMetrics()
}

func (e *Engine) GetAttemptMetrics() AttemptMetrics {
	return e.metricsTracker.GetAttemptMetrics()
}

// resolveOptions fills unset run options. Explicit options win over workflow
// settings, which win over the engine configuration.
func (e *Engine) resolveOptions(graph *domain.ExecutionGraph, opts domain.RunOptions) domain.RunOptions {
	if opts.ExecutionID == "" {
		opts.ExecutionID = uuid.NewString()
	}
	if opts.WorkflowID == "" {
		opts.WorkflowID = graph.WorkflowID
	}
	if opts.TriggerType == "" {
		opts.TriggerType = e.config.DefaultTriggerType
	}
	if opts.TriggerType == "" {
		opts.TriggerType = string(domain.TriggerManual)
	}

	if opts.MaxParallelism <= 0 {
		opts.MaxParallelism = graph.Settings.MaxParallelism
	}
	if opts.MaxParallelism <= 0 {
		opts.MaxParallelism = e.config.MaxParallelism
	}
	if opts.MaxParallelism <= 0 {
		opts.MaxParallelism = 1
	}

	if !opts.ErrorMode.Valid() {
		opts.ErrorMode = graph.Settings.ErrorMode
	}
	if !opts.ErrorMode.Valid() {
		opts.ErrorMode = e.config.ErrorMode
	}
	if !opts.ErrorMode.Valid() {
		opts.ErrorMode = domain.ErrorModeStop
	}

	if opts.NodeTimeout <= 0 {
		opts.NodeTimeout = e.config.NodeTimeout
	}
	if opts.RetryCount <= 0 {
		opts.RetryCount = e.config.RetryCount
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = e.config.RetryDelay
	}

	return opts
}

// policyFor resolves the attempt policy of one node against the run options.
func (e *Engine) policyFor(node domain.NodeDefinition, opts domain.RunOptions) attemptPolicy {
	retries, explicit := node.Settings.Retries()
	policy := attemptPolicy{
		Retries:    retries,
		RetryDelay: node.Settings.RetryDelay(),
		Timeout:    node.Settings.Timeout(),
		ErrorMode:  node.Settings.ErrorMode,
	}

	if !policy.ErrorMode.Valid() {
		policy.ErrorMode = opts.ErrorMode
	}
	if !explicit {
		policy.Retries = opts.RetryCount
	}
	if !explicit && policy.ErrorMode == domain.ErrorModeRetry && policy.Retries <= 0 {
		policy.Retries = e.config.RetryModeAttempts
		if policy.Retries <= 0 {
			policy.Retries = 1
		}
	}
	if policy.Retries < 0 {
		policy.Retries = 0
	}
	if policy.RetryDelay <= 0 {
		policy.RetryDelay = opts.RetryDelay
	}
	if policy.Timeout <= 0 {
		policy.Timeout = opts.NodeTimeout
	}

	return policy
}
