package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
)

// attemptPolicy is the resolved retry and timeout policy of one node.
type attemptPolicy struct {
	Retries    int
	RetryDelay time.Duration
	Timeout    time.Duration
	ErrorMode  domain.ErrorMode
}

func (p attemptPolicy) MaxAttempts() int {
	return p.Retries + 1
}

type nodeTask struct {
	ExecutionID string
	WorkflowID  string
	UserID      string
	Node        domain.NodeDefinition
	Input       domain.Payload
	Handler     ports.NodePort
	Policy      attemptPolicy
}

type nodeOutcome struct {
	NodeID   string
	Result   *ports.NodeResult
	Attempts int
	Err      error
	Duration time.Duration
}

type attemptResult struct {
	result *ports.NodeResult
	err    error
}

// NodeExecutor runs a single node to completion: every attempt, the per-attempt
// timeout, the delay between attempts and the credential scope of each attempt.
type NodeExecutor struct {
	config         domain.EngineConfig
	resolver       ports.CredentialResolverPort
	recoverable    *RecoverableExecutor
	metrics        *domain.ExecutionMetrics
	metricsTracker *MetricsTracker
	logger         *slog.Logger
}

func NewNodeExecutor(config domain.EngineConfig, resolver ports.CredentialResolverPort, metrics *domain.ExecutionMetrics, tracker *MetricsTracker, logger *slog.Logger) *NodeExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = domain.NewExecutionMetrics()
	}
	if tracker == nil {
		tracker = NewMetricsTracker()
	}
	return &NodeExecutor{
		config:         config,
		resolver:       resolver,
		recoverable:    NewRecoverableExecutor(logger, tracker),
		metrics:        metrics,
		metricsTracker: tracker,
		logger:         logger.With("component", "node-executor"),
	}
}

// Execute never returns early on a failed attempt while attempts remain and the
// context is alive. Every failed attempt is written to the recorder.
func (ne *NodeExecutor) Execute(ctx context.Context, task nodeTask, recorder *Recorder) nodeOutcome {
	startTime := time.Now()
	outcome := nodeOutcome{NodeID: task.Node.ID}

	delay := task.Policy.RetryDelay
	if delay <= 0 {
		delay = time.Nanosecond
	}
	backoff := retry.WithMaxRetries(uint64(task.Policy.Retries), retry.NewConstant(delay))
	if ne.config.MaxRetryDelay > 0 {
		backoff = retry.WithCappedDuration(ne.config.MaxRetryDelay, backoff)
	}

	var lastErr error
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		outcome.Attempts++
		if outcome.Attempts > 1 {
			ne.metrics.IncrementNodesRetried()
		}

		result, err := ne.attempt(ctx, task, outcome.Attempts)
		if err == nil {
			outcome.Result = result
			return nil
		}

		lastErr = err
		if recordErr := recorder.RecordAttempt(task.Node.ID, outcome.Attempts, err); recordErr != nil {
			ne.logger.Warn("failed to record attempt", "node_id", task.Node.ID, "error", recordErr)
		}

		ne.logger.Debug("node attempt failed",
			"execution_id", task.ExecutionID,
			"node_id", task.Node.ID,
			"attempt", outcome.Attempts,
			"max_attempts", task.Policy.MaxAttempts(),
			"error", err)

		if ctx.Err() != nil || !retryable(err) {
			return err
		}
		return retry.RetryableError(err)
	})

	outcome.Duration = time.Since(startTime)
	ne.metrics.AddExecutionTime(outcome.Duration)

	if err == nil {
		return outcome
	}

	if lastErr == nil {
		lastErr = err
	}
	outcome.Result = nil
	outcome.Err = ne.classify(ctx, task.Node.ID, lastErr)
	return outcome
}

func (ne *NodeExecutor) attempt(ctx context.Context, task nodeTask, attempt int) (*ports.NodeResult, error) {
	attemptCtx := ctx
	cancel := func() {}
	if task.Policy.Timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, task.Policy.Timeout)
	}
	defer cancel()

	scope := newCredentialScope(ne.resolver, task.UserID)
	input := &ports.NodeInput{
		NodeID:       task.Node.ID,
		NodeType:     task.Node.Type,
		Inputs:       task.Input.Clone(),
		Parameters:   task.Node.Parameters,
		CredentialID: task.Node.CredentialID,
		Credentials:  scope,
	}
	workflowCtx := &domain.WorkflowContext{
		ExecutionID: task.ExecutionID,
		WorkflowID:  task.WorkflowID,
		UserID:      task.UserID,
		NodeID:      task.Node.ID,
		NodeType:    task.Node.Type,
		Attempt:     attempt,
		StartedAt:   time.Now(),
	}

	done := make(chan attemptResult, 1)
	go func() {
		result, err := ne.recoverable.ExecuteWithRecovery(attemptCtx, task.Handler, input, workflowCtx)
		if released := scope.Release(); released > 0 {
			ne.logger.Debug("released credentials", "node_id", task.Node.ID, "count", released)
		}
		done <- attemptResult{result: result, err: err}
	}()

	start := time.Now()
	select {
	case res := <-done:
		ne.metricsTracker.RecordAttempt(time.Since(start), res.err == nil)
		if res.err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, ne.timeoutError(task, attempt)
		}
		return res.result, res.err
	case <-attemptCtx.Done():
		ne.metricsTracker.RecordAttempt(time.Since(start), false)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ne.timeoutError(task, attempt)
	}
}

func (ne *NodeExecutor) timeoutError(task nodeTask, attempt int) error {
	ne.metrics.IncrementNodesTimedOut()
	ne.metricsTracker.RecordTimeout()
	return domain.NewNodeError(domain.NodeErrTimeout, task.Node.ID,
		fmt.Sprintf("attempt %d exceeded %s", attempt, task.Policy.Timeout), context.DeadlineExceeded)
}

// classify maps whatever the last attempt produced onto a NodeError.
// retryable honours an explicit retry hint on a domain error. Other errors retry.
func retryable(err error) bool {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return de.Retryable
	}
	return true
}

func (ne *NodeExecutor) classify(ctx context.Context, nodeID string, err error) error {
	if nodeErr, ok := domain.AsNodeError(err); ok && nodeErr.NodeID == nodeID {
		return nodeErr
	}

	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return domain.NewNodeError(domain.NodeErrHandlerFailure, nodeID, domain.ErrCancelled.Error(), domain.ErrCancelled)
	}

	var panicErr *domain.WorkflowPanicError
	if errors.As(err, &panicErr) {
		ne.metrics.IncrementNodesPanicked()
		return domain.NewNodeError(domain.NodeErrHandlerFailure, nodeID, fmt.Sprintf("panic: %v", panicErr.PanicValue), panicErr)
	}

	return domain.NewNodeError(domain.NodeErrHandlerFailure, nodeID, err.Error(), err)
}
