package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
)

// RecoverableExecutor invokes a handler and turns a panic into a
// WorkflowPanicError instead of crashing the run.
type RecoverableExecutor struct {
	logger         *slog.Logger
	metricsTracker *MetricsTracker
}

func NewRecoverableExecutor(logger *slog.Logger, metricsTracker *MetricsTracker) *RecoverableExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecoverableExecutor{
		logger:         logger.With("component", "recoverable-executor"),
		metricsTracker: metricsTracker,
	}
}

func (re *RecoverableExecutor) ExecuteWithRecovery(
	ctx context.Context,
	handler ports.NodePort,
	input *ports.NodeInput,
	workflowCtx *domain.WorkflowContext,
) (result *ports.NodeResult, err error) {
	startTime := time.Now()

	defer func() {
		if r := recover(); r != nil {
			duration := time.Since(startTime)
			panicErr := domain.NewPanicError(workflowCtx.ExecutionID, input.NodeID, r)

			if re.metricsTracker != nil {
				re.metricsTracker.RecordPanic(duration)
			}

			re.logger.Error("node execution panicked",
				"execution_id", workflowCtx.ExecutionID,
				"node_id", input.NodeID,
				"node_type", input.NodeType,
				"panic_value", r,
				"duration", duration,
				"stack_trace", panicErr.StackTrace,
			)

			result = nil
			err = panicErr
		}
	}()

	enrichedCtx := ctx
	if workflowCtx != nil {
		enrichedCtx = domain.WithWorkflowContext(ctx, workflowCtx)
	}

	result, err = handler.Execute(enrichedCtx, input)
	if err == nil && result == nil {
		result = &ports.NodeResult{Outputs: domain.Payload{}}
	}
	return result, err
}
