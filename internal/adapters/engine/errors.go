package engine

import "github.com/eleven-am/flowrun/internal/domain"

const schedulerComponent = "engine.Scheduler"

func errorLogAttrs(err error) []any {
	if err == nil {
		return nil
	}

	attrs := []any{
		"error", err,
		"error_category", domain.GetErrorCategory(err).String(),
		"error_retryable", domain.IsRetryableError(err),
	}

	if nodeErr, ok := domain.AsNodeError(err); ok {
		attrs = append(attrs, "error_kind", string(nodeErr.Kind))
	}

	if ctx := domain.GetErrorContext(err); ctx != nil {
		if ctx.Component != "" {
			attrs = append(attrs, "error_component", ctx.Component)
		}
		if ctx.Operation != "" {
			attrs = append(attrs, "error_operation", ctx.Operation)
		}
		if ctx.NodeID != "" {
			attrs = append(attrs, "node_id", ctx.NodeID)
		}
		if len(ctx.Details) > 0 {
			attrs = append(attrs, "error_details", ctx.Details)
		}
	}

	return attrs
}
