package nodes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eleven-am/flowrun/internal/adapters/node_registry"
	"github.com/eleven-am/flowrun/internal/ports"
)

type failParams struct {
	Message string `json:"message"`
}

// newDelayNode waits for parameters.duration before passing its input on. The
// duration is either milliseconds or a Go duration string.
func newDelayNode() ports.NodePort {
	return ports.NodeFunc(TypeDelay, func(ctx context.Context, input *ports.NodeInput) (*ports.NodeResult, error) {
		raw, _ := input.Param("duration")
		wait, err := parseDuration(raw)
		if err != nil {
			return nil, err
		}

		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return ports.MainOutput(unwrapInput(input.Inputs)), nil
		}
	})
}

func newFailNode() ports.NodePort {
	return node_registry.NewTypedNode(TypeFail, func(ctx context.Context, params failParams, input *ports.NodeInput) (*ports.NodeResult, error) {
		message := params.Message
		if message == "" {
			message = "node " + input.NodeID + " failed"
		}
		return nil, errors.New(message)
	})
}

func parseDuration(raw interface{}) (time.Duration, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", v, err)
		}
		return d, nil
	default:
		ms, ok := toFloat(v)
		if !ok {
			return 0, fmt.Errorf("invalid duration %v", v)
		}
		if ms < 0 {
			return 0, fmt.Errorf("negative duration %v", v)
		}
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
}
