package nodes

import (
	"context"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
)

// newPassthrough copies its input to the main output port. A node fed only on
// main passes that value through unwrapped; otherwise the whole port map is
// forwarded.
func newPassthrough(nodeType string) ports.NodePort {
	return ports.NodeFunc(nodeType, func(ctx context.Context, input *ports.NodeInput) (*ports.NodeResult, error) {
		return ports.MainOutput(unwrapInput(input.Inputs)), nil
	})
}

func unwrapInput(inputs domain.Payload) interface{} {
	if len(inputs) == 0 {
		return nil
	}
	if v, ok := inputs[domain.DefaultPort]; ok && len(inputs) == 1 {
		return v
	}
	return map[string]interface{}(inputs.Clone())
}
