package nodes

import (
	"context"
	"sort"

	"github.com/eleven-am/flowrun/internal/adapters/node_registry"
	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
)

type setParams struct {
	Values      map[string]interface{} `json:"values"`
	KeepOnlySet bool                   `json:"keepOnlySet"`
}

// newSetNode overlays parameters.values onto the incoming object.
func newSetNode() ports.NodePort {
	return node_registry.NewTypedNode(TypeSet, func(ctx context.Context, params setParams, input *ports.NodeInput) (*ports.NodeResult, error) {
		base := map[string]interface{}{}
		if !params.KeepOnlySet {
			if obj, ok := unwrapInput(input.Inputs).(map[string]interface{}); ok {
				base = obj
			}
		}

		merged, err := domain.MergeObjects(base, params.Values)
		if err != nil {
			return nil, err
		}
		return ports.MainOutput(merged), nil
	})
}

// newMergeNode combines every input port into one object. Object values are
// deep-merged in port order; anything else lands under its port name.
func newMergeNode() ports.NodePort {
	return ports.NodeFunc(TypeMerge, func(ctx context.Context, input *ports.NodeInput) (*ports.NodeResult, error) {
		portNames := input.Inputs.Ports()
		sort.Strings(portNames)

		out := map[string]interface{}{}
		for _, port := range portNames {
			value := input.Inputs[port]
			if obj, ok := value.(map[string]interface{}); ok {
				merged, err := domain.MergeObjects(out, obj)
				if err != nil {
					return nil, err
				}
				out = merged
				continue
			}
			out[port] = value
		}
		return ports.MainOutput(out), nil
	})
}
