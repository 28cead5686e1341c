package node_registry

import (
	"context"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
	"github.com/eleven-am/flowrun/internal/xjson"
)

// TypedNode decodes a node's parameters into P before calling the handler.
type TypedNode[P any] struct {
	name string
	fn   func(ctx context.Context, params P, input *ports.NodeInput) (*ports.NodeResult, error)
}

func NewTypedNode[P any](name string, fn func(ctx context.Context, params P, input *ports.NodeInput) (*ports.NodeResult, error)) *TypedNode[P] {
	return &TypedNode[P]{name: name, fn: fn}
}

func (n *TypedNode[P]) GetName() string {
	return n.name
}

func (n *TypedNode[P]) Execute(ctx context.Context, input *ports.NodeInput) (*ports.NodeResult, error) {
	params, err := DecodeParameters[P](input.Parameters)
	if err != nil {
		return nil, domain.NewValidationError("invalid parameters for node type "+n.name, err,
			domain.WithNodeID(input.NodeID))
	}
	return n.fn(ctx, params, input)
}

// DecodeParameters converts a loosely typed parameter map into P through JSON.
func DecodeParameters[P any](parameters map[string]interface{}) (P, error) {
	var params P
	if len(parameters) == 0 {
		return params, nil
	}

	data, err := xjson.Marshal(parameters)
	if err != nil {
		return params, err
	}
	if err := xjson.Unmarshal(data, &params); err != nil {
		return params, err
	}
	return params, nil
}
