package ports

import (
	"context"

	"github.com/eleven-am/flowrun/internal/domain"
)

// NodePort is the handler capability for one node type.
type NodePort interface {
	GetName() string
	Execute(ctx context.Context, input *NodeInput) (*NodeResult, error)
}

// NodeInput is everything a handler may read for one invocation.
type NodeInput struct {
	NodeID       string
	NodeType     string
	Inputs       domain.Payload
	Parameters   map[string]interface{}
	CredentialID string
	Credentials  CredentialAccessor
}

// Main returns the value on the default input port.
func (in *NodeInput) Main() interface{} {
	if in == nil || in.Inputs == nil {
		return nil
	}
	return in.Inputs[domain.DefaultPort]
}

func (in *NodeInput) Param(key string) (interface{}, bool) {
	if in == nil || in.Parameters == nil {
		return nil, false
	}
	v, ok := in.Parameters[key]
	return v, ok
}

// NodeResult carries output values keyed by output port. A port that is absent
// does not fire, so edges leaving it stay inactive.
type NodeResult struct {
	Outputs domain.Payload `json:"outputs"`
}

func Output(port string, value interface{}) *NodeResult {
	return &NodeResult{Outputs: domain.Payload{port: value}}
}

func MainOutput(value interface{}) *NodeResult {
	return Output(domain.DefaultPort, value)
}

type NodeRegistryPort interface {
	RegisterNode(node NodePort) error
	GetNode(nodeType string) (NodePort, error)
	ListNodes() []string
	UnregisterNode(nodeType string) error
	HasNode(nodeType string) bool
	GetNodeCount() int
}

type NodeRegistrationError struct {
	NodeName string
	Reason   string
}

func (e NodeRegistrationError) Error() string {
	return "node registration failed for '" + e.NodeName + "': " + e.Reason
}

type nodeFunc struct {
	name string
	fn   func(ctx context.Context, input *NodeInput) (*NodeResult, error)
}

// NodeFunc adapts a plain function into a NodePort.
func NodeFunc(name string, fn func(ctx context.Context, input *NodeInput) (*NodeResult, error)) NodePort {
	return &nodeFunc{name: name, fn: fn}
}

func (n *nodeFunc) GetName() string { return n.name }

func (n *nodeFunc) Execute(ctx context.Context, input *NodeInput) (*NodeResult, error) {
	return n.fn(ctx, input)
}
