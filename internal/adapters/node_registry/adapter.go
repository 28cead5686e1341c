package node_registry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
)

// Adapter is the node type registry. It is populated at startup and read
// concurrently by every run.
type Adapter struct {
	nodes  map[string]ports.NodePort
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewAdapter(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Adapter{
		nodes:  make(map[string]ports.NodePort),
		logger: logger.With("component", "node-registry"),
	}
}

func (r *Adapter) RegisterNode(node ports.NodePort) error {
	if node == nil {
		r.logger.Error("attempted to register nil node")
		return &ports.NodeRegistrationError{
			NodeName: "<nil>",
			Reason:   "node cannot be nil",
		}
	}

	nodeType := node.GetName()
	if nodeType == "" {
		r.logger.Error("attempted to register node with empty type")
		return &ports.NodeRegistrationError{
			NodeName: nodeType,
			Reason:   "node name cannot be empty",
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[nodeType]; exists {
		r.logger.Debug("node registration failed - already exists", "node_type", nodeType)
		return &ports.NodeRegistrationError{
			NodeName: nodeType,
			Reason:   "node already registered",
		}
	}

	r.nodes[nodeType] = node
	r.logger.Debug("node registered", "node_type", nodeType, "total_nodes", len(r.nodes))
	return nil
}

// GetNode resolves a node type to its handler.
func (r *Adapter) GetNode(nodeType string) (ports.NodePort, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, exists := r.nodes[nodeType]
	if !exists {
		return nil, domain.NewResourceError("node type not registered", domain.ErrUnknownNodeType,
			domain.WithComponent("node-registry"),
			domain.WithOperation("get"),
			domain.WithDetail("node_type", nodeType))
	}
	return node, nil
}

// ListNodes returns the registered types in lexical order.
func (r *Adapter) ListNodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodeTypes := make([]string, 0, len(r.nodes))
	for nodeType := range r.nodes {
		nodeTypes = append(nodeTypes, nodeType)
	}
	sort.Strings(nodeTypes)
	return nodeTypes
}

func (r *Adapter) UnregisterNode(nodeType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[nodeType]; !exists {
		r.logger.Debug("node unregistration failed - not found", "node_type", nodeType)
		return domain.NewResourceError("node type not registered", domain.ErrNotFound,
			domain.WithComponent("node-registry"),
			domain.WithOperation("unregister"),
			domain.WithDetail("node_type", nodeType))
	}

	delete(r.nodes, nodeType)
	r.logger.Debug("node unregistered", "node_type", nodeType, "remaining_nodes", len(r.nodes))
	return nil
}

func (r *Adapter) HasNode(nodeType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.nodes[nodeType]
	return exists
}

func (r *Adapter) GetNodeCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.nodes)
}
