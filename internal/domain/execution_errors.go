package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDanglingEdge    = errors.New("dangling edge")
	ErrDuplicateNode   = errors.New("duplicate node")
	ErrCycleDetected   = errors.New("cycle detected")
	ErrEmptyWorkflow   = errors.New("workflow has no nodes")
	ErrUnknownPort     = errors.New("unknown port")
	ErrMissingInput    = errors.New("missing input")
	ErrNodeTimeout     = errors.New("node timed out")
	ErrHandlerFailure  = errors.New("handler failure")
	ErrUnknownNodeType = errors.New("unknown node type")

	ErrCredentialNotFound  = errors.New("credential not found")
	ErrCredentialForbidden = errors.New("credential access forbidden")
	ErrCredentialDecrypt   = errors.New("credential decrypt failed")

	ErrRecordFinalized   = errors.New("execution record already finalized")
	ErrExecutionNotFound = errors.New("execution not found")
	ErrWorkflowNotFound  = errors.New("workflow not found")
	ErrWorkflowInactive  = errors.New("workflow is not active")
	ErrCancelled         = errors.New("execution cancelled")
)

type GraphErrorKind string

const (
	GraphErrDanglingEdge  GraphErrorKind = "dangling_edge"
	GraphErrDuplicateNode GraphErrorKind = "duplicate_node"
	GraphErrCycleDetected GraphErrorKind = "cycle_detected"
	GraphErrEmptyWorkflow GraphErrorKind = "empty_workflow"
	GraphErrUnknownPort   GraphErrorKind = "unknown_port"
)

// GraphError is returned by the graph builder; it is always fatal to a run.
type GraphError struct {
	Kind   GraphErrorKind
	NodeID string
	Port   string
	Path   []string
}

func (e *GraphError) Error() string {
	switch e.Kind {
	case GraphErrDanglingEdge:
		return fmt.Sprintf("graph: edge references missing node %q", e.NodeID)
	case GraphErrDuplicateNode:
		return fmt.Sprintf("graph: duplicate node id %q", e.NodeID)
	case GraphErrCycleDetected:
		return fmt.Sprintf("graph: cycle detected: %s", strings.Join(e.Path, " -> "))
	case GraphErrEmptyWorkflow:
		return "graph: workflow has no nodes"
	case GraphErrUnknownPort:
		return fmt.Sprintf("graph: node %q has no port %q", e.NodeID, e.Port)
	default:
		return "graph: invalid definition"
	}
}

func (e *GraphError) Unwrap() error {
	switch e.Kind {
	case GraphErrDanglingEdge:
		return ErrDanglingEdge
	case GraphErrDuplicateNode:
		return ErrDuplicateNode
	case GraphErrCycleDetected:
		return ErrCycleDetected
	case GraphErrEmptyWorkflow:
		return ErrEmptyWorkflow
	case GraphErrUnknownPort:
		return ErrUnknownPort
	default:
		return nil
	}
}

type NodeErrorKind string

const (
	NodeErrMissingInput    NodeErrorKind = "missing_input"
	NodeErrTimeout         NodeErrorKind = "timeout"
	NodeErrHandlerFailure  NodeErrorKind = "handler_failure"
	NodeErrUnknownNodeType NodeErrorKind = "unknown_node_type"
)

// NodeError describes why a single node did not succeed.
type NodeError struct {
	Kind   NodeErrorKind
	NodeID string
	Detail string
	Cause  error
}

func NewNodeError(kind NodeErrorKind, nodeID, detail string, cause error) *NodeError {
	return &NodeError{
		Kind:   kind,
		NodeID: nodeID,
		Detail: detail,
		Cause:  cause,
	}
}

func (e *NodeError) Error() string {
	msg := fmt.Sprintf("node %s: %s", e.NodeID, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil && e.Cause.Error() != e.Detail {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *NodeError) Unwrap() []error {
	var sentinel error
	switch e.Kind {
	case NodeErrMissingInput:
		sentinel = ErrMissingInput
	case NodeErrTimeout:
		sentinel = ErrNodeTimeout
	case NodeErrUnknownNodeType:
		sentinel = ErrUnknownNodeType
	default:
		sentinel = ErrHandlerFailure
	}
	if e.Cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Cause}
}

type CredentialErrorKind string

const (
	CredentialErrNotFound  CredentialErrorKind = "not_found"
	CredentialErrForbidden CredentialErrorKind = "forbidden"
	CredentialErrDecrypt   CredentialErrorKind = "decrypt_error"
)

type CredentialError struct {
	Kind         CredentialErrorKind
	CredentialID string
	Cause        error
}

func NewCredentialError(kind CredentialErrorKind, credentialID string, cause error) *CredentialError {
	return &CredentialError{Kind: kind, CredentialID: credentialID, Cause: cause}
}

func (e *CredentialError) Error() string {
	msg := fmt.Sprintf("credential %s: %s", e.CredentialID, e.Kind)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *CredentialError) Unwrap() []error {
	var sentinel error
	switch e.Kind {
	case CredentialErrNotFound:
		sentinel = ErrCredentialNotFound
	case CredentialErrForbidden:
		sentinel = ErrCredentialForbidden
	default:
		sentinel = ErrCredentialDecrypt
	}
	if e.Cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Cause}
}

func IsGraphError(err error) bool {
	var ge *GraphError
	return errors.As(err, &ge)
}

func AsNodeError(err error) (*NodeError, bool) {
	var ne *NodeError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

func IsCredentialError(err error) bool {
	var ce *CredentialError
	return errors.As(err, &ce)
}
