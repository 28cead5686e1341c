// Package flowrun interprets workflow definitions as directed acyclic graphs of
// nodes and executes them with bounded concurrency.
//
// A workflow is a set of typed nodes joined by port-to-port connections. Each
// node runs once its inputs are available; branching nodes can leave edges
// untaken, which skips every node that depends only on them. Every run
// produces an ExecutionRecord with per-node states, outputs and a timestamped
// log.
//
// Basic usage:
//
//	manager, err := flowrun.NewWithConfig(flowrun.DefaultConfig().WithEncryptionKey(key))
//	if err != nil {
//	    return err
//	}
//	defer manager.Close()
//
//	manager.RegisterNode(flowrun.NodeFunc("greet", func(ctx context.Context, in *flowrun.NodeInput) (*flowrun.NodeResult, error) {
//	    return flowrun.MainOutput(map[string]interface{}{"hello": in.Main()}), nil
//	}))
//
//	def, _ := flowrun.ParseWorkflowDefinition(data)
//	result, err := manager.RunDefinition(ctx, def, input, flowrun.RunOptions{UserID: "user-1"})
package flowrun

import (
	"context"

	"github.com/eleven-am/flowrun/internal/adapters/node_registry"
	"github.com/eleven-am/flowrun/internal/core"
	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
)

// Manager loads, validates and runs workflows and keeps their execution history.
type Manager = core.Manager

// Components replaces individual adapters of a Manager, typically in tests.
type Components = core.Components

// WorkflowDefinition is a workflow as the editor stores it.
type WorkflowDefinition = domain.WorkflowDefinition

type NodeDefinition = domain.NodeDefinition

type Connection = domain.Connection

type PortDefinition = domain.PortDefinition

type WorkflowSettings = domain.WorkflowSettings

type NodeSettings = domain.NodeSettings

// RunOptions overrides the engine defaults for a single run.
type RunOptions = domain.RunOptions

// RunResult is the summary returned to callers of Run.
type RunResult = domain.RunResult

// ExecutionRecord is the full, persisted account of one run.
type ExecutionRecord = domain.ExecutionRecord

type ExecutionStatus = domain.ExecutionStatus

type NodeStatus = domain.NodeStatus

type SkipReason = domain.SkipReason

type ErrorMode = domain.ErrorMode

type Payload = domain.Payload

type ExecutionMetrics = domain.ExecutionMetrics

// ExecutionStats counts stored executions by status.
type ExecutionStats = domain.ExecutionStats

// NodePort is the contract every node type implements.
type NodePort = ports.NodePort

// NodeInput is what a node receives for one invocation.
type NodeInput = ports.NodeInput

// NodeResult maps output port names to values.
type NodeResult = ports.NodeResult

// CredentialAccessor hands a node the decrypted credentials it may use. They
// are wiped when the invocation returns.
type CredentialAccessor = ports.CredentialAccessor

type DecryptedCredential = domain.DecryptedCredential

type Credential = domain.Credential

type CredentialType = domain.CredentialType

// Workflow lifecycle events.
type WorkflowStartedEvent = domain.WorkflowStartedEvent
type WorkflowCompletedEvent = domain.WorkflowCompletedEvent
type WorkflowErrorEvent = domain.WorkflowErrorEvent
type WorkflowCancelledEvent = domain.WorkflowCancelledEvent

// Node lifecycle events.
type NodeStartedEvent = domain.NodeStartedEvent
type NodeCompletedEvent = domain.NodeCompletedEvent
type NodeErrorEvent = domain.NodeErrorEvent
type NodeSkippedEvent = domain.NodeSkippedEvent

// WorkflowContext describes the run a node is executing in.
type WorkflowContext = domain.WorkflowContext

// Error types callers can match with errors.As.
type DomainError = domain.DomainError
type NodeError = domain.NodeError
type GraphError = domain.GraphError
type CredentialError = domain.CredentialError
type ConfigError = domain.ConfigError

const (
	ExecutionStatusPending   = domain.ExecutionStatusPending
	ExecutionStatusRunning   = domain.ExecutionStatusRunning
	ExecutionStatusSuccess   = domain.ExecutionStatusSuccess
	ExecutionStatusFailed    = domain.ExecutionStatusFailed
	ExecutionStatusCancelled = domain.ExecutionStatusCancelled
)

const (
	ErrorModeStop     = domain.ErrorModeStop
	ErrorModeContinue = domain.ErrorModeContinue
	ErrorModeRetry    = domain.ErrorModeRetry
)

var (
	ErrWorkflowNotFound  = domain.ErrWorkflowNotFound
	ErrWorkflowInactive  = domain.ErrWorkflowInactive
	ErrExecutionNotFound = domain.ErrExecutionNotFound
)

// New creates a Manager with in-memory storage and default engine settings.
func New() (*Manager, error) {
	return core.NewWithConfig(domain.DefaultConfig())
}

// NewWithConfig creates a Manager from a full configuration. The config is
// validated before any adapter is built.
func NewWithConfig(config *Config) (*Manager, error) {
	return core.NewWithConfig(config)
}

// NewWithComponents creates a Manager using the given adapters in place of the
// ones the config would build.
func NewWithComponents(config *Config, components Components) (*Manager, error) {
	return core.NewWithComponents(config, components)
}

// ParseWorkflowDefinition decodes a workflow definition from JSON.
func ParseWorkflowDefinition(data []byte) (*WorkflowDefinition, error) {
	return domain.ParseWorkflowDefinition(data)
}

// NodeFunc adapts a plain function into a node type.
func NodeFunc(name string, fn func(ctx context.Context, input *NodeInput) (*NodeResult, error)) NodePort {
	return ports.NodeFunc(name, fn)
}

// TypedNode builds a node whose parameters are decoded into P before fn runs.
//
//	type greetParams struct {
//	    Greeting string `json:"greeting"`
//	}
//
//	node := flowrun.TypedNode("greet", func(ctx context.Context, p greetParams, in *flowrun.NodeInput) (*flowrun.NodeResult, error) {
//	    return flowrun.MainOutput(p.Greeting), nil
//	})
func TypedNode[P any](name string, fn func(ctx context.Context, params P, input *NodeInput) (*NodeResult, error)) NodePort {
	return node_registry.NewTypedNode(name, fn)
}

// MainOutput emits value on the node's "main" port.
func MainOutput(value interface{}) *NodeResult {
	return ports.MainOutput(value)
}

// Output emits value on the named port.
func Output(port string, value interface{}) *NodeResult {
	return ports.Output(port, value)
}

// GetWorkflowContext returns the run metadata attached to a node's context.
func GetWorkflowContext(ctx context.Context) (*WorkflowContext, bool) {
	return domain.GetWorkflowContext(ctx)
}

func IsNotFound(err error) bool {
	return domain.IsNotFound(err)
}

func IsRetryableError(err error) bool {
	return domain.IsRetryableError(err)
}
