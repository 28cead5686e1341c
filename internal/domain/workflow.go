package domain

import (
	"bytes"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// DefaultPort is used whenever a connection omits its source or target handle.
const DefaultPort = "main"

type ErrorMode string

const (
	ErrorModeStop     ErrorMode = "stop"
	ErrorModeContinue ErrorMode = "continue"
	ErrorModeRetry    ErrorMode = "retry"
)

func (m ErrorMode) Valid() bool {
	switch m {
	case ErrorModeStop, ErrorModeContinue, ErrorModeRetry:
		return true
	default:
		return false
	}
}

// WorkflowDefinition is the persisted shape of a workflow as the editor saves it.
type WorkflowDefinition struct {
	ID          string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`
	OwnerID     string            `json:"userId,omitempty" yaml:"userId,omitempty"`
	IsActive    *bool             `json:"isActive,omitempty" yaml:"isActive,omitempty"`
	Nodes       []NodeDefinition  `json:"nodes" yaml:"nodes"`
	Connections []Connection      `json:"connections" yaml:"connections"`
	Settings    WorkflowSettings  `json:"settings,omitempty" yaml:"settings,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

type WorkflowSettings struct {
	ErrorMode      ErrorMode `json:"errorHandling,omitempty" yaml:"errorHandling,omitempty"`
	MaxParallelism int       `json:"maxParallelism,omitempty" yaml:"maxParallelism,omitempty"`
}

type NodeDefinition struct {
	ID           string                 `json:"id" yaml:"id"`
	Type         string                 `json:"type" yaml:"type"`
	Name         string                 `json:"name,omitempty" yaml:"name,omitempty"`
	Parameters   map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Position     *Position              `json:"position,omitempty" yaml:"position,omitempty"`
	Settings     NodeSettings           `json:"executionConfig,omitempty" yaml:"executionConfig,omitempty"`
	Inputs       []PortDefinition       `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs      []PortDefinition       `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	CredentialID string                 `json:"credentialId,omitempty" yaml:"credentialId,omitempty"`
}

// Position is editor metadata; the engine never reads it.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeSettings mirrors the editor's executionConfig block. Durations are milliseconds.
type NodeSettings struct {
	TimeoutMs    int64     `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	RetryCount   *int      `json:"retryCount,omitempty" yaml:"retryCount,omitempty"`
	RetryDelayMs int64     `json:"retryDelay,omitempty" yaml:"retryDelay,omitempty"`
	ErrorMode    ErrorMode `json:"errorHandling,omitempty" yaml:"errorHandling,omitempty"`
}

func (s NodeSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// Retries reports the node's retry count and whether it was set at all.
// An explicit zero disables retries for the node.
func (s NodeSettings) Retries() (int, bool) {
	if s.RetryCount == nil {
		return 0, false
	}
	return *s.RetryCount, true
}

func (s NodeSettings) RetryDelay() time.Duration {
	return time.Duration(s.RetryDelayMs) * time.Millisecond
}

type PortDefinition struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Required bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Multiple bool   `json:"multiple,omitempty" yaml:"multiple,omitempty"`
}

type Connection struct {
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
}

func (c Connection) SourcePort() string {
	if c.SourceHandle == "" {
		return DefaultPort
	}
	return c.SourceHandle
}

func (c Connection) TargetPort() string {
	if c.TargetHandle == "" {
		return DefaultPort
	}
	return c.TargetHandle
}

func (d *WorkflowDefinition) Enabled() bool {
	return d.IsActive == nil || *d.IsActive
}

func (d *WorkflowDefinition) Node(id string) (NodeDefinition, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeDefinition{}, false
}

func (n NodeDefinition) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

func (n NodeDefinition) HasInputPort(port string) bool {
	if len(n.Inputs) == 0 {
		return true
	}
	for _, p := range n.Inputs {
		if p.ID == port {
			return true
		}
	}
	return false
}

func (n NodeDefinition) HasOutputPort(port string) bool {
	if len(n.Outputs) == 0 {
		return true
	}
	for _, p := range n.Outputs {
		if p.ID == port {
			return true
		}
	}
	return false
}

// ParseWorkflowDefinition accepts the editor's JSON as well as a YAML rendition.
func ParseWorkflowDefinition(data []byte) (*WorkflowDefinition, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, NewValidationError("workflow definition is required", ErrInvalidInput)
	}

	var def WorkflowDefinition
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &def); err != nil {
			return nil, NewValidationError("invalid workflow definition json", err)
		}
		return &def, nil
	}

	if err := yaml.Unmarshal(trimmed, &def); err != nil {
		return nil, NewValidationError("invalid workflow definition yaml", err)
	}
	return &def, nil
}

func (d *WorkflowDefinition) String() string {
	return fmt.Sprintf("workflow(%s, nodes=%d, connections=%d)", d.ID, len(d.Nodes), len(d.Connections))
}
