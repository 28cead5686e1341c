package workflow

import (
	"fmt"
	"testing"

	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports/mocks"
)

type MockComponents struct {
	Executions  *mocks.MockExecutionStore
	Workflows   *mocks.MockWorkflowStore
	Credentials *mocks.MockCredentialStore
}

func SetupMockComponents(t *testing.T) *MockComponents {
	t.Helper()

	return &MockComponents{
		Executions:  mocks.NewMockExecutionStore(t),
		Workflows:   mocks.NewMockWorkflowStore(t),
		Credentials: mocks.NewMockCredentialStore(t),
	}
}

// Builder assembles WorkflowDefinitions for tests.
type Builder struct {
	def domain.WorkflowDefinition
}

func NewDefinition(workflowID string) *Builder {
	return &Builder{def: domain.WorkflowDefinition{ID: workflowID, Name: workflowID, OwnerID: "user-1"}}
}

func (b *Builder) Owner(userID string) *Builder {
	b.def.OwnerID = userID
	return b
}

func (b *Builder) Inactive() *Builder {
	active := false
	b.def.IsActive = &active
	return b
}

func (b *Builder) ErrorMode(mode domain.ErrorMode) *Builder {
	b.def.Settings.ErrorMode = mode
	return b
}

func (b *Builder) MaxParallelism(n int) *Builder {
	b.def.Settings.MaxParallelism = n
	return b
}

func (b *Builder) Node(id, nodeType string) *Builder {
	b.def.Nodes = append(b.def.Nodes, domain.NodeDefinition{ID: id, Type: nodeType})
	return b
}

func (b *Builder) NodeWith(node domain.NodeDefinition) *Builder {
	b.def.Nodes = append(b.def.Nodes, node)
	return b
}

func (b *Builder) Connect(source, target string) *Builder {
	b.def.Connections = append(b.def.Connections, domain.Connection{Source: source, Target: target})
	return b
}

func (b *Builder) ConnectPorts(source, sourcePort, target, targetPort string) *Builder {
	b.def.Connections = append(b.def.Connections, domain.Connection{
		Source:       source,
		Target:       target,
		SourceHandle: sourcePort,
		TargetHandle: targetPort,
	})
	return b
}

func (b *Builder) Build() *domain.WorkflowDefinition {
	def := b.def
	def.Nodes = append([]domain.NodeDefinition(nil), b.def.Nodes...)
	def.Connections = append([]domain.Connection(nil), b.def.Connections...)
	return &def
}

// EchoScenario is a single echo node with no edges.
func EchoScenario() *domain.WorkflowDefinition {
	return NewDefinition("wf-echo").Node("A", "echo").Build()
}

// DanglingScenario has an edge into a node that does not exist.
func DanglingScenario() *domain.WorkflowDefinition {
	return NewDefinition("wf-dangling").
		Node("A", "echo").
		Connect("A", "missing").
		Build()
}

// DiamondScenario is A -> {B, C} -> D with node B of the given type.
func DiamondScenario(middleType string) *domain.WorkflowDefinition {
	return NewDefinition("wf-diamond").
		Node("A", "echo").
		Node("B", middleType).
		Node("C", "echo").
		Node("D", "echo").
		Connect("A", "B").
		Connect("A", "C").
		Connect("B", "D").
		Connect("C", "D").
		Build()
}

// ChainScenario is a linear chain n0 -> n1 -> ... of echo nodes.
func ChainScenario(length int) *domain.WorkflowDefinition {
	b := NewDefinition(fmt.Sprintf("wf-chain-%d", length))
	for i := 0; i < length; i++ {
		b.Node(fmt.Sprintf("n%d", i), "echo")
		if i > 0 {
			b.Connect(fmt.Sprintf("n%d", i-1), fmt.Sprintf("n%d", i))
		}
	}
	return b.Build()
}

// CycleScenario links length nodes into a ring.
func CycleScenario(length int) *domain.WorkflowDefinition {
	b := NewDefinition(fmt.Sprintf("wf-cycle-%d", length))
	for i := 0; i < length; i++ {
		b.Node(fmt.Sprintf("c%d", i), "echo")
	}
	for i := 0; i < length; i++ {
		b.Connect(fmt.Sprintf("c%d", i), fmt.Sprintf("c%d", (i+1)%length))
	}
	return b.Build()
}
