package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Defaults(t *testing.T) {
	tests := []struct {
		name       string
		err        *DomainError
		category   ErrorCategory
		code       string
		retryable  bool
		userFacing bool
	}{
		{"validation", NewValidationError("url is required", nil), CategoryValidation, "VALIDATION_REQUIRED", false, true},
		{"network", NewNetworkError("dial failed", nil), CategoryNetwork, "NETWORK_CONNECTION", true, false},
		{"network timeout", NewNetworkError("read timeout", nil), CategoryNetwork, "NETWORK_TIMEOUT", true, false},
		{"storage", NewStorageError("record not found", nil), CategoryStorage, "STORAGE_NOT_FOUND", false, false},
		{"workflow graph", NewWorkflowError("graph rejected", nil), CategoryWorkflow, "WORKFLOW_GRAPH", false, false},
		{"workflow transition", NewWorkflowError("illegal transition", nil), CategoryWorkflow, "WORKFLOW_STATE", false, false},
		{"timeout", NewTimeoutError("node deadline", nil), CategoryTimeout, "TIMEOUT_ERROR", true, false},
		{"configuration", NewConfigurationError("key missing", nil), CategoryConfiguration, "CONFIGURATION_ERROR", false, true},
		{"permission", NewPermissionError("workflow is not active", nil), CategoryPermission, "PERMISSION_DENIED", false, true},
		{"resource", NewResourceError("rate limit hit", nil), CategoryResource, "RESOURCE_LIMIT", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, SeverityError, tt.err.Severity)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
			assert.Equal(t, tt.userFacing, tt.err.UserFacing)
			assert.False(t, tt.err.Timestamp.IsZero())
		})
	}
}

func TestDomainError_OptionsAndContext(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewNetworkError("call upstream", cause,
		WithComponent("http-request-node"),
		WithNodeID("fetch"),
		WithExecutionID("exec-1"),
		WithWorkflowID("wf-1"),
		WithOperation("execute"),
		WithDetail("status_code", 502),
		WithRetryable(false),
		WithSeverity(SeverityCritical),
	).WithContext("host", "api.example.com")

	assert.Equal(t, "http-request-node", err.Context.Component)
	assert.Equal(t, "fetch", err.Context.NodeID)
	assert.Equal(t, "exec-1", err.Context.ExecutionID)
	assert.Equal(t, "wf-1", err.Context.WorkflowID)
	assert.Equal(t, "execute", err.Context.Operation)
	assert.Equal(t, 502, err.Context.Details["status_code"])
	assert.Equal(t, "api.example.com", err.Context.Details["host"])
	assert.False(t, err.Retryable)
	assert.Equal(t, SeverityCritical, GetErrorSeverity(err))

	assert.Same(t, cause, errors.Unwrap(err))
	assert.Equal(t, "[network:http-request-node] NETWORK_CONNECTION: call upstream: connection reset", err.Error())

	ctx := GetErrorContext(fmt.Errorf("wrapped: %w", err))
	require.NotNil(t, ctx)
	assert.Equal(t, "fetch", ctx.NodeID)
	assert.True(t, strings.HasSuffix(ctx.File, "errors_test.go"))
	assert.Positive(t, ctx.Line)
}

func TestDomainError_IsMatchesCategory(t *testing.T) {
	err := NewStorageError("write failed", ErrClosed)

	assert.ErrorIs(t, err, NewStorageError("template", nil))
	assert.NotErrorIs(t, err, NewNetworkError("template", nil))
	assert.ErrorIs(t, err, ErrClosed)
	assert.True(t, IsDomainError(fmt.Errorf("outer: %w", err)))
	assert.False(t, IsDomainError(errors.New("plain")))
}

func TestErrorHelpers(t *testing.T) {
	assert.Equal(t, CategoryUnknown, GetErrorCategory(errors.New("plain")))
	assert.Equal(t, CategoryStorage, GetErrorCategory(fmt.Errorf("x: %w", NewStorageError("y", nil))))
	assert.Nil(t, GetErrorContext(errors.New("plain")))
	assert.Equal(t, SeverityError, GetErrorSeverity(errors.New("plain")))

	assert.True(t, IsUserFacingError(NewValidationError("bad", nil)))
	assert.False(t, IsUserFacingError(errors.New("plain")))

	assert.True(t, IsNotFound(NewStorageError("lookup", ErrNotFound)))
	assert.False(t, IsNotFound(NewStorageError("lookup", nil)))
	assert.True(t, IsTimeout(fmt.Errorf("wait: %w", ErrTimeout)))
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable domain", NewNetworkError("x", nil), true},
		{"overridden domain", NewNetworkError("x", nil, WithRetryable(false)), false},
		{"validation", NewValidationError("x", nil), false},
		{"timeout sentinel", fmt.Errorf("op: %w", ErrTimeout), true},
		{"connection sentinel", ErrConnection, true},
		{"temporary message", errors.New("temporary failure in name resolution"), true},
		{"plain", errors.New("bad request"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryableError(tt.err))
		})
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("engine.max_parallelism", ErrInvalidInput)

	assert.Equal(t, "config field engine.max_parallelism: invalid input", err.Error())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGraphError(t *testing.T) {
	tests := []struct {
		err      *GraphError
		sentinel error
		message  string
	}{
		{&GraphError{Kind: GraphErrDanglingEdge, NodeID: "missing"}, ErrDanglingEdge, `graph: edge references missing node "missing"`},
		{&GraphError{Kind: GraphErrDuplicateNode, NodeID: "A"}, ErrDuplicateNode, `graph: duplicate node id "A"`},
		{&GraphError{Kind: GraphErrCycleDetected, Path: []string{"A", "B", "A"}}, ErrCycleDetected, "graph: cycle detected: A -> B -> A"},
		{&GraphError{Kind: GraphErrEmptyWorkflow}, ErrEmptyWorkflow, "graph: workflow has no nodes"},
		{&GraphError{Kind: GraphErrUnknownPort, NodeID: "A", Port: "x"}, ErrUnknownPort, `graph: node "A" has no port "x"`},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.True(t, IsGraphError(fmt.Errorf("build: %w", tt.err)))
		})
	}
}

func TestNodeError(t *testing.T) {
	cause := errors.New("boom")
	err := NewNodeError(NodeErrHandlerFailure, "B", "boom", cause)

	assert.Equal(t, "node B: handler_failure: boom", err.Error())
	assert.ErrorIs(t, err, ErrHandlerFailure)
	assert.ErrorIs(t, err, cause)

	timeout := NewNodeError(NodeErrTimeout, "C", "", nil)
	assert.Equal(t, "node C: timeout", timeout.Error())
	assert.ErrorIs(t, timeout, ErrNodeTimeout)

	ne, ok := AsNodeError(fmt.Errorf("run: %w", timeout))
	require.True(t, ok)
	assert.Equal(t, "C", ne.NodeID)

	_, ok = AsNodeError(errors.New("plain"))
	assert.False(t, ok)
}

func TestCredentialError(t *testing.T) {
	err := NewCredentialError(CredentialErrForbidden, "cred-1", nil)

	assert.Equal(t, "credential cred-1: forbidden", err.Error())
	assert.ErrorIs(t, err, ErrCredentialForbidden)
	assert.NotErrorIs(t, err, ErrCredentialNotFound)
	assert.True(t, IsCredentialError(err))

	decrypt := NewCredentialError(CredentialErrDecrypt, "cred-2", ErrClosed)
	assert.ErrorIs(t, decrypt, ErrCredentialDecrypt)
	assert.ErrorIs(t, decrypt, ErrClosed)
}
