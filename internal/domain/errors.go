package domain

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrTimeout      = errors.New("operation timeout")
	ErrConnection   = errors.New("connection error")
	ErrInvalidInput = errors.New("invalid input")
	ErrClosed       = errors.New("store closed")
)

type ErrorCategory int

const (
	CategoryUnknown ErrorCategory = iota
	CategoryValidation
	CategoryNetwork
	CategoryStorage
	CategoryWorkflow
	CategoryTimeout
	CategoryConfiguration
	CategoryPermission
	CategoryResource
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryNetwork:
		return "network"
	case CategoryStorage:
		return "storage"
	case CategoryWorkflow:
		return "workflow"
	case CategoryTimeout:
		return "timeout"
	case CategoryConfiguration:
		return "configuration"
	case CategoryPermission:
		return "permission"
	case CategoryResource:
		return "resource"
	default:
		return "unknown"
	}
}

type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

func (s ErrorSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

type ErrorContext struct {
	Component   string
	Operation   string
	WorkflowID  string
	ExecutionID string
	NodeID      string
	RequestID   string
	File        string
	Line        int
	Function    string
	Details     map[string]interface{}
}

// DomainError is the categorized error every component returns when it needs
// to carry retry and audience hints to the caller.
type DomainError struct {
	Category   ErrorCategory
	Severity   ErrorSeverity
	Code       string
	Message    string
	Cause      error
	Context    ErrorContext
	Timestamp  time.Time
	Retryable  bool
	UserFacing bool
}

type ErrorOption func(*DomainError)

func WithComponent(component string) ErrorOption {
	return func(e *DomainError) { e.Context.Component = component }
}

func WithOperation(operation string) ErrorOption {
	return func(e *DomainError) { e.Context.Operation = operation }
}

func WithWorkflowID(workflowID string) ErrorOption {
	return func(e *DomainError) { e.Context.WorkflowID = workflowID }
}

func WithExecutionID(executionID string) ErrorOption {
	return func(e *DomainError) { e.Context.ExecutionID = executionID }
}

func WithNodeID(nodeID string) ErrorOption {
	return func(e *DomainError) { e.Context.NodeID = nodeID }
}

func WithDetail(key string, value interface{}) ErrorOption {
	return func(e *DomainError) {
		if e.Context.Details == nil {
			e.Context.Details = make(map[string]interface{})
		}
		e.Context.Details[key] = value
	}
}

func WithSeverity(severity ErrorSeverity) ErrorOption {
	return func(e *DomainError) { e.Severity = severity }
}

func WithRetryable(retryable bool) ErrorOption {
	return func(e *DomainError) { e.Retryable = retryable }
}

func newDomainError(category ErrorCategory, message string, cause error, opts []ErrorOption) *DomainError {
	err := &DomainError{
		Category:   category,
		Severity:   SeverityError,
		Code:       inferErrorCode(category, message),
		Message:    message,
		Cause:      cause,
		Timestamp:  time.Now(),
		Retryable:  defaultRetryable(category),
		UserFacing: defaultUserFacing(category),
	}

	// skip newDomainError and the exported constructor
	if pc, file, line, ok := runtime.Caller(2); ok {
		err.Context.File = file
		err.Context.Line = line
		if fn := runtime.FuncForPC(pc); fn != nil {
			err.Context.Function = fn.Name()
		}
	}

	for _, opt := range opts {
		opt(err)
	}
	return err
}

func NewDomainErrorWithCategory(category ErrorCategory, message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(category, message, cause, opts)
}

func NewValidationError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryValidation, message, cause, opts)
}

func NewNetworkError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryNetwork, message, cause, opts)
}

func NewStorageError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryStorage, message, cause, opts)
}

func NewWorkflowError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryWorkflow, message, cause, opts)
}

func NewTimeoutError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryTimeout, message, cause, opts)
}

func NewConfigurationError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryConfiguration, message, cause, opts)
}

func NewPermissionError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryPermission, message, cause, opts)
}

func NewResourceError(message string, cause error, opts ...ErrorOption) *DomainError {
	return newDomainError(CategoryResource, message, cause, opts)
}

func (e *DomainError) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(e.Category.String())
	if e.Context.Component != "" {
		b.WriteString(":")
		b.WriteString(e.Context.Component)
	}
	b.WriteString("] ")
	b.WriteString(e.Code)
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports category equality so callers can match on a template error.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Category == other.Category
}

func (e *DomainError) WithNodeID(nodeID string) *DomainError {
	e.Context.NodeID = nodeID
	return e
}

func (e *DomainError) WithWorkflowID(workflowID string) *DomainError {
	e.Context.WorkflowID = workflowID
	return e
}

func (e *DomainError) WithExecutionID(executionID string) *DomainError {
	e.Context.ExecutionID = executionID
	return e
}

func (e *DomainError) WithOperation(operation string) *DomainError {
	e.Context.Operation = operation
	return e
}

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	WithDetail(key, value)(e)
	return e
}

func defaultRetryable(category ErrorCategory) bool {
	switch category {
	case CategoryNetwork, CategoryTimeout, CategoryResource:
		return true
	default:
		return false
	}
}

func defaultUserFacing(category ErrorCategory) bool {
	switch category {
	case CategoryValidation, CategoryConfiguration, CategoryPermission:
		return true
	default:
		return false
	}
}

func inferErrorCode(category ErrorCategory, message string) string {
	msg := strings.ToLower(message)
	prefix := strings.ToUpper(category.String())

	switch category {
	case CategoryValidation:
		if strings.Contains(msg, "required") || strings.Contains(msg, "missing") {
			return prefix + "_REQUIRED"
		}
		return prefix + "_INVALID"
	case CategoryNetwork:
		if strings.Contains(msg, "timeout") {
			return prefix + "_TIMEOUT"
		}
		return prefix + "_CONNECTION"
	case CategoryStorage:
		if strings.Contains(msg, "not found") {
			return prefix + "_NOT_FOUND"
		}
		if strings.Contains(msg, "conflict") {
			return prefix + "_CONFLICT"
		}
		return prefix + "_FAILURE"
	case CategoryWorkflow:
		if strings.Contains(msg, "timeout") {
			return prefix + "_TIMEOUT"
		}
		if strings.Contains(msg, "state") || strings.Contains(msg, "transition") {
			return prefix + "_STATE"
		}
		if strings.Contains(msg, "cycle") || strings.Contains(msg, "graph") {
			return prefix + "_GRAPH"
		}
		return prefix + "_EXECUTION"
	case CategoryResource:
		if strings.Contains(msg, "limit") {
			return prefix + "_LIMIT"
		}
		return prefix + "_EXHAUSTED"
	case CategoryPermission:
		return prefix + "_DENIED"
	default:
		return prefix + "_ERROR"
	}
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

func GetErrorCategory(err error) ErrorCategory {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Category
	}
	return CategoryUnknown
}

func GetErrorSeverity(err error) ErrorSeverity {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Severity
	}
	return SeverityError
}

func GetErrorContext(err error) *ErrorContext {
	var de *DomainError
	if errors.As(err, &de) {
		return &de.Context
	}
	return nil
}

func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Retryable
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrConnection) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection") ||
		strings.Contains(msg, "temporar")
}

func IsUserFacingError(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.UserFacing
	}
	return false
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config field %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func NewConfigError(field string, err error) *ConfigError {
	return &ConfigError{
		Field: field,
		Err:   err,
	}
}
