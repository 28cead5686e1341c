package events

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/eleven-am/flowrun/internal/domain"
)

// Manager fans lifecycle events out to in-process subscribers. Handlers run on
// their own goroutine so a slow or panicking subscriber never stalls a run.
type Manager struct {
	logger *slog.Logger
	wg     sync.WaitGroup

	mu                        sync.RWMutex
	workflowStartedHandlers   []func(*domain.WorkflowStartedEvent)
	workflowCompletedHandlers []func(*domain.WorkflowCompletedEvent)
	workflowFailedHandlers    []func(*domain.WorkflowErrorEvent)
	workflowCancelledHandlers []func(*domain.WorkflowCancelledEvent)
	nodeStartedHandlers       []func(*domain.NodeStartedEvent)
	nodeCompletedHandlers     []func(*domain.NodeCompletedEvent)
	nodeErrorHandlers         []func(*domain.NodeErrorEvent)
	nodeSkippedHandlers       []func(*domain.NodeSkippedEvent)
	genericHandlers           []genericSubscription
}

type genericSubscription struct {
	id      string
	pattern string
	handler func(string, interface{})
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		logger: logger.With("component", "event-manager"),
	}
}

func (m *Manager) PublishWorkflowStarted(event *domain.WorkflowStartedEvent) {
	dispatch(m, &m.workflowStartedHandlers, event)
	m.notifyGenericHandlers(workflowKey(event.ExecutionID, "started"), event)
}

func (m *Manager) PublishWorkflowCompleted(event *domain.WorkflowCompletedEvent) {
	dispatch(m, &m.workflowCompletedHandlers, event)
	m.notifyGenericHandlers(workflowKey(event.ExecutionID, "completed"), event)
}

func (m *Manager) PublishWorkflowFailed(event *domain.WorkflowErrorEvent) {
	dispatch(m, &m.workflowFailedHandlers, event)
	m.notifyGenericHandlers(workflowKey(event.ExecutionID, "failed"), event)
}

func (m *Manager) PublishWorkflowCancelled(event *domain.WorkflowCancelledEvent) {
	dispatch(m, &m.workflowCancelledHandlers, event)
	m.notifyGenericHandlers(workflowKey(event.ExecutionID, "cancelled"), event)
}

func (m *Manager) PublishNodeStarted(event *domain.NodeStartedEvent) {
	dispatch(m, &m.nodeStartedHandlers, event)
	m.notifyGenericHandlers(nodeKey(event.ExecutionID, event.NodeID, "started"), event)
}

func (m *Manager) PublishNodeCompleted(event *domain.NodeCompletedEvent) {
	dispatch(m, &m.nodeCompletedHandlers, event)
	m.notifyGenericHandlers(nodeKey(event.ExecutionID, event.NodeID, "completed"), event)
}

func (m *Manager) PublishNodeError(event *domain.NodeErrorEvent) {
	dispatch(m, &m.nodeErrorHandlers, event)
	m.notifyGenericHandlers(nodeKey(event.ExecutionID, event.NodeID, "error"), event)
}

func (m *Manager) PublishNodeSkipped(event *domain.NodeSkippedEvent) {
	dispatch(m, &m.nodeSkippedHandlers, event)
	m.notifyGenericHandlers(nodeKey(event.ExecutionID, event.NodeID, "skipped"), event)
}

func (m *Manager) OnWorkflowStarted(handler func(*domain.WorkflowStartedEvent)) error {
	return subscribe(m, &m.workflowStartedHandlers, handler)
}

func (m *Manager) OnWorkflowCompleted(handler func(*domain.WorkflowCompletedEvent)) error {
	return subscribe(m, &m.workflowCompletedHandlers, handler)
}

func (m *Manager) OnWorkflowFailed(handler func(*domain.WorkflowErrorEvent)) error {
	return subscribe(m, &m.workflowFailedHandlers, handler)
}

func (m *Manager) OnWorkflowCancelled(handler func(*domain.WorkflowCancelledEvent)) error {
	return subscribe(m, &m.workflowCancelledHandlers, handler)
}

func (m *Manager) OnNodeStarted(handler func(*domain.NodeStartedEvent)) error {
	return subscribe(m, &m.nodeStartedHandlers, handler)
}

func (m *Manager) OnNodeCompleted(handler func(*domain.NodeCompletedEvent)) error {
	return subscribe(m, &m.nodeCompletedHandlers, handler)
}

func (m *Manager) OnNodeError(handler func(*domain.NodeErrorEvent)) error {
	return subscribe(m, &m.nodeErrorHandlers, handler)
}

func (m *Manager) OnNodeSkipped(handler func(*domain.NodeSkippedEvent)) error {
	return subscribe(m, &m.nodeSkippedHandlers, handler)
}

// Subscribe registers a handler for event keys matching pattern. Keys look like
// workflow:<execution>:<event> and node:<execution>:<node>:<event>; a
// trailing * matches any suffix. It returns an id for Unsubscribe.
func (m *Manager) Subscribe(pattern string, handler func(string, interface{})) (string, error) {
	if handler == nil {
		return "", domain.NewValidationError("event handler is nil", domain.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sub := genericSubscription{
		id:      uuid.New().String(),
		pattern: pattern,
		handler: handler,
	}
	m.genericHandlers = append(m.genericHandlers, sub)
	return sub.id, nil
}

func (m *Manager) Unsubscribe(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filtered := m.genericHandlers[:0]
	found := false
	for _, sub := range m.genericHandlers {
		if sub.id == id {
			found = true
			continue
		}
		filtered = append(filtered, sub)
	}
	m.genericHandlers = filtered

	if !found {
		return domain.NewResourceError("subscription not found", domain.ErrNotFound, domain.WithDetail("subscription_id", id))
	}
	return nil
}

// Wait blocks until every handler dispatched so far has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func subscribe[E any](m *Manager, handlers *[]func(*E), handler func(*E)) error {
	if handler == nil {
		return domain.NewValidationError("event handler is nil", domain.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	*handlers = append(*handlers, handler)
	return nil
}

func dispatch[E any](m *Manager, registered *[]func(*E), event *E) {
	m.mu.RLock()
	handlers := make([]func(*E), len(*registered))
	copy(handlers, *registered)
	m.mu.RUnlock()

	for _, handler := range handlers {
		handler := handler
		m.goSafe(func() { handler(event) })
	}
}

func (m *Manager) notifyGenericHandlers(key string, eventData interface{}) {
	m.mu.RLock()
	var matchingHandlers []func(string, interface{})
	for _, sub := range m.genericHandlers {
		if m.patternMatches(sub.pattern, key) {
			matchingHandlers = append(matchingHandlers, sub.handler)
		}
	}
	m.mu.RUnlock()

	for _, handler := range matchingHandlers {
		handler := handler
		m.goSafe(func() { handler(key, eventData) })
	}
}

func (m *Manager) patternMatches(pattern, key string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(key, prefix)
	}
	return pattern == key
}

func (m *Manager) goSafe(fn func()) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("event handler panicked", "panic", r)
			}
		}()
		fn()
	}()
}

func workflowKey(executionID, event string) string {
	return fmt.Sprintf("workflow:%s:%s", executionID, event)
}

func nodeKey(executionID, nodeID, event string) string {
	return fmt.Sprintf("node:%s:%s:%s", executionID, nodeID, event)
}
