package engine

import (
	"context"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/eleven-am/flowrun/internal/domain"
)

type edgeState uint8

const (
	edgeUnresolved edgeState = iota
	edgeActive
	edgeBranchNotTaken
	edgeUpstreamFailed
)

// scheduler is the single coordinator of one run. Only the coordinator
// goroutine touches its fields; workers talk back through completions.
type scheduler struct {
	engine   *Engine
	graph    *domain.ExecutionGraph
	input    map[string]interface{}
	opts     domain.RunOptions
	recorder *Recorder
	logger   *slog.Logger

	machines     map[string]*nodeMachine
	policies     map[string]attemptPolicy
	pendingEdges map[string]int
	edges        map[int]edgeState
	outputs      map[string]domain.Payload
	inputs       map[string]domain.Payload

	resolvable []string
	readyQueue []string
	running    int

	sem         *semaphore.Weighted
	completions chan nodeOutcome

	stopping  bool
	cancelled bool
	firstErr  error
}

func newScheduler(e *Engine, graph *domain.ExecutionGraph, input map[string]interface{}, opts domain.RunOptions) *scheduler {
	s := &scheduler{
		engine:       e,
		graph:        graph,
		input:        input,
		opts:         opts,
		recorder:     NewRecorder(opts.ExecutionID, opts.WorkflowID, opts.UserID, opts.TriggerType, input),
		logger:       e.logger.With("execution_id", opts.ExecutionID, "workflow_id", opts.WorkflowID),
		machines:     make(map[string]*nodeMachine, graph.Size()),
		policies:     make(map[string]attemptPolicy, graph.Size()),
		pendingEdges: make(map[string]int, graph.Size()),
		edges:        make(map[int]edgeState),
		outputs:      make(map[string]domain.Payload),
		inputs:       make(map[string]domain.Payload),
		sem:          semaphore.NewWeighted(int64(opts.MaxParallelism)),
		completions:  make(chan nodeOutcome, graph.Size()),
	}

	for _, id := range graph.Order {
		node := graph.Nodes[id]
		s.machines[id] = newNodeMachine(id)
		s.policies[id] = e.policyFor(node.Definition, opts)
		s.pendingEdges[id] = len(node.InEdges)
		for _, edge := range node.InEdges {
			s.edges[edge.Index] = edgeUnresolved
		}
	}

	return s
}

func (s *scheduler) run(ctx context.Context) *domain.ExecutionRecord {
	if err := s.recorder.Start(); err != nil {
		s.logger.Error("failed to start record", "error", err)
	}
	for _, id := range s.graph.Order {
		s.recorder.RegisterNode(id, s.graph.Nodes[id].Definition.Type)
	}

	s.engine.metrics.IncrementExecutionsStarted()
	s.publishStarted()

	s.resolvable = append(s.resolvable, s.graph.Sources...)

	done := ctx.Done()
	for {
		if !s.cancelled && ctx.Err() != nil {
			s.cancel()
			done = nil
		}

		s.drain()
		s.dispatch(ctx)

		if len(s.resolvable) > 0 {
			continue
		}
		if s.running == 0 {
			break
		}

		select {
		case outcome := <-s.completions:
			s.complete(outcome)
		case <-done:
			s.cancel()
			done = nil
		}
	}

	for _, id := range s.graph.Order {
		if !s.machines[id].Terminal() {
			s.skip(id, domain.SkipReasonStopped)
		}
	}

	return s.finalize()
}

// drain evaluates every node whose incoming edges have all resolved.
func (s *scheduler) drain() {
	for len(s.resolvable) > 0 {
		id := s.resolvable[0]
		s.resolvable = s.resolvable[1:]
		if s.machines[id].Status() != domain.NodeStatusPending {
			continue
		}
		s.evaluate(id)
	}
}

func (s *scheduler) evaluate(id string) {
	if s.cancelled {
		s.skip(id, domain.SkipReasonCancelled)
		return
	}
	if s.stopping {
		s.skip(id, domain.SkipReasonStopped)
		return
	}

	input, reason, err := s.composeInput(id)
	if reason != domain.SkipReasonNone {
		s.skip(id, reason)
		return
	}

	s.transition(id, triggerReady)
	s.inputs[id] = input
	if recErr := s.recorder.RecordReady(id, input); recErr != nil {
		s.logger.Warn("failed to record ready node", "node_id", id, "error", recErr)
	}

	if err != nil {
		s.failWithoutRunning(id, err)
		return
	}

	s.readyQueue = append(s.readyQueue, id)
}

// composeInput gathers the values on every active incoming edge by target port.
// It returns a skip reason when the node cannot run because of its upstream,
// or a MissingInput error when a required port has nothing connected to it.
func (s *scheduler) composeInput(id string) (domain.Payload, domain.SkipReason, error) {
	node := s.graph.Nodes[id]
	input := domain.Payload{}

	if len(node.InEdges) == 0 {
		input[domain.DefaultPort] = copyInput(s.input)
	} else {
		anyActive, anyFailed := false, false
		for _, edge := range node.InEdges {
			switch s.edges[edge.Index] {
			case edgeActive:
				anyActive = true
			case edgeUpstreamFailed:
				anyFailed = true
			}
		}
		if !anyActive {
			if anyFailed {
				return nil, domain.SkipReasonUpstreamFailed, nil
			}
			return nil, domain.SkipReasonBranchNotTaken, nil
		}

		values := make(map[string][]interface{})
		var order []string
		for _, edge := range node.InEdges {
			if s.edges[edge.Index] != edgeActive {
				continue
			}
			if _, seen := values[edge.TargetPort]; !seen {
				order = append(order, edge.TargetPort)
			}
			values[edge.TargetPort] = append(values[edge.TargetPort], s.outputs[edge.Source][edge.SourcePort])
		}
		for _, port := range order {
			merged, err := domain.MergePortValues(values[port])
			if err != nil {
				return input, domain.SkipReasonNone, domain.NewNodeError(domain.NodeErrHandlerFailure, id, "merge input port "+port, err)
			}
			input[port] = merged
		}
	}

	var missing error
	for _, port := range s.graph.InputPorts(id) {
		if !port.Required {
			continue
		}

		connected, active, failed := false, false, false
		for _, edge := range node.InEdges {
			if edge.TargetPort != port.ID {
				continue
			}
			connected = true
			switch s.edges[edge.Index] {
			case edgeActive:
				active = true
			case edgeUpstreamFailed:
				failed = true
			}
		}

		switch {
		case failed:
			return nil, domain.SkipReasonUpstreamFailed, nil
		case connected && !active:
			return nil, domain.SkipReasonBranchNotTaken, nil
		case !connected:
			if _, ok := input[port.ID]; !ok && missing == nil {
				missing = domain.NewNodeError(domain.NodeErrMissingInput, id, "required port "+port.ID+" has no value", nil)
			}
		}
	}

	return input, domain.SkipReasonNone, missing
}

func (s *scheduler) dispatch(ctx context.Context) {
	for len(s.readyQueue) > 0 && !s.stopping && !s.cancelled {
		id := s.readyQueue[0]
		node := s.graph.Nodes[id].Definition

		handler, err := s.engine.registry.GetNode(node.Type)
		if err != nil {
			s.readyQueue = s.readyQueue[1:]
			s.failWithoutRunning(id, domain.NewNodeError(domain.NodeErrUnknownNodeType, id, node.Type, err))
			continue
		}

		if !s.sem.TryAcquire(1) {
			return
		}
		s.readyQueue = s.readyQueue[1:]

		s.transition(id, triggerStart)
		if recErr := s.recorder.RecordNodeStart(id); recErr != nil {
			s.logger.Warn("failed to record node start", "node_id", id, "error", recErr)
		}
		s.engine.metrics.IncrementNodesExecuted()
		s.publishNodeStarted(node)

		task := nodeTask{
			ExecutionID: s.opts.ExecutionID,
			WorkflowID:  s.opts.WorkflowID,
			UserID:      s.opts.UserID,
			Node:        node,
			Input:       s.inputs[id],
			Handler:     handler,
			Policy:      s.policies[id],
		}

		s.running++
		go func() {
			s.completions <- s.engine.executor.Execute(ctx, task, s.recorder)
		}()
	}
}

func (s *scheduler) complete(outcome nodeOutcome) {
	s.sem.Release(1)
	s.running--

	id := outcome.NodeID
	if s.cancelled {
		err := outcome.Err
		if err == nil {
			err = domain.NewNodeError(domain.NodeErrHandlerFailure, id, domain.ErrCancelled.Error(), domain.ErrCancelled)
		}
		s.transition(id, triggerFail)
		s.recordEnd(id, nil, outcome.Attempts, err)
		return
	}

	if outcome.Err != nil {
		s.transition(id, triggerFail)
		s.recordEnd(id, nil, outcome.Attempts, outcome.Err)
		s.engine.metrics.IncrementNodesFailed()
		s.publishNodeError(id, outcome.Err, outcome.Attempts, outcome.Duration)
		s.handleFailure(id, outcome.Err)
		return
	}

	output := domain.Payload{}
	if outcome.Result != nil && outcome.Result.Outputs != nil {
		output = outcome.Result.Outputs.Clone()
	}

	s.transition(id, triggerSucceed)
	s.outputs[id] = output
	s.recordEnd(id, output, outcome.Attempts, nil)
	s.engine.metrics.IncrementNodesSucceeded()
	s.publishNodeCompleted(id, output, outcome.Duration)

	for _, edge := range s.graph.Nodes[id].OutEdges {
		state := edgeBranchNotTaken
		if _, fired := output[edge.SourcePort]; fired {
			state = edgeActive
		}
		s.resolveEdge(edge, state)
	}
}

// failWithoutRunning fails a ready node that never reached a handler.
func (s *scheduler) failWithoutRunning(id string, err error) {
	s.transition(id, triggerFail)
	s.recordEnd(id, nil, 0, err)
	s.engine.metrics.IncrementNodesFailed()
	s.publishNodeError(id, err, 0, 0)
	s.handleFailure(id, err)
}

func (s *scheduler) handleFailure(id string, err error) {
	if s.firstErr == nil {
		s.firstErr = err
	}

	s.logger.Warn("node failed", append([]any{"node_id", id, "error_mode", s.policies[id].ErrorMode}, errorLogAttrs(err)...)...)

	if s.policies[id].ErrorMode == domain.ErrorModeContinue {
		for _, edge := range s.graph.Nodes[id].OutEdges {
			s.resolveEdge(edge, edgeUpstreamFailed)
		}
		return
	}

	s.stopping = true
	s.readyQueue = nil
	s.resolvable = nil
	for _, nodeID := range s.graph.Order {
		switch s.machines[nodeID].Status() {
		case domain.NodeStatusPending, domain.NodeStatusReady:
			s.skip(nodeID, domain.SkipReasonStopped)
		}
	}
}

func (s *scheduler) cancel() {
	if s.cancelled {
		return
	}
	s.cancelled = true
	s.readyQueue = nil
	s.resolvable = nil

	s.logger.Info("execution cancelled", "running_nodes", s.running)

	for _, id := range s.graph.Order {
		switch s.machines[id].Status() {
		case domain.NodeStatusPending, domain.NodeStatusReady:
			s.skip(id, domain.SkipReasonCancelled)
		}
	}
}

func (s *scheduler) skip(id string, reason domain.SkipReason) {
	if s.machines[id].Terminal() {
		return
	}

	s.transition(id, triggerSkip)
	if err := s.recorder.RecordSkipped(id, reason); err != nil {
		s.logger.Warn("failed to record skipped node", "node_id", id, "error", err)
	}
	s.engine.metrics.IncrementNodesSkipped()
	s.publishNodeSkipped(id, reason)

	state := edgeBranchNotTaken
	if reason.IsFailure() {
		state = edgeUpstreamFailed
	}
	for _, edge := range s.graph.Nodes[id].OutEdges {
		s.resolveEdge(edge, state)
	}
}

func (s *scheduler) resolveEdge(edge domain.Edge, state edgeState) {
	if s.edges[edge.Index] != edgeUnresolved {
		return
	}
	s.edges[edge.Index] = state
	s.pendingEdges[edge.Target]--

	if s.pendingEdges[edge.Target] == 0 && s.machines[edge.Target].Status() == domain.NodeStatusPending {
		s.resolvable = append(s.resolvable, edge.Target)
	}
}

func (s *scheduler) transition(id string, trigger nodeTrigger) {
	if err := s.machines[id].Fire(trigger); err != nil {
		s.logger.Error("node state machine rejected transition", "node_id", id, "trigger", string(trigger), "error", err)
	}
}

func (s *scheduler) recordEnd(id string, output domain.Payload, attempts int, err error) {
	if recErr := s.recorder.RecordNodeEnd(id, output, attempts, err); recErr != nil {
		s.logger.Warn("failed to record node end", "node_id", id, "error", recErr)
	}
}

func (s *scheduler) finalize() *domain.ExecutionRecord {
	status := domain.ExecutionStatusSuccess
	var runErr error

	var failed, succeeded []string
	for _, id := range s.graph.Order {
		switch s.machines[id].Status() {
		case domain.NodeStatusFailed:
			failed = append(failed, id)
		case domain.NodeStatusSucceeded:
			succeeded = append(succeeded, id)
		}
	}

	switch {
	case s.cancelled:
		status = domain.ExecutionStatusCancelled
		runErr = domain.ErrCancelled
	case len(failed) > 0:
		status = domain.ExecutionStatusFailed
		runErr = s.firstErr
	}

	output := make(map[string]domain.Payload)
	for _, id := range s.graph.Sinks {
		if s.machines[id].Status() == domain.NodeStatusSucceeded {
			output[id] = s.outputs[id]
		}
	}

	record, err := s.recorder.Finalize(status, output, runErr)
	if err != nil {
		s.logger.Error("failed to finalize record", "error", err)
		record = s.recorder.Snapshot()
	}

	s.engine.metrics.RecordExecutionFinished(status)
	s.logger.Info("execution finished",
		"status", string(status),
		"duration", record.Duration(),
		"succeeded_nodes", len(succeeded),
		"failed_nodes", len(failed))

	switch status {
	case domain.ExecutionStatusSuccess:
		s.publishCompleted(record, succeeded)
	case domain.ExecutionStatusFailed:
		s.publishFailed(record, failed)
	case domain.ExecutionStatusCancelled:
		s.publishCancelled(record)
	}

	return record
}

func copyInput(input map[string]interface{}) map[string]interface{} {
	if input == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(input))
	for k, v := range input {
		out[k] = v
	}
	return out
}
