package engine

import (
	"fmt"

	"github.com/qmuntal/stateless"

	"github.com/eleven-am/flowrun/internal/domain"
)

type nodeTrigger string

const (
	triggerReady   nodeTrigger = "ready"
	triggerStart   nodeTrigger = "start"
	triggerSucceed nodeTrigger = "succeed"
	triggerFail    nodeTrigger = "fail"
	triggerSkip    nodeTrigger = "skip"
)

// nodeMachine guards the lifecycle of one node within a run:
// pending -> ready -> running -> succeeded|failed, with skips allowed before
// the node starts. Input validation failures move ready -> failed directly.
type nodeMachine struct {
	id  string
	fsm *stateless.StateMachine
}

func newNodeMachine(id string) *nodeMachine {
	fsm := stateless.NewStateMachine(domain.NodeStatusPending)

	fsm.Configure(domain.NodeStatusPending).
		Permit(triggerReady, domain.NodeStatusReady).
		Permit(triggerSkip, domain.NodeStatusSkipped)

	fsm.Configure(domain.NodeStatusReady).
		Permit(triggerStart, domain.NodeStatusRunning).
		Permit(triggerFail, domain.NodeStatusFailed).
		Permit(triggerSkip, domain.NodeStatusSkipped)

	fsm.Configure(domain.NodeStatusRunning).
		Permit(triggerSucceed, domain.NodeStatusSucceeded).
		Permit(triggerFail, domain.NodeStatusFailed)

	fsm.Configure(domain.NodeStatusSucceeded)
	fsm.Configure(domain.NodeStatusFailed)
	fsm.Configure(domain.NodeStatusSkipped)

	return &nodeMachine{id: id, fsm: fsm}
}

func (m *nodeMachine) Status() domain.NodeStatus {
	return m.fsm.MustState().(domain.NodeStatus)
}

func (m *nodeMachine) Fire(trigger nodeTrigger) error {
	if err := m.fsm.Fire(trigger); err != nil {
		return domain.NewWorkflowError(
			fmt.Sprintf("illegal transition %s from %s", trigger, m.Status()),
			err,
			domain.WithComponent(schedulerComponent),
			domain.WithNodeID(m.id),
		)
	}
	return nil
}

func (m *nodeMachine) Terminal() bool {
	return m.Status().IsTerminal()
}
