package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/flowrun/internal/domain"
)

func TestNodeMachine_HappyPath(t *testing.T) {
	m := newNodeMachine("A")
	assert.Equal(t, domain.NodeStatusPending, m.Status())

	require.NoError(t, m.Fire(triggerReady))
	require.NoError(t, m.Fire(triggerStart))
	require.NoError(t, m.Fire(triggerSucceed))

	assert.Equal(t, domain.NodeStatusSucceeded, m.Status())
	assert.True(t, m.Terminal())
}

func TestNodeMachine_LegalShortcuts(t *testing.T) {
	tests := []struct {
		name     string
		triggers []nodeTrigger
		want     domain.NodeStatus
	}{
		{"skip while pending", []nodeTrigger{triggerSkip}, domain.NodeStatusSkipped},
		{"skip while ready", []nodeTrigger{triggerReady, triggerSkip}, domain.NodeStatusSkipped},
		{"fail before start", []nodeTrigger{triggerReady, triggerFail}, domain.NodeStatusFailed},
		{"fail while running", []nodeTrigger{triggerReady, triggerStart, triggerFail}, domain.NodeStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newNodeMachine("A")
			for _, trigger := range tt.triggers {
				require.NoError(t, m.Fire(trigger))
			}
			assert.Equal(t, tt.want, m.Status())
		})
	}
}

func TestNodeMachine_RejectsIllegalTransitions(t *testing.T) {
	tests := []struct {
		name     string
		setup    []nodeTrigger
		rejected nodeTrigger
	}{
		{"start while pending", nil, triggerStart},
		{"succeed while ready", []nodeTrigger{triggerReady}, triggerSucceed},
		{"skip while running", []nodeTrigger{triggerReady, triggerStart}, triggerSkip},
		{"fail after success", []nodeTrigger{triggerReady, triggerStart, triggerSucceed}, triggerFail},
		{"ready after skip", []nodeTrigger{triggerSkip}, triggerReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newNodeMachine("A")
			for _, trigger := range tt.setup {
				require.NoError(t, m.Fire(trigger))
			}
			before := m.Status()

			err := m.Fire(tt.rejected)
			require.Error(t, err)
			assert.Equal(t, domain.CategoryWorkflow, domain.GetErrorCategory(err))
			assert.Equal(t, before, m.Status())
		})
	}
}
