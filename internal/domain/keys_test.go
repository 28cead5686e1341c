package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowExecutionIndexKey_NewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	older := WorkflowExecutionIndexKey("wf-1", base, "exec-1")
	newer := WorkflowExecutionIndexKey("wf-1", base.Add(time.Second), "exec-2")

	assert.Less(t, newer, older)
	assert.True(t, strings.HasPrefix(older, WorkflowExecutionIndexPrefix("wf-1")))
	assert.True(t, strings.HasSuffix(older, ":exec-1"))
}

func TestWorkflowExecutionIndexPrefix_DoesNotOverlap(t *testing.T) {
	now := time.Now()
	ids := []string{"a", "a:0", "a:", "ab", "1:a", ""}

	for _, id := range ids {
		for _, other := range ids {
			if id == other {
				continue
			}
			key := WorkflowExecutionIndexKey(other, now, "exec-1")
			assert.False(t, strings.HasPrefix(key, WorkflowExecutionIndexPrefix(id)),
				"index key of %q matched prefix of %q", other, id)
		}
	}
}
