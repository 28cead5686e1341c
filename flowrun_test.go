package flowrun_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/flowrun"
)

const tierWorkflow = `{
  "id": "wf-tier",
  "name": "tier router",
  "userId": "user-1",
  "nodes": [
    {"id": "in", "type": "start"},
    {"id": "check", "type": "condition", "parameters": {"field": "tier", "operator": "equals", "value": "gold"}},
    {"id": "vip", "type": "greet", "parameters": {"greeting": "welcome back"}},
    {"id": "std", "type": "greet", "parameters": {"greeting": "hello"}}
  ],
  "connections": [
    {"source": "in", "target": "check"},
    {"source": "check", "sourceHandle": "true", "target": "vip"},
    {"source": "check", "sourceHandle": "false", "target": "std"}
  ]
}`

type greetParams struct {
	Greeting string `json:"greeting"`
}

func newManager(t *testing.T) *flowrun.Manager {
	t.Helper()

	config, err := flowrun.NewConfigBuilder().
		WithEngineSettings(4, 0, 0).
		WithEncryptionKey("root-test-key").
		Build()
	require.NoError(t, err)

	manager, err := flowrun.NewWithConfig(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	greet := flowrun.TypedNode("greet", func(ctx context.Context, p greetParams, in *flowrun.NodeInput) (*flowrun.NodeResult, error) {
		wc, ok := flowrun.GetWorkflowContext(ctx)
		if !ok {
			return nil, assert.AnError
		}
		return flowrun.MainOutput(map[string]interface{}{"message": p.Greeting, "node": wc.NodeID}), nil
	})
	require.NoError(t, manager.RegisterNode(greet))
	return manager
}

func TestRunParsedDefinition(t *testing.T) {
	manager := newManager(t)
	ctx := context.Background()

	def, err := flowrun.ParseWorkflowDefinition([]byte(tierWorkflow))
	require.NoError(t, err)
	require.NoError(t, manager.SaveWorkflow(ctx, def))

	result, err := manager.Run(ctx, "wf-tier", "user-1", map[string]interface{}{"tier": "gold"})
	require.NoError(t, err)
	assert.Equal(t, flowrun.ExecutionStatusSuccess, result.Status)
	require.Contains(t, result.OutputData, "vip")
	assert.Equal(t, map[string]interface{}{"message": "welcome back", "node": "vip"}, result.OutputData["vip"]["main"])
	assert.NotContains(t, result.OutputData, "std")

	record, err := manager.GetExecution(ctx, result.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, flowrun.NodeStatus("skipped"), record.Nodes["std"].Status)
}

func TestRunUnknownWorkflow(t *testing.T) {
	manager := newManager(t)

	_, err := manager.Run(context.Background(), "missing", "user-1", nil)
	assert.ErrorIs(t, err, flowrun.ErrWorkflowNotFound)
}

func TestConfigBuilderValidates(t *testing.T) {
	_, err := flowrun.NewConfigBuilder().WithEngineSettings(0, 0, 0).Build()
	require.Error(t, err)

	var cfgErr *flowrun.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "engine.max_parallelism", cfgErr.Field)
}

func TestParseConfig(t *testing.T) {
	config, err := flowrun.ParseConfig([]byte(`
engine:
  max_parallelism: 3
  error_mode: continue
storage:
  backend: badger
  in_memory: true
`))
	require.NoError(t, err)
	assert.Equal(t, 3, config.Engine.MaxParallelism)
	assert.Equal(t, flowrun.ErrorModeContinue, config.Engine.ErrorMode)
	assert.Equal(t, flowrun.StorageBadger, config.Storage.Backend)
	assert.Equal(t, 50, config.Storage.ListLimit)
}
