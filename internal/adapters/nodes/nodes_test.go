package nodes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/flowrun/internal/adapters/node_registry"
	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
)

func run(t *testing.T, node ports.NodePort, inputs domain.Payload, params map[string]interface{}) (*ports.NodeResult, error) {
	t.Helper()
	return node.Execute(context.Background(), &ports.NodeInput{
		NodeID:     "n1",
		NodeType:   node.GetName(),
		Inputs:     inputs,
		Parameters: params,
	})
}

func TestRegisterBuiltins(t *testing.T) {
	registry := node_registry.NewAdapter(nil)
	require.NoError(t, RegisterBuiltins(registry, domain.HTTPConfig{}, nil))

	for _, nodeType := range []string{TypeStart, TypeEcho, TypeNoop, TypeEnd, TypeSet, TypeCondition,
		TypeSwitch, TypeMerge, TypeDelay, TypeHTTPRequest, TypeFail} {
		assert.True(t, registry.HasNode(nodeType), nodeType)
	}

	err := RegisterBuiltins(registry, domain.HTTPConfig{}, nil)
	assert.Error(t, err)
}

func TestPassthrough(t *testing.T) {
	t.Run("main only is unwrapped", func(t *testing.T) {
		result, err := run(t, newPassthrough(TypeEcho), domain.Payload{"main": map[string]interface{}{"x": 1}}, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"x": 1}, result.Outputs["main"])
	})

	t.Run("several ports forwarded as object", func(t *testing.T) {
		result, err := run(t, newPassthrough(TypeNoop), domain.Payload{"left": 1, "right": 2}, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"left": 1, "right": 2}, result.Outputs["main"])
	})

	t.Run("no input", func(t *testing.T) {
		result, err := run(t, newPassthrough(TypeEnd), nil, nil)
		require.NoError(t, err)
		assert.Contains(t, result.Outputs, "main")
		assert.Nil(t, result.Outputs["main"])
	})
}

func TestSetNode(t *testing.T) {
	input := domain.Payload{"main": map[string]interface{}{"a": 1, "nested": map[string]interface{}{"x": 1}}}

	result, err := run(t, newSetNode(), input, map[string]interface{}{
		"values": map[string]interface{}{"b": "two", "nested": map[string]interface{}{"y": 2}},
	})
	require.NoError(t, err)

	out := result.Outputs["main"].(map[string]interface{})
	assert.Equal(t, 1, out["a"])
	assert.Equal(t, "two", out["b"])
	assert.Equal(t, map[string]interface{}{"x": 1, "y": float64(2)}, out["nested"])

	original := input["main"].(map[string]interface{})
	assert.NotContains(t, original, "b")

	result, err = run(t, newSetNode(), input, map[string]interface{}{
		"values":      map[string]interface{}{"only": true},
		"keepOnlySet": true,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"only": true}, result.Outputs["main"])
}

func TestMergeNode(t *testing.T) {
	result, err := run(t, newMergeNode(), domain.Payload{
		"b": map[string]interface{}{"k": "b", "fromB": true},
		"a": map[string]interface{}{"k": "a", "fromA": true},
		"c": 3,
	}, nil)
	require.NoError(t, err)

	out := result.Outputs["main"].(map[string]interface{})
	assert.Equal(t, "b", out["k"])
	assert.Equal(t, true, out["fromA"])
	assert.Equal(t, true, out["fromB"])
	assert.Equal(t, 3, out["c"])
}

func TestConditionNode(t *testing.T) {
	tests := []struct {
		name   string
		input  interface{}
		params map[string]interface{}
		port   string
	}{
		{"equals true", map[string]interface{}{"status": "ok"}, map[string]interface{}{"field": "status", "operator": "equals", "value": "ok"}, PortTrue},
		{"equals false", map[string]interface{}{"status": "bad"}, map[string]interface{}{"field": "status", "operator": "equals", "value": "ok"}, PortFalse},
		{"numeric equality across types", map[string]interface{}{"n": 3}, map[string]interface{}{"field": "n", "value": 3}, PortTrue},
		{"greater than", map[string]interface{}{"n": 10}, map[string]interface{}{"field": "n", "operator": "greater_than", "value": 5}, PortTrue},
		{"less than", map[string]interface{}{"n": 10}, map[string]interface{}{"field": "n", "operator": "less_than", "value": 5}, PortFalse},
		{"exists missing", map[string]interface{}{}, map[string]interface{}{"field": "missing", "operator": "exists"}, PortFalse},
		{"nested path", map[string]interface{}{"a": map[string]interface{}{"b": []interface{}{"x", "y"}}}, map[string]interface{}{"field": "a.b.1", "value": "y"}, PortTrue},
		{"contains string", map[string]interface{}{"s": "hello world"}, map[string]interface{}{"field": "s", "operator": "contains", "value": "world"}, PortTrue},
		{"not equals missing", map[string]interface{}{}, map[string]interface{}{"field": "s", "operator": "not_equals", "value": "x"}, PortTrue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := run(t, newConditionNode(), domain.Payload{"main": tt.input}, tt.params)
			require.NoError(t, err)
			require.Len(t, result.Outputs, 1)
			assert.Contains(t, result.Outputs, tt.port)
			assert.Equal(t, tt.input, result.Outputs[tt.port])
		})
	}
}

func TestConditionNode_Errors(t *testing.T) {
	_, err := run(t, newConditionNode(), domain.Payload{"main": map[string]interface{}{"n": "x"}},
		map[string]interface{}{"field": "n", "operator": "greater_than", "value": 1})
	require.Error(t, err)

	_, err = run(t, newConditionNode(), domain.Payload{"main": map[string]interface{}{}},
		map[string]interface{}{"operator": "bogus"})
	require.Error(t, err)
	assert.Equal(t, domain.CategoryValidation, domain.GetErrorCategory(err))
}

func TestSwitchNode(t *testing.T) {
	params := map[string]interface{}{"field": "kind", "cases": []interface{}{"a", "b"}}

	result, err := run(t, newSwitchNode(), domain.Payload{"main": map[string]interface{}{"kind": "b"}}, params)
	require.NoError(t, err)
	assert.Contains(t, result.Outputs, "b")

	result, err = run(t, newSwitchNode(), domain.Payload{"main": map[string]interface{}{"kind": "z"}}, params)
	require.NoError(t, err)
	assert.Contains(t, result.Outputs, PortDefault)

	result, err = run(t, newSwitchNode(), domain.Payload{"main": map[string]interface{}{}},
		map[string]interface{}{"field": "kind", "default": "other"})
	require.NoError(t, err)
	assert.Contains(t, result.Outputs, "other")
}

func TestDelayNode(t *testing.T) {
	start := time.Now()
	result, err := run(t, newDelayNode(), domain.Payload{"main": "v"}, map[string]interface{}{"duration": 20})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, "v", result.Outputs["main"])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newDelayNode().Execute(ctx, &ports.NodeInput{Parameters: map[string]interface{}{"duration": "1h"}})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = run(t, newDelayNode(), nil, map[string]interface{}{"duration": "soon"})
	assert.Error(t, err)
}

func TestFailNode(t *testing.T) {
	_, err := run(t, newFailNode(), nil, map[string]interface{}{"message": "boom"})
	require.EqualError(t, err, "boom")

	_, err = run(t, newFailNode(), nil, nil)
	require.EqualError(t, err, "node n1 failed")
}
