package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergePortValues(t *testing.T) {
	tests := []struct {
		name     string
		values   []interface{}
		expected interface{}
	}{
		{
			name:     "no values",
			values:   nil,
			expected: nil,
		},
		{
			name:     "single value is delivered as is",
			values:   []interface{}{42},
			expected: 42,
		},
		{
			name: "objects merge with later keys winning",
			values: []interface{}{
				map[string]interface{}{"name": "John", "age": 30},
				map[string]interface{}{"age": 31, "city": "NYC"},
			},
			expected: map[string]interface{}{"name": "John", "age": 31, "city": "NYC"},
		},
		{
			name:     "scalars are collected into a list",
			values:   []interface{}{1, "two", 3.0},
			expected: []interface{}{1, "two", 3.0},
		},
		{
			name: "mixed object and scalar become a list",
			values: []interface{}{
				map[string]interface{}{"a": 1},
				"b",
			},
			expected: []interface{}{map[string]interface{}{"a": 1}, "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MergePortValues(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMergePortValues_DoesNotMutateInputs(t *testing.T) {
	first := map[string]interface{}{"user": map[string]interface{}{"name": "John"}}
	second := map[string]interface{}{"user": map[string]interface{}{"name": "Jane"}, "extra": true}

	merged, err := MergePortValues([]interface{}{first, second})
	require.NoError(t, err)

	assert.Equal(t, true, merged.(map[string]interface{})["extra"])
	assert.Equal(t, map[string]interface{}{"name": "John"}, first["user"])
	_, hasExtra := first["extra"]
	assert.False(t, hasExtra)
}

func TestMergeObjects(t *testing.T) {
	dst := map[string]interface{}{"a": 1, "b": 2}
	src := map[string]interface{}{"b": 3, "c": 4}

	merged, err := MergeObjects(dst, src)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"a": 1, "b": 3, "c": 4}, merged)
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 2}, dst)
}

func TestMergeObjects_EmptySource(t *testing.T) {
	merged, err := MergeObjects(map[string]interface{}{"a": 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": 1}, merged)
}
