package nodes

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/eleven-am/flowrun/internal/adapters/node_registry"
	"github.com/eleven-am/flowrun/internal/domain"
	"github.com/eleven-am/flowrun/internal/ports"
)

const (
	PortTrue    = "true"
	PortFalse   = "false"
	PortDefault = "default"
)

type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpContains    Operator = "contains"
	OpExists      Operator = "exists"
)

type conditionParams struct {
	Field    string      `json:"field"`
	Operator Operator    `json:"operator"`
	Value    interface{} `json:"value"`
}

type switchParams struct {
	Field   string   `json:"field"`
	Cases   []string `json:"cases"`
	Default string   `json:"default"`
}

// newConditionNode fires exactly one of the true and false ports, carrying its
// input through.
func newConditionNode() ports.NodePort {
	return node_registry.NewTypedNode(TypeCondition, func(ctx context.Context, params conditionParams, input *ports.NodeInput) (*ports.NodeResult, error) {
		value := unwrapInput(input.Inputs)
		actual, found := LookupField(value, params.Field)

		matched, err := Evaluate(params.Operator, actual, found, params.Value)
		if err != nil {
			return nil, domain.NewValidationError("condition "+input.NodeID, err, domain.WithNodeID(input.NodeID))
		}

		if matched {
			return ports.Output(PortTrue, value), nil
		}
		return ports.Output(PortFalse, value), nil
	})
}

// newSwitchNode fires the port named after the field's value, or the default
// port when the value is not one of the declared cases.
func newSwitchNode() ports.NodePort {
	return node_registry.NewTypedNode(TypeSwitch, func(ctx context.Context, params switchParams, input *ports.NodeInput) (*ports.NodeResult, error) {
		value := unwrapInput(input.Inputs)
		fallback := params.Default
		if fallback == "" {
			fallback = PortDefault
		}

		actual, found := LookupField(value, params.Field)
		if !found || actual == nil {
			return ports.Output(fallback, value), nil
		}

		key := fmt.Sprint(actual)
		if len(params.Cases) > 0 && !containsString(params.Cases, key) {
			return ports.Output(fallback, value), nil
		}
		return ports.Output(key, value), nil
	})
}

// LookupField walks a dot separated path through nested objects. An empty path
// returns the value itself.
func LookupField(value interface{}, path string) (interface{}, bool) {
	if path == "" {
		return value, true
	}

	current := value
	for _, part := range strings.Split(path, ".") {
		switch typed := current.(type) {
		case map[string]interface{}:
			next, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = next
		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil, false
			}
			current = typed[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func Evaluate(op Operator, actual interface{}, found bool, expected interface{}) (bool, error) {
	switch op {
	case OpExists:
		return found && actual != nil, nil
	case OpEquals, "":
		return found && valuesEqual(actual, expected), nil
	case OpNotEquals:
		return !found || !valuesEqual(actual, expected), nil
	case OpGreaterThan, OpLessThan:
		if !found {
			return false, nil
		}
		a, aok := toFloat(actual)
		b, bok := toFloat(expected)
		if !aok || !bok {
			return false, fmt.Errorf("operator %s needs numeric operands, got %T and %T", op, actual, expected)
		}
		if op == OpGreaterThan {
			return a > b, nil
		}
		return a < b, nil
	case OpContains:
		return found && contains(actual, expected), nil
	default:
		return false, fmt.Errorf("unknown operator %q", op)
	}
}

func valuesEqual(a, b interface{}) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
	}
	return reflect.DeepEqual(a, b)
}

func contains(haystack, needle interface{}) bool {
	switch typed := haystack.(type) {
	case string:
		s, ok := needle.(string)
		return ok && strings.Contains(typed, s)
	case []interface{}:
		for _, item := range typed {
			if valuesEqual(item, needle) {
				return true
			}
		}
		return false
	case map[string]interface{}:
		key, ok := needle.(string)
		if !ok {
			return false
		}
		_, exists := typed[key]
		return exists
	default:
		return false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func containsString(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
