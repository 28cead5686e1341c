package domain

import (
	"dario.cat/mergo"
)

// MergePortValues combines the values that arrived on one input port, in
// connection order. Objects are merged with later keys winning; anything else
// is delivered as a list.
func MergePortValues(values []interface{}) (interface{}, error) {
	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return values[0], nil
	}

	allObjects := true
	for _, v := range values {
		if !isObject(v) {
			allObjects = false
			break
		}
	}

	if !allObjects {
		out := make([]interface{}, len(values))
		copy(out, values)
		return out, nil
	}

	merged := copyObject(values[0].(map[string]interface{}))
	for _, v := range values[1:] {
		if err := mergo.Merge(&merged, copyObject(v.(map[string]interface{})),
			mergo.WithOverride,
			mergo.WithAppendSlice); err != nil {
			return nil, NewValidationError("merge port values", err)
		}
	}
	return merged, nil
}

// MergeObjects overlays src onto a copy of dst.
func MergeObjects(dst, src map[string]interface{}) (map[string]interface{}, error) {
	merged := copyObject(dst)
	if len(src) == 0 {
		return merged, nil
	}
	if err := mergo.Merge(&merged, copyObject(src), mergo.WithOverride); err != nil {
		return nil, NewValidationError("merge objects", err)
	}
	return merged, nil
}

// copyObject deep-copies nested objects and lists so merging never writes into
// a value another node produced.
func copyObject(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case map[string]interface{}:
		return copyObject(typed)
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, item := range typed {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

func isObject(v interface{}) bool {
	_, ok := v.(map[string]interface{})
	return ok
}
