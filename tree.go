package hyni

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// decodeTree decodes JSON keeping numbers as json.Number so integer and
// float values stay distinguishable.
func decodeTree(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

// toTree converts an arbitrary Go value into its JSON tree form.
func toTree(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string, bool, json.Number:
		return v, nil
	case float64:
		return floatNumber(t, 64)
	case float32:
		return floatNumber(float64(t), 32)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decodeTree(data)
}

// floatNumber keeps a Go float a float in tree form: integral values get a
// ".0" suffix so they do not pass as integers.
func floatNumber(f float64, bits int) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("unsupported float value: %v", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return json.Number(s), nil
}

// cloneTree returns a deep copy of a JSON tree.
func cloneTree(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneTree(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneTree(val)
		}
		return out
	default:
		return v
	}
}

// cloneObject deep-copies v when it is an object and returns an empty
// object otherwise.
func cloneObject(v any) map[string]any {
	if obj, ok := v.(map[string]any); ok {
		return cloneTree(obj).(map[string]any)
	}
	return map[string]any{}
}

// pruneNulls deletes null-valued object fields at any depth. Array elements
// are recursed into but never removed.
func pruneNulls(v any) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if val == nil {
				delete(t, k)
				continue
			}
			pruneNulls(val)
		}
	case []any:
		for _, val := range t {
			pruneNulls(val)
		}
	}
}

// lookup walks nested objects by key and reports whether the value exists.
func lookup(tree map[string]any, keys ...string) (any, bool) {
	var current any = tree
	for _, k := range keys {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[k]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// has reports whether the nested key exists, regardless of its value.
func has(tree map[string]any, keys ...string) bool {
	_, ok := lookup(tree, keys...)
	return ok
}

// asText renders a scalar the way a textual accessor would: strings as-is,
// numbers and booleans formatted, null as "null", containers as "".
func asText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return "null"
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// asBool reports true only for a JSON true.
func asBool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func asFloat(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func isNumber(v any) bool {
	_, ok := v.(json.Number)
	return ok
}

// isIntegral reports whether v is a number written without fraction or
// exponent.
func isIntegral(v any) bool {
	n, ok := v.(json.Number)
	if !ok {
		return false
	}
	return !strings.ContainsAny(n.String(), ".eE")
}

// treeEqual compares two JSON trees structurally.
func treeEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

func stringList(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		out = append(out, asText(e))
	}
	return out
}
