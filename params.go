package hyni

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"
)

// SetParameter sets a request parameter. value may be any JSON-marshalable
// Go value. A nil value is always rejected; the schema's constraints for key
// are checked when validation is enabled.
func (c *Context) SetParameter(key string, value any) error {
	tree, err := toTree(value)
	if err != nil {
		return &ValidationError{Field: key, Msg: "parameter '" + key + "' is not JSON-encodable", Err: err}
	}
	if tree == nil {
		return &ValidationError{Field: key, Msg: "parameter '" + key + "' cannot be null"}
	}

	if c.config.EnableValidation {
		if err := c.validateParameter(key, tree); err != nil {
			return err
		}
	}

	c.parameters[key] = tree
	return nil
}

// SetParameters sets several parameters. Keys are applied in sorted order
// and the first failure stops the remaining keys from being applied.
func (c *Context) SetParameters(params map[string]any) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := c.SetParameter(k, params[k]); err != nil {
			return err
		}
	}
	return nil
}

// Parameter returns the stored value for key in JSON tree form.
func (c *Context) Parameter(key string) (any, error) {
	v, ok := c.parameters[key]
	if !ok {
		return nil, &ValidationError{Field: key, Msg: "parameter '" + key + "' not found"}
	}
	return cloneTree(v), nil
}

// HasParameter reports whether key has been set explicitly.
func (c *Context) HasParameter(key string) bool {
	_, ok := c.parameters[key]
	return ok
}

// Parameters returns a copy of all explicit parameters.
func (c *Context) Parameters() map[string]any {
	out := make(map[string]any, len(c.parameters))
	for k, v := range c.parameters {
		out[k] = cloneTree(v)
	}
	return out
}

// ParameterAs decodes the parameter stored under key into a T.
func ParameterAs[T any](c *Context, key string) (T, error) {
	var out T
	v, err := c.Parameter(key)
	if err != nil {
		return out, err
	}
	data, err := json.Marshal(v)
	if err == nil {
		err = json.Unmarshal(data, &out)
	}
	if err != nil {
		return out, &ValidationError{
			Field: key,
			Msg:   fmt.Sprintf("parameter '%s' cannot be converted to %T", key, out),
			Err:   err,
		}
	}
	return out, nil
}

// ParameterOr is like ParameterAs but returns def when key is not set.
func ParameterOr[T any](c *Context, key string, def T) (T, error) {
	if !c.HasParameter(key) {
		return def, nil
	}
	return ParameterAs[T](c, key)
}

func (c *Context) validateParameter(key string, value any) error {
	raw, ok := c.schema.raw("parameters", key)
	if !ok {
		return nil
	}
	def, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	if s, isString := value.(string); isString {
		if maxLen, ok := asInt(def["max_length"]); ok && utf8.RuneCountInString(s) > maxLen {
			return &ValidationError{
				Field:   key,
				Msg:     fmt.Sprintf("parameter '%s' exceeds maximum length of %d", key, maxLen),
				Allowed: []any{maxLen},
			}
		}
	}

	if enum, ok := def["enum"]; ok {
		allowed, _ := enum.([]any)
		found := false
		for _, a := range allowed {
			if treeEqual(value, a) {
				found = true
				break
			}
		}
		if !found {
			return &ValidationError{
				Field:   key,
				Msg:     fmt.Sprintf("parameter '%s' has invalid value", key),
				Allowed: allowed,
			}
		}
	}

	if t, ok := def["type"]; ok {
		expected := asText(t)
		if !matchesType(value, expected) {
			return &ValidationError{
				Field: key,
				Msg:   fmt.Sprintf("parameter '%s' must be of type %s", key, expected),
			}
		}
	}

	if isNumber(value) {
		n, _ := asFloat(value)
		if lo, ok := asFloat(def["min"]); ok && n < lo {
			return &ValidationError{
				Field:   key,
				Msg:     fmt.Sprintf("parameter '%s' must be >= %s", key, formatBound(lo)),
				Allowed: []any{def["min"]},
			}
		}
		if hi, ok := asFloat(def["max"]); ok && n > hi {
			return &ValidationError{
				Field:   key,
				Msg:     fmt.Sprintf("parameter '%s' must be <= %s", key, formatBound(hi)),
				Allowed: []any{def["max"]},
			}
		}
	}

	return nil
}

// matchesType is a coarse tag check. Unknown type names accept anything.
func matchesType(value any, expected string) bool {
	switch expected {
	case "integer":
		return isIntegral(value)
	case "float", "number":
		return isNumber(value)
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
