// Package jsonpath resolves values inside decoded JSON trees using paths made
// of object keys and array indices.
//
// A path is an ordered list of segments. A segment made only of decimal
// digits indexes into an array; any other segment is an object key:
//
//	text, err := jsonpath.Resolve(resp, []string{"content", "0", "text"})
//
// Schemas declare paths as JSON arrays mixing strings and numbers, for
// example ["choices", 0, "message", "content"]. Use [Parse] to turn such an
// array into segments.
package jsonpath

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrResolve is matched by every resolution failure via errors.Is.
var ErrResolve = errors.New("path resolution failed")

// Op identifies the kind of access that failed.
type Op string

const (
	OpArrayIndex Op = "array index"
	OpObjectKey  Op = "object key"
)

// Error describes the segment at which resolution stopped.
type Error struct {
	Segment string
	Op      Op
	Depth   int // zero-based position of Segment in the path
}

// Error returns a message naming the failing segment.
func (e *Error) Error() string {
	if e.Op == OpArrayIndex {
		return fmt.Sprintf("%s: invalid array access: index %s", ErrResolve, e.Segment)
	}
	return fmt.Sprintf("%s: invalid object access: key %s", ErrResolve, e.Segment)
}

// Is reports whether target is ErrResolve.
func (e *Error) Is(target error) bool {
	return target == ErrResolve
}

// Resolve walks tree one segment at a time and returns the final node.
// The tree is not modified.
func Resolve(tree any, path []string) (any, error) {
	current := tree
	for depth, seg := range path {
		if idx, ok := index(seg); ok {
			arr, isArr := current.([]any)
			if !isArr || idx >= len(arr) {
				return nil, &Error{Segment: seg, Op: OpArrayIndex, Depth: depth}
			}
			current = arr[idx]
			continue
		}

		obj, isObj := current.(map[string]any)
		if !isObj {
			return nil, &Error{Segment: seg, Op: OpObjectKey, Depth: depth}
		}
		next, found := obj[seg]
		if !found {
			return nil, &Error{Segment: seg, Op: OpObjectKey, Depth: depth}
		}
		current = next
	}
	return current, nil
}

// Parse converts a JSON array of strings and numbers into path segments.
// Numbers are truncated to integers and stringified. Elements of any other
// kind are skipped, and a value that is not an array yields an empty path.
func Parse(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return []string{}
	}

	path := make([]string, 0, len(arr))
	for _, elem := range arr {
		switch e := elem.(type) {
		case string:
			path = append(path, e)
		case json.Number:
			if n, err := e.Int64(); err == nil {
				path = append(path, strconv.FormatInt(n, 10))
			} else if f, err := e.Float64(); err == nil {
				path = append(path, strconv.FormatInt(int64(math.Trunc(f)), 10))
			}
		case float64:
			path = append(path, strconv.FormatInt(int64(math.Trunc(e)), 10))
		case int:
			path = append(path, strconv.Itoa(e))
		case int64:
			path = append(path, strconv.FormatInt(e, 10))
		}
	}
	return path
}

// index reports whether seg is a non-negative decimal integer.
func index(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(seg)
	if err != nil {
		// Out of int range; no array can be that long.
		return math.MaxInt, true
	}
	return n, true
}
