package jsonparse

import "encoding/json"

// Read-only traversal helpers over decoded JSON values. Payload shapes are
// undocumented and shift between endpoint versions, so everything is
// looked up defensively and misses are reported through the second return.

func get(v any, path ...string) (any, bool) {
	current := v
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func getMap(v any, path ...string) (map[string]any, bool) {
	value, ok := get(v, path...)
	if !ok {
		return nil, false
	}
	obj, ok := value.(map[string]any)
	return obj, ok
}

func getArray(v any, path ...string) ([]any, bool) {
	value, ok := get(v, path...)
	if !ok {
		return nil, false
	}
	arr, ok := value.([]any)
	return arr, ok
}

func getString(v any, path ...string) string {
	value, ok := get(v, path...)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}

func has(v any, path ...string) bool {
	_, ok := get(v, path...)
	return ok
}

// isNumeric reports whether a decoded value renders as a string of digits.
// Ids are only trusted when numeric; opaque tokens are rejected.
func isNumeric(v any) bool {
	var s string
	switch value := v.(type) {
	case json.Number:
		s = value.String()
	case float64:
		return value == float64(int64(value))
	case string:
		s = value
	default:
		return false
	}
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
