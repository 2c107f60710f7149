// Package mapping implements a descriptor-driven import/export layer between
// raw source maps (usually decoded JSON) and flat string-keyed records.
package mapping

import (
	"encoding/json"
	"strconv"
)

// Field binds one target attribute to a source key. When Importer or
// Exporter are set they take full control of the field; otherwise the value
// is copied directly, falling back to Default when the source lacks the key.
type Field struct {
	TargetKey string
	SourceKey string
	Default   string
	Importer  func(target map[string]string, source map[string]any)
	Exporter  func(target map[string]string, attrs map[string]string)
}

// AsString renders a decoded JSON scalar as the record string form. Numbers
// decoded with UseNumber keep their exact digits, which matters for 19-digit
// snowflake ids.
func AsString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case bool:
		if value {
			return "true"
		}
		return "false"
	case json.Number:
		return value.String()
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(value, 10)
	case nil:
		return ""
	default:
		return ""
	}
}

// Import populates a flat record from source per the descriptor list. Every
// declared TargetKey is guaranteed to come out with some value.
func Import(fields []Field, source map[string]any) map[string]string {
	target := make(map[string]string, len(fields))
	for _, f := range fields {
		if f.Importer != nil {
			target[f.TargetKey] = f.Default
			f.Importer(target, source)
			continue
		}
		value, ok := source[f.SourceKey]
		if !ok {
			target[f.TargetKey] = f.Default
			continue
		}
		target[f.TargetKey] = AsString(value)
	}
	return target
}

// Export reads a record's attributes back into a flat map keyed by
// TargetKey. The mirror of Import for descriptor lists without custom
// transforms.
func Export(fields []Field, attrs map[string]string) map[string]string {
	target := make(map[string]string, len(fields))
	for _, f := range fields {
		if f.Exporter != nil {
			target[f.TargetKey] = f.Default
			f.Exporter(target, attrs)
			continue
		}
		value, ok := attrs[f.TargetKey]
		if !ok {
			target[f.TargetKey] = f.Default
			continue
		}
		target[f.TargetKey] = value
	}
	return target
}

// IsEmptyOrZero reports whether a record value still holds one of the
// declared "nothing here" defaults.
func IsEmptyOrZero(v string) bool {
	return v == "" || v == "0"
}

// FillGaps overwrites primary's empty-or-zero values with secondary's
// populated ones. Values already present in primary are never touched.
func FillGaps(primary, secondary map[string]string) {
	for key, value := range secondary {
		if IsEmptyOrZero(primary[key]) && !IsEmptyOrZero(value) {
			primary[key] = value
		}
	}
}
