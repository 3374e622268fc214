// Package schema defines the document representation shared by the
// persistence layer and the record predicates.
package schema

import "strconv"

// Document is the stored representation of an entity: a flat map of field
// names to values. It is the concrete record type handed to filters during a
// filtering pass.
type Document map[string]any

// ToFloat64 converts a value of the common numeric types (or a numeric
// string) to a float64, reporting whether the conversion was possible. It is
// used by ordered comparisons, where documents decoded from JSON may carry
// float64 while callers compare against int.
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
