// Package predicate provides concrete record predicates: externally defined
// boolean expressions over document fields, each with a textual form. They
// implement the filter.Predicate contract and are the usual leaves wrapped by
// filter.PredicateFilter.
package predicate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/SpectralDragon/percy/core/filter"
	"github.com/SpectralDragon/percy/core/schema"
)

// ComparisonOperator defines the set of operators a field condition can use.
type ComparisonOperator string

// Supported comparison operators.
const (
	OperatorEq          ComparisonOperator = "eq"
	OperatorNeq         ComparisonOperator = "neq"
	OperatorLt          ComparisonOperator = "lt"
	OperatorLte         ComparisonOperator = "lte"
	OperatorGt          ComparisonOperator = "gt"
	OperatorGte         ComparisonOperator = "gte"
	OperatorIn          ComparisonOperator = "in"
	OperatorNin         ComparisonOperator = "nin"
	OperatorContains    ComparisonOperator = "contains"
	OperatorNotContains ComparisonOperator = "ncontains"
	OperatorStartsWith  ComparisonOperator = "startswith"
	OperatorEndsWith    ComparisonOperator = "endswith"
	OperatorExists      ComparisonOperator = "exists"
	OperatorNotExists   ComparisonOperator = "nexists"
)

// operatorSymbols maps each operator to the symbol used in descriptions.
var operatorSymbols = map[ComparisonOperator]string{
	OperatorEq:          "==",
	OperatorNeq:         "!=",
	OperatorLt:          "<",
	OperatorLte:         "<=",
	OperatorGt:          ">",
	OperatorGte:         ">=",
	OperatorIn:          "in",
	OperatorNin:         "not in",
	OperatorContains:    "contains",
	OperatorNotContains: "not contains",
	OperatorStartsWith:  "startswith",
	OperatorEndsWith:    "endswith",
	OperatorExists:      "exists",
	OperatorNotExists:   "not exists",
}

// Condition is a single comparison over one document field. It is immutable
// and safe for concurrent evaluation.
type Condition struct {
	Field    string
	Operator ComparisonOperator
	Value    any
}

var _ filter.Predicate = Condition{}

// Eq matches documents whose field equals value.
func Eq(field string, value any) Condition {
	return Condition{Field: field, Operator: OperatorEq, Value: value}
}

// Neq matches documents whose field does not equal value.
func Neq(field string, value any) Condition {
	return Condition{Field: field, Operator: OperatorNeq, Value: value}
}

// Lt matches documents whose numeric field is less than value.
func Lt(field string, value any) Condition {
	return Condition{Field: field, Operator: OperatorLt, Value: value}
}

// Lte matches documents whose numeric field is at most value.
func Lte(field string, value any) Condition {
	return Condition{Field: field, Operator: OperatorLte, Value: value}
}

// Gt matches documents whose numeric field is greater than value.
func Gt(field string, value any) Condition {
	return Condition{Field: field, Operator: OperatorGt, Value: value}
}

// Gte matches documents whose numeric field is at least value.
func Gte(field string, value any) Condition {
	return Condition{Field: field, Operator: OperatorGte, Value: value}
}

// In matches documents whose field equals one of values.
func In(field string, values ...any) Condition {
	return Condition{Field: field, Operator: OperatorIn, Value: values}
}

// Nin matches documents whose field equals none of values.
func Nin(field string, values ...any) Condition {
	return Condition{Field: field, Operator: OperatorNin, Value: values}
}

// Contains matches documents whose string field contains value as a substring.
func Contains(field string, value string) Condition {
	return Condition{Field: field, Operator: OperatorContains, Value: value}
}

// NotContains matches documents whose string field does not contain value.
func NotContains(field string, value string) Condition {
	return Condition{Field: field, Operator: OperatorNotContains, Value: value}
}

// StartsWith matches documents whose string field starts with value.
func StartsWith(field string, value string) Condition {
	return Condition{Field: field, Operator: OperatorStartsWith, Value: value}
}

// EndsWith matches documents whose string field ends with value.
func EndsWith(field string, value string) Condition {
	return Condition{Field: field, Operator: OperatorEndsWith, Value: value}
}

// Exists matches documents where the field is present and non-nil.
func Exists(field string) Condition {
	return Condition{Field: field, Operator: OperatorExists}
}

// NotExists matches documents where the field is absent or nil.
func NotExists(field string) Condition {
	return Condition{Field: field, Operator: OperatorNotExists}
}

// Evaluate reports whether the record satisfies the condition. The record is
// expected to be a schema.Document; any other record type has no fields and
// only NotExists can match it. A missing field fails every operator except
// NotExists, and a type mismatch (for instance an ordered comparison against
// a non-numeric field) evaluates to false rather than failing.
func (c Condition) Evaluate(record filter.Record) bool {
	doc := asDocument(record)
	fieldValue, present := doc[c.Field]
	if present && fieldValue == nil {
		present = false
	}

	switch c.Operator {
	case OperatorExists:
		return present
	case OperatorNotExists:
		return !present
	}
	if !present {
		return false
	}

	switch c.Operator {
	case OperatorEq:
		return looseEqual(fieldValue, c.Value)
	case OperatorNeq:
		return !looseEqual(fieldValue, c.Value)
	case OperatorLt, OperatorLte, OperatorGt, OperatorGte:
		return c.compareOrdered(fieldValue)
	case OperatorIn:
		return containsValue(c.Value, fieldValue)
	case OperatorNin:
		return !containsValue(c.Value, fieldValue)
	case OperatorContains, OperatorNotContains, OperatorStartsWith, OperatorEndsWith:
		return c.compareStrings(fieldValue)
	default:
		return false
	}
}

func (c Condition) compareOrdered(fieldValue any) bool {
	fieldNum, okField := schema.ToFloat64(fieldValue)
	condNum, okCond := schema.ToFloat64(c.Value)
	if !okField || !okCond {
		return false
	}

	switch c.Operator {
	case OperatorLt:
		return fieldNum < condNum
	case OperatorLte:
		return fieldNum <= condNum
	case OperatorGt:
		return fieldNum > condNum
	default:
		return fieldNum >= condNum
	}
}

func (c Condition) compareStrings(fieldValue any) bool {
	fieldStr, okField := fieldValue.(string)
	condStr, okCond := c.Value.(string)
	if !okField || !okCond {
		return false
	}

	switch c.Operator {
	case OperatorContains:
		return strings.Contains(fieldStr, condStr)
	case OperatorNotContains:
		return !strings.Contains(fieldStr, condStr)
	case OperatorStartsWith:
		return strings.HasPrefix(fieldStr, condStr)
	default:
		return strings.HasSuffix(fieldStr, condStr)
	}
}

// Description renders the condition's textual form, for example
// "name == 'x'", "age > 18", "status in ('active', 'pending')" or
// "email exists".
func (c Condition) Description() string {
	symbol := operatorSymbols[c.Operator]
	if symbol == "" {
		symbol = string(c.Operator)
	}
	if c.Operator == OperatorExists || c.Operator == OperatorNotExists {
		return c.Field + " " + symbol
	}
	return c.Field + " " + symbol + " " + renderValue(c.Value)
}

// asDocument coerces a record to a Document. Records of other types are
// treated as having no fields.
func asDocument(record filter.Record) schema.Document {
	switch doc := record.(type) {
	case schema.Document:
		return doc
	case map[string]any:
		return doc
	default:
		return nil
	}
}

// looseEqual compares two values, coercing both sides to float64 when both
// are numeric so that int fields match float64 values decoded from JSON.
// Strings are never coerced: "1" does not equal 1. Non-numeric values are
// compared with reflect.DeepEqual, so slice- and map-valued fields (JSON
// arrays and objects) compare structurally instead of panicking.
func looseEqual(a, b any) bool {
	if aNum, ok := numeric(a); ok {
		bNum, ok := numeric(b)
		return ok && aNum == bNum
	}
	return reflect.DeepEqual(a, b)
}

func numeric(v any) (float64, bool) {
	if _, isString := v.(string); isString {
		return 0, false
	}
	return schema.ToFloat64(v)
}

func containsValue(values any, fieldValue any) bool {
	list, ok := values.([]any)
	if !ok {
		return false
	}
	for _, v := range list {
		if looseEqual(fieldValue, v) {
			return true
		}
	}
	return false
}

// renderValue formats a condition value for descriptions: strings are
// single-quoted, lists parenthesized, everything else printed as-is.
func renderValue(value any) string {
	switch v := value.(type) {
	case string:
		return "'" + v + "'"
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, renderValue(item))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}
