// Package criteria evaluates operator-based conditions against record
// fields. It backs the caller-supplied bonus rules of the quality_score
// survivorship strategy.
package criteria

import (
	"fmt"
	"strconv"

	"github.com/Ramsey-B/dahlia/pkg/models"
)

// Supported operators
const (
	OpEquals = ""        // default, no prefix - simple equality
	OpNe     = "$ne"     // not equal
	OpGte    = "$gte"    // greater than or equal
	OpGt     = "$gt"     // greater than
	OpLte    = "$lte"    // less than or equal
	OpLt     = "$lt"     // less than
	OpExists = "$exists" // field is non-null (value should be bool)
)

// Condition represents a single field condition to evaluate
type Condition struct {
	Field    string
	Operator string
	Value    any
}

// Matches evaluates a condition against one record
func Matches(record models.Record, cond Condition) bool {
	value := record.Value(cond.Field)

	switch cond.Operator {
	case OpEquals:
		if value.IsNull() {
			return false
		}
		return valuesEqual(value, cond.Value)

	case OpNe:
		if value.IsNull() {
			return true // non-existent != any value
		}
		return !valuesEqual(value, cond.Value)

	case OpExists:
		expectExists, ok := cond.Value.(bool)
		if !ok {
			return false
		}
		return !value.IsNull() == expectExists

	case OpGte, OpGt, OpLte, OpLt:
		if value.IsNull() {
			return false
		}
		return compareNumeric(value, cond.Operator, cond.Value)

	default:
		// Unknown operator
		return false
	}
}

// MatchesAll reports whether a record satisfies every condition (AND logic)
func MatchesAll(record models.Record, conditions []Condition) bool {
	for _, cond := range conditions {
		if !Matches(record, cond) {
			return false
		}
	}
	return true
}

// valuesEqual compares a field value to an expected value with string
// coercion, so float64 vs int config differences do not matter
func valuesEqual(a models.FieldValue, b any) bool {
	if b == nil {
		return a.IsNull()
	}
	return a.String() == fmt.Sprintf("%v", b)
}

// compareNumeric performs numeric comparison
func compareNumeric(actual models.FieldValue, op string, expected any) bool {
	actualNum, ok := actual.AsNumber()
	if !ok {
		return false
	}

	expectedNum, ok := toFloat64(expected)
	if !ok {
		return false
	}

	switch op {
	case OpGte:
		return actualNum >= expectedNum
	case OpGt:
		return actualNum > expectedNum
	case OpLte:
		return actualNum <= expectedNum
	case OpLt:
		return actualNum < expectedNum
	default:
		return false
	}
}

// toFloat64 converts various types to float64
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
