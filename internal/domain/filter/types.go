// Package filter describes ad-hoc conditions that narrow a list beyond its
// exact-match dropdown filters.
package filter

import (
	"fmt"
	"strings"
)

// ComparisonType is the operator of a condition.
type ComparisonType string

const (
	Equal          ComparisonType = "eq"
	NotEqual       ComparisonType = "neq"
	Greater        ComparisonType = "gt"
	GreaterOrEqual ComparisonType = "gte"
	Less           ComparisonType = "lt"
	LessOrEqual    ComparisonType = "lte"
	InList         ComparisonType = "in"
	NotInList      ComparisonType = "nin"
	Contains       ComparisonType = "contains" // case-insensitive substring
	NotContains    ComparisonType = "ncontains"

	// Presence checks take no value.
	IsNull    ComparisonType = "null"
	IsNotNull ComparisonType = "not_null"
)

var knownOperators = map[ComparisonType]struct{}{
	Equal: {}, NotEqual: {}, Greater: {}, GreaterOrEqual: {}, Less: {}, LessOrEqual: {},
	InList: {}, NotInList: {}, Contains: {}, NotContains: {}, IsNull: {}, IsNotNull: {},
}

// Item is one condition: a field, an operator and its operand (text, number
// or list).
type Item struct {
	Field    string         `json:"field"`
	Operator ComparisonType `json:"operator"`
	Value    any            `json:"value"`
}

// Known reports whether op is a supported comparison.
func (op ComparisonType) Known() bool {
	_, ok := knownOperators[op]
	return ok
}

// IsList reports whether the operator takes a list of values.
func (op ComparisonType) IsList() bool {
	return op == InList || op == NotInList
}

// IsUnary reports whether the operator ignores Value.
func (op ComparisonType) IsUnary() bool {
	return op == IsNull || op == IsNotNull
}

// IsOrdering reports whether the operator compares by order.
func (op ComparisonType) IsOrdering() bool {
	switch op {
	case Greater, GreaterOrEqual, Less, LessOrEqual:
		return true
	}
	return false
}

// Validate checks the shape of the item. Field existence is checked against
// the screen schema by the caller.
func (it Item) Validate() error {
	if strings.TrimSpace(it.Field) == "" {
		return fmt.Errorf("filter field is required")
	}
	if it.Operator == "" {
		return fmt.Errorf("filter on %q: operator is required", it.Field)
	}
	if !it.Operator.Known() {
		return fmt.Errorf("filter on %q: unknown operator %q", it.Field, it.Operator)
	}
	if it.Operator.IsUnary() {
		return nil
	}
	if it.Value == nil {
		return fmt.Errorf("filter on %q: operator %q needs a value", it.Field, it.Operator)
	}
	if it.Operator.IsList() {
		if _, ok := it.Value.([]any); !ok {
			return fmt.Errorf("filter on %q: operator %q needs a list value", it.Field, it.Operator)
		}
	}
	return nil
}

// Values returns the list operand of in/nin, or the scalar wrapped in a slice.
func (it Item) Values() []any {
	switch v := it.Value.(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case nil:
		return nil
	}
	return []any{it.Value}
}
