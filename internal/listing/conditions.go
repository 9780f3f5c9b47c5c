package listing

import (
	"strings"

	"peopledesk/internal/core/apperror"
	"peopledesk/internal/domain"
	"peopledesk/internal/domain/filter"
	"peopledesk/internal/metadata"
)

// condition is a filter.Item bound to its schema field, with the operand
// already coerced to the field type.
type condition struct {
	item     filter.Item
	field    metadata.FieldDef
	operand  any
	operands []any
}

func bindCondition(schema metadata.Schema, it filter.Item) (condition, error) {
	if err := it.Validate(); err != nil {
		return condition{}, apperror.NewInvalidFilter(it.Field, err.Error())
	}
	field, ok := schema.Field(it.Field)
	if !ok {
		reason := "unknown field"
		if hint := metadata.Suggest(it.Field, schema.FieldNames()); hint != "" {
			reason += ", did you mean " + hint + "?"
		}
		return condition{}, apperror.NewInvalidFilter(it.Field, reason)
	}

	cd := condition{item: it, field: field}
	switch {
	case it.Operator.IsUnary():
	case it.Operator.IsList():
		for _, v := range it.Values() {
			cd.operands = append(cd.operands, field.Coerce(v))
		}
	case it.Operator == filter.Contains || it.Operator == filter.NotContains:
		cd.operand = text(it.Value)
	default:
		cd.operand = field.Coerce(it.Value)
	}
	return cd, nil
}

func (cd condition) match(c *comparer, r domain.Record) bool {
	v, _ := r.Get(cd.field.Name)
	fold := cd.field.CaseInsensitive

	switch cd.item.Operator {
	case filter.IsNull:
		return isBlank(v)
	case filter.IsNotNull:
		return !isBlank(v)
	case filter.Equal:
		return c.equal(v, cd.operand, fold)
	case filter.NotEqual:
		return !c.equal(v, cd.operand, fold)
	case filter.InList:
		return cd.any(c, v, fold)
	case filter.NotInList:
		return !cd.any(c, v, fold)
	case filter.Contains:
		return strings.Contains(c.fold.String(text(v)), c.fold.String(cd.operand.(string)))
	case filter.NotContains:
		return !strings.Contains(c.fold.String(text(v)), c.fold.String(cd.operand.(string)))
	}

	cmp, ok := c.ordered(v, cd.operand)
	if !ok {
		return false
	}
	switch cd.item.Operator {
	case filter.Greater:
		return cmp > 0
	case filter.GreaterOrEqual:
		return cmp >= 0
	case filter.Less:
		return cmp < 0
	case filter.LessOrEqual:
		return cmp <= 0
	}
	return false
}

func (cd condition) any(c *comparer, v any, fold bool) bool {
	for _, want := range cd.operands {
		if c.equal(v, want, fold) {
			return true
		}
	}
	return false
}

// ordered compares two values of the same kind; values of different kinds
// or missing values have no order.
func (c *comparer) ordered(a, b any) (int, bool) {
	ka, kb := canonicalize(a).kind, canonicalize(b).kind
	if ka != kb || ka == kindMissing || ka == kindOther {
		return 0, false
	}
	return c.compare(a, b), true
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return canonicalize(v).kind == kindMissing
}
