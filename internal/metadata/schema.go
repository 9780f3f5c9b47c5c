package metadata

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"peopledesk/internal/core/apperror"
	"peopledesk/internal/core/types"
	"peopledesk/internal/domain"
)

// Field returns the definition of the named field.
func (s Schema) Field(name string) (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// FieldNames returns field names in declaration order.
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// SearchableFields returns the fields the search term is matched against.
func (s Schema) SearchableFields() []FieldDef {
	var out []FieldDef
	for _, f := range s.Fields {
		if f.Searchable {
			out = append(out, f)
		}
	}
	return out
}

// FilterableFields returns the fields that accept exact-match filters.
func (s Schema) FilterableFields() []FieldDef {
	var out []FieldDef
	for _, f := range s.Fields {
		if f.Filterable {
			out = append(out, f)
		}
	}
	return out
}

// IsFilterable reports whether name is a filterable field.
func (s Schema) IsFilterable(name string) bool {
	f, ok := s.Field(name)
	return ok && f.Filterable
}

// Validate checks the schema is internally consistent.
func (s Schema) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return apperror.NewInvalidSchema(s.Name, "name is required")
	}
	if len(s.Fields) == 0 {
		return apperror.NewInvalidSchema(s.Name, "at least one field is required")
	}

	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return apperror.NewInvalidSchema(s.Name, "field without a name")
		}
		if _, dup := seen[f.Name]; dup {
			return apperror.NewInvalidSchema(s.Name, fmt.Sprintf("duplicate field %q", f.Name))
		}
		seen[f.Name] = struct{}{}
		if f.Type == "" {
			return apperror.NewInvalidSchema(s.Name, fmt.Sprintf("field %q has no type", f.Name))
		}
	}

	if s.IDField != "" {
		if _, ok := seen[s.IDField]; !ok {
			return apperror.NewInvalidSchema(s.Name, fmt.Sprintf("id field %q is not declared", s.IDField))
		}
	}
	if s.DefaultSort.Field != "" {
		if _, ok := seen[s.DefaultSort.Field]; !ok {
			return apperror.NewInvalidSchema(s.Name, fmt.Sprintf("default sort field %q is not declared", s.DefaultSort.Field))
		}
		switch s.DefaultSort.Direction {
		case "", Asc, Desc:
		default:
			return apperror.NewInvalidSchema(s.Name, fmt.Sprintf("bad default sort direction %q", s.DefaultSort.Direction))
		}
	}
	return nil
}

// Suggest returns the candidate closest to name, or "" when nothing is close.
func Suggest(name string, candidates []string) string {
	if name == "" || len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindNormalizedFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	// name may be longer than the field ("departments" for "department")
	best, bestLen := "", 0
	for _, c := range candidates {
		if fuzzy.MatchNormalizedFold(c, name) && len(c) > bestLen {
			best, bestLen = c, len(c)
		}
	}
	return best
}

// --- Coercion ---

// Coerce converts loosely typed values (JSON, CSV cells, SQL rows) into the
// canonical Go type of each declared field. Undeclared keys are kept as-is.
// Empty text in a non-string field becomes nil (missing). A value that cannot
// be converted is kept unchanged.
func (s Schema) Coerce(raw map[string]any) domain.Record {
	out := make(domain.Record, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	for _, f := range s.Fields {
		v, ok := raw[f.Name]
		if !ok {
			continue
		}
		out[f.Name] = f.Coerce(v)
	}
	return out
}

// Coerce converts a single value to the field's canonical type.
func (f FieldDef) Coerce(v any) any {
	if v == nil {
		return nil
	}
	if str, isStr := v.(string); isStr && f.Type != TypeString && strings.TrimSpace(str) == "" {
		return nil
	}

	switch f.Type {
	case TypeString, TypeEnum, TypeReference:
		return coerceText(v)
	case TypeInteger:
		if n, ok := coerceInt(v); ok {
			return n
		}
	case TypeNumber:
		if n, ok := types.NumberFrom(v); ok {
			return n
		}
	case TypeMoney:
		if d, ok := types.MoneyFrom(v); ok {
			return d
		}
	case TypeBoolean:
		if b, ok := coerceBool(v); ok {
			return b
		}
	case TypeDate:
		if t, ok := types.DateFrom(v); ok {
			return t
		}
	}
	return v
}

func coerceText(v any) any {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case bool, int, int32, int64, float64:
		return fmt.Sprint(x)
	}
	return v
}

func coerceInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		if x == float64(int64(x)) {
			return int64(x), true
		}
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func coerceBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
	case int64:
		return x != 0, true
	case int:
		return x != 0, true
	case float64:
		return x != 0, true
	}
	return false, false
}
