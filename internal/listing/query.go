// Package listing derives the visible page of a list screen from its full
// record set: exact-match filters, free-text search, stable sort and
// pagination, plus the supplementary condition and expression filters.
package listing

import (
	"fmt"
	"slices"
	"strings"

	"peopledesk/internal/domain"
	"peopledesk/internal/domain/filter"
	"peopledesk/internal/metadata"
)

// Direction is a sort direction.
type Direction = metadata.SortDirection

const (
	Asc  = metadata.Asc
	Desc = metadata.Desc
)

// DefaultPageSize is used when a query leaves the page size unset.
const DefaultPageSize = 10

// AllValue is the dropdown sentinel that clears a filter.
const AllValue = "all"

// Sort orders the matching records by one field.
type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// IsZero reports whether no sort field is set.
func (s Sort) IsZero() bool { return s.Field == "" }

// ParseSort accepts "field", "-field", "field:asc" and "field:desc".
func ParseSort(s string) Sort {
	s = strings.TrimSpace(s)
	if s == "" {
		return Sort{}
	}
	if strings.HasPrefix(s, "-") {
		return Sort{Field: strings.TrimPrefix(s, "-"), Direction: Desc}
	}
	if field, dir, ok := strings.Cut(s, ":"); ok {
		if strings.EqualFold(dir, string(Desc)) {
			return Sort{Field: field, Direction: Desc}
		}
		return Sort{Field: field, Direction: Asc}
	}
	return Sort{Field: s, Direction: Asc}
}

// String renders the sort in the "-field" form ParseSort accepts.
func (s Sort) String() string {
	if s.Direction == Desc {
		return "-" + s.Field
	}
	return s.Field
}

// Query is the complete list state: everything a page is derived from
// besides the records themselves.
type Query struct {
	Search     string         `json:"search,omitempty"`
	Filters    map[string]any `json:"filters,omitempty"`
	Conditions []filter.Item  `json:"conditions,omitempty"`
	Expression string         `json:"expression,omitempty"`
	Sort       Sort           `json:"sort"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
}

// Clone returns a copy that shares no maps or slices with q.
func (q Query) Clone() Query {
	out := q
	if q.Filters != nil {
		out.Filters = make(map[string]any, len(q.Filters))
		for k, v := range q.Filters {
			out.Filters[k] = v
		}
	}
	if q.Conditions != nil {
		out.Conditions = append([]filter.Item(nil), q.Conditions...)
	}
	return out
}

// ActiveFilters returns the filters that are not cleared.
func (q Query) ActiveFilters() map[string]any {
	out := make(map[string]any, len(q.Filters))
	for k, v := range q.Filters {
		if !IsCleared(v) {
			out[k] = v
		}
	}
	return out
}

// ResolveFilters splits q's active filters into those schema can apply and
// a warning for every other name, with the closest filterable field when
// one is near.
func (q Query) ResolveFilters(schema metadata.Schema) (applied map[string]any, warnings []string) {
	applied = make(map[string]any, len(q.Filters))
	var candidates []string
	for _, f := range schema.FilterableFields() {
		candidates = append(candidates, f.Name)
	}

	names := make([]string, 0, len(q.Filters))
	for name, v := range q.Filters {
		if !IsCleared(v) {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	for _, name := range names {
		if schema.IsFilterable(name) {
			applied[name] = q.Filters[name]
			continue
		}
		msg := fmt.Sprintf("filter %q ignored: not a filterable field", name)
		if hint := metadata.Suggest(name, candidates); hint != "" {
			msg += fmt.Sprintf(", did you mean %q?", hint)
		}
		warnings = append(warnings, msg)
	}
	return applied, warnings
}

// IsCleared reports whether a filter value means "no filter":
// nil, empty text or "all" in any case.
func IsCleared(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == "" || strings.EqualFold(x, AllValue)
	}
	return false
}

// Page is the derived output handed to presentation.
type Page struct {
	Items       []domain.Record `json:"items"`
	TotalItems  int             `json:"totalItems"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
	PageSize    int             `json:"pageSize"`
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.CurrentPage < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.CurrentPage > 1 }

// TotalPages returns max(1, ceil(n/size)). An empty set is one empty page.
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// ClampPage moves page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
