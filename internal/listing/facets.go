package listing

import (
	"slices"

	"peopledesk/internal/domain"
)

// FacetValue is one dropdown option with the number of records it would show.
type FacetValue struct {
	Value    any    `json:"value"`
	Label    string `json:"label"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected,omitempty"`
}

// Facet lists the options of one filterable field.
type Facet struct {
	Field  string       `json:"field"`
	Label  string       `json:"label"`
	Values []FacetValue `json:"values"`
}

// Facets counts distinct values of every filterable field. Each field is
// counted over the records matching everything except its own filter, so a
// selected option does not hide its siblings. Declared enum options come
// first in declaration order, even with a zero count; other values follow in
// collation order.
func (p *Plan) Facets(records []domain.Record) []Facet {
	c := p.newComparer()
	term := ""
	if p.query.Search != "" {
		term = c.fold.String(p.query.Search)
	}

	selected := make(map[string]any, len(p.filters))
	for _, f := range p.filters {
		selected[f.name] = f.value
	}

	var facets []Facet
	for _, field := range p.schema.FilterableFields() {
		type bucket struct {
			value any
			count int
		}
		buckets := make(map[string]*bucket)
		var order []string

		for _, opt := range field.Options {
			key := facetKey(c, opt, field.CaseInsensitive)
			if _, seen := buckets[key]; !seen {
				buckets[key] = &bucket{value: opt}
				order = append(order, key)
			}
		}
		declared := len(order)

		for _, r := range records {
			if !p.matches(c, r, term, field.Name) {
				continue
			}
			v, _ := r.Get(field.Name)
			if isBlank(v) {
				continue
			}
			key := facetKey(c, v, field.CaseInsensitive)
			b, ok := buckets[key]
			if !ok {
				b = &bucket{value: v}
				buckets[key] = b
				order = append(order, key)
			}
			b.count++
		}

		rest := order[declared:]
		slices.SortStableFunc(rest, func(a, b string) int {
			return c.compare(buckets[a].value, buckets[b].value)
		})

		facet := Facet{Field: field.Name, Label: field.Label, Values: make([]FacetValue, 0, len(order))}
		want, isSelected := selected[field.Name]
		for _, key := range order {
			b := buckets[key]
			facet.Values = append(facet.Values, FacetValue{
				Value:    b.value,
				Label:    text(b.value),
				Count:    b.count,
				Selected: isSelected && c.equal(b.value, want, field.CaseInsensitive),
			})
		}
		facets = append(facets, facet)
	}
	return facets
}

func facetKey(c *comparer, v any, fold bool) string {
	s := text(v)
	if fold {
		return c.fold.String(s)
	}
	return s
}
