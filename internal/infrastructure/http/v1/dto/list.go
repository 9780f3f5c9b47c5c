package dto

import (
	"net/url"
	"strings"
	"time"

	"peopledesk/internal/core/apperror"
	"peopledesk/internal/domain"
	"peopledesk/internal/domain/filter"
	"peopledesk/internal/listing"
	"peopledesk/internal/metadata"
)

// FilterParamPrefix marks exact-match filter parameters: ?f.department=HR.
const FilterParamPrefix = "f."

// DefaultWindow is the number of page links returned with a page.
const DefaultWindow = 5

// ListRequest contains list query parameters.
type ListRequest struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
	Sort     string `form:"sort"`   // "field", "-field" or "field:desc"
	Filter   string `form:"filter"` // JSON array of conditions
	Where    string `form:"where"`  // CEL expression
	Fields   string `form:"fields"` // comma-separated projection
}

// ToQuery builds the list query. Exact filters come from the f.<name>
// parameters in values.
func (r ListRequest) ToQuery(values url.Values) (listing.Query, error) {
	q := listing.Query{
		Search:     r.Search,
		Expression: strings.TrimSpace(r.Where),
		Sort:       listing.ParseSort(r.Sort),
		Page:       r.Page,
		PageSize:   r.PageSize,
	}

	for key, vals := range values {
		name, ok := strings.CutPrefix(key, FilterParamPrefix)
		if !ok || name == "" || len(vals) == 0 {
			continue
		}
		if q.Filters == nil {
			q.Filters = make(map[string]any)
		}
		q.Filters[name] = vals[len(vals)-1]
	}

	if strings.TrimSpace(r.Filter) != "" {
		items, err := filter.Parse(r.Filter)
		if err != nil {
			return q, apperror.NewValidation("invalid filter parameter").WithDetail("error", err.Error())
		}
		q.Conditions = items
	}
	return q, nil
}

// Projection returns the requested field names, or nil for all fields.
func (r ListRequest) Projection() []string {
	if strings.TrimSpace(r.Fields) == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(r.Fields, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ListResponse is one page of a screen.
type ListResponse struct {
	Screen     string             `json:"screen"`
	Items      []domain.Record    `json:"items"`
	Pagination PaginationResponse `json:"pagination"`
	Sort       string             `json:"sort,omitempty"`
	Filters    map[string]any     `json:"filters,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// NewListResponse wraps a derived page. Only filters the schema applies are
// echoed; the rest come back as warnings.
func NewListResponse(schema metadata.Schema, q listing.Query, page listing.Page, fields []string) ListResponse {
	items := page.Items
	if len(fields) > 0 {
		items = make([]domain.Record, len(page.Items))
		for i, rec := range page.Items {
			items[i] = rec.Project(fields)
		}
	}
	if items == nil {
		items = []domain.Record{}
	}
	filters, warnings := q.ResolveFilters(schema)

	return ListResponse{
		Screen: schema.Name,
		Items:  items,
		Pagination: PaginationResponse{
			Page:       page.CurrentPage,
			PageSize:   page.PageSize,
			TotalItems: page.TotalItems,
			TotalPages: page.TotalPages,
			HasNext:    page.HasNext(),
			HasPrev:    page.HasPrev(),
			Window:     listing.PageWindow(page.CurrentPage, page.TotalPages, DefaultWindow),
		},
		Sort:     q.Sort.String(),
		Filters:  filters,
		Warnings: warnings,
	}
}

// FacetsResponse lists dropdown options of a screen.
type FacetsResponse struct {
	Screen string          `json:"screen"`
	Facets []listing.Facet `json:"facets"`
}

// ScreenSummary describes a screen in the index.
type ScreenSummary struct {
	Name       string     `json:"name"`
	Label      string     `json:"label"`
	Fields     int        `json:"fields"`
	Filterable []string   `json:"filterable"`
	Searchable []string   `json:"searchable"`
	LoadedAt   *time.Time `json:"loadedAt,omitempty"`
}

// NewScreenSummary summarizes a schema.
func NewScreenSummary(s metadata.Schema, loadedAt time.Time) ScreenSummary {
	out := ScreenSummary{
		Name:       s.Name,
		Label:      s.Label,
		Fields:     len(s.Fields),
		Filterable: []string{},
		Searchable: []string{},
	}
	for _, f := range s.FilterableFields() {
		out.Filterable = append(out.Filterable, f.Name)
	}
	for _, f := range s.SearchableFields() {
		out.Searchable = append(out.Searchable, f.Name)
	}
	if !loadedAt.IsZero() {
		out.LoadedAt = &loadedAt
	}
	return out
}

// ReloadResponse reports a reload.
type ReloadResponse struct {
	Screen  string `json:"screen"`
	Records int    `json:"records"`
}
