package listing

import (
	"peopledesk/internal/core/apperror"
	"peopledesk/internal/domain"
	"peopledesk/internal/domain/filter"
	"peopledesk/internal/metadata"
	"peopledesk/pkg/logger"
)

// Controller is the stateful list of one screen: it owns the search term,
// filters, sort and page, and re-derives the visible page after every change.
//
// A Controller has a single owner and is not safe for concurrent mutation.
// It never mutates the records it is given.
type Controller struct {
	engine  *Engine
	schema  metadata.Schema
	records []domain.Record
	query   Query
	strict  bool
	log     *logger.Logger

	plan *Plan
	view Page
}

// Option configures a Controller.
type Option func(*Controller)

// WithPageSize sets the initial page size.
func WithPageSize(n int) Option {
	return func(c *Controller) { c.query.PageSize = n }
}

// WithStrictPaging makes SetPage reject pages outside [1, TotalPages]
// instead of clamping them.
func WithStrictPaging() Option {
	return func(c *Controller) { c.strict = true }
}

// WithLogger sets the logger for ignored input.
func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithEngine sets the engine (locale) used for derivation.
func WithEngine(e *Engine) Option {
	return func(c *Controller) { c.engine = e }
}

// NewController creates a controller with default state: empty search, no
// filters, the schema's default sort and page 1.
func NewController(records []domain.Record, schema metadata.Schema, opts ...Option) (*Controller, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		engine:  defaultEngine,
		schema:  schema,
		records: records,
		query: Query{
			Filters:  make(map[string]any),
			Page:     1,
			PageSize: DefaultPageSize,
		},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("listing").With("schema", schema.Name)

	if c.query.PageSize <= 0 {
		return nil, apperror.NewValidation("page size must be positive").WithDetail("pageSize", c.query.PageSize)
	}
	if def := schema.DefaultSort; def.Field != "" {
		c.query.Sort = Sort{Field: def.Field, Direction: def.Direction}
	}

	if err := c.apply(c.query); err != nil {
		return nil, err
	}
	return c, nil
}

// apply prepares q and, on success, makes it the current state with the page
// clamped into range.
func (c *Controller) apply(q Query) error {
	plan, err := c.engine.prepare(c.schema, q, c.plan)
	if err != nil {
		return err
	}
	c.plan = plan
	c.refresh()
	return nil
}

func (c *Controller) refresh() {
	c.view = c.plan.Page(c.records)
	c.plan = c.plan.WithPage(c.view.CurrentPage)
	c.query = c.plan.Query()
	if c.query.Filters == nil {
		c.query.Filters = make(map[string]any)
	}
}

// SetRecords replaces the record set. State is kept; the page is clamped.
func (c *Controller) SetRecords(records []domain.Record) {
	c.records = records
	c.refresh()
}

// SetSearchTerm stores the raw term and returns to page 1.
func (c *Controller) SetSearchTerm(term string) {
	q := c.query.Clone()
	q.Search = term
	q.Page = 1
	c.mustApply(q)
}

// SetFilter sets one exact-match filter and returns to page 1. "all", ""
// and nil clear it. Names that are not filterable fields are ignored.
func (c *Controller) SetFilter(name string, value any) {
	if !c.schema.IsFilterable(name) {
		candidates := make([]string, 0)
		for _, f := range c.schema.FilterableFields() {
			candidates = append(candidates, f.Name)
		}
		c.log.Warnw("unknown filter ignored",
			"filter", name,
			"suggestion", metadata.Suggest(name, candidates),
		)
		return
	}

	q := c.query.Clone()
	if IsCleared(value) {
		delete(q.Filters, name)
	} else {
		q.Filters[name] = value
	}
	q.Page = 1
	c.mustApply(q)
}

// SetConditions replaces the advanced conditions and returns to page 1.
// On error the state is unchanged.
func (c *Controller) SetConditions(items []filter.Item) error {
	q := c.query.Clone()
	q.Conditions = append([]filter.Item(nil), items...)
	q.Page = 1
	return c.apply(q)
}

// SetExpression replaces the expression filter and returns to page 1.
// On error the state is unchanged.
func (c *Controller) SetExpression(expr string) error {
	q := c.query.Clone()
	q.Expression = expr
	q.Page = 1
	return c.apply(q)
}

// SetSort replaces the sort. The page is kept.
func (c *Controller) SetSort(field string, dir Direction) {
	if dir != Desc {
		dir = Asc
	}
	q := c.query.Clone()
	q.Sort = Sort{Field: field, Direction: dir}
	c.mustApply(q)
}

// SetPage moves to page n, clamped into [1, TotalPages]. In strict mode an
// out-of-range page is rejected and the current page is kept.
func (c *Controller) SetPage(n int) error {
	if c.strict && (n < 1 || n > c.view.TotalPages) {
		return apperror.NewPageOutOfRange(n, c.view.TotalPages)
	}
	c.plan = c.plan.WithPage(n)
	c.refresh()
	return nil
}

// SetPageSize changes the page size and returns to page 1.
func (c *Controller) SetPageSize(n int) error {
	if n <= 0 {
		return apperror.NewValidation("page size must be positive").WithDetail("pageSize", n)
	}
	q := c.query.Clone()
	q.PageSize = n
	q.Page = 1
	return c.apply(q)
}

// ClearFilters resets the search term, filters, conditions and expression
// and returns to page 1. The sort is kept.
func (c *Controller) ClearFilters() {
	q := c.query.Clone()
	q.Search = ""
	q.Filters = make(map[string]any)
	q.Conditions = nil
	q.Expression = ""
	q.Page = 1
	c.mustApply(q)
}

// mustApply applies a query that cannot fail validation: the conditions and
// expression it carries were accepted earlier.
func (c *Controller) mustApply(q Query) {
	if err := c.apply(q); err != nil {
		c.log.Errorw("list state rejected", "error", err)
	}
}

// VisiblePage returns the current page. Items is a fresh slice; the records
// in it are shared with the caller's record set.
func (c *Controller) VisiblePage() Page {
	p := c.view
	p.Items = append([]domain.Record(nil), c.view.Items...)
	if p.Items == nil {
		p.Items = []domain.Record{}
	}
	return p
}

// Matching returns all records passing the current state, sorted, unpaged.
func (c *Controller) Matching() []domain.Record {
	return c.plan.Matching(c.records)
}

// Facets returns dropdown options with counts for the current state.
func (c *Controller) Facets() []Facet {
	return c.plan.Facets(c.records)
}

// PageWindow returns up to width page numbers around the current page.
func (c *Controller) PageWindow(width int) []int {
	return PageWindow(c.view.CurrentPage, c.view.TotalPages, width)
}

// --- Accessors ---

func (c *Controller) Schema() metadata.Schema { return c.schema }
func (c *Controller) Query() Query            { return c.query.Clone() }
func (c *Controller) SearchTerm() string      { return c.query.Search }
func (c *Controller) Sort() Sort              { return c.query.Sort }
func (c *Controller) Page() int               { return c.query.Page }
func (c *Controller) PageSize() int           { return c.query.PageSize }
func (c *Controller) Expression() string      { return c.query.Expression }

// Filters returns a copy of the active filters.
func (c *Controller) Filters() map[string]any { return c.query.ActiveFilters() }
