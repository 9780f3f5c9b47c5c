package listing

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"peopledesk/internal/core/apperror"
	"peopledesk/internal/domain"
	"peopledesk/internal/metadata"
	"peopledesk/pkg/logger"
)

// Engine prepares queries against schemas. It holds no per-query state and
// is safe for concurrent use.
type Engine struct {
	tag language.Tag
	log *logger.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLocale sets the collation and case-folding language.
func WithLocale(tag language.Tag) EngineOption {
	return func(e *Engine) { e.tag = tag }
}

// WithEngineLogger sets the logger used for ignored query parts.
func WithEngineLogger(l *logger.Logger) EngineOption {
	return func(e *Engine) { e.log = l }
}

// NewEngine creates an engine. Defaults: English collation, no logging.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{tag: language.English, log: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Locale returns the engine's language.
func (e *Engine) Locale() language.Tag { return e.tag }

var defaultEngine = NewEngine()

// Derive computes the visible page of records for q. It never mutates
// records or the maps inside it. Errors come only from malformed
// conditions, expressions, sort directions or page sizes.
func Derive(records []domain.Record, schema metadata.Schema, q Query) (Page, error) {
	return defaultEngine.Derive(records, schema, q)
}

// Derive computes the visible page of records for q.
func (e *Engine) Derive(records []domain.Record, schema metadata.Schema, q Query) (Page, error) {
	plan, err := e.Prepare(schema, q)
	if err != nil {
		return Page{}, err
	}
	return plan.Page(records), nil
}

// exactFilter is one active dropdown filter.
type exactFilter struct {
	name  string
	value any
	fold  bool
}

// Plan is a query validated and bound to a schema. A Plan is immutable and
// can derive pages from any number of record sets.
type Plan struct {
	engine       *Engine
	schema       metadata.Schema
	query        Query
	filters      []exactFilter
	conditions   []condition
	expr         *expression
	searchFields []string
}

// Prepare validates q against schema and compiles its expression.
func (e *Engine) Prepare(schema metadata.Schema, q Query) (*Plan, error) {
	return e.prepare(schema, q, nil)
}

// prepare reuses prev's compiled expression when the source is unchanged.
func (e *Engine) prepare(schema metadata.Schema, q Query, prev *Plan) (*Plan, error) {
	q = q.Clone()

	switch {
	case q.PageSize == 0:
		q.PageSize = DefaultPageSize
	case q.PageSize < 0:
		return nil, apperror.NewValidation("page size must be positive").WithDetail("pageSize", q.PageSize)
	}
	if q.Page < 1 {
		q.Page = 1
	}

	if q.Sort.IsZero() && schema.DefaultSort.Field != "" {
		q.Sort = Sort{Field: schema.DefaultSort.Field, Direction: schema.DefaultSort.Direction}
	}
	switch q.Sort.Direction {
	case Asc, Desc:
	case "":
		q.Sort.Direction = Asc
	default:
		return nil, apperror.NewValidation("sort direction must be asc or desc").
			WithDetail("direction", q.Sort.Direction)
	}

	p := &Plan{engine: e, schema: schema, query: q}

	applied, warnings := q.ResolveFilters(schema)
	for _, w := range warnings {
		e.log.Debugw(w, "schema", schema.Name)
	}
	for _, name := range slices.Sorted(maps.Keys(applied)) {
		field, _ := schema.Field(name)
		p.filters = append(p.filters, exactFilter{
			name:  name,
			value: field.Coerce(applied[name]),
			fold:  field.CaseInsensitive,
		})
	}

	for _, it := range q.Conditions {
		cd, err := bindCondition(schema, it)
		if err != nil {
			return nil, err
		}
		p.conditions = append(p.conditions, cd)
	}

	if src := strings.TrimSpace(q.Expression); src != "" {
		if prev != nil && prev.expr != nil && prev.expr.source == src && prev.schema.Name == schema.Name {
			p.expr = prev.expr
		} else {
			expr, err := compileExpression(schema, src)
			if err != nil {
				return nil, err
			}
			p.expr = expr
		}
	}

	for _, f := range schema.SearchableFields() {
		p.searchFields = append(p.searchFields, f.Name)
	}

	return p, nil
}

// Query returns the normalized query the plan was built from.
func (p *Plan) Query() Query { return p.query.Clone() }

// WithPage returns a copy of the plan that shows page n.
func (p *Plan) WithPage(n int) *Plan {
	cp := *p
	cp.query.Page = n
	return &cp
}

func (p *Plan) newComparer() *comparer {
	return &comparer{
		col:  collate.New(p.engine.tag),
		fold: cases.Fold(),
	}
}

// matches applies filters, conditions, expression and search. skip names an
// exact filter to leave out (facet counting).
func (p *Plan) matches(c *comparer, r domain.Record, term, skip string) bool {
	for _, f := range p.filters {
		if f.name == skip {
			continue
		}
		v, _ := r.Get(f.name)
		if !c.equal(v, f.value, f.fold) {
			return false
		}
	}
	for _, cd := range p.conditions {
		if !cd.match(c, r) {
			return false
		}
	}
	if p.expr != nil && !p.expr.match(r) {
		return false
	}
	if term == "" {
		return true
	}
	for _, name := range p.searchFields {
		v, _ := r.Get(name)
		if strings.Contains(c.fold.String(text(v)), term) {
			return true
		}
	}
	return false
}

// Matching returns every record that passes the query, sorted, unpaged.
func (p *Plan) Matching(records []domain.Record) []domain.Record {
	c := p.newComparer()
	term := ""
	if p.query.Search != "" {
		term = c.fold.String(p.query.Search)
	}

	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if p.matches(c, r, term, "") {
			out = append(out, r)
		}
	}

	if field := p.query.Sort.Field; field != "" {
		desc := p.query.Sort.Direction == Desc
		slices.SortStableFunc(out, func(a, b domain.Record) int {
			av, _ := a.Get(field)
			bv, _ := b.Get(field)
			if desc {
				return c.compare(bv, av)
			}
			return c.compare(av, bv)
		})
	}
	return out
}

// Page derives the page the query asks for, clamped into range.
func (p *Plan) Page(records []domain.Record) Page {
	return paginate(p.Matching(records), p.query.Page, p.query.PageSize)
}

func paginate(matching []domain.Record, page, size int) Page {
	total := len(matching)
	pages := TotalPages(total, size)
	cur := ClampPage(page, pages)

	start := (cur - 1) * size
	end := min(start+size, total)
	if start > total {
		start = total
	}

	items := make([]domain.Record, end-start)
	copy(items, matching[start:end])

	return Page{
		Items:       items,
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: cur,
		PageSize:    size,
	}
}
