// Package sqltable maps a screen schema onto a SQL table: it builds the
// SELECT that loads the screen and normalizes scanned values.
package sqltable

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"peopledesk/internal/domain"
	"peopledesk/internal/domain/filter"
	"peopledesk/internal/metadata"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Dialect holds the per-database differences of the generated SQL.
type Dialect struct {
	Placeholder squirrel.PlaceholderFormat
	// ILike is true when the database has ILIKE; otherwise LIKE is used.
	ILike bool
}

var (
	Postgres = Dialect{Placeholder: squirrel.Dollar, ILike: true}
	SQLite   = Dialect{Placeholder: squirrel.Question}
)

// Table binds a screen to a table. Scope restricts the rows loaded.
type Table struct {
	Name   string
	Schema metadata.Schema
	Scope  []filter.Item
}

// Column returns the column a field is stored in: the field's db tag, or its
// name in snake_case.
func Column(f metadata.FieldDef) string {
	if f.Column != "" {
		return f.Column
	}
	return SnakeCase(f.Name)
}

// Select builds the load query. Columns are aliased to field names so scanned
// rows are keyed like records.
func (t Table) Select(d Dialect) (squirrel.SelectBuilder, error) {
	if !identRe.MatchString(t.Name) {
		return squirrel.SelectBuilder{}, fmt.Errorf("invalid table name %q", t.Name)
	}

	cols := make([]string, 0, len(t.Schema.Fields))
	for _, f := range t.Schema.Fields {
		col := Column(f)
		if !identRe.MatchString(col) || strings.Contains(col, ".") {
			return squirrel.SelectBuilder{}, fmt.Errorf("invalid column %q for field %s", col, f.Name)
		}
		cols = append(cols, fmt.Sprintf(`%s AS "%s"`, col, f.Name))
	}

	q := squirrel.StatementBuilder.PlaceholderFormat(d.Placeholder).
		Select(cols...).
		From(t.Name)

	q, err := t.applyScope(q, d)
	if err != nil {
		return q, err
	}

	if f, ok := t.Schema.Field(t.Schema.IDField); ok {
		q = q.OrderBy(Column(f))
	}
	return q, nil
}

// applyScope adds a WHERE clause per scope item. Fields are whitelisted
// against the schema.
func (t Table) applyScope(q squirrel.SelectBuilder, d Dialect) (squirrel.SelectBuilder, error) {
	for _, item := range t.Scope {
		f, ok := t.Schema.Field(item.Field)
		if !ok {
			return q, fmt.Errorf("invalid scope field: %s", item.Field)
		}
		col := Column(f)

		switch item.Operator {
		case filter.Equal:
			q = q.Where(squirrel.Eq{col: item.Value})
		case filter.NotEqual:
			q = q.Where(squirrel.NotEq{col: item.Value})
		case filter.LessOrEqual:
			q = q.Where(squirrel.LtOrEq{col: item.Value})
		case filter.GreaterOrEqual:
			q = q.Where(squirrel.GtOrEq{col: item.Value})
		case filter.Less:
			q = q.Where(squirrel.Lt{col: item.Value})
		case filter.Greater:
			q = q.Where(squirrel.Gt{col: item.Value})
		case filter.InList:
			q = q.Where(squirrel.Eq{col: item.Values()})
		case filter.NotInList:
			q = q.Where(squirrel.NotEq{col: item.Values()})
		case filter.IsNull:
			q = q.Where(squirrel.Eq{col: nil})
		case filter.IsNotNull:
			q = q.Where(squirrel.NotEq{col: nil})
		case filter.Contains:
			val := fmt.Sprintf("%%%v%%", item.Value)
			if d.ILike {
				q = q.Where(squirrel.ILike{col: val})
			} else {
				q = q.Where(squirrel.Like{col: val})
			}
		case filter.NotContains:
			val := fmt.Sprintf("%%%v%%", item.Value)
			if d.ILike {
				q = q.Where(squirrel.NotILike{col: val})
			} else {
				q = q.Where(squirrel.NotLike{col: val})
			}
		default:
			return q, fmt.Errorf("unsupported scope operator %q", item.Operator)
		}
	}
	return q, nil
}

// Record normalizes a scanned row: text bytes become strings, UUIDs their
// canonical form, and driver values their underlying value.
func Record(row map[string]any) domain.Record {
	rec := make(domain.Record, len(row))
	for k, v := range row {
		rec[k] = normalize(v)
	}
	return rec
}

func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case uuid.UUID:
		return x.String()
	case driver.Valuer:
		val, err := x.Value()
		if err != nil {
			return v
		}
		if val == nil {
			return nil
		}
		return normalize(val)
	}
	return v
}

// ParseTables parses "screen=table" pairs separated by commas.
func ParseTables(mapping string) (map[string]string, error) {
	out := make(map[string]string)
	for _, part := range strings.Split(mapping, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		screen, table, ok := strings.Cut(part, "=")
		screen, table = strings.TrimSpace(screen), strings.TrimSpace(table)
		if !ok || screen == "" || !identRe.MatchString(table) {
			return nil, fmt.Errorf("invalid table mapping %q, want screen=table", part)
		}
		out[screen] = table
	}
	return out, nil
}

// ParseScopes parses "screen=field:op:value" pairs separated by semicolons.
// A screen may appear several times.
func ParseScopes(mapping string) (map[string][]filter.Item, error) {
	out := make(map[string][]filter.Item)
	for _, part := range strings.Split(mapping, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		screen, cond, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(screen) == "" {
			return nil, fmt.Errorf("invalid scope %q, want screen=field:op:value", part)
		}
		item, err := filter.ParseShorthand(cond)
		if err != nil {
			return nil, fmt.Errorf("scope for %s: %w", screen, err)
		}
		screen = strings.TrimSpace(screen)
		out[screen] = append(out[screen], item)
	}
	return out, nil
}

// Screens returns the mapped screen names, sorted.
func Screens(tables map[string]string) []string {
	out := make([]string, 0, len(tables))
	for s := range tables {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// SnakeCase converts a field name such as "hiredAt" to "hired_at".
func SnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
