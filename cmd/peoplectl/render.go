package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"peopledesk/internal/domain"
	"peopledesk/internal/export"
	"peopledesk/internal/listing"
	"peopledesk/internal/metadata"
)

var (
	accent      = lipgloss.Color("#8BC34A")
	muted       = lipgloss.Color("#7a8699")
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	footerStyle = lipgloss.NewStyle().Foreground(muted)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
)

// columns picks the fields to show, in schema order unless names are given.
// Unknown names are reported.
func columns(schema metadata.Schema, names []string) ([]metadata.FieldDef, error) {
	if len(names) == 0 {
		return schema.Fields, nil
	}
	out := make([]metadata.FieldDef, 0, len(names))
	for _, n := range names {
		f, ok := schema.Field(strings.TrimSpace(n))
		if !ok {
			msg := fmt.Sprintf("unknown field %q", n)
			if s := metadata.Suggest(n, schema.FieldNames()); s != "" {
				msg += fmt.Sprintf(" (did you mean %q?)", s)
			}
			return nil, fmt.Errorf("%s", msg)
		}
		out = append(out, f)
	}
	return out, nil
}

func isNumeric(t metadata.FieldType) bool {
	switch t {
	case metadata.TypeInteger, metadata.TypeNumber, metadata.TypeMoney:
		return true
	}
	return false
}

func cells(fields []metadata.FieldDef, r domain.Record, f export.Formatter) []string {
	row := make([]string, len(fields))
	for i, field := range fields {
		v, _ := r.Get(field.Name)
		row[i] = f.Format(field, v)
	}
	return row
}

func headers(fields []metadata.FieldDef) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Label
		if out[i] == "" {
			out[i] = f.Name
		}
	}
	return out
}

// renderTable draws records as a bordered terminal table.
func renderTable(fields []metadata.FieldDef, records []domain.Record, f export.Formatter) string {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = cells(fields, r, f)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(muted)).
		Headers(headers(fields)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case isNumeric(fields[col].Type):
				return numberStyle
			}
			return cellStyle
		})
	return t.Render()
}

// pageSummary describes the position of a page and the active query.
func pageSummary(p listing.Page, q listing.Query) string {
	parts := []string{fmt.Sprintf("Page %d of %d (%d records)", p.CurrentPage, p.TotalPages, p.TotalItems)}
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", q.Search))
	}
	if !q.Sort.IsZero() {
		parts = append(parts, "sort "+q.Sort.String())
	}
	if active := q.ActiveFilters(); len(active) > 0 {
		fs := make([]string, 0, len(active))
		for _, k := range slices.Sorted(maps.Keys(active)) {
			fs = append(fs, fmt.Sprintf("%s=%v", k, active[k]))
		}
		parts = append(parts, "filters "+strings.Join(fs, ", "))
	}
	for _, c := range q.Conditions {
		parts = append(parts, fmt.Sprintf("where %s %s %v", c.Field, c.Operator, c.Value))
	}
	if q.Expression != "" {
		parts = append(parts, "expr "+q.Expression)
	}
	return strings.Join(parts, " | ")
}
