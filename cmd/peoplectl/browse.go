package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"peopledesk/internal/domain/filter"
	"peopledesk/internal/export"
	"peopledesk/internal/listing"
	"peopledesk/internal/metadata"
)

const (
	maxColumnWidth = 24
	windowWidth    = 5
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeSearch
	modeCondition
)

const browseHelp = "/ search  : where  f field  v value  c clear  s sort  S reverse  ←/→ page  q quit"

// browseModel is an interactive list screen driven by a listing.Controller.
type browseModel struct {
	ctrl      *listing.Controller
	fields    []metadata.FieldDef
	formatter export.Formatter

	table table.Model
	input textinput.Model
	mode  inputMode

	filterField int
	sortField   int
	status      string
}

func newBrowseModel(ctrl *listing.Controller, fields []metadata.FieldDef, f export.Formatter) browseModel {
	t := table.New(
		table.WithFocused(true),
		table.WithHeight(ctrl.PageSize()+1),
	)

	in := textinput.New()
	in.CharLimit = 120
	in.Width = 50

	m := browseModel{
		ctrl:      ctrl,
		fields:    fields,
		formatter: f,
		table:     t,
		input:     in,
	}
	m.refresh()
	return m
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	if m.mode != modeBrowse {
		return m.updateInput(key)
	}

	m.status = ""
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/":
		m.startInput(modeSearch, "search", m.ctrl.SearchTerm())
		return m, textinput.Blink
	case ":":
		m.startInput(modeCondition, "field:op:value", "")
		return m, textinput.Blink
	case "right", "n", "pgdown":
		m.setPage(m.ctrl.Page() + 1)
	case "left", "p", "pgup":
		m.setPage(m.ctrl.Page() - 1)
	case "home":
		m.setPage(1)
	case "end":
		m.setPage(m.ctrl.VisiblePage().TotalPages)
	case "f":
		m.nextFilterField()
	case "v":
		m.nextFilterValue()
	case "c":
		m.ctrl.ClearFilters()
		m.status = "filters cleared"
	case "s":
		m.nextSort()
	case "S":
		m.reverseSort()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	m.refresh()
	return m, nil
}

func (m *browseModel) startInput(mode inputMode, placeholder, value string) {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	m.table.Blur()
}

func (m browseModel) updateInput(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.endInput()
		return m, nil
	case "enter":
		m.submit(strings.TrimSpace(m.input.Value()))
		m.endInput()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	if m.mode == modeSearch {
		// Search is live.
		m.ctrl.SetSearchTerm(m.input.Value())
		m.refresh()
	}
	return m, cmd
}

func (m *browseModel) endInput() {
	m.mode = modeBrowse
	m.input.Blur()
	m.table.Focus()
}

func (m *browseModel) submit(value string) {
	switch m.mode {
	case modeSearch:
		m.ctrl.SetSearchTerm(value)
	case modeCondition:
		if value == "" {
			return
		}
		it, err := filter.ParseShorthand(value)
		if err != nil {
			m.status = err.Error()
			return
		}
		conds := append(m.ctrl.Query().Conditions, it)
		if err := m.ctrl.SetConditions(conds); err != nil {
			m.status = err.Error()
		}
	}
}

func (m *browseModel) setPage(n int) {
	if err := m.ctrl.SetPage(n); err != nil {
		m.status = err.Error()
	}
}

func (m *browseModel) filterable() []metadata.FieldDef {
	return m.ctrl.Schema().FilterableFields()
}

func (m *browseModel) nextFilterField() {
	fs := m.filterable()
	if len(fs) == 0 {
		m.status = "no filterable fields"
		return
	}
	m.filterField = (m.filterField + 1) % len(fs)
	m.status = "filter field: " + fs[m.filterField].Name
}

// nextFilterValue selects the next facet value of the current filter field,
// wrapping around to "all".
func (m *browseModel) nextFilterValue() {
	fs := m.filterable()
	if len(fs) == 0 {
		m.status = "no filterable fields"
		return
	}
	field := fs[m.filterField%len(fs)].Name

	var values []listing.FacetValue
	for _, facet := range m.ctrl.Facets() {
		if facet.Field == field {
			values = facet.Values
		}
	}

	next := 0
	for i, v := range values {
		if v.Selected {
			next = i + 1
		}
	}
	if next >= len(values) {
		m.ctrl.SetFilter(field, listing.AllValue)
		m.status = field + ": all"
		return
	}
	m.ctrl.SetFilter(field, values[next].Value)
	m.status = fmt.Sprintf("%s: %s", field, values[next].Label)
}

func (m *browseModel) nextSort() {
	names := m.ctrl.Schema().FieldNames()
	m.sortField = (m.sortField + 1) % len(names)
	m.ctrl.SetSort(names[m.sortField], listing.Asc)
}

func (m *browseModel) reverseSort() {
	s := m.ctrl.Sort()
	if s.IsZero() {
		return
	}
	dir := listing.Desc
	if s.Direction == listing.Desc {
		dir = listing.Asc
	}
	m.ctrl.SetSort(s.Field, dir)
}

func (m *browseModel) refresh() {
	page := m.ctrl.VisiblePage()
	rows := make([]table.Row, len(page.Items))
	for i, r := range page.Items {
		rows[i] = cells(m.fields, r, m.formatter)
	}
	// Columns shrink and grow with the visible rows.
	m.table.SetColumns(fitColumns(m.fields, rows))
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// fitColumns sizes every column to its widest cell or title, capped at
// maxColumnWidth.
func fitColumns(fields []metadata.FieldDef, rows []table.Row) []table.Column {
	cols := make([]table.Column, len(fields))
	for i, field := range fields {
		title := field.Label
		if title == "" {
			title = field.Name
		}
		width := lipgloss.Width(title)
		for _, row := range rows {
			width = max(width, lipgloss.Width(row[i]))
		}
		cols[i] = table.Column{Title: title, Width: min(width, maxColumnWidth)}
	}
	return cols
}

func (m browseModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.ctrl.Schema().Label))
	b.WriteString("\n")
	if m.mode != modeBrowse {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(muted).
		Render(m.table.View()))
	b.WriteString("\n")

	page := m.ctrl.VisiblePage()
	b.WriteString(footerStyle.Render(pageSummary(page, m.ctrl.Query())))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(pager(page, m.ctrl.PageWindow(windowWidth))))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render(browseHelp))
	return b.String()
}

// pager renders the page window with the current page in brackets.
func pager(page listing.Page, window []int) string {
	parts := make([]string, len(window))
	for i, n := range window {
		if n == page.CurrentPage {
			parts[i] = fmt.Sprintf("[%d]", n)
		} else {
			parts[i] = fmt.Sprint(n)
		}
	}
	return strings.Join(parts, " ")
}
