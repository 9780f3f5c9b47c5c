package main

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopledesk/internal/domain"
	"peopledesk/internal/export"
	"peopledesk/internal/listing"
	"peopledesk/internal/metadata"
)

func staffSchema() metadata.Schema {
	return metadata.Schema{
		Name:    "staff",
		Label:   "Staff",
		IDField: "id",
		Fields: []metadata.FieldDef{
			{Name: "id", Label: "ID", Type: metadata.TypeString},
			{Name: "name", Label: "Name", Type: metadata.TypeString, Searchable: true},
			{Name: "team", Label: "Team", Type: metadata.TypeString, Filterable: true},
			{Name: "salary", Label: "Salary", Type: metadata.TypeMoney},
		},
	}
}

func staff() []domain.Record {
	teams := []string{"Finance", "HR", "IT"}
	out := make([]domain.Record, 12)
	for i := range out {
		out[i] = domain.Record{
			"id":     fmt.Sprintf("S%02d", i+1),
			"name":   fmt.Sprintf("Person %02d", i+1),
			"team":   teams[i%3],
			"salary": decimal.NewFromInt(int64(3000 + 100*i)),
		}
	}
	out[4]["name"] = "Sarah Johnson"
	return out
}

func newTestBrowser(t *testing.T) browseModel {
	t.Helper()
	schema := staffSchema()
	ctrl, err := listing.NewController(staff(), schema, listing.WithPageSize(5))
	require.NoError(t, err)
	return newBrowseModel(ctrl, schema.Fields, export.NewFormatter("USD"))
}

func press(m browseModel, keys ...string) browseModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(browseModel)
	}
	return m
}

func TestBrowse_Paging(t *testing.T) {
	m := newTestBrowser(t)
	assert.Equal(t, 1, m.ctrl.Page())
	assert.Len(t, m.table.Rows(), 5)

	m = press(m, "right", "right")
	assert.Equal(t, 3, m.ctrl.Page())
	assert.Len(t, m.table.Rows(), 2)

	// Past the end clamps.
	m = press(m, "right")
	assert.Equal(t, 3, m.ctrl.Page())

	m = press(m, "left")
	assert.Equal(t, 2, m.ctrl.Page())
}

func TestBrowse_LiveSearch(t *testing.T) {
	m := newTestBrowser(t)
	m = press(m, "right", "/")
	require.Equal(t, modeSearch, m.mode)

	m = press(m, "s", "a", "r")
	assert.Equal(t, "sar", m.ctrl.SearchTerm())
	assert.Equal(t, 1, m.ctrl.Page())
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "Sarah Johnson", m.table.Rows()[0][1])

	m = press(m, "enter")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, "sar", m.ctrl.SearchTerm())
}

func TestBrowse_FilterCycle(t *testing.T) {
	m := newTestBrowser(t)

	m = press(m, "v")
	assert.Equal(t, map[string]any{"team": "Finance"}, m.ctrl.Filters())
	assert.Equal(t, 4, m.ctrl.VisiblePage().TotalItems)

	m = press(m, "v", "v")
	assert.Equal(t, map[string]any{"team": "IT"}, m.ctrl.Filters())

	m = press(m, "v")
	assert.Empty(t, m.ctrl.Filters())
	assert.Equal(t, 12, m.ctrl.VisiblePage().TotalItems)

	m = press(m, "v", "c")
	assert.Empty(t, m.ctrl.Filters())
}

func TestBrowse_Condition(t *testing.T) {
	m := newTestBrowser(t)
	m = press(m, ":")
	m = press(m, "salary:gte:3900", "enter")
	assert.Empty(t, m.status)
	assert.Equal(t, 3, m.ctrl.VisiblePage().TotalItems)

	m = press(m, ":", "bogus", "enter")
	assert.NotEmpty(t, m.status)
	assert.Equal(t, 3, m.ctrl.VisiblePage().TotalItems)
}

func TestBrowse_Sort(t *testing.T) {
	m := newTestBrowser(t)
	m = press(m, "s")
	assert.Equal(t, listing.Sort{Field: "name", Direction: listing.Asc}, m.ctrl.Sort())

	m = press(m, "S")
	assert.Equal(t, listing.Desc, m.ctrl.Sort().Direction)
	assert.Equal(t, "Sarah Johnson", m.table.Rows()[0][1])
}

func TestBrowse_ColumnsFitVisibleRows(t *testing.T) {
	m := newTestBrowser(t)
	widths := func() []int {
		var out []int
		for _, c := range m.table.Columns() {
			out = append(out, c.Width)
		}
		return out
	}
	// "Sarah Johnson" and "$3,000.00" are the widest cells on page 1.
	assert.Equal(t, []int{3, 13, 7, 9}, widths())

	m = press(m, "right")
	assert.Equal(t, []int{3, 9, 7, 9}, widths())

	view := m.View()
	assert.Contains(t, view, "Person 06")
	assert.Contains(t, view, "$3,500.00")
}

func TestBrowse_ViewAndQuit(t *testing.T) {
	m := newTestBrowser(t)
	view := m.View()
	assert.Contains(t, view, "Staff")
	assert.Contains(t, view, "Page 1 of 3 (12 records)")
	assert.Contains(t, view, "[1] 2 3")
	assert.Contains(t, view, "$3,000.00")
	assert.Contains(t, view, "Sarah Johnson")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
