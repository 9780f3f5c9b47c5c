package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopledesk/internal/core/apperror"
	"peopledesk/internal/domain"
	"peopledesk/internal/domain/filter"
)

func TestDerive_Conditions(t *testing.T) {
	tests := []struct {
		name string
		item filter.Item
		want int
	}{
		{name: "money gte from text", item: filter.Item{Field: "salary", Operator: filter.GreaterOrEqual, Value: "4000"}, want: 10},
		{name: "integer lt", item: filter.Item{Field: "age", Operator: filter.Less, Value: 25}, want: 2},
		{name: "date gte", item: filter.Item{Field: "hiredAt", Operator: filter.GreaterOrEqual, Value: "2020-01-01"}, want: 9},
		{name: "in folds case", item: filter.Item{Field: "status", Operator: filter.InList, Value: []any{"Active", "on leave"}}, want: 19},
		{name: "nin", item: filter.Item{Field: "department", Operator: filter.NotInList, Value: []any{"Finance", "HR"}}, want: 5},
		{name: "contains", item: filter.Item{Field: "email", Operator: filter.Contains, Value: "EMPLOYEE2"}, want: 6},
		{name: "ncontains", item: filter.Item{Field: "email", Operator: filter.NotContains, Value: "employee2"}, want: 19},
		{name: "neq", item: filter.Item{Field: "department", Operator: filter.NotEqual, Value: "IT"}, want: 20},
		{name: "eq bool", item: filter.Item{Field: "remote", Operator: filter.Equal, Value: true}, want: 8},
		{name: "not_null", item: filter.Item{Field: "salary", Operator: filter.IsNotNull}, want: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := derive(t, employees(), employeeSchema(), Query{Conditions: []filter.Item{tt.item}, PageSize: 50})
			assert.Equal(t, tt.want, page.TotalItems)
		})
	}
}

func TestDerive_NullConditions(t *testing.T) {
	records := []domain.Record{
		{"id": "1", "email": "a@example.com"},
		{"id": "2", "email": ""},
		{"id": "3"},
		{"id": "4", "email": nil},
	}

	page := derive(t, records, employeeSchema(), Query{Conditions: []filter.Item{{Field: "email", Operator: filter.IsNull}}})
	assert.Equal(t, []string{"2", "3", "4"}, ids(page.Items))

	page = derive(t, records, employeeSchema(), Query{Conditions: []filter.Item{{Field: "email", Operator: filter.IsNotNull}}})
	assert.Equal(t, []string{"1"}, ids(page.Items))
}

func TestDerive_OrderingSkipsMismatchedKinds(t *testing.T) {
	records := []domain.Record{
		{"id": "1", "age": int64(30)},
		{"id": "2", "age": "unknown"},
		{"id": "3"},
	}
	page := derive(t, records, employeeSchema(), Query{Conditions: []filter.Item{{Field: "age", Operator: filter.Greater, Value: 18}}})
	assert.Equal(t, []string{"1"}, ids(page.Items))
}

func TestDerive_ConditionErrors(t *testing.T) {
	_, err := Derive(employees(), employeeSchema(), Query{Conditions: []filter.Item{{Field: "departmnt", Operator: filter.Equal, Value: "HR"}}})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidFilter, appErr.Code)
	assert.Contains(t, appErr.Message, "did you mean department?")

	_, err = Derive(employees(), employeeSchema(), Query{Conditions: []filter.Item{{Field: "age", Operator: "between", Value: 1}}})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidFilter))
}

func TestDerive_Expression(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want []string
	}{
		{name: "money and text", expr: `department == "Finance" && salary > 4000`, want: []string{"E005", "E006", "E012"}},
		{name: "bool field", expr: `age >= 45 || remote`, want: []string{"E003", "E006", "E009", "E012", "E015", "E018", "E021", "E023", "E024", "E025"}},
		{name: "record map", expr: `record["fullName"].startsWith("Employee 0")`, want: []string{"E001", "E002", "E003", "E004", "E005", "E006", "E007", "E008", "E009"}},
		{name: "timestamp", expr: `hiredAt > timestamp("2021-12-31T00:00:00Z")`, want: []string{"E007", "E015", "E023"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := derive(t, employees(), employeeSchema(), Query{Expression: tt.expr, PageSize: 50})
			assert.Equal(t, tt.want, ids(page.Items))
		})
	}
}

func TestDerive_ExpressionErrors(t *testing.T) {
	for _, expr := range []string{`department ==`, `manager == "x"`, `"just text"`} {
		_, err := Derive(employees(), employeeSchema(), Query{Expression: expr})
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidExpression), expr)
	}
}

func TestDerive_ExpressionRuntimeErrorIsNoMatch(t *testing.T) {
	records := []domain.Record{
		{"id": "1", "age": int64(40)},
		{"id": "2"},
	}
	page := derive(t, records, employeeSchema(), Query{Expression: `age > 30`})
	assert.Equal(t, []string{"1"}, ids(page.Items))
}

func TestFacets(t *testing.T) {
	plan, err := NewEngine().Prepare(employeeSchema(), Query{Filters: map[string]any{"department": "Finance"}})
	require.NoError(t, err)

	facets := plan.Facets(employees())
	require.Len(t, facets, 3)

	dept := facets[0]
	assert.Equal(t, "department", dept.Field)
	require.Len(t, dept.Values, 3)
	assert.Equal(t, FacetValue{Value: "Finance", Label: "Finance", Count: 12, Selected: true}, dept.Values[0])
	assert.Equal(t, FacetValue{Value: "HR", Label: "HR", Count: 8}, dept.Values[1])
	assert.Equal(t, FacetValue{Value: "IT", Label: "IT", Count: 5}, dept.Values[2])

	status := facets[1]
	require.Len(t, status.Values, 3)
	assert.Equal(t, "Active", status.Values[0].Value)
	assert.Equal(t, 6, status.Values[0].Count)
	assert.Equal(t, "On Leave", status.Values[1].Value)
	assert.Equal(t, 3, status.Values[1].Count)
	assert.Equal(t, "Terminated", status.Values[2].Value)
	assert.Equal(t, 3, status.Values[2].Count)

	remote := facets[2]
	require.Len(t, remote.Values, 2)
	assert.Equal(t, FacetValue{Value: false, Label: "false", Count: 8}, remote.Values[0])
	assert.Equal(t, FacetValue{Value: true, Label: "true", Count: 4}, remote.Values[1])
}

func TestFacets_DeclaredOptionsWithoutRecords(t *testing.T) {
	plan, err := NewEngine().Prepare(employeeSchema(), Query{Search: "nobody"})
	require.NoError(t, err)

	facets := plan.Facets(employees())
	status := facets[1]
	require.Len(t, status.Values, 3)
	for _, v := range status.Values {
		assert.Zero(t, v.Count)
	}
	assert.Empty(t, facets[0].Values)
}
