package metadata

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopledesk/internal/core/apperror"
	"peopledesk/internal/core/id"
)

type Audit struct {
	CreatedAt time.Time `json:"createdAt"`
}

type staffer struct {
	Audit
	ID           id.ID           `json:"id" list:"id"`
	FullName     string          `json:"fullName" list:"search,sort"`
	Department   string          `json:"department" list:"search,filter,fold" db:"dept_name"`
	Status       string          `json:"status" list:"filter" options:"Active|On Leave"`
	DepartmentID id.ID           `json:"departmentId"`
	Salary       decimal.Decimal `json:"salary" label:"Base Salary"`
	Age          int             `json:"age"`
	Remote       bool            `json:"remote"`
	Manager      *string         `json:"manager"`
	secret       string
	Ignored      string `json:"-"`
	Hidden       string `json:"hidden" list:"-"`
}

func TestInspect(t *testing.T) {
	s := Inspect(staffer{}, "staff")

	assert.Equal(t, "staff", s.Name)
	assert.Equal(t, "id", s.IDField)
	assert.Equal(t, SortDef{Field: "fullName", Direction: Asc}, s.DefaultSort)
	assert.Equal(t, []string{"createdAt", "id", "fullName", "department", "status", "departmentId", "salary", "age", "remote", "manager"}, s.FieldNames())

	dept, ok := s.Field("department")
	require.True(t, ok)
	assert.True(t, dept.Searchable)
	assert.True(t, dept.Filterable)
	assert.True(t, dept.CaseInsensitive)
	assert.Equal(t, "dept_name", dept.Column)

	status, _ := s.Field("status")
	assert.Equal(t, TypeEnum, status.Type)
	assert.Equal(t, []string{"Active", "On Leave"}, status.Options)

	ref, _ := s.Field("departmentId")
	assert.Equal(t, TypeReference, ref.Type)
	assert.Equal(t, "department", ref.ReferenceType)

	salary, _ := s.Field("salary")
	assert.Equal(t, TypeMoney, salary.Type)
	assert.Equal(t, "Base Salary", salary.Label)

	created, _ := s.Field("createdAt")
	assert.Equal(t, TypeDate, created.Type)
	assert.Equal(t, "Created At", created.Label)

	mgr, _ := s.Field("manager")
	assert.Equal(t, TypeString, mgr.Type)

	assert.Len(t, s.SearchableFields(), 2)
	assert.Len(t, s.FilterableFields(), 2)
	require.NoError(t, s.Validate())
}

func TestGuessLabel(t *testing.T) {
	tests := map[string]string{
		"HireDate":   "Hire Date",
		"EmployeeID": "Employee ID",
		"ID":         "ID",
		"HTTPServer": "HTTP Server",
		"Name":       "Name",
	}
	for in, want := range tests {
		assert.Equal(t, want, guessLabel(in), in)
	}
}

func TestToRecord(t *testing.T) {
	mgr := "Ann"
	created := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	staffID := id.Deterministic("staff", 1)
	r := ToRecord(&staffer{
		Audit:    Audit{CreatedAt: created},
		ID:       staffID,
		FullName: "Sarah Connor",
		Salary:   decimal.RequireFromString("5100.50"),
		Age:      41,
		Manager:  &mgr,
	})

	assert.Equal(t, staffID.String(), r["id"])
	assert.Equal(t, "Sarah Connor", r["fullName"])
	assert.Equal(t, created, r["createdAt"])
	assert.Equal(t, int64(41), r["age"])
	assert.Equal(t, "Ann", r["manager"])
	assert.Nil(t, r["departmentId"])
	assert.True(t, decimal.RequireFromString("5100.5").Equal(r.GetDecimal("salary")))
	assert.NotContains(t, r, "hidden")
	assert.NotContains(t, r, "secret")

	rs := ToRecords([]staffer{{FullName: "A"}, {FullName: "B"}})
	require.Len(t, rs, 2)
	assert.Equal(t, "B", rs[1]["fullName"])
	assert.Nil(t, rs[0]["manager"])
}

func TestCoerce(t *testing.T) {
	s := Schema{
		Name: "people",
		Fields: []FieldDef{
			{Name: "name", Type: TypeString},
			{Name: "age", Type: TypeInteger},
			{Name: "rating", Type: TypeNumber},
			{Name: "salary", Type: TypeMoney},
			{Name: "remote", Type: TypeBoolean},
			{Name: "hired", Type: TypeDate},
			{Name: "code", Type: TypeEnum},
		},
	}

	r := s.Coerce(map[string]any{
		"name":   "Sarah",
		"age":    json.Number("41"),
		"rating": "4.5",
		"salary": "$5,100.50",
		"remote": "yes",
		"hired":  "2021-03-04",
		"code":   json.Number("7"),
		"extra":  "kept",
	})

	assert.Equal(t, "Sarah", r["name"])
	assert.Equal(t, int64(41), r["age"])
	assert.Equal(t, 4.5, r["rating"])
	assert.Equal(t, "5100.5", r.GetDecimal("salary").String())
	assert.Equal(t, true, r["remote"])
	assert.Equal(t, time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), r["hired"])
	assert.Equal(t, "7", r["code"])
	assert.Equal(t, "kept", r["extra"])

	blank := s.Coerce(map[string]any{"age": " ", "name": "", "remote": "maybe"})
	assert.Nil(t, blank["age"])
	assert.Equal(t, "", blank["name"])
	assert.Equal(t, "maybe", blank["remote"])
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
		ok     bool
	}{
		{name: "ok", schema: Schema{Name: "x", Fields: []FieldDef{{Name: "a", Type: TypeString}}}, ok: true},
		{name: "no name", schema: Schema{Fields: []FieldDef{{Name: "a", Type: TypeString}}}},
		{name: "no fields", schema: Schema{Name: "x"}},
		{name: "duplicate", schema: Schema{Name: "x", Fields: []FieldDef{{Name: "a", Type: TypeString}, {Name: "a", Type: TypeString}}}},
		{name: "untyped", schema: Schema{Name: "x", Fields: []FieldDef{{Name: "a"}}}},
		{name: "bad id", schema: Schema{Name: "x", IDField: "id", Fields: []FieldDef{{Name: "a", Type: TypeString}}}},
		{name: "bad sort", schema: Schema{Name: "x", DefaultSort: SortDef{Field: "b"}, Fields: []FieldDef{{Name: "a", Type: TypeString}}}},
		{name: "bad direction", schema: Schema{Name: "x", DefaultSort: SortDef{Field: "a", Direction: "up"}, Fields: []FieldDef{{Name: "a", Type: TypeString}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidSchema))
		})
	}
}

func TestSuggest(t *testing.T) {
	fields := []string{"department", "status", "branch"}

	assert.Equal(t, "department", Suggest("dept", fields))
	assert.Equal(t, "department", Suggest("Departments", fields))
	assert.Equal(t, "status", Suggest("STAT", fields))
	assert.Equal(t, "", Suggest("salary", fields))
	assert.Equal(t, "", Suggest("", fields))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Schema{Name: "b", Fields: []FieldDef{{Name: "x", Type: TypeString}}}))
	require.NoError(t, r.Register(Schema{Name: "a", Fields: []FieldDef{{Name: "x", Type: TypeString}}}))
	assert.Error(t, r.Register(Schema{Name: "bad"}))

	assert.Equal(t, []string{"a", "b"}, r.Names())
	_, ok := r.Get("bad")
	assert.False(t, ok)
}
