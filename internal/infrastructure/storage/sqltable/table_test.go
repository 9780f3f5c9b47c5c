package sqltable

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopledesk/internal/domain"
	"peopledesk/internal/domain/filter"
	"peopledesk/internal/metadata"
)

func schema() metadata.Schema {
	return metadata.Schema{
		Name:    "employees",
		IDField: "id",
		Fields: []metadata.FieldDef{
			{Name: "id", Type: metadata.TypeString},
			{Name: "fullName", Type: metadata.TypeString},
			{Name: "department", Type: metadata.TypeString, Column: "department_name"},
			{Name: "hiredAt", Type: metadata.TypeDate},
		},
	}
}

func TestTable_Select(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		scope    []filter.Item
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "no scope",
			dialect: Postgres,
			wantSQL: `SELECT id AS "id", full_name AS "fullName", department_name AS "department", hired_at AS "hiredAt" ` +
				`FROM hr.employees ORDER BY id`,
		},
		{
			name:     "greater",
			dialect:  Postgres,
			scope:    []filter.Item{{Field: "hiredAt", Operator: filter.Greater, Value: "2020-01-01"}},
			wantSQL:  `SELECT id AS "id", full_name AS "fullName", department_name AS "department", hired_at AS "hiredAt" FROM hr.employees WHERE hired_at > $1 ORDER BY id`,
			wantArgs: []any{"2020-01-01"},
		},
		{
			name:     "contains uses ILIKE on postgres",
			dialect:  Postgres,
			scope:    []filter.Item{{Field: "department", Operator: filter.Contains, Value: "fin"}},
			wantSQL:  `SELECT id AS "id", full_name AS "fullName", department_name AS "department", hired_at AS "hiredAt" FROM hr.employees WHERE department_name ILIKE $1 ORDER BY id`,
			wantArgs: []any{"%fin%"},
		},
		{
			name:     "contains uses LIKE on sqlite",
			dialect:  SQLite,
			scope:    []filter.Item{{Field: "department", Operator: filter.Contains, Value: "fin"}},
			wantSQL:  `SELECT id AS "id", full_name AS "fullName", department_name AS "department", hired_at AS "hiredAt" FROM hr.employees WHERE department_name LIKE ? ORDER BY id`,
			wantArgs: []any{"%fin%"},
		},
		{
			name:     "in list",
			dialect:  SQLite,
			scope:    []filter.Item{{Field: "department", Operator: filter.InList, Value: []any{"HR", "IT"}}},
			wantSQL:  `SELECT id AS "id", full_name AS "fullName", department_name AS "department", hired_at AS "hiredAt" FROM hr.employees WHERE department_name IN (?,?) ORDER BY id`,
			wantArgs: []any{"HR", "IT"},
		},
		{
			name:    "is null",
			dialect: Postgres,
			scope:   []filter.Item{{Field: "hiredAt", Operator: filter.IsNull}},
			wantSQL: `SELECT id AS "id", full_name AS "fullName", department_name AS "department", hired_at AS "hiredAt" FROM hr.employees WHERE hired_at IS NULL ORDER BY id`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := Table{Name: "hr.employees", Schema: schema(), Scope: tt.scope}
			q, err := tbl.Select(tt.dialect)
			require.NoError(t, err)

			sql, args, err := q.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, len(tt.wantArgs), len(args))
			for i := range tt.wantArgs {
				assert.Equal(t, tt.wantArgs[i], args[i])
			}
		})
	}
}

func TestTable_SelectRejectsBadInput(t *testing.T) {
	_, err := Table{Name: "employees; DROP TABLE x", Schema: schema()}.Select(Postgres)
	assert.Error(t, err)

	_, err = Table{Name: "employees", Schema: schema(),
		Scope: []filter.Item{{Field: "password", Operator: filter.Equal, Value: "x"}}}.Select(Postgres)
	assert.ErrorContains(t, err, "invalid scope field")

	bad := schema()
	bad.Fields[1].Column = `name" --`
	_, err = Table{Name: "employees", Schema: bad}.Select(Postgres)
	assert.Error(t, err)
}

func TestRecord_Normalizes(t *testing.T) {
	u := uuid.MustParse("0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b")
	got := Record(map[string]any{
		"name": []byte("Sarah"),
		"ref":  [16]byte(u),
		"uid":  u,
		"age":  int64(34),
		"none": nil,
	})
	assert.Equal(t, domain.Record{
		"name": "Sarah",
		"ref":  u.String(),
		"uid":  u.String(),
		"age":  int64(34),
		"none": nil,
	}, got)
}

func TestParseTables(t *testing.T) {
	got, err := ParseTables(" employees = hr.employees ,leads=crm_leads,")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"employees": "hr.employees", "leads": "crm_leads"}, got)
	assert.Equal(t, []string{"employees", "leads"}, Screens(got))

	_, err = ParseTables("employees")
	assert.Error(t, err)
	_, err = ParseTables("employees=hr.emp;loyees")
	assert.Error(t, err)
}

func TestParseScopes(t *testing.T) {
	got, err := ParseScopes("employees=status:neq:Terminated; employees=department:in:HR|IT")
	require.NoError(t, err)
	require.Len(t, got["employees"], 2)
	assert.Equal(t, filter.NotEqual, got["employees"][0].Operator)
	assert.Equal(t, []any{"HR", "IT"}, got["employees"][1].Value)

	_, err = ParseScopes("employees=status:like:x")
	assert.Error(t, err)
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"id":           "id",
		"fullName":     "full_name",
		"hiredAt":      "hired_at",
		"employeeNo":   "employee_no",
		"managerID":    "manager_id",
		"HTTPStatus":   "http_status",
		"already_done": "already_done",
	}
	for in, want := range tests {
		assert.Equal(t, want, SnakeCase(in), in)
	}
}
