package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopledesk/internal/domain"
	"peopledesk/internal/domain/filter"
	"peopledesk/internal/infrastructure/storage/sqltable"
	"peopledesk/internal/metadata"
)

func testSchema() metadata.Schema {
	return metadata.Schema{
		Name:    "employees",
		IDField: "id",
		Fields: []metadata.FieldDef{
			{Name: "id", Type: metadata.TypeString},
			{Name: "fullName", Type: metadata.TypeString},
			{Name: "department", Type: metadata.TypeString, Column: "department_name"},
			{Name: "age", Type: metadata.TypeInteger},
			{Name: "salary", Type: metadata.TypeMoney},
			{Name: "remote", Type: metadata.TypeBoolean},
			{Name: "hiredAt", Type: metadata.TypeDate},
		},
	}
}

func testRecords() []domain.Record {
	return []domain.Record{
		{"id": "E002", "fullName": "Abebe Mekonnen", "department": "Finance", "age": int64(29),
			"salary": decimal.RequireFromString("3250.5"), "remote": false,
			"hiredAt": time.Date(2019, 11, 15, 0, 0, 0, 0, time.UTC)},
		{"id": "E001", "fullName": "Sarah Johnson", "department": "Human Resources", "age": int64(34),
			"salary": decimal.NewFromInt(4500), "remote": true},
	}
}

func seeded(t *testing.T) *TableSource {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Seed(ctx, db, "employees", testSchema(), testRecords()))
	return NewTableSource(db, sqltable.Table{Name: "employees", Schema: testSchema()})
}

func TestSeedThenLoad(t *testing.T) {
	src := seeded(t)
	assert.Equal(t, "sqlite:employees", src.Describe())

	raw, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, raw, 2)

	schema := testSchema()
	first := schema.Coerce(raw[0])
	assert.Equal(t, "E001", first["id"], "rows come back ordered by id")
	assert.Equal(t, "Human Resources", first["department"])
	assert.Equal(t, true, first["remote"])
	assert.Nil(t, first["hiredAt"])

	second := schema.Coerce(raw[1])
	assert.Equal(t, int64(29), second["age"])
	assert.True(t, decimal.RequireFromString("3250.5").Equal(second["salary"].(decimal.Decimal)))
	assert.Equal(t, time.Date(2019, 11, 15, 0, 0, 0, 0, time.UTC), second["hiredAt"])
}

func TestSeed_ReplacesRows(t *testing.T) {
	src := seeded(t)
	require.NoError(t, Seed(context.Background(), src.db, "employees", testSchema(), testRecords()[:1]))

	raw, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, raw, 1)
}

func TestLoad_Scope(t *testing.T) {
	src := seeded(t)
	src.table.Scope = []filter.Item{{Field: "department", Operator: filter.Contains, Value: "human"}}

	raw, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "Sarah Johnson", raw[0]["fullName"])
}

func TestSeed_RejectsBadTableName(t *testing.T) {
	db, err := Open(context.Background(), Memory)
	require.NoError(t, err)
	defer db.Close()

	err = Seed(context.Background(), db, "employees; DROP", testSchema(), nil)
	assert.Error(t, err)
}
