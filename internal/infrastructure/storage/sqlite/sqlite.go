// Package sqlite loads screens from SQLite tables and seeds them from records.
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"peopledesk/internal/domain"
	"peopledesk/internal/infrastructure/storage/sqltable"
	"peopledesk/internal/metadata"
)

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	if path == Memory {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// TableSource loads a screen from one table on every Load.
type TableSource struct {
	db    *sqlx.DB
	table sqltable.Table
}

// NewTableSource returns a source reading table through db.
func NewTableSource(db *sqlx.DB, table sqltable.Table) *TableSource {
	return &TableSource{db: db, table: table}
}

// Describe implements domain.Describer.
func (s *TableSource) Describe() string { return "sqlite:" + s.table.Name }

// Load runs the screen's SELECT and returns one record per row.
func (s *TableSource) Load(ctx context.Context) ([]domain.Record, error) {
	q, err := s.table.Select(sqltable.SQLite)
	if err != nil {
		return nil, err
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.table.Name, err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Record
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table.Name, err)
		}
		out = append(out, sqltable.Record(row))
	}
	return out, rows.Err()
}

// Seed replaces the contents of table with records, creating the table from
// the schema when it does not exist.
func Seed(ctx context.Context, db *sqlx.DB, table string, schema metadata.Schema, records []domain.Record) error {
	if _, err := (sqltable.Table{Name: table, Schema: schema}).Select(sqltable.SQLite); err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, createTable(table, schema)); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	cols := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		cols[i] = sqltable.Column(f)
	}

	builder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
	for _, rec := range records {
		vals := make([]any, len(schema.Fields))
		for i, f := range schema.Fields {
			v, _ := rec.Get(f.Name)
			vals[i] = columnValue(v)
		}
		query, args, err := builder.Insert(table).Columns(cols...).Values(vals...).ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}

	return tx.Commit()
}

func createTable(table string, schema metadata.Schema) string {
	defs := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		defs[i] = sqltable.Column(f) + " " + columnType(f.Type)
		if f.Name == schema.IDField {
			defs[i] += " PRIMARY KEY"
		}
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
}

// columnType keeps money and dates as TEXT so values round-trip exactly.
func columnType(t metadata.FieldType) string {
	switch t {
	case metadata.TypeInteger, metadata.TypeBoolean:
		return "INTEGER"
	case metadata.TypeNumber:
		return "REAL"
	}
	return "TEXT"
}

func columnValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.String()
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x.Format(time.RFC3339)
	case bool:
		if x {
			return 1
		}
		return 0
	case domain.Record, map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		return string(b)
	}
	return v
}
