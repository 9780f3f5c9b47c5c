package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"peopledesk/internal/domain"
	"peopledesk/internal/infrastructure/storage/sqltable"
)

// TableSource loads a screen from one table on every Load.
type TableSource struct {
	db    pgxscan.Querier
	table sqltable.Table
}

// NewTableSource returns a source reading table through db.
func NewTableSource(db pgxscan.Querier, table sqltable.Table) *TableSource {
	return &TableSource{db: db, table: table}
}

// Describe implements domain.Describer.
func (s *TableSource) Describe() string { return "postgres:" + s.table.Name }

// Load runs the screen's SELECT and returns one record per row.
func (s *TableSource) Load(ctx context.Context) ([]domain.Record, error) {
	q, err := s.table.Select(sqltable.Postgres)
	if err != nil {
		return nil, err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []map[string]any
	if err := pgxscan.Select(ctx, s.db, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("load %s: %w", s.table.Name, err)
	}

	out := make([]domain.Record, len(rows))
	for i, row := range rows {
		out[i] = sqltable.Record(row)
	}
	return out, nil
}
