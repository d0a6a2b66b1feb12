package postgres

import (
	"context"
	"fmt"

	"github.com/hongminglow/dbgate/internal/storage"
	"github.com/jackc/pgx/v5"
)

// ListTables returns the base tables of the current schema. The migration
// bookkeeping table is not exposed.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	const query = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = current_schema()
	  AND table_type = 'BASE TABLE'
	  AND table_name <> 'goose_db_version'
	ORDER BY table_name;
	`
	return s.collectNames(ctx, query)
}

// ListColumns returns the column names of table in ordinal order. An unknown
// table yields an empty list.
func (s *Store) ListColumns(ctx context.Context, table string) ([]string, error) {
	const query = `
	SELECT column_name
	FROM information_schema.columns
	WHERE table_schema = current_schema()
	  AND table_name = $1
	ORDER BY ordinal_position;
	`
	return s.collectNames(ctx, query, table)
}

// PrimaryKey returns the single primary-key column of table.
func (s *Store) PrimaryKey(ctx context.Context, table string) (string, error) {
	const query = `
	SELECT kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
	  ON kcu.constraint_name = tc.constraint_name
	 AND kcu.table_schema = tc.table_schema
	 AND kcu.table_name = tc.table_name
	WHERE tc.constraint_type = 'PRIMARY KEY'
	  AND tc.table_schema = current_schema()
	  AND tc.table_name = $1
	ORDER BY kcu.ordinal_position;
	`
	keys, err := s.collectNames(ctx, query, table)
	if err != nil {
		return "", err
	}
	switch len(keys) {
	case 0:
		return "", storage.ErrNotFound
	case 1:
		return keys[0], nil
	default:
		return "", fmt.Errorf("table %q has a composite primary key", table)
	}
}

func (s *Store) collectNames(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}
	return names, nil
}
