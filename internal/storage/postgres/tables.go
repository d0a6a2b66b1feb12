package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// SelectAll returns every row of table, each row decoded from row_to_json so
// that column values keep their JSON-friendly representation.
func (s *Store) SelectAll(ctx context.Context, table string) ([]map[string]any, error) {
	query := fmt.Sprintf("SELECT row_to_json(t) FROM %s AS t", ident(table))
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[map[string]any])
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", table, err)
	}
	return out, nil
}

// UpdateValue sets one cell. A missing row is not an error.
func (s *Store) UpdateValue(ctx context.Context, table, keyColumn, column, value string, rowID int64) error {
	query := fmt.Sprintf("UPDATE %s SET %s = $1 WHERE %s = $2", ident(table), ident(column), ident(keyColumn))
	if _, err := s.pool.Exec(ctx, query, value, rowID); err != nil {
		return fmt.Errorf("update %s.%s: %w", table, column, err)
	}
	return nil
}

// DeleteRow removes one row by primary key. A missing row is not an error.
func (s *Store) DeleteRow(ctx context.Context, table, keyColumn string, rowID int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", ident(table), ident(keyColumn))
	if _, err := s.pool.Exec(ctx, query, rowID); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

// InsertRow pairs columns and values positionally. Arity is not checked here;
// a mismatch is rejected by the server.
func (s *Store) InsertRow(ctx context.Context, table string, columns, values []string) error {
	query := buildInsert(table, columns, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func buildInsert(table string, columns []string, nValues int) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = ident(c)
	}
	placeholders := make([]string, nValues)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ident(table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
