// Package schema validates caller-supplied table and column names against the
// live database catalog before they reach a generated statement.
package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/dbgate/internal/common"
	"github.com/hongminglow/dbgate/internal/storage"
)

type Guard struct {
	catalog storage.SchemaStore
}

func NewGuard(catalog storage.SchemaStore) *Guard {
	return &Guard{catalog: catalog}
}

func (g *Guard) TableExists(ctx context.Context, name string) (bool, error) {
	tables, err := g.catalog.ListTables(ctx)
	if err != nil {
		return false, err
	}
	return contains(tables, name), nil
}

func (g *Guard) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	columns, err := g.catalog.ListColumns(ctx, table)
	if err != nil {
		return false, err
	}
	return contains(columns, column), nil
}

// RequireTable fails with ErrTableNotFound when name is not a live table.
func (g *Guard) RequireTable(ctx context.Context, name string) error {
	ok, err := g.TableExists(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: list tables: %v", common.ErrUnexpected, err)
	}
	if !ok {
		return common.ErrTableNotFound
	}
	return nil
}

// RequireColumns fails with ErrColumnNotFound on the first name that is not a
// column of table. The catalog is read once for all names.
func (g *Guard) RequireColumns(ctx context.Context, table string, columns ...string) error {
	live, err := g.catalog.ListColumns(ctx, table)
	if err != nil {
		return fmt.Errorf("%w: list columns: %v", common.ErrUnexpected, err)
	}
	for _, c := range columns {
		if !contains(live, c) {
			return fmt.Errorf("%w: %q", common.ErrColumnNotFound, c)
		}
	}
	return nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Columns lists the live columns of table in ordinal order.
func (g *Guard) Columns(ctx context.Context, table string) ([]string, error) {
	columns, err := g.catalog.ListColumns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("%w: list columns: %v", common.ErrUnexpected, err)
	}
	return columns, nil
}

// KeyColumn returns the single-column primary key rows of table are addressed
// by. Tables without one cannot be updated or deleted from by id.
func (g *Guard) KeyColumn(ctx context.Context, table string) (string, error) {
	key, err := g.catalog.PrimaryKey(ctx, table)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%w: table %q has no single-column primary key", common.ErrUnexpected, table)
		}
		return "", fmt.Errorf("%w: primary key: %v", common.ErrUnexpected, err)
	}
	return key, nil
}
