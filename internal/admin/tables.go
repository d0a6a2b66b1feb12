package admin

import (
	"context"

	"github.com/hongminglow/dbgate/internal/models"
)

const (
	opReadTable   = "READ_TABLE"
	opUpdateValue = "UPDATE_VALUE"
	opDeleteRow   = "DELETE_ROW"
	opInsertRow   = "INSERT_ROW"
)

// ReadFullTable returns every row of table. An empty table yields its column
// names instead so the caller can still render a header.
func (s *Service) ReadFullTable(ctx context.Context, token, table string) (view models.TableView, err error) {
	user, err := s.authorize(ctx, token, opReadTable)
	if err != nil {
		return models.TableView{}, err
	}
	defer func() { s.audit.Outcome(ctx, opReadTable, user.ID, err) }()

	if err := s.guard.RequireTable(ctx, table); err != nil {
		return models.TableView{}, err
	}
	rows, err := s.tables.SelectAll(ctx, table)
	if err != nil {
		return models.TableView{}, unexpected("select", err)
	}
	if len(rows) > 0 {
		return models.TableView{Rows: rows}, nil
	}
	columns, err := s.guard.Columns(ctx, table)
	if err != nil {
		return models.TableView{}, err
	}
	return models.TableView{Rows: rows, Columns: columns}, nil
}

// UpdateValue sets one cell of the row whose primary key is rowID. A missing
// row is not an error.
func (s *Service) UpdateValue(ctx context.Context, token, table, column, value string, rowID int64) (err error) {
	user, err := s.authorize(ctx, token, opUpdateValue)
	if err != nil {
		return err
	}
	defer func() { s.audit.Outcome(ctx, opUpdateValue, user.ID, err) }()

	if err := s.guard.RequireTable(ctx, table); err != nil {
		return err
	}
	if err := s.guard.RequireColumns(ctx, table, column); err != nil {
		return err
	}
	key, err := s.guard.KeyColumn(ctx, table)
	if err != nil {
		return err
	}
	if err := s.tables.UpdateValue(ctx, table, key, column, value, rowID); err != nil {
		return unexpected("update", err)
	}
	return nil
}

// DeleteRow removes the row whose primary key is rowID, if any.
func (s *Service) DeleteRow(ctx context.Context, token, table string, rowID int64) (err error) {
	user, err := s.authorize(ctx, token, opDeleteRow)
	if err != nil {
		return err
	}
	defer func() { s.audit.Outcome(ctx, opDeleteRow, user.ID, err) }()

	if err := s.guard.RequireTable(ctx, table); err != nil {
		return err
	}
	key, err := s.guard.KeyColumn(ctx, table)
	if err != nil {
		return err
	}
	if err := s.tables.DeleteRow(ctx, table, key, rowID); err != nil {
		return unexpected("delete", err)
	}
	return nil
}

// InsertRow adds one row. columns and values pair up by position; a length
// mismatch is left to the store and comes back as ErrUnexpected.
func (s *Service) InsertRow(ctx context.Context, token, table string, columns, values []string) (err error) {
	user, err := s.authorize(ctx, token, opInsertRow)
	if err != nil {
		return err
	}
	defer func() { s.audit.Outcome(ctx, opInsertRow, user.ID, err) }()

	if err := s.guard.RequireTable(ctx, table); err != nil {
		return err
	}
	if err := s.guard.RequireColumns(ctx, table, columns...); err != nil {
		return err
	}
	if err := s.tables.InsertRow(ctx, table, columns, values); err != nil {
		return unexpected("insert", err)
	}
	return nil
}
