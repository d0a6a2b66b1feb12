package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/dbgate/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations for user identities.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// SchemaStore reads live schema metadata from the database catalogs.
type SchemaStore interface {
	ListTables(ctx context.Context) ([]string, error)
	ListColumns(ctx context.Context, table string) ([]string, error)
	PrimaryKey(ctx context.Context, table string) (string, error)
}

// TableStore runs generic statements against tables and columns whose names
// have already been validated against SchemaStore. Values are always bound as
// parameters; identifiers are quoted.
type TableStore interface {
	SelectAll(ctx context.Context, table string) ([]map[string]any, error)
	UpdateValue(ctx context.Context, table, keyColumn, column, value string, rowID int64) error
	DeleteRow(ctx context.Context, table, keyColumn string, rowID int64) error
	InsertRow(ctx context.Context, table string, columns, values []string) error
}

// AuditStore persists action log entries. Entries are written, never read.
type AuditStore interface {
	AddActionLog(ctx context.Context, title string, userID *int64) error
}

// RevocationStore remembers token ids that must be refused until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
