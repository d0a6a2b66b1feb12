// Package memory is an in-process implementation of the storage interfaces.
// It backs the unit tests of every layer above storage.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hongminglow/dbgate/internal/models"
	"github.com/hongminglow/dbgate/internal/storage"
)

var (
	_ storage.UserStore   = (*Store)(nil)
	_ storage.SchemaStore = (*Store)(nil)
	_ storage.TableStore  = (*Store)(nil)
	_ storage.AuditStore  = (*Store)(nil)
)

// ActionLog is one recorded audit entry.
type ActionLog struct {
	Title     string
	UserID    *int64
	Timestamp time.Time
}

type table struct {
	columns []string
	key     string
	nextID  int64
	rows    []map[string]any
}

type Store struct {
	mu        sync.Mutex
	users     map[string]models.User
	nextUser  int64
	tables    map[string]*table
	logs      []ActionLog
	mutations int
	failWith  error
}

func NewStore() *Store {
	return &Store{
		users:  make(map[string]models.User),
		tables: make(map[string]*table),
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// AddTable declares a table with key as its primary key column.
func (s *Store) AddTable(name, key string, columns ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = &table{columns: columns, key: key, nextID: 1}
}

// Mutations counts successful and attempted writes to generic tables.
func (s *Store) Mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutations
}

func (s *Store) ActionLogs() []ActionLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ActionLog(nil), s.logs...)
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.User{}, s.failWith
	}
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	s.nextUser++
	user.ID = s.nextUser
	user.CreatedAt = time.Now().UTC()
	s.users[user.Username] = user
	return user, nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.User{}, s.failWith
	}
	u, ok := s.users[username]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) ListColumns(ctx context.Context, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	t, ok := s.tables[name]
	if !ok {
		return nil, nil
	}
	return append([]string(nil), t.columns...), nil
}

func (s *Store) PrimaryKey(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return "", s.failWith
	}
	t, ok := s.tables[name]
	if !ok || t.key == "" {
		return "", storage.ErrNotFound
	}
	return t.key, nil
}

func (s *Store) SelectAll(ctx context.Context, name string) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	t, err := s.table(name)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(t.rows))
	for _, row := range t.rows {
		cp := make(map[string]any, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out, nil
}

func (s *Store) UpdateValue(ctx context.Context, name, keyColumn, column, value string, rowID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	t, err := s.table(name)
	if err != nil {
		return err
	}
	s.mutations++
	for _, row := range t.rows {
		if row[keyColumn] == rowID {
			row[column] = value
		}
	}
	return nil
}

func (s *Store) DeleteRow(ctx context.Context, name, keyColumn string, rowID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	t, err := s.table(name)
	if err != nil {
		return err
	}
	s.mutations++
	kept := t.rows[:0]
	for _, row := range t.rows {
		if row[keyColumn] != rowID {
			kept = append(kept, row)
		}
	}
	t.rows = kept
	return nil
}

func (s *Store) InsertRow(ctx context.Context, name string, columns, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	t, err := s.table(name)
	if err != nil {
		return err
	}
	s.mutations++
	if len(columns) != len(values) {
		return fmt.Errorf("insert into %s: %d columns but %d values", name, len(columns), len(values))
	}
	row := map[string]any{t.key: t.nextID}
	t.nextID++
	for i, c := range columns {
		row[c] = values[i]
	}
	t.rows = append(t.rows, row)
	return nil
}

func (s *Store) AddActionLog(ctx context.Context, title string, userID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.logs = append(s.logs, ActionLog{Title: title, UserID: userID, Timestamp: time.Now().UTC()})
	return nil
}

func (s *Store) table(name string) (*table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, errors.New(`relation "` + name + `" does not exist`)
	}
	return t, nil
}
