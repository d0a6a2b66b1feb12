package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/dbgate/internal/models"
	"github.com/hongminglow/dbgate/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// CreateUser inserts a new user row. A username or email collision yields
// storage.ErrAlreadyExists.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		WITH inserted AS (
			INSERT INTO users (username, password_hash, email, role_id)
			VALUES ($1, $2, $3, (SELECT role_id FROM role WHERE role_name = $4))
			RETURNING user_id, username, email, password_hash, role_id, created_at
		)
		SELECT i.user_id, i.username, i.email, i.password_hash, r.role_name, i.created_at
		FROM inserted i
		JOIN role r ON r.role_id = i.role_id;
		`
	row := s.pool.QueryRow(ctx, query, user.Username, user.PasswordHash, user.Email, user.Role)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

// FindByUsername fetches a user by username together with its role name.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `
	SELECT u.user_id, u.username, u.email, u.password_hash, r.role_name, u.created_at
	FROM users u
	JOIN role r ON r.role_id = u.role_id
	WHERE u.username = $1;
	`
	row := s.pool.QueryRow(ctx, query, username)
	return scanUser(row)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
