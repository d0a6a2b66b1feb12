package postgres

import (
	"context"
	"fmt"
)

// AddActionLog appends one entry to the action log.
func (s *Store) AddActionLog(ctx context.Context, title string, userID *int64) error {
	const query = `INSERT INTO action_log (action_type, user_id) VALUES ($1, $2);`
	if _, err := s.pool.Exec(ctx, query, title, userID); err != nil {
		return fmt.Errorf("insert action log: %w", err)
	}
	return nil
}
