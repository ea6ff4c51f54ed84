// internal/store/users.go
package store

import (
	"context"

	"survey-workers/internal/common/errors"
	"survey-workers/internal/models"
)

// ListUsers returns all registered users, the default notification audience.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email
		FROM users
		ORDER BY id`)
	if err != nil {
		return nil, errors.NewPersistenceFailureError(err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, errors.NewPersistenceFailureError(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceFailureError(err)
	}
	return users, nil
}
