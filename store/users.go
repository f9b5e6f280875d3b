package store

import (
	"context"
	"database/sql"
	"strings"

	"reelsmith/types"
)

// CreateUser inserts a user; a duplicate email yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, email string) (*types.User, error) {
	createdAt := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, created_at) VALUES (?, ?)`, email, createdAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrConflict
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &types.User{ID: id, Email: email, CreatedAt: parseTime(createdAt)}, nil
}

// GetUser fetches a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (*types.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// ListUsers returns users ordered by creation time, newest first.
func (s *Store) ListUsers(ctx context.Context, skip, limit int) ([]*types.User, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, created_at FROM users ORDER BY id DESC LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*types.User
	for rows.Next() {
		var u types.User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Email, &createdAt); err != nil {
			return nil, err
		}
		u.CreatedAt = parseTime(createdAt)
		users = append(users, &u)
	}
	return users, rows.Err()
}

func scanUser(row *sql.Row) (*types.User, error) {
	var u types.User
	var createdAt string
	err := row.Scan(&u.ID, &u.Email, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}
