package users

import (
	"context"
	"errors"
	"fmt"

	"shop/internal/domain/errs"
	"shop/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository struct {
	q dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{q: q}
}

func (r *Repository) Create(ctx context.Context, user *User) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := r.q.QueryRow(ctx, `
INSERT INTO users (name, email, password, is_admin)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, updated_at
`, user.Name, user.Email, user.Password.hash, user.IsAdmin,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var u User
	err := r.q.QueryRow(ctx, `
SELECT id, name, email, password, is_admin, created_at, updated_at
FROM users
WHERE id = $1
`, id).Scan(&u.ID, &u.Name, &u.Email, &u.Password.hash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var u User
	err := r.q.QueryRow(ctx, `
SELECT id, name, email, password, is_admin, created_at, updated_at
FROM users
WHERE email = $1
`, email).Scan(&u.ID, &u.Name, &u.Email, &u.Password.hash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}
