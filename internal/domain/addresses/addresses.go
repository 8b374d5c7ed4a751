package addresses

import (
	"context"
	"errors"
	"fmt"

	"shop/internal/domain/errs"
	"shop/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	q dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{q: q}
}

func (r *Repository) Create(ctx context.Context, a *Address) error {
	// Only one default per user. Demote the rest first; the two statements
	// run on the same Querier, so inside a tx this stays consistent.
	if a.IsDefault {
		if _, err := r.q.Exec(ctx, `
UPDATE addresses SET is_default = false WHERE user_id = $1 AND is_default = true
`, a.UserID); err != nil {
			return fmt.Errorf("demote default address: %w", err)
		}
	}

	err := r.q.QueryRow(ctx, `
INSERT INTO addresses (user_id, name, line1, line2, city, state, postal_code, country, phone, is_default)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, created_at
`, a.UserID, a.Name, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.Phone, a.IsDefault,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create address: %w", err)
	}
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Address, error) {
	rows, err := r.q.Query(ctx, `
SELECT id, user_id, name, line1, line2, city, state, postal_code, country, phone, is_default, created_at
FROM addresses
WHERE user_id = $1
ORDER BY is_default DESC, created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	var out []Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Name, &a.Line1, &a.Line2, &a.City,
			&a.State, &a.PostalCode, &a.Country, &a.Phone, &a.IsDefault, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) GetForUser(ctx context.Context, userID, addressID int64) (*Address, error) {
	var a Address
	err := r.q.QueryRow(ctx, `
SELECT id, user_id, name, line1, line2, city, state, postal_code, country, phone, is_default, created_at
FROM addresses
WHERE id = $1 AND user_id = $2
`, addressID, userID).Scan(
		&a.ID, &a.UserID, &a.Name, &a.Line1, &a.Line2, &a.City,
		&a.State, &a.PostalCode, &a.Country, &a.Phone, &a.IsDefault, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("address %d: %w", addressID, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	return &a, nil
}

func (r *Repository) Delete(ctx context.Context, userID, addressID int64) error {
	tag, err := r.q.Exec(ctx, `
DELETE FROM addresses WHERE id = $1 AND user_id = $2
`, addressID, userID)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("address %d: %w", addressID, errs.ErrNotFound)
	}
	return nil
}
