package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shop/internal/domain/errs"
	"shop/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Create(ctx context.Context, p *Product) (*Product, error) {
	err := r.db.QueryRow(ctx, `
INSERT INTO products (name, description, brand, image_url, price_cents, count_in_stock, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at
`, p.Name, p.Description, p.Brand, p.ImageURL, p.PriceCents, p.CountInStock, p.IsActive).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `
SELECT id, name, description, brand, image_url, price_cents, count_in_stock, is_active, created_at, updated_at
FROM products
WHERE id = $1
`, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Brand, &p.ImageURL,
		&p.PriceCents, &p.CountInStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Product, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
SELECT id, name, description, brand, image_url, price_cents, count_in_stock, is_active, created_at, updated_at,
       COUNT(*) OVER() AS total
FROM products
WHERE is_active = true
ORDER BY id DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*Product
	total := 0

	for rows.Next() {
		var p Product
		var t int
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Brand, &p.ImageURL,
			&p.PriceCents, &p.CountInStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&t,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		if total == 0 {
			total = t
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

// Update applies a partial admin patch. Only non-nil fields are written.
func (r *Repository) Update(ctx context.Context, id int64, patch Patch) (*Product, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	arg := 2

	add := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, arg))
		args = append(args, v)
		arg++
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Brand != nil {
		add("brand", *patch.Brand)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.PriceCents != nil {
		add("price_cents", *patch.PriceCents)
	}
	if patch.CountInStock != nil {
		add("count_in_stock", *patch.CountInStock)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}

	q := fmt.Sprintf(`
UPDATE products
SET %s
WHERE id = $1
RETURNING id, name, description, brand, image_url, price_cents, count_in_stock, is_active, created_at, updated_at
`, strings.Join(sets, ", "))

	var p Product
	err := r.db.QueryRow(ctx, q, args...).Scan(
		&p.ID, &p.Name, &p.Description, &p.Brand, &p.ImageURL,
		&p.PriceCents, &p.CountInStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return &p, nil
}
