package carts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shop/internal/domain/errs"
	"shop/internal/infra/dbx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository is the sole authoritative mutator of a user's server-side cart.
// All quantity changes go through atomic upserts/conditional updates at the
// storage layer, never read-modify-write in Go, so concurrent mutations of
// the same cart cannot lose updates.
type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

// ensureCart returns the user's cart id, creating the row lazily on first
// use. The upsert makes concurrent first-adds converge on one row.
func (r *Repository) ensureCart(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
RETURNING id
`, userID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensure cart: %w", err)
	}
	return id, nil
}

func (r *Repository) cartID(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("cart for user %d: %w", userID, errs.ErrNotFound)
		}
		return 0, fmt.Errorf("get cart: %w", err)
	}
	return id, nil
}

// AddItem upserts a line: an existing (product, attributes) pair accumulates
// quantity, a new pair snapshots unit_price_cents from the live product.
func (r *Repository) AddItem(ctx context.Context, userID, productID int64, qty int, attrs map[string]any) error {
	if qty < 1 {
		return fmt.Errorf("quantity must be >= 1: %w", errs.ErrValidation)
	}

	attrsB, err := attrsJSON(attrs)
	if err != nil {
		return fmt.Errorf("%v: %w", err, errs.ErrValidation)
	}

	cartID, err := r.ensureCart(ctx, userID)
	if err != nil {
		return err
	}

	// The CTE returns no row when the product is missing or inactive, which
	// makes the INSERT affect 0 rows.
	tag, err := r.db.Exec(ctx, `
WITH p AS (
  SELECT price_cents
  FROM products
  WHERE id = $1 AND is_active = true
)
INSERT INTO cart_items (cart_id, product_id, quantity, unit_price_cents, attributes)
SELECT $2, $1, $3, p.price_cents, $4::jsonb
FROM p
ON CONFLICT (cart_id, product_id, attributes)
DO UPDATE SET
  quantity   = cart_items.quantity + EXCLUDED.quantity,
  updated_at = now()
`, productID, cartID, qty, attrsB)
	if err != nil {
		return fmt.Errorf("add item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d not purchasable: %w", productID, errs.ErrNotFound)
	}

	return nil
}

func (r *Repository) UpdateItemQty(ctx context.Context, userID, itemID int64, qty int) error {
	if qty < 1 {
		return fmt.Errorf("quantity must be >= 1 (use remove to delete a line): %w", errs.ErrValidation)
	}

	var cartID int64
	err := r.db.QueryRow(ctx, `
UPDATE cart_items ci
SET quantity   = $3,
    updated_at = now()
WHERE ci.id = $2
  AND ci.cart_id = (SELECT id FROM carts WHERE user_id = $1)
RETURNING ci.cart_id
`, userID, itemID, qty).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("cart item %d: %w", itemID, errs.ErrNotFound)
		}
		return fmt.Errorf("update quantity: %w", err)
	}

	return nil
}

// RemoveItem deletes a line. Deleting an already-absent item is not an
// error, so retrying clients can repeat the request safely; only a missing
// cart reports not-found.
func (r *Repository) RemoveItem(ctx context.Context, userID, itemID int64) error {
	cartID, err := r.cartID(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, `
DELETE FROM cart_items
WHERE id = $2 AND cart_id = $1
`, cartID, itemID); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}

	return nil
}

// Clear removes every line but keeps the cart row; the cart is cleared, not
// deleted, after a successful order.
func (r *Repository) Clear(ctx context.Context, userID int64) error {
	cartID, err := r.cartID(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}

// MergeGuestItems folds the client-held guest cart into the authoritative
// cart: each distinct (product, attributes) pair accumulates like AddItem.
// Guest lines whose product no longer resolves are dropped rather than
// failing the whole merge.
//
// When the client supplies a merge key, a second call with the same key is a
// no-op, which guards against double-apply on network retry. The repository
// must be bound to a transaction for the ledger insert and the upserts to be
// atomic together.
func (r *Repository) MergeGuestItems(ctx context.Context, userID int64, key *uuid.UUID, items []GuestItem) error {
	for _, it := range items {
		if it.Quantity < 1 {
			return fmt.Errorf("guest item quantity must be >= 1 (product %d): %w", it.ProductID, errs.ErrValidation)
		}
	}

	normalized, err := NormalizeGuestItems(items)
	if err != nil {
		return fmt.Errorf("%v: %w", err, errs.ErrValidation)
	}

	cartID, err := r.ensureCart(ctx, userID)
	if err != nil {
		return err
	}

	if key != nil {
		tag, err := r.db.Exec(ctx, `
INSERT INTO cart_merges (cart_id, merge_key)
VALUES ($1, $2)
ON CONFLICT (cart_id, merge_key) DO NOTHING
`, cartID, *key)
		if err != nil {
			return fmt.Errorf("record merge key: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// Already applied; do not double-apply guest quantities.
			return nil
		}
	}

	for _, it := range normalized {
		attrsB, err := attrsJSON(it.Attributes)
		if err != nil {
			return fmt.Errorf("%v: %w", err, errs.ErrValidation)
		}

		if _, err := r.db.Exec(ctx, `
WITH p AS (
  SELECT price_cents
  FROM products
  WHERE id = $1 AND is_active = true
)
INSERT INTO cart_items (cart_id, product_id, quantity, unit_price_cents, attributes)
SELECT $2, $1, $3, p.price_cents, $4::jsonb
FROM p
ON CONFLICT (cart_id, product_id, attributes)
DO UPDATE SET
  quantity   = cart_items.quantity + EXCLUDED.quantity,
  updated_at = now()
`, it.ProductID, cartID, it.Quantity, attrsB); err != nil {
			return fmt.Errorf("merge item (product %d): %w", it.ProductID, err)
		}
	}

	return nil
}

// GetView returns the cart with priced lines and derived totals, or
// (nil, nil) when the user has no cart yet.
func (r *Repository) GetView(ctx context.Context, userID int64) (*CartView, error) {
	var v CartView
	err := r.db.QueryRow(ctx, `
SELECT id, user_id, created_at, updated_at
FROM carts
WHERE user_id = $1
`, userID).Scan(&v.Cart.ID, &v.Cart.UserID, &v.Cart.CreatedAt, &v.Cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	rows, err := r.db.Query(ctx, `
SELECT ci.id, ci.product_id, p.name, ci.attributes, ci.quantity,
       ci.unit_price_cents, ci.quantity * ci.unit_price_cents AS line_total_cents,
       p.image_url
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.id ASC
`, v.Cart.ID)
	if err != nil {
		return nil, fmt.Errorf("cart lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line CartLine
		var attrs []byte
		if err := rows.Scan(
			&line.ItemID,
			&line.ProductID,
			&line.ProductName,
			&attrs,
			&line.Quantity,
			&line.UnitPriceCents,
			&line.LineTotalCents,
			&line.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		_ = json.Unmarshal(attrs, &line.Attributes)

		v.TotalItems += line.Quantity
		v.ItemsTotalCents += line.LineTotalCents
		v.Items = append(v.Items, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cart lines rows: %w", err)
	}

	return &v, nil
}
