package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shop/internal/domain/errs"
	"shop/internal/domain/pricing"
	"shop/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	q        dbx.Querier
	gen      *OrderNumberGenerator
	refs     *PublicRefEncoder
	priceCfg pricing.Config
}

func NewRepository(q dbx.Querier, gen *OrderNumberGenerator, refs *PublicRefEncoder, priceCfg pricing.Config) *Repository {
	if gen == nil {
		panic("orders: OrderNumberGenerator is nil")
	}
	if refs == nil {
		panic("orders: PublicRefEncoder is nil")
	}
	return &Repository{q: q, gen: gen, refs: refs, priceCfg: priceCfg}
}

const orderColumns = `
id, user_id, order_number, public_ref, status, payment_method,
is_paid, paid_at, payment_result, is_delivered, delivered_at, tracking_number,
ship_name, ship_line1, ship_line2, ship_city, ship_state, ship_postal_code, ship_country, ship_phone,
bill_name, bill_line1, bill_line2, bill_city, bill_state, bill_postal_code, bill_country, bill_phone,
items_total_cents, tax_cents, shipping_cents, grand_total_cents, created_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var result []byte
	err := row.Scan(
		&o.ID, &o.UserID, &o.OrderNumber, &o.PublicRef, &o.Status, &o.PaymentMethod,
		&o.IsPaid, &o.PaidAt, &result, &o.IsDelivered, &o.DeliveredAt, &o.TrackingNumber,
		&o.Shipping.Name, &o.Shipping.Line1, &o.Shipping.Line2, &o.Shipping.City,
		&o.Shipping.State, &o.Shipping.PostalCode, &o.Shipping.Country, &o.Shipping.Phone,
		&o.Billing.Name, &o.Billing.Line1, &o.Billing.Line2, &o.Billing.City,
		&o.Billing.State, &o.Billing.PostalCode, &o.Billing.Country, &o.Billing.Phone,
		&o.ItemsTotalCents, &o.TaxCents, &o.ShippingCents, &o.GrandTotalCents, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(result) > 0 {
		var pr PaymentResult
		if err := json.Unmarshal(result, &pr); err == nil {
			o.PaymentResult = &pr
		}
	}
	return &o, nil
}

// cartLine is the checkout-time snapshot of one cart row joined to its
// product.
type cartLine struct {
	productID      int64
	productName    string
	imageURL       *string
	attributes     []byte
	quantity       int
	unitPriceCents int64
	countInStock   int
	productOK      bool
}

// CreateFromCart converts the user's cart into an order.
//
// Assumes it is called INSIDE a transaction. The sequence is:
//  1. lock the cart row, a per-user checkout mutex, so two concurrent
//     checkouts cannot both snapshot the same lines;
//  2. snapshot lines joined to live products (name/image/price at this instant);
//  3. verify addresses resolve and belong to the user;
//  4. reserve stock with conditional decrements, never read-modify-write;
//  5. price the snapshot and insert the order + items.
//
// The caller clears the cart only after the transaction commits, so a failed
// persistence can never leave the cart emptied with no order to show for it.
func (r *Repository) CreateFromCart(ctx context.Context, userID, shipAddrID, billAddrID int64, paymentMethod string) (*Order, error) {
	var cartID int64
	err := r.q.QueryRow(ctx, `
SELECT id FROM carts WHERE user_id = $1 FOR UPDATE
`, userID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrEmptyCart
		}
		return nil, fmt.Errorf("lock cart: %w", err)
	}

	lines, err := r.snapshotLines(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errs.ErrEmptyCart
	}

	for _, l := range lines {
		if !l.productOK {
			return nil, fmt.Errorf("product %d no longer available: %w", l.productID, errs.ErrNotFound)
		}
	}

	ship, err := r.addressSnapshot(ctx, shipAddrID, userID)
	if err != nil {
		return nil, err
	}
	bill, err := r.addressSnapshot(ctx, billAddrID, userID)
	if err != nil {
		return nil, err
	}

	// Reserve stock line by line. The WHERE guard makes the decrement atomic;
	// a zero row count means another checkout got there first or stock was
	// never sufficient.
	for _, l := range lines {
		tag, err := r.q.Exec(ctx, `
UPDATE products
SET count_in_stock = count_in_stock - $2,
    updated_at     = now()
WHERE id = $1 AND count_in_stock >= $2
`, l.productID, l.quantity)
		if err != nil {
			return nil, fmt.Errorf("reserve stock (product %d): %w", l.productID, err)
		}
		if tag.RowsAffected() == 0 {
			return nil, &errs.InsufficientStockError{
				ProductID:   l.productID,
				ProductName: l.productName,
				Requested:   l.quantity,
				Available:   l.countInStock,
			}
		}
	}

	priced := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		priced = append(priced, pricing.Line{UnitPriceCents: l.unitPriceCents, Quantity: l.quantity})
	}
	totals := pricing.QuoteLines(priced, r.priceCfg)

	o := &Order{
		UserID:          userID,
		OrderNumber:     r.gen.Generate(userID),
		Status:          StatusPending,
		PaymentMethod:   paymentMethod,
		Shipping:        *ship,
		Billing:         *bill,
		ItemsTotalCents: totals.ItemsTotalCents,
		TaxCents:        totals.TaxCents,
		ShippingCents:   totals.ShippingCents,
		GrandTotalCents: totals.GrandTotalCents,
	}

	if err := r.q.QueryRow(ctx, `
INSERT INTO orders (
  user_id, order_number, public_ref, status, payment_method,
  ship_name, ship_line1, ship_line2, ship_city, ship_state, ship_postal_code, ship_country, ship_phone,
  bill_name, bill_line1, bill_line2, bill_city, bill_state, bill_postal_code, bill_country, bill_phone,
  items_total_cents, tax_cents, shipping_cents, grand_total_cents
) VALUES (
  $1, $2, '', $3::order_status, $4,
  $5, $6, $7, $8, $9, $10, $11, $12,
  $13, $14, $15, $16, $17, $18, $19, $20,
  $21, $22, $23, $24
)
RETURNING id, created_at
`,
		userID, o.OrderNumber, o.Status, paymentMethod,
		ship.Name, ship.Line1, ship.Line2, ship.City, ship.State, ship.PostalCode, ship.Country, ship.Phone,
		bill.Name, bill.Line1, bill.Line2, bill.City, bill.State, bill.PostalCode, bill.Country, bill.Phone,
		o.ItemsTotalCents, o.TaxCents, o.ShippingCents, o.GrandTotalCents,
	).Scan(&o.ID, &o.CreatedAt); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	ref, err := r.refs.Encode(o.ID)
	if err != nil {
		return nil, err
	}
	if _, err := r.q.Exec(ctx, `UPDATE orders SET public_ref = $2 WHERE id = $1`, o.ID, ref); err != nil {
		return nil, fmt.Errorf("set public ref: %w", err)
	}
	o.PublicRef = ref

	// Copy order_items in cart order; insertion order is display order.
	for _, l := range lines {
		if _, err := r.q.Exec(ctx, `
INSERT INTO order_items (
  order_id, product_id, product_name, image_url, attributes,
  quantity, unit_price_cents, total_price_cents
) VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8)
`, o.ID, l.productID, l.productName, l.imageURL, l.attributes,
			l.quantity, l.unitPriceCents, int64(l.quantity)*l.unitPriceCents); err != nil {
			return nil, fmt.Errorf("copy order items: %w", err)
		}
	}

	return o, nil
}

func (r *Repository) snapshotLines(ctx context.Context, cartID int64) ([]cartLine, error) {
	rows, err := r.q.Query(ctx, `
SELECT ci.product_id, ci.quantity, ci.unit_price_cents, ci.attributes,
       COALESCE(p.name, ''), p.image_url, COALESCE(p.count_in_stock, 0),
       (p.id IS NOT NULL AND p.is_active) AS product_ok
FROM cart_items ci
LEFT JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.id ASC
`, cartID)
	if err != nil {
		return nil, fmt.Errorf("snapshot cart lines: %w", err)
	}
	defer rows.Close()

	var lines []cartLine
	for rows.Next() {
		var l cartLine
		if err := rows.Scan(
			&l.productID, &l.quantity, &l.unitPriceCents, &l.attributes,
			&l.productName, &l.imageURL, &l.countInStock, &l.productOK,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *Repository) addressSnapshot(ctx context.Context, addrID, userID int64) (*AddressSnapshot, error) {
	var (
		ownerID int64
		a       AddressSnapshot
	)
	err := r.q.QueryRow(ctx, `
SELECT user_id, name, line1, line2, city, state, postal_code, country, phone
FROM addresses
WHERE id = $1
`, addrID).Scan(&ownerID, &a.Name, &a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.Country, &a.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("address %d: %w", addrID, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	if ownerID != userID {
		return nil, fmt.Errorf("address %d: %w", addrID, errs.ErrForbidden)
	}
	return &a, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// MarkPaid records the gateway confirmation. Payment and fulfillment status
// are orthogonal: this never touches the status column. Re-marking an
// already-paid order is a no-op returning the current record, so duplicate
// gateway callbacks are harmless.
func (r *Repository) MarkPaid(ctx context.Context, orderID int64, result PaymentResult) (*Order, error) {
	resB, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal payment result: %w", err)
	}

	o, err := scanOrder(r.q.QueryRow(ctx, `
UPDATE orders
SET is_paid        = true,
    paid_at        = now(),
    payment_result = $2::jsonb,
    updated_at     = now()
WHERE id = $1 AND is_paid = false
RETURNING `+orderColumns, orderID, resB))
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("mark paid: %w", err)
	}

	// Either the order is missing or it is already paid.
	return r.GetByID(ctx, orderID)
}

// SetStatus is the administrative transition. Any status can reach any
// other, except that delivered and cancelled are terminal. Moving to
// delivered keeps the delivery fields consistent with MarkDelivered.
func (r *Repository) SetStatus(ctx context.Context, orderID int64, status Status) (*Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `
UPDATE orders
SET status       = $2::order_status,
    is_delivered = CASE WHEN $2::text = 'delivered' THEN true ELSE is_delivered END,
    delivered_at = CASE WHEN $2::text = 'delivered' AND delivered_at IS NULL THEN now() ELSE delivered_at END,
    updated_at   = now()
WHERE id = $1
  AND status NOT IN ('delivered', 'cancelled')
RETURNING `+orderColumns, orderID, status))
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("set status: %w", err)
	}

	return nil, r.transitionFailure(ctx, orderID, status)
}

// MarkDelivered completes fulfillment. Fails once the order is in a
// terminal state, including a previous delivery.
func (r *Repository) MarkDelivered(ctx context.Context, orderID int64, trackingNumber *string) (*Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `
UPDATE orders
SET status          = 'delivered',
    is_delivered    = true,
    delivered_at    = now(),
    tracking_number = COALESCE($2, tracking_number),
    updated_at      = now()
WHERE id = $1
  AND status NOT IN ('delivered', 'cancelled')
RETURNING `+orderColumns, orderID, trackingNumber))
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("mark delivered: %w", err)
	}

	return nil, r.transitionFailure(ctx, orderID, StatusDelivered)
}

// transitionFailure distinguishes a missing order from a terminal-state
// rejection after a guarded update matched no row.
func (r *Repository) transitionFailure(ctx context.Context, orderID int64, to Status) error {
	existing, err := r.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	return fmt.Errorf("order %d is %s, cannot move to %s: %w",
		orderID, existing.Status, to, errs.ErrInvalidTransition)
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, status string, limit, offset int) ([]Order, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.q.Query(ctx, `
SELECT `+orderColumns+`, COUNT(*) OVER() AS total_count
FROM orders
WHERE user_id = $1
  AND ($2 = '' OR status::text = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4
`, userID, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// ListAll: admin listing with optional status filter, paginated.
func (r *Repository) ListAll(ctx context.Context, status string, limit, offset int) ([]Order, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.q.Query(ctx, `
SELECT `+orderColumns+`, COUNT(*) OVER() AS total_count
FROM orders
WHERE ($1 = '' OR status::text = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`, status, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("admin list orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]Order, int, error) {
	var (
		out   []Order
		total int
	)
	for rows.Next() {
		var o Order
		var result []byte
		var t int
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.OrderNumber, &o.PublicRef, &o.Status, &o.PaymentMethod,
			&o.IsPaid, &o.PaidAt, &result, &o.IsDelivered, &o.DeliveredAt, &o.TrackingNumber,
			&o.Shipping.Name, &o.Shipping.Line1, &o.Shipping.Line2, &o.Shipping.City,
			&o.Shipping.State, &o.Shipping.PostalCode, &o.Shipping.Country, &o.Shipping.Phone,
			&o.Billing.Name, &o.Billing.Line1, &o.Billing.Line2, &o.Billing.City,
			&o.Billing.State, &o.Billing.PostalCode, &o.Billing.Country, &o.Billing.Phone,
			&o.ItemsTotalCents, &o.TaxCents, &o.ShippingCents, &o.GrandTotalCents, &o.CreatedAt,
			&t,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		if len(result) > 0 {
			var pr PaymentResult
			if err := json.Unmarshal(result, &pr); err == nil {
				o.PaymentResult = &pr
			}
		}
		if total == 0 {
			total = t
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repository) GetDetailForUser(ctx context.Context, userID, orderID int64) (*OrderDetail, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, `
SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2
`, orderID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", orderID, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("get order detail: %w", err)
	}

	items, err := r.loadItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: *o, Items: items}, nil
}

func (r *Repository) GetDetail(ctx context.Context, orderID int64) (*OrderDetail, error) {
	o, err := r.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: *o, Items: items}, nil
}

func (r *Repository) loadItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.q.Query(ctx, `
SELECT id, order_id, product_id, product_name, image_url, attributes,
       quantity, unit_price_cents, total_price_cents
FROM order_items
WHERE order_id = $1
ORDER BY id ASC
`, orderID)
	if err != nil {
		return nil, fmt.Errorf("order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		var attrs []byte
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ImageURL,
			&attrs, &it.Quantity, &it.UnitPriceCents, &it.TotalPriceCents,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		_ = json.Unmarshal(attrs, &it.Attributes)
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
