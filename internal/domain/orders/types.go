package orders

import (
	"context"
	"time"
)

// Order is an immutable financial record. Totals and line items are fixed at
// creation; only payment/delivery/status fields move afterwards, and only
// through the transition operations below. Orders are never deleted;
// cancellation is a status.
type Order struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	OrderNumber    string          `json:"order_number"`
	PublicRef      string          `json:"public_ref"`
	Status         Status          `json:"status"`
	PaymentMethod  string          `json:"payment_method"`
	IsPaid         bool            `json:"is_paid"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	PaymentResult  *PaymentResult  `json:"payment_result,omitempty"`
	IsDelivered    bool            `json:"is_delivered"`
	DeliveredAt    *time.Time      `json:"delivered_at,omitempty"`
	TrackingNumber *string         `json:"tracking_number,omitempty"`
	Shipping       AddressSnapshot `json:"shipping_address"`
	Billing        AddressSnapshot `json:"billing_address"`

	ItemsTotalCents int64 `json:"items_total_cents"`
	TaxCents        int64 `json:"tax_cents"`
	ShippingCents   int64 `json:"shipping_cents"`
	GrandTotalCents int64 `json:"grand_total_cents"`

	CreatedAt time.Time `json:"created_at"`
}

// AddressSnapshot copies the address fields into the order so the record
// stays accurate if the address book row is later edited or removed.
type AddressSnapshot struct {
	Name       string  `json:"name"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
	Phone      string  `json:"phone"`
}

// PaymentResult is the gateway confirmation recorded by MarkPaid.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

// OrderItem is a point-in-time snapshot of a cart line, deliberately
// decoupled from the live product row.
type OrderItem struct {
	ID              int64          `json:"id"`
	OrderID         int64          `json:"order_id"`
	ProductID       *int64         `json:"product_id,omitempty"`
	ProductName     string         `json:"product_name"`
	ImageURL        *string        `json:"image_url,omitempty"`
	Attributes      map[string]any `json:"attributes,omitempty"`
	Quantity        int            `json:"quantity"`
	UnitPriceCents  int64          `json:"unit_price_cents"`
	TotalPriceCents int64          `json:"total_price_cents"`
}

type OrderDetail struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

type Store interface {
	// Checkout. Must run inside a transaction (storage.WithSalesTx): the
	// snapshot, stock reservation, pricing and order insert commit or roll
	// back together. Clearing the source cart is the caller's post-commit
	// step.
	CreateFromCart(ctx context.Context, userID, shipAddrID, billAddrID int64, paymentMethod string) (*Order, error)

	GetByID(ctx context.Context, id int64) (*Order, error)

	// User-facing
	ListByUser(ctx context.Context, userID int64, status string, limit, offset int) ([]Order, int, error)
	GetDetailForUser(ctx context.Context, userID, orderID int64) (*OrderDetail, error)

	// Transitions
	MarkPaid(ctx context.Context, orderID int64, result PaymentResult) (*Order, error)
	SetStatus(ctx context.Context, orderID int64, status Status) (*Order, error)
	MarkDelivered(ctx context.Context, orderID int64, trackingNumber *string) (*Order, error)

	// Admin-facing
	ListAll(ctx context.Context, status string, limit, offset int) ([]Order, int, error)
	GetDetail(ctx context.Context, orderID int64) (*OrderDetail, error)
}
