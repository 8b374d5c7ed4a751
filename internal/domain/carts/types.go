package carts

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartLine is one priced row of the cart view. A line is identified by
// (product, full attributes map); the attributes payload is opaque to the
// server beyond that equality.
type CartLine struct {
	ItemID         int64          `json:"item_id"`
	ProductID      int64          `json:"product_id"`
	ProductName    string         `json:"product_name"`
	Attributes     map[string]any `json:"attributes,omitempty"`
	Quantity       int            `json:"quantity"`
	UnitPriceCents int64          `json:"unit_price_cents"`
	LineTotalCents int64          `json:"line_total_cents"`
	ImageURL       *string        `json:"image_url,omitempty"`
}

type CartView struct {
	Cart            Cart       `json:"cart"`
	Items           []CartLine `json:"items"`
	TotalItems      int        `json:"total_items"`
	ItemsTotalCents int64      `json:"items_total_cents"`
}

// GuestItem is one line of the client-held guest cart, handed to the server
// exactly once at login. The server never reads client storage directly.
type GuestItem struct {
	ProductID  int64          `json:"product_id"`
	Quantity   int            `json:"quantity"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type Store interface {
	AddItem(ctx context.Context, userID, productID int64, qty int, attrs map[string]any) error
	UpdateItemQty(ctx context.Context, userID, itemID int64, qty int) error
	RemoveItem(ctx context.Context, userID, itemID int64) error
	Clear(ctx context.Context, userID int64) error

	// MergeGuestItems accumulates guest lines into the user's cart. Callers
	// must run it inside a transaction (storage.WithSalesTx) so concurrent
	// mutations of the same cart cannot interleave with it.
	MergeGuestItems(ctx context.Context, userID int64, key *uuid.UUID, items []GuestItem) error

	GetView(ctx context.Context, userID int64) (*CartView, error)
}
