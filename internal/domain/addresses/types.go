package addresses

import (
	"context"
	"time"
)

// Address is an address-book entry. Orders copy its fields at checkout, so
// editing or deleting an address never rewrites order history.
type Address struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	Line1      string    `json:"line1"`
	Line2      *string   `json:"line2,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	Phone      string    `json:"phone"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

type Store interface {
	Create(ctx context.Context, a *Address) error
	ListByUser(ctx context.Context, userID int64) ([]Address, error)
	GetForUser(ctx context.Context, userID, addressID int64) (*Address, error)
	Delete(ctx context.Context, userID, addressID int64) error
}
