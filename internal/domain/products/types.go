package products

import (
	"context"
	"time"
)

type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Brand        *string   `json:"brand,omitempty"`
	ImageURL     *string   `json:"image_url,omitempty"`
	PriceCents   int64     `json:"price_cents"`
	CountInStock int       `json:"count_in_stock"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Patch carries optional admin updates; nil means "leave unchanged".
type Patch struct {
	Name         *string
	Description  *string
	Brand        *string
	ImageURL     *string
	PriceCents   *int64
	CountInStock *int
	IsActive     *bool
}

type Store interface {
	Create(ctx context.Context, p *Product) (*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, limit, offset int) ([]*Product, int, error)
	Update(ctx context.Context, id int64, patch Patch) (*Product, error)
}
