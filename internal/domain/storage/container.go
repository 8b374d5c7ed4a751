package storage

import (
	"context"
	"fmt"

	"shop/internal/domain/addresses"
	"shop/internal/domain/carts"
	"shop/internal/domain/orders"
	"shop/internal/domain/pricing"
	"shop/internal/domain/products"
	"shop/internal/domain/users"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sales groups the repositories that participate in checkout.
type Sales struct {
	Carts  carts.Store
	Orders orders.Store
}

type Container struct {
	pool *pgxpool.Pool // IMPORTANT: set the pool so WithSalesTx works

	orderNumbers *orders.OrderNumberGenerator
	publicRefs   *orders.PublicRefEncoder
	priceCfg     pricing.Config

	Users     users.Store
	Products  products.Store
	Addresses addresses.Store
	Sales     Sales
}

func NewContainer(db *pgxpool.Pool, gen *orders.OrderNumberGenerator, refs *orders.PublicRefEncoder, priceCfg pricing.Config) *Container {
	return &Container{
		pool:         db,
		orderNumbers: gen,
		publicRefs:   refs,
		priceCfg:     priceCfg,
		Users:        users.NewRepository(db),
		Products:     products.NewRepository(db),
		Addresses:    addresses.NewRepository(db),
		Sales: Sales{
			Carts:  carts.NewRepository(db),
			Orders: orders.NewRepository(db, gen, refs, priceCfg),
		},
	}
}

// SalesTx is a temporary, tx-scoped set of repos for atomic units of work.
type SalesTx struct {
	Carts  carts.Store
	Orders orders.Store
}

// WithSalesTx runs a sales unit-of-work atomically.
func (c *Container) WithSalesTx(ctx context.Context, fn func(s *SalesTx) error) error {
	if c.pool == nil {
		return fmt.Errorf("storage container pool is nil (did you forget to set pool in NewContainer?)")
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx) // safe even if already committed
	}()

	s := &SalesTx{
		Carts:  carts.NewRepository(tx),
		Orders: orders.NewRepository(tx, c.orderNumbers, c.publicRefs, c.priceCfg),
	}

	if err := fn(s); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
