package order

import (
	"context"

	"orderdesk-be/internal/customer"
	"orderdesk-be/internal/db"
	"orderdesk-be/internal/inventory"
	"orderdesk-be/internal/product"
)

// Stores are the repositories bound to one transaction.
type Stores struct {
	Customers customer.Repository
	Catalog   product.Repository
	Inventory inventory.Repository
	Sequences Sequencer
	Orders    Repository
}

// UnitOfWork runs fn with stores that share a single transaction. Any error
// returned by fn rolls everything back.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

type sqlUnitOfWork struct {
	tx db.TxRunner
}

func NewUnitOfWork(runner db.TxRunner) UnitOfWork {
	return &sqlUnitOfWork{tx: runner}
}

func (u *sqlUnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	return u.tx.WithTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, Stores{
			Customers: customer.NewRepository(tx),
			Catalog:   product.NewRepository(tx),
			Inventory: inventory.NewRepository(tx),
			Sequences: NewSequencer(tx),
			Orders:    NewRepository(tx),
		})
	})
}
