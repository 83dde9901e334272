package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/retailpoint/checkout-api/internal/lock"
	"github.com/retailpoint/checkout-api/internal/obs"
	"github.com/retailpoint/checkout-api/internal/store"
)

// StockWriter decrements stock for a single product, failing when the
// remaining stock is below the requested quantity.
type StockWriter interface {
	DecrementStock(ctx context.Context, id int64, qty int32) error
}

// Committer applies a priced receipt to inventory, one line at a time.
// There is no cross-line transaction: a mid-cart failure leaves earlier
// lines committed, and the returned PersistenceError says so.
type Committer struct {
	Store   StockWriter
	Locker  *lock.Locker
	LockTTL time.Duration
	Logger  zerolog.Logger
}

// Commit decrements stock for every receipt line in order. Each decrement is
// individually atomic; with a Locker configured, concurrent checkouts of the
// same product are additionally serialized behind a short Redis lock.
func (c *Committer) Commit(ctx context.Context, rcpt Receipt) error {
	for i, line := range rcpt.Lines {
		err := c.commitLine(ctx, line.Product.ID, line.Quantity)
		if err == nil {
			continue
		}

		// A conflict on the very first line means a concurrent checkout
		// won the race after validation and nothing was written yet. The
		// client sees it as plain insufficient stock, not a store fault.
		if i == 0 && errors.Is(err, store.ErrStockConflict) {
			noStock := &InsufficientStockError{
				ProductID: line.Product.ID,
				Requested: line.Quantity,
			}
			var conflict *store.StockConflictError
			if errors.As(err, &conflict) {
				noStock.Available = conflict.Available
			}
			return noStock
		}

		c.Logger.Error().Err(err).
			Int64("product_id", line.Product.ID).
			Int32("quantity", line.Quantity).
			Bool("partially_applied", i > 0).
			Msg("inventory commit failed")
		if obs.InventoryCommitFailures != nil {
			obs.InventoryCommitFailures.Inc()
		}
		return &PersistenceError{
			Op:               "stock decrement",
			ProductID:        line.Product.ID,
			PartiallyApplied: i > 0,
			Err:              err,
		}
	}
	return nil
}

func (c *Committer) commitLine(ctx context.Context, productID int64, qty int32) error {
	if c.Locker == nil {
		return c.Store.DecrementStock(ctx, productID, qty)
	}
	key := fmt.Sprintf("stock:%d", productID)
	return c.Locker.WithLock(ctx, key, c.LockTTL, func(ctx context.Context) error {
		return c.Store.DecrementStock(ctx, productID, qty)
	})
}
