package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/retailpoint/checkout-api/internal/obs"
	"github.com/retailpoint/checkout-api/internal/store"
)

// TypeLowStockCheck scans the catalog for products running low after a
// checkout committed.
const TypeLowStockCheck = "stock:low_check"

// LowStockPayload carries the product ids a checkout just decremented.
type LowStockPayload struct {
	ProductIDs []int64 `json:"productIds"`
}

// NewLowStockTask builds the task enqueued after a successful commit.
func NewLowStockTask(productIDs []int64) (*asynq.Task, error) {
	payload, err := json.Marshal(LowStockPayload{ProductIDs: productIDs})
	if err != nil {
		return nil, fmt.Errorf("marshal low stock payload: %w", err)
	}
	return asynq.NewTask(TypeLowStockCheck, payload), nil
}

// ProductReader is the catalog read the worker needs.
type ProductReader interface {
	GetAll(ctx context.Context) ([]store.Product, error)
}

// LowStockHandler processes low-stock scans on the worker.
type LowStockHandler struct {
	Products  ProductReader
	Threshold int32
	Logger    zerolog.Logger
}

// ProcessTask logs every product at or below the threshold and updates the
// low-stock gauge. The scan covers the whole catalog so the gauge stays
// accurate even when the triggering checkout touched other products.
func (h *LowStockHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload LowStockPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal low stock payload: %w", err)
	}

	products, err := h.Products.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("low stock scan: %w", err)
	}

	low := 0
	for _, p := range products {
		if p.QuantityInStock <= h.Threshold {
			low++
			h.Logger.Warn().
				Int64("product_id", p.ID).
				Str("description", p.Description).
				Int32("quantity_in_stock", p.QuantityInStock).
				Msg("product stock low")
		}
	}
	if obs.LowStockProducts != nil {
		obs.LowStockProducts.Set(float64(low))
	}

	h.Logger.Info().
		Ints64("trigger_product_ids", payload.ProductIDs).
		Int("low_count", low).
		Msg("low stock scan completed")
	return nil
}
