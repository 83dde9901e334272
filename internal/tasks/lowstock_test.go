package tasks

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/retailpoint/checkout-api/internal/store"
)

type fakeProducts struct {
	products []store.Product
}

func (f *fakeProducts) GetAll(ctx context.Context) ([]store.Product, error) {
	return f.products, nil
}

func TestNewLowStockTaskRoundTrip(t *testing.T) {
	task, err := NewLowStockTask([]int64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, TypeLowStockCheck, task.Type())

	var payload LowStockPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, []int64{1, 2, 3}, payload.ProductIDs)
}

func TestProcessTaskScansCatalog(t *testing.T) {
	h := &LowStockHandler{
		Products: &fakeProducts{products: []store.Product{
			{ID: 1, Description: "Milk", Price: decimal.RequireFromString("1.50"), QuantityInStock: 2},
			{ID: 2, Description: "Bread", Price: decimal.RequireFromString("0.99"), QuantityInStock: 50},
		}},
		Threshold: 5,
		Logger:    zerolog.Nop(),
	}

	task, err := NewLowStockTask([]int64{1})
	require.NoError(t, err)
	require.NoError(t, h.ProcessTask(context.Background(), task))
}

func TestProcessTaskRejectsBadPayload(t *testing.T) {
	h := &LowStockHandler{
		Products: &fakeProducts{},
		Logger:   zerolog.Nop(),
	}

	err := h.ProcessTask(context.Background(), asynq.NewTask(TypeLowStockCheck, []byte("{")))
	require.Error(t, err)
}
