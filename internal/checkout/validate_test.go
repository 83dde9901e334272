package checkout

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/retailpoint/checkout-api/internal/store"
)

func snapshot() []store.Product {
	return []store.Product{
		{ID: 1, Description: "Milk", Price: decimal.RequireFromString("1.50"), QuantityInStock: 10},
		{ID: 2, Description: "Bread", Price: decimal.RequireFromString("0.99"), QuantityInStock: 4},
	}
}

func TestValidateResolvesAllLines(t *testing.T) {
	lines := []CartLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}

	products, err := Validate(lines, snapshot())
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "Milk", products[1].Description)
}

func TestValidateUnknownProduct(t *testing.T) {
	lines := []CartLine{{ProductID: 99, Quantity: 1}}

	_, err := Validate(lines, snapshot())
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, int64(99), notFound.ProductID)
}

func TestValidateAggregatesDuplicateLines(t *testing.T) {
	// 2+3 units of product 2 with only 4 in stock: each line fits alone,
	// the cart as a whole does not.
	lines := []CartLine{
		{ProductID: 2, Quantity: 2},
		{ProductID: 2, Quantity: 3},
	}

	_, err := Validate(lines, snapshot())
	var noStock *InsufficientStockError
	require.ErrorAs(t, err, &noStock)
	require.Equal(t, int64(2), noStock.ProductID)
	require.Equal(t, int32(5), noStock.Requested)
	require.Equal(t, int32(4), noStock.Available)
}

func TestValidateFailsFastInCartOrder(t *testing.T) {
	lines := []CartLine{
		{ProductID: 2, Quantity: 5},
		{ProductID: 99, Quantity: 1},
	}

	_, err := Validate(lines, snapshot())
	var noStock *InsufficientStockError
	require.ErrorAs(t, err, &noStock)
	require.False(t, errors.As(err, new(*NotFoundError)))
}
