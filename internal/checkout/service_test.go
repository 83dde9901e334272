package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/retailpoint/checkout-api/internal/store"
)

type fakeStore struct {
	products   []store.Product
	cards      map[int64]*store.DiscountCard
	listErr    error
	decrements []decrement

	// failAfter fails the Nth decrement (1-based); 0 means never fail.
	// failWith overrides the default stock-conflict failure.
	failAfter int
	failWith  error
}

type decrement struct {
	productID int64
	qty       int32
}

func (f *fakeStore) GetAll(ctx context.Context) ([]store.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.products, nil
}

func (f *fakeStore) GetByNumber(ctx context.Context, number int64) (*store.DiscountCard, error) {
	return f.cards[number], nil
}

func (f *fakeStore) DecrementStock(ctx context.Context, id int64, qty int32) error {
	if f.failAfter > 0 && len(f.decrements)+1 == f.failAfter {
		if f.failWith != nil {
			return f.failWith
		}
		return &store.StockConflictError{ProductID: id}
	}
	f.decrements = append(f.decrements, decrement{productID: id, qty: qty})
	return nil
}

func newService(f *fakeStore) *Service {
	return &Service{
		Products:  f,
		Cards:     f,
		Committer: &Committer{Store: f, Logger: zerolog.Nop()},
		Currency:  "$",
		Now: func() time.Time {
			return time.Date(2024, time.March, 5, 14, 30, 15, 0, time.UTC)
		},
		Logger: zerolog.Nop(),
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	f := &fakeStore{
		products: []store.Product{
			{ID: 1, Description: "Milk", Price: decimal.RequireFromString("10.00"), QuantityInStock: 10, WholesaleProduct: true},
		},
	}
	svc := newService(f)

	out, err := svc.Checkout(context.Background(), Request{
		Products: []CartLine{{ProductID: 1, Quantity: 5}},
		Balance:  decimal.RequireFromString("50.00"),
	})
	require.NoError(t, err)
	require.Contains(t, out, "5;Milk;10.00$;5.00$;45.00$\n")
	require.Equal(t, []decrement{{productID: 1, qty: 5}}, f.decrements)
}

func TestCheckoutInsufficientFundsLeavesStockUntouched(t *testing.T) {
	f := &fakeStore{
		products: []store.Product{
			{ID: 1, Description: "Milk", Price: decimal.RequireFromString("10.00"), QuantityInStock: 10},
		},
	}
	svc := newService(f)

	_, err := svc.Checkout(context.Background(), Request{
		Products: []CartLine{{ProductID: 1, Quantity: 3}},
		Balance:  decimal.RequireFromString("29.99"),
	})
	var noFunds *InsufficientFundsError
	require.ErrorAs(t, err, &noFunds)
	require.Equal(t, "30.00", noFunds.Required.StringFixed(2))
	require.Equal(t, "29.99", noFunds.Available.StringFixed(2))
	require.Empty(t, f.decrements)
}

func TestCheckoutInsufficientStockLeavesStockUntouched(t *testing.T) {
	f := &fakeStore{
		products: []store.Product{
			{ID: 1, Description: "Milk", Price: decimal.RequireFromString("1.00"), QuantityInStock: 4},
		},
	}
	svc := newService(f)

	_, err := svc.Checkout(context.Background(), Request{
		Products: []CartLine{
			{ProductID: 1, Quantity: 2},
			{ProductID: 1, Quantity: 3},
		},
		Balance: decimal.RequireFromString("100.00"),
	})
	var noStock *InsufficientStockError
	require.ErrorAs(t, err, &noStock)
	require.Empty(t, f.decrements)
}

func TestCheckoutUnknownCardMeansNoDiscount(t *testing.T) {
	f := &fakeStore{
		products: []store.Product{
			{ID: 1, Description: "Milk", Price: decimal.RequireFromString("10.00"), QuantityInStock: 10},
		},
	}
	svc := newService(f)

	out, err := svc.Checkout(context.Background(), Request{
		Products:     []CartLine{{ProductID: 1, Quantity: 1}},
		DiscountCard: 9999,
		Balance:      decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)
	require.NotContains(t, out, "DISCOUNT CARD")
	require.Contains(t, out, "1;Milk;10.00$;0.00$;10.00$\n")
}

func TestCheckoutMidCommitFailureReportsPartialApply(t *testing.T) {
	f := &fakeStore{
		products: []store.Product{
			{ID: 1, Description: "Milk", Price: decimal.RequireFromString("1.00"), QuantityInStock: 10},
			{ID: 2, Description: "Bread", Price: decimal.RequireFromString("1.00"), QuantityInStock: 10},
		},
		failAfter: 2,
	}
	svc := newService(f)

	_, err := svc.Checkout(context.Background(), Request{
		Products: []CartLine{
			{ProductID: 1, Quantity: 1},
			{ProductID: 2, Quantity: 1},
		},
		Balance: decimal.RequireFromString("10.00"),
	})
	var persist *PersistenceError
	require.ErrorAs(t, err, &persist)
	require.True(t, persist.PartiallyApplied)
	require.Equal(t, int64(2), persist.ProductID)
	require.True(t, errors.Is(err, store.ErrStockConflict))
	require.Equal(t, []decrement{{productID: 1, qty: 1}}, f.decrements)
}

func TestCheckoutFirstLineConflictIsInsufficientStock(t *testing.T) {
	// A concurrent checkout drained the stock between validation and
	// commit. Nothing was written, so the caller gets a cart problem,
	// not a store fault.
	f := &fakeStore{
		products: []store.Product{
			{ID: 1, Description: "Milk", Price: decimal.RequireFromString("1.00"), QuantityInStock: 10},
		},
		failAfter: 1,
		failWith:  &store.StockConflictError{ProductID: 1, Available: 2},
	}
	svc := newService(f)

	_, err := svc.Checkout(context.Background(), Request{
		Products: []CartLine{{ProductID: 1, Quantity: 5}},
		Balance:  decimal.RequireFromString("10.00"),
	})
	var noStock *InsufficientStockError
	require.ErrorAs(t, err, &noStock)
	require.Equal(t, int64(1), noStock.ProductID)
	require.Equal(t, int32(5), noStock.Requested)
	require.Equal(t, int32(2), noStock.Available)
	require.Empty(t, f.decrements)
}

func TestCheckoutCatalogReadFailure(t *testing.T) {
	f := &fakeStore{listErr: errors.New("connection refused")}
	svc := newService(f)

	_, err := svc.Checkout(context.Background(), Request{
		Products: []CartLine{{ProductID: 1, Quantity: 1}},
		Balance:  decimal.RequireFromString("10.00"),
	})
	var persist *PersistenceError
	require.ErrorAs(t, err, &persist)
	require.False(t, persist.PartiallyApplied)
}

func TestCheckoutAfterCommitHook(t *testing.T) {
	f := &fakeStore{
		products: []store.Product{
			{ID: 1, Description: "Milk", Price: decimal.RequireFromString("1.00"), QuantityInStock: 10},
			{ID: 2, Description: "Bread", Price: decimal.RequireFromString("1.00"), QuantityInStock: 10},
		},
	}
	svc := newService(f)
	var got []int64
	svc.AfterCommit = func(ctx context.Context, ids []int64) { got = ids }

	_, err := svc.Checkout(context.Background(), Request{
		Products: []CartLine{
			{ProductID: 1, Quantity: 1},
			{ProductID: 2, Quantity: 1},
		},
		Balance: decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, got)
}
