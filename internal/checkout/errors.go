package checkout

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/retailpoint/checkout-api/internal/common"
)

// NotFoundError reports a cart line referencing a product absent from the
// catalog snapshot.
type NotFoundError struct {
	ProductID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product with id %d not found", e.ProductID)
}

// InsufficientStockError reports aggregate requested quantity exceeding the
// snapshot stock for a product.
type InsufficientStockError struct {
	ProductID int64
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for product id %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// InsufficientFundsError reports a grand total exceeding the stated balance.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("not enough money on the debit card: required %s, available %s",
		e.Required.StringFixed(2), e.Available.StringFixed(2))
}

// PersistenceError reports a failed read or write against the external store.
// PartiallyApplied is set when earlier cart lines were already committed.
type PersistenceError struct {
	Op               string
	ProductID        int64
	PartiallyApplied bool
	Err              error
}

func (e *PersistenceError) Error() string {
	msg := fmt.Sprintf("persistence failure during %s", e.Op)
	if e.ProductID != 0 {
		msg += fmt.Sprintf(" (product id %d)", e.ProductID)
	}
	if e.PartiallyApplied {
		msg += "; some lines may already be committed"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// AsAppError maps a pipeline error onto the transport error envelope. Cart
// problems the client can correct are 400s; store failures are 500s.
func AsAppError(err error) *common.AppError {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var (
		notFound *NotFoundError
		noStock  *InsufficientStockError
		noFunds  *InsufficientFundsError
		persist  *PersistenceError
	)
	switch {
	case errors.As(err, &notFound):
		return common.NewAppError("PRODUCT_NOT_FOUND", notFound.Error(), http.StatusBadRequest, err)
	case errors.As(err, &noStock):
		appErr := common.NewAppError("INSUFFICIENT_STOCK", noStock.Error(), http.StatusBadRequest, err)
		appErr.Details = map[string]any{
			"productId": noStock.ProductID,
			"requested": noStock.Requested,
			"available": noStock.Available,
		}
		return appErr
	case errors.As(err, &noFunds):
		return common.NewAppError("INSUFFICIENT_FUNDS", noFunds.Error(), http.StatusBadRequest, err)
	case errors.As(err, &persist):
		return common.NewAppError("PERSISTENCE", "checkout could not be completed", http.StatusInternalServerError, err)
	default:
		return common.NewAppError("INTERNAL", "internal server error", http.StatusInternalServerError, err)
	}
}
