package checkout

import (
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/retailpoint/checkout-api/internal/common"
)

func TestAsAppErrorMapsPipelineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "unknown product",
			err:        &NotFoundError{ProductID: 7},
			wantCode:   "PRODUCT_NOT_FOUND",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "insufficient stock",
			err:        &InsufficientStockError{ProductID: 7, Requested: 5, Available: 2},
			wantCode:   "INSUFFICIENT_STOCK",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "insufficient funds",
			err: &InsufficientFundsError{
				Required:  decimal.RequireFromString("10.00"),
				Available: decimal.RequireFromString("5.00"),
			},
			wantCode:   "INSUFFICIENT_FUNDS",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "persistence failure",
			err:        &PersistenceError{Op: "stock decrement", Err: errors.New("boom")},
			wantCode:   "PERSISTENCE",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unexpected error",
			err:        errors.New("boom"),
			wantCode:   "INTERNAL",
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			appErr := AsAppError(tc.err)
			require.Equal(t, tc.wantCode, appErr.Code)
			require.Equal(t, tc.wantStatus, appErr.HTTPStatus)
			require.ErrorIs(t, appErr, tc.err)
		})
	}
}

func TestAsAppErrorCarriesStockDetails(t *testing.T) {
	appErr := AsAppError(&InsufficientStockError{ProductID: 7, Requested: 5, Available: 2})

	details, ok := appErr.Details.(map[string]any)
	require.True(t, ok)
	require.Equal(t, int64(7), details["productId"])
	require.Equal(t, int32(5), details["requested"])
	require.Equal(t, int32(2), details["available"])
}

func TestAsAppErrorPassesThroughAppError(t *testing.T) {
	original := common.NewAppError("VALIDATION_ERROR", "bad payload", http.StatusBadRequest, nil)
	require.Same(t, original, AsAppError(original))
}
