package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/retailpoint/checkout-api/internal/common"
)

// Handler exposes the checkout pipeline over HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
	Logger   zerolog.Logger
}

// Check handles POST /api/v1/check. A successful checkout streams the
// rendered receipt as a text/csv attachment.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid checkout request", err.Error())
		return
	}
	if req.Balance.IsNegative() {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "balance must not be negative", nil)
		return
	}

	receipt, err := h.Svc.Checkout(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="check.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(receipt))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	appErr := AsAppError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		evt := h.Logger.Error().Err(err)
		var persist *PersistenceError
		if errors.As(err, &persist) {
			evt = evt.Bool("partially_applied", persist.PartiallyApplied)
		}
		evt.Msg("checkout failed")
	}
	common.WriteAppError(w, appErr)
}
