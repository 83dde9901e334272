package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/retailpoint/checkout-api/internal/common"
	"github.com/retailpoint/checkout-api/internal/store"
)

// Handler exposes product CRUD.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
	Logger   zerolog.Logger
}

type productPayload struct {
	Description      string          `json:"description" validate:"required,min=1,max=255"`
	Price            decimal.Decimal `json:"price"`
	QuantityInStock  int32           `json:"quantityInStock" validate:"gte=0"`
	WholesaleProduct bool            `json:"wholesaleProduct"`
}

type quantityPayload struct {
	Quantity int32 `json:"quantity" validate:"gte=0"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Svc.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if products == nil {
		products = []store.Product{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	product, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, product)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	created, err := h.Svc.Create(r.Context(), store.Product{
		Description:      payload.Description,
		Price:            payload.Price,
		QuantityInStock:  payload.QuantityInStock,
		WholesaleProduct: payload.WholesaleProduct,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	product := store.Product{
		ID:               id,
		Description:      payload.Description,
		Price:            payload.Price,
		QuantityInStock:  payload.QuantityInStock,
		WholesaleProduct: payload.WholesaleProduct,
	}
	if err := h.Svc.Update(r.Context(), product); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, product)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetQuantity handles PATCH on a product's stock counter.
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	var payload quantityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid quantity", err.Error())
		return
	}
	if err := h.Svc.SetQuantity(r.Context(), id, payload.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (productPayload, bool) {
	var payload productPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return payload, false
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid product payload", err.Error())
		return payload, false
	}
	if payload.Price.IsNegative() {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "price must not be negative", nil)
		return payload, false
	}
	return payload, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		common.WriteAppError(w, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err))
	default:
		h.Logger.Error().Err(err).Msg("catalog request failed")
		common.WriteAppError(w, common.NewAppError("INTERNAL", "internal server error", http.StatusInternalServerError, err))
	}
}
