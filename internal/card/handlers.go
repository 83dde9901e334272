package card

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/retailpoint/checkout-api/internal/common"
	"github.com/retailpoint/checkout-api/internal/store"
)

// Handler exposes discount card CRUD.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
	Logger   zerolog.Logger
}

type cardPayload struct {
	Number             int64 `json:"number" validate:"required,gt=0"`
	DiscountPercentage int16 `json:"discountPercentage" validate:"gte=0,lte=100"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.Svc.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if cards == nil {
		cards = []store.DiscountCard{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"discountCards": cards})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid card id", nil)
		return
	}
	c, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, c)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	created, err := h.Svc.Create(r.Context(), store.DiscountCard{
		Number:             payload.Number,
		DiscountPercentage: payload.DiscountPercentage,
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
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid card id", nil)
		return
	}
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	c := store.DiscountCard{
		ID:                 id,
		Number:             payload.Number,
		DiscountPercentage: payload.DiscountPercentage,
	}
	if err := h.Svc.Update(r.Context(), c); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := common.ParseID(chi.URLParam(r, "id"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid card id", nil)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (cardPayload, bool) {
	var payload cardPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return payload, false
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid card payload", err.Error())
		return payload, false
	}
	return payload, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		common.WriteAppError(w, common.NewAppError("NOT_FOUND", "discount card not found", http.StatusNotFound, err))
	case errors.Is(err, store.ErrDuplicateNumber):
		common.WriteAppError(w, common.NewAppError("DUPLICATE_NUMBER", "card number already exists", http.StatusConflict, err))
	default:
		h.Logger.Error().Err(err).Msg("discount card request failed")
		common.WriteAppError(w, common.NewAppError("INTERNAL", "internal server error", http.StatusInternalServerError, err))
	}
}
