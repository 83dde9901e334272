package catalog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *fakeRepo) {
	t.Helper()
	svc, repo, _ := newTestService(t)
	h := &Handler{Svc: svc, Validate: validator.New(), Logger: zerolog.Nop()}

	r := chi.NewRouter()
	r.Get("/products", h.List)
	r.Post("/products", h.Create)
	r.Get("/products/{id}", h.Get)
	r.Put("/products/{id}", h.Update)
	r.Delete("/products/{id}", h.Delete)
	r.Patch("/products/{id}/quantity", h.SetQuantity)
	return r, repo
}

func TestListProducts(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"description":"Milk"`)
}

func TestCreateProduct(t *testing.T) {
	r, repo := newTestRouter(t)

	body := `{"description":"Bread","price":0.99,"quantityInStock":5,"wholesaleProduct":false}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.products, 2)
	require.Contains(t, rec.Body.String(), `"description":"Bread"`)
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	r, _ := newTestRouter(t)

	body := `{"description":"Bread","price":-1,"quantityInStock":5}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestGetProductNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/42", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestGetProductRejectsBadID(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/abc", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetQuantity(t *testing.T) {
	r, repo := newTestRouter(t)

	body := `{"quantity":7}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/products/1/quantity", strings.NewReader(body)))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, int32(7), repo.products[0].QuantityInStock)
}

func TestDeleteProduct(t *testing.T) {
	r, repo := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/products/1", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, repo.products)
}
