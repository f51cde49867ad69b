package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mstolbov/market_api/internal/models"
)

func TestProductsPublicRead(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, "widget", 9.99, 10)
	env.seedProduct(t, "gadget", 35.00, 0)

	rec := env.do(t, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []models.Product `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Data, 2)
	require.Equal(t, 2, body.Meta.Total)

	rec = env.do(t, http.MethodGet, "/api/v1/products?in_stock=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &body)
	require.Len(t, body.Data, 1)
	require.Equal(t, "widget", body.Data[0].Name)

	rec = env.do(t, http.MethodGet, "/api/v1/products?min_price=20", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &body)
	require.Len(t, body.Data, 1)
	require.Equal(t, "gadget", body.Data[0].Name)
}

func TestProductWritesAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := env.seedUser(t, "plain@example.com", "user")
	_, adminToken := env.seedUser(t, "admin@example.com", "admin")

	payload := map[string]any{"name": "widget", "price": 9.99, "stock": 5}

	rec := env.do(t, http.MethodPost, "/api/v1/products", "", payload)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/products", userToken, payload)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/products", adminToken, payload)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestProductPutUpsert(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser(t, "admin@example.com", "admin")

	payload := map[string]any{"name": "widget", "price": 9.99, "stock": 5}

	rec := env.do(t, http.MethodPut, "/api/v1/products/9", adminToken, payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	payload["price"] = 12.00
	rec = env.do(t, http.MethodPut, "/api/v1/products/9", adminToken, payload)
	require.Equal(t, http.StatusOK, rec.Code)

	var p models.Product
	decode(t, rec, &p)
	require.InDelta(t, 12.00, p.Price, 1e-9)
}

func TestProductPatchAndDelete(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.seedUser(t, "admin@example.com", "admin")
	p := env.seedProduct(t, "widget", 9.99, 5)

	rec := env.do(t, http.MethodPatch, "/api/v1/products/"+itoa(p.ID), adminToken, map[string]any{"stock": 20})
	require.Equal(t, http.StatusOK, rec.Code)

	var patched models.Product
	decode(t, rec, &patched)
	require.EqualValues(t, 20, patched.Stock)
	require.Equal(t, "widget", patched.Name)

	rec = env.do(t, http.MethodDelete, "/api/v1/products/"+itoa(p.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var deleted models.Product
	decode(t, rec, &deleted)
	require.Equal(t, p.ID, deleted.ID)

	rec = env.do(t, http.MethodGet, "/api/v1/products/"+itoa(p.ID), "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductPagination(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		env.seedProduct(t, name, 1.00, 1)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/products?page=2&size=2&sort=name", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []models.Product `json:"data"`
		Meta struct {
			Page    int  `json:"page"`
			Size    int  `json:"size"`
			Total   int  `json:"total"`
			Pages   int  `json:"total_pages"`
			HasNext bool `json:"has_next"`
			HasPrev bool `json:"has_prev"`
		} `json:"meta"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Data, 2)
	require.Equal(t, "c", body.Data[0].Name)
	require.Equal(t, 5, body.Meta.Total)
	require.Equal(t, 3, body.Meta.Pages)
	require.True(t, body.Meta.HasNext)
	require.True(t, body.Meta.HasPrev)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchUnconfigured(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/search?q=widget", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/search", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
